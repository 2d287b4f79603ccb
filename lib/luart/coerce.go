package luart

import (
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

func typeError(L *lua.LState, want string, v lua.LValue) {
	L.RaiseError("%s expected, got %s", want, typeName(v))
}

// CheckString coerces v to a string. Numbers are accepted, as in Lua.
func CheckString(L *lua.LState, v lua.LValue) string {
	switch lv := v.(type) {
	case lua.LString:
		return string(lv)
	case lua.LNumber:
		return lv.String()
	}
	typeError(L, "string", v)
	return ""
}

// CheckBool accepts only Lua booleans.
func CheckBool(L *lua.LState, v lua.LValue) bool {
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	typeError(L, "boolean", v)
	return false
}

// CheckFloat64 coerces v to a float64. Numeric strings are accepted.
func CheckFloat64(L *lua.LState, v lua.LValue) float64 {
	switch lv := v.(type) {
	case lua.LNumber:
		return float64(lv)
	case lua.LString:
		if n, err := strconv.ParseFloat(strings.TrimSpace(string(lv)), 64); err == nil {
			return n
		}
	}
	typeError(L, "number", v)
	return 0
}

func CheckFloat32(L *lua.LState, v lua.LValue) float32 { return float32(CheckFloat64(L, v)) }
func CheckInt(L *lua.LState, v lua.LValue) int         { return int(CheckFloat64(L, v)) }
func CheckInt32(L *lua.LState, v lua.LValue) int32     { return int32(CheckFloat64(L, v)) }
func CheckInt64(L *lua.LState, v lua.LValue) int64     { return int64(CheckFloat64(L, v)) }

// CheckNotNil raises a Lua error when v is nil and returns v otherwise.
func CheckNotNil(L *lua.LState, v lua.LValue) lua.LValue {
	if v == lua.LNil {
		L.RaiseError("value expected, got nil")
	}
	return v
}

func CheckTable(L *lua.LState, v lua.LValue) *lua.LTable {
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	typeError(L, "table", v)
	return nil
}

func CheckFunction(L *lua.LState, v lua.LValue) *lua.LFunction {
	if f, ok := v.(*lua.LFunction); ok {
		return f
	}
	typeError(L, "function", v)
	return nil
}

// Raw passes a native value through, mapping a nil interface to Lua nil.
func Raw(v lua.LValue) lua.LValue {
	if v == nil {
		return lua.LNil
	}
	return v
}

// OptToLua converts a non-nil *T with conv, and nil to Lua nil.
func OptToLua[T any](p *T, conv func(T) lua.LValue) lua.LValue {
	if p == nil {
		return lua.LNil
	}
	return conv(*p)
}

// RefToLua converts a non-nil pointer with conv, and nil to Lua nil. Unlike
// OptToLua the pointer itself is handed over, so the result may alias it.
func RefToLua[T any](p *T, conv func(*T) lua.LValue) lua.LValue {
	if p == nil {
		return lua.LNil
	}
	return conv(p)
}

// OptFromLua converts a non-nil Lua value into a freshly allocated *T.
func OptFromLua[T any](v lua.LValue, conv func(lua.LValue) T) *T {
	if v == lua.LNil {
		return nil
	}
	out := conv(v)
	return &out
}

// RefFromLua converts a non-nil Lua value with conv, which yields the pointer
// directly.
func RefFromLua[T any](v lua.LValue, conv func(lua.LValue) *T) *T {
	if v == lua.LNil {
		return nil
	}
	return conv(v)
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}
