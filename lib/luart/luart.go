// Package luart is the runtime half of luabind. Generated adapters call into it
// to box host values for gopher-lua, coerce Lua values back, and wrap functions
// in both directions.
package luart

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Accessor is implemented by every generated <Root>Access adapter.
//
// LuaType must not dereference its receiver; it is called on zero values to
// build error messages.
type Accessor interface {
	LuaType() string
	Unwrap() any
	Get(L *lua.LState, key string) (lua.LValue, bool)
	Set(L *lua.LState, key string, value lua.LValue) bool
}

// Parented is implemented by adapters whose host type embeds another exposed
// type. Lookups that miss fall through to the parent.
type Parented interface {
	LuaParent() Accessor
}

// Exposable is implemented by host types that build their own Lua
// representation. Generated code calls ToLua instead of a factory.
type Exposable interface {
	ToLua(L *lua.LState) lua.LValue
}

// Mapper converts a host type the generator does not understand structurally.
// FromLua is never handed nil; nullability is handled by the caller.
type Mapper[T any] interface {
	ToLua(L *lua.LState, v T) lua.LValue
	FromLua(L *lua.LState, v lua.LValue) T
}

const accessTypeName = "luabind.access"

// ToLua boxes an adapter as userdata sharing the luabind access metatable.
func ToLua(L *lua.LState, acc Accessor) lua.LValue {
	if acc == nil {
		return lua.LNil
	}
	ud := L.NewUserData()
	ud.Value = acc
	L.SetMetatable(ud, metatable(L))
	return ud
}

// AccessorOf returns the adapter boxed in v, if any.
func AccessorOf(v lua.LValue) (Accessor, bool) {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return nil, false
	}
	acc, ok := ud.Value.(Accessor)
	return acc, ok
}

func metatable(L *lua.LState) *lua.LTable {
	if mt, ok := L.GetTypeMetatable(accessTypeName).(*lua.LTable); ok {
		return mt
	}
	mt := L.NewTypeMetatable(accessTypeName)
	L.SetField(mt, "__index", L.NewFunction(accessIndex))
	L.SetField(mt, "__newindex", L.NewFunction(accessNewIndex))
	L.SetField(mt, "__tostring", L.NewFunction(accessToString))
	L.SetField(mt, "__eq", L.NewFunction(accessEq))
	return mt
}

func checkSelf(L *lua.LState) Accessor {
	acc, ok := AccessorOf(L.Get(1))
	if !ok {
		L.ArgError(1, "luabind adapter expected")
	}
	return acc
}

func accessIndex(L *lua.LState) int {
	acc := checkSelf(L)
	key := L.CheckString(2)
	v, ok := acc.Get(L, key)
	if !ok {
		L.RaiseError("cannot get %s on %s", key, acc.LuaType())
		return 0
	}
	L.Push(v)
	return 1
}

func accessNewIndex(L *lua.LState) int {
	acc := checkSelf(L)
	key := L.CheckString(2)
	if !acc.Set(L, key, L.Get(3)) {
		L.RaiseError("cannot set %s on %s", key, acc.LuaType())
	}
	return 0
}

func accessToString(L *lua.LState) int {
	acc := checkSelf(L)
	L.Push(lua.LString(fmt.Sprintf("%s: %p", acc.LuaType(), acc.Unwrap())))
	return 1
}

func accessEq(L *lua.LState) int {
	a, okA := AccessorOf(L.Get(1))
	b, okB := AccessorOf(L.Get(2))
	L.Push(lua.LBool(okA && okB && a.Unwrap() == b.Unwrap()))
	return 1
}

func parentOf(acc Accessor) Accessor {
	if p, ok := acc.(Parented); ok {
		return p.LuaParent()
	}
	return nil
}

// IsSelf reports whether v boxes acc, or a child adapter whose parent chain
// reaches acc.
func IsSelf(v lua.LValue, acc Accessor) bool {
	cur, ok := AccessorOf(v)
	if !ok {
		return false
	}
	for ; cur != nil; cur = parentOf(cur) {
		if cur == acc {
			return true
		}
	}
	return false
}

// CheckAccessor extracts an adapter of type T from v. A child adapter is
// accepted where its parent type is expected.
func CheckAccessor[T Accessor](L *lua.LState, v lua.LValue) T {
	if acc, ok := AccessorOf(v); ok {
		for cur := acc; cur != nil; cur = parentOf(cur) {
			if t, ok := cur.(T); ok {
				return t
			}
		}
	}
	var zero T
	L.RaiseError("%s expected, got %s", zero.LuaType(), typeName(v))
	return zero
}

// CheckUnwrap extracts a host value of type T from v, looking through the
// adapter chain or the Value of plain userdata. name is the Lua type reported
// on failure.
func CheckUnwrap[T any](L *lua.LState, v lua.LValue, name string) T {
	if acc, ok := AccessorOf(v); ok {
		for cur := acc; cur != nil; cur = parentOf(cur) {
			if t, ok := cur.Unwrap().(T); ok {
				return t
			}
		}
	} else if ud, ok := v.(*lua.LUserData); ok {
		if t, ok := ud.Value.(T); ok {
			return t
		}
	}
	var zero T
	L.RaiseError("%s expected, got %s", name, typeName(v))
	return zero
}

func typeName(v lua.LValue) string {
	if acc, ok := AccessorOf(v); ok {
		return acc.LuaType()
	}
	return v.Type().String()
}
