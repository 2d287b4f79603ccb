package luart

import (
	"iter"

	lua "github.com/yuin/gopher-lua"
)

// Varargs carries the arguments of a call in order. Reads past the end yield
// Lua nil, which is how missing arguments look in Lua.
type Varargs []lua.LValue

func (a Varargs) At(i int) lua.LValue {
	if i < 0 || i >= len(a) {
		return lua.LNil
	}
	return a[i]
}

func (a Varargs) Len() int { return len(a) }

// CollectArgs gathers the stack from index from (1-based) to the top.
func CollectArgs(L *lua.LState, from int) Varargs {
	top := L.GetTop()
	if top < from {
		return nil
	}
	args := make(Varargs, 0, top-from+1)
	for i := from; i <= top; i++ {
		args = append(args, L.Get(i))
	}
	return args
}

// MethodArgs gathers the arguments of a bound method. The first argument is
// dropped when it is self, so obj:m(x) and obj.m(x) both work. Methods whose
// first parameter can take the receiver itself use MethodArgsN.
func MethodArgs(L *lua.LState, self Accessor) Varargs {
	if L.GetTop() >= 1 && IsSelf(L.Get(1), self) {
		return CollectArgs(L, 2)
	}
	return CollectArgs(L, 1)
}

// MethodArgsN gathers the arguments of a bound method with arity parameters.
// Self is only dropped when more than arity arguments were passed, so
// obj.m(obj) hands obj to the method. A colon call that omits trailing
// arguments reads as a dot call.
func MethodArgsN(L *lua.LState, self Accessor, arity int) Varargs {
	if L.GetTop() > arity && IsSelf(L.Get(1), self) {
		return CollectArgs(L, 2)
	}
	return CollectArgs(L, 1)
}

type hostRef struct {
	fn any
}

// WrapHost builds a Lua function that runs fn and remembers host, so
// UnwrapHost can hand the original host function back without a double
// wrap.
func WrapHost(L *lua.LState, host any, fn lua.LGFunction) *lua.LFunction {
	ud := L.NewUserData()
	ud.Value = hostRef{fn: host}
	return L.NewClosure(fn, ud)
}

// UnwrapHost returns the host function a WrapHost closure was built from.
func UnwrapHost(v lua.LValue) (any, bool) {
	lf, ok := v.(*lua.LFunction)
	if !ok || !lf.IsG || len(lf.Upvalues) == 0 || lf.Upvalues[0] == nil {
		return nil, false
	}
	ud, ok := lf.Upvalues[0].Value().(*lua.LUserData)
	if !ok {
		return nil, false
	}
	ref, ok := ud.Value.(hostRef)
	if !ok {
		return nil, false
	}
	return ref.fn, true
}

// TryCall calls fn in protected mode and returns its first result.
func TryCall(L *lua.LState, fn lua.LValue, args Varargs) (lua.LValue, error) {
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Call is TryCall that raises failures as Lua errors.
func Call(L *lua.LState, fn lua.LValue, args Varargs) lua.LValue {
	ret, err := TryCall(L, fn, args)
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	return ret
}

// SliceToTable builds a 1-indexed Lua list. conv receives a pointer into s so
// exposed elements alias the host slice.
func SliceToTable[E any](L *lua.LState, s []E, conv func(*E) lua.LValue) *lua.LTable {
	tbl := L.CreateTable(len(s), 0)
	for i := range s {
		tbl.RawSetInt(i+1, conv(&s[i]))
	}
	return tbl
}

// SeqToTable drains seq into a 1-indexed Lua list.
func SeqToTable[E any](L *lua.LState, seq iter.Seq[E], conv func(*E) lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	if seq == nil {
		return tbl
	}
	i := 1
	for e := range seq {
		tbl.RawSetInt(i, conv(&e))
		i++
	}
	return tbl
}
