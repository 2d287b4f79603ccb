package codegen

import (
	"fmt"
	"go/token"
	"go/types"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/luabind/classify"
	"github.com/chazu/luabind/diag"
)

// inlineArity is the largest arity whose arguments are read straight off the
// Lua stack. Wider functions collect their arguments into luart.Varargs.
const inlineArity = 3

// WrapperDir is the direction a function value crosses.
type WrapperDir int

const (
	// HostToLua turns a Go func into a Lua function.
	HostToLua WrapperDir = iota
	// LuaToHost turns a Lua function into a Go func.
	LuaToHost
)

func (d WrapperDir) String() string {
	if d == LuaToHost {
		return "LuaFunc"
	}
	return "HostFunc"
}

// FuncWrapper is a generated package-level function converting one func type
// in one direction.
type FuncWrapper struct {
	Name string
	Dir  WrapperDir
	Key  string
	Fn   classify.Function

	// Code is the rendered declaration, filled by Emitter.Wrappers.
	Code *jen.Statement
}

// WrapperSet deduplicates wrappers by direction and full signature.
type WrapperSet struct {
	prefix string
	byKey  map[string]*FuncWrapper
	order  []*FuncWrapper
	counts [2]int
}

func NewWrapperSet(prefix string) *WrapperSet {
	return &WrapperSet{prefix: prefix, byKey: make(map[string]*FuncWrapper)}
}

// Request returns the wrapper for fn in direction dir, creating it on first
// use. Two func types share a wrapper only if their signatures are identical.
func (s *WrapperSet) Request(dir WrapperDir, fn classify.Function) *FuncWrapper {
	key := dir.String() + " " + types.TypeString(fn.T, nil)
	if w, ok := s.byKey[key]; ok {
		return w
	}
	s.counts[dir]++
	w := &FuncWrapper{
		Name: fmt.Sprintf("%s%s%d", s.prefix, dir, s.counts[dir]),
		Dir:  dir,
		Key:  key,
		Fn:   fn,
	}
	s.byKey[key] = w
	s.order = append(s.order, w)
	return w
}

// Wrappers builds every requested wrapper, including the ones requested while
// building others, in request order.
func (e *Emitter) Wrappers() ([]*FuncWrapper, error) {
	for i := 0; i < len(e.set.order); i++ {
		w := e.set.order[i]
		if w.Code != nil {
			continue
		}
		var err error
		if w.Dir == HostToLua {
			w.Code, err = e.buildHostToLua(w)
		} else {
			w.Code, err = e.buildLuaToHost(w)
		}
		if err != nil {
			return nil, err
		}
	}
	return e.set.order, nil
}

// buildHostToLua renders
//
//	func name(L *lua.LState, fn F) lua.LValue
//
// returning a Lua function that converts its arguments, calls fn and pushes
// the results.
func (e *Emitter) buildHostToLua(w *FuncWrapper) (*jen.Statement, error) {
	fn := w.Fn
	params := fn.AllParams()

	var body []jen.Code
	if len(params) > inlineArity {
		body = append(body, jen.Id("args").Op(":=").Add(luartQual("CollectArgs")).Call(state(), jen.Lit(1)))
	}
	var callArgs []jen.Code
	for i, p := range params {
		var src jen.Code
		if len(params) > inlineArity {
			src = jen.Id("args").Dot("At").Call(jen.Lit(i))
		} else {
			src = state().Dot("Get").Call(jen.Lit(i + 1))
		}
		conv, err := e.ScriptToHost(p.C, src)
		if err != nil {
			return nil, err
		}
		arg := fmt.Sprintf("a%d", i)
		body = append(body, jen.Id(arg).Op(":=").Add(conv.Code))
		callArgs = append(callArgs, jen.Id(arg))
	}
	push, err := e.callAndPush(jen.Id("fn").Call(callArgs...), fn)
	if err != nil {
		return nil, err
	}
	body = append(body, push...)

	return jen.Comment(fmt.Sprintf("%s exposes a %s to Lua.", w.Name, typeString(fn.T))).Line().
		Func().Id(w.Name).Params(
		state().Op("*").Add(luaQual("LState")),
		jen.Id("fn").Add(typeCode(fn.T)),
	).Add(luaQual("LValue")).Block(
		jen.If(jen.Id("fn").Op("==").Nil()).Block(jen.Return(luaQual("LNil"))),
		jen.Return(luartQual("WrapHost").Call(state(), jen.Id("fn"),
			jen.Func().Params(state().Op("*").Add(luaQual("LState"))).Int().Block(body...))),
	), nil
}

// callAndPush calls a Go function, raises a returned error and pushes the
// remaining results.
func (e *Emitter) callAndPush(call *jen.Statement, fn classify.Function) ([]jen.Code, error) {
	var stmts []jen.Code
	n := len(fn.Results)
	if n == 0 && !fn.ReturnsErr {
		return append(stmts, call, jen.Return(jen.Lit(0))), nil
	}
	var lhs []jen.Code
	for i := range n {
		lhs = append(lhs, jen.Id(fmt.Sprintf("r%d", i)))
	}
	if fn.ReturnsErr {
		lhs = append(lhs, jen.Err())
	}
	stmts = append(stmts,
		jen.List(lhs...).Op(":=").Add(call))
	if fn.ReturnsErr {
		stmts = append(stmts, jen.If(jen.Err().Op("!=").Nil()).Block(
			state().Dot("RaiseError").Call(jen.Lit("%s"), jen.Err().Dot("Error").Call()),
			jen.Return(jen.Lit(0)),
		))
	}
	for i, r := range fn.Results {
		conv, err := e.HostToScript(r, jen.Id(fmt.Sprintf("r%d", i)), true)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, state().Dot("Push").Call(conv.Code))
	}
	return append(stmts, jen.Return(jen.Lit(n))), nil
}

// buildLuaToHost renders
//
//	func name(L *lua.LState, v lua.LValue) F
//
// returning a Go func that calls the Lua function v. A Lua function built by
// a HostToLua wrapper is unwrapped to the original Go func.
func (e *Emitter) buildLuaToHost(w *FuncWrapper) (*jen.Statement, error) {
	fn := w.Fn
	if len(fn.Results) > 1 {
		return nil, diag.Newf(diag.ErrUnimplemented, token.Position{},
			"%s: Lua functions return a single value", typeString(fn.T))
	}

	var params, packed []jen.Code
	for i, p := range fn.AllParams() {
		arg := fmt.Sprintf("a%d", i)
		params = append(params, jen.Id(arg).Add(typeCode(p.C.Type())))
		conv, err := e.HostToScript(p.C, jen.Id(arg), true)
		if err != nil {
			return nil, err
		}
		packed = append(packed, conv.Code)
	}
	args := luartQual("Varargs").Values(packed...)

	var results jen.Code
	var body []jen.Code
	switch {
	case len(fn.Results) == 0 && !fn.ReturnsErr:
		body = append(body, luartQual("Call").Call(state(), jen.Id("lf"), args))

	case len(fn.Results) == 0:
		results = jen.Error()
		body = append(body,
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(luartQual("TryCall")).Call(state(), jen.Id("lf"), args),
			jen.Return(jen.Err()))

	case !fn.ReturnsErr:
		conv, err := e.ScriptToHost(fn.Results[0], jen.Id("ret"))
		if err != nil {
			return nil, err
		}
		results = typeCode(fn.Results[0].Type())
		body = append(body,
			jen.Id("ret").Op(":=").Add(luartQual("Call")).Call(state(), jen.Id("lf"), args),
			jen.Return(conv.Code))

	default:
		conv, err := e.ScriptToHost(fn.Results[0], jen.Id("ret"))
		if err != nil {
			return nil, err
		}
		results = jen.Parens(jen.List(jen.Id("r0").Add(typeCode(fn.Results[0].Type())), jen.Err().Error()))
		body = append(body,
			jen.List(jen.Id("ret"), jen.Err()).Op(":=").Add(luartQual("TryCall")).Call(state(), jen.Id("lf"), args),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Id("r0"), jen.Err())),
			jen.Return(conv.Code, jen.Nil()))
	}

	closure := jen.Func().Params(params...)
	if results != nil {
		closure.Add(results)
	}
	closure.Block(body...)

	ft := typeCode(fn.T)
	return jen.Comment(fmt.Sprintf("%s adapts a Lua function to a %s.", w.Name, typeString(fn.T))).Line().
		Func().Id(w.Name).Params(
		state().Op("*").Add(luaQual("LState")),
		jen.Id("v").Add(luaQual("LValue")),
	).Add(ft).Block(
		jen.If(jen.Id("v").Op("==").Add(luaQual("LNil"))).Block(jen.Return(jen.Nil())),
		jen.If(
			jen.List(jen.Id("host"), jen.Id("ok")).Op(":=").Add(luartQual("UnwrapHost")).Call(jen.Id("v")),
			jen.Id("ok"),
		).Block(
			jen.If(
				jen.List(jen.Id("fn"), jen.Id("ok")).Op(":=").Id("host").Assert(typeCode(fn.T)),
				jen.Id("ok"),
			).Block(jen.Return(jen.Id("fn"))),
		),
		jen.Id("lf").Op(":=").Add(luartQual("CheckFunction")).Call(state(), jen.Id("v")),
		jen.Return(closure),
	), nil
}
