package codegen

import (
	"go/token"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/luabind/classify"
	"github.com/chazu/luabind/diag"
	"github.com/chazu/luabind/gowrap"
)

// Conv is the code of one conversion plus the function wrappers it asked
// for. The code assumes a *lua.LState named L is in scope.
type Conv struct {
	Code     *jen.Statement
	Wrappers []*FuncWrapper
}

// Emitter produces conversion expressions for one adapter. Wrappers
// requested along the way are deduplicated in its WrapperSet.
type Emitter struct {
	set *WrapperSet
}

// NewEmitter creates an emitter whose wrapper names start with prefix.
func NewEmitter(prefix string) *Emitter {
	return &Emitter{set: NewWrapperSet(prefix)}
}

// HostToScript converts the Go expression src into a lua.LValue.
// addressable reports whether &src is legal; exposed struct values are then
// adapted in place instead of copied.
func (e *Emitter) HostToScript(c classify.Classification, src jen.Code, addressable bool) (Conv, error) {
	v := &hostToScript{visit: visit{emitter: e, src: src}, addressable: addressable}
	code := classify.Visit[*jen.Statement](c, v)
	return Conv{Code: code, Wrappers: v.wrappers}, v.err
}

// ScriptToHost converts the lua.LValue expression src into the Go type of c.
func (e *Emitter) ScriptToHost(c classify.Classification, src jen.Code) (Conv, error) {
	v := &scriptToHost{visit: visit{emitter: e, src: src}}
	code := classify.Visit[*jen.Statement](c, v)
	return Conv{Code: code, Wrappers: v.wrappers}, v.err
}

// visit carries the state shared by both directions.
type visit struct {
	emitter  *Emitter
	src      jen.Code
	wrappers []*FuncWrapper
	err      error
}

func (v *visit) keep(conv Conv, err error) *jen.Statement {
	if err != nil && v.err == nil {
		v.err = err
	}
	v.wrappers = append(v.wrappers, conv.Wrappers...)
	if conv.Code == nil {
		return jen.Nil()
	}
	return conv.Code
}

func luaQual(name string) *jen.Statement   { return jen.Qual(luaPath, name) }
func luartQual(name string) *jen.Statement { return jen.Qual(luartPath, name) }
func state() *jen.Statement                { return jen.Id("L") }

type hostToScript struct {
	visit
	addressable bool
}

func (v *hostToScript) Primitive(p classify.Primitive) *jen.Statement {
	switch p.Kind {
	case classify.String:
		return luaQual("LString").Call(v.src)
	case classify.Bool:
		return luaQual("LBool").Call(v.src)
	default:
		return luaQual("LNumber").Call(v.src)
	}
}

func (v *hostToScript) Nullable(n classify.Nullable) *jen.Statement {
	inner := typeCode(n.Inner.Type())
	if n.Ref {
		body := v.keep(v.emitter.HostToScript(n.Inner, jen.Id("v"), false))
		return luartQual("RefToLua").Call(v.src,
			jen.Func().Params(jen.Id("v").Op("*").Add(inner)).Add(luaQual("LValue")).Block(jen.Return(body)))
	}
	body := v.keep(v.emitter.HostToScript(n.Inner, jen.Id("v"), true))
	return luartQual("OptToLua").Call(v.src,
		jen.Func().Params(jen.Id("v").Add(inner)).Add(luaQual("LValue")).Block(jen.Return(body)))
}

func (v *hostToScript) Function(f classify.Function) *jen.Statement {
	w := v.emitter.set.Request(HostToLua, f)
	v.wrappers = append(v.wrappers, w)
	return jen.Id(w.Name).Call(state(), v.src)
}

func (v *hostToScript) Iterable(it classify.Iterable) *jen.Statement {
	elem := it.Elem
	var body *jen.Statement
	if ex, ok := elem.(classify.Exposed); ok && !ex.Pointer {
		ex.Pointer = true
		body = v.keep(v.emitter.HostToScript(ex, jen.Id("e"), false))
	} else {
		body = v.keep(v.emitter.HostToScript(elem, jen.Op("*").Id("e"), true))
	}
	fn := "SliceToTable"
	if it.Seq {
		fn = "SeqToTable"
	}
	return luartQual(fn).Call(state(), v.src,
		jen.Func().Params(jen.Id("e").Op("*").Add(typeCode(elem.Type()))).Add(luaQual("LValue")).Block(jen.Return(body)))
}

func (v *hostToScript) CustomMapped(m classify.CustomMapped) *jen.Statement {
	return mapperCode(m).Dot("ToLua").Call(state(), v.src)
}

func (v *hostToScript) Exposed(ex classify.Exposed) *jen.Statement {
	root := ex.Root
	if root.SelfConverting {
		if ex.Pointer || v.addressable {
			return jen.Add(v.src).Dot("ToLua").Call(state())
		}
		return luartQual("Ptr").Call(v.src).Dot("ToLua").Call(state())
	}
	var ptr jen.Code
	switch {
	case ex.Pointer:
		ptr = v.src
	case v.addressable:
		ptr = jen.Op("&").Add(v.src)
	default:
		ptr = luartQual("Ptr").Call(v.src)
	}
	return jen.Qual(root.AccessPkgPath, root.FactoryName()).Call(state(), ptr)
}

func (v *hostToScript) Native(n classify.Native) *jen.Statement {
	if n.Kind == classify.RawValue {
		return luartQual("Raw").Call(v.src)
	}
	return jen.Add(v.src)
}

type scriptToHost struct {
	visit
}

var checkFuncs = map[classify.PrimitiveKind]string{
	classify.String:  "CheckString",
	classify.Bool:    "CheckBool",
	classify.Int:     "CheckInt",
	classify.Int32:   "CheckInt32",
	classify.Int64:   "CheckInt64",
	classify.Float32: "CheckFloat32",
	classify.Float64: "CheckFloat64",
}

func (v *scriptToHost) Primitive(p classify.Primitive) *jen.Statement {
	code := luartQual(checkFuncs[p.Kind]).Call(state(), v.src)
	if p.Named() {
		return typeCode(p.T).Call(code)
	}
	return code
}

func (v *scriptToHost) Nullable(n classify.Nullable) *jen.Statement {
	body := v.keep(v.emitter.ScriptToHost(n.Inner, jen.Id("v")))
	param := jen.Id("v").Add(luaQual("LValue"))
	inner := typeCode(n.Inner.Type())
	if n.Ref {
		return luartQual("RefFromLua").Call(v.src,
			jen.Func().Params(param).Op("*").Add(inner).Block(jen.Return(body)))
	}
	return luartQual("OptFromLua").Call(v.src,
		jen.Func().Params(param).Add(inner).Block(jen.Return(body)))
}

func (v *scriptToHost) Function(f classify.Function) *jen.Statement {
	w := v.emitter.set.Request(LuaToHost, f)
	v.wrappers = append(v.wrappers, w)
	return jen.Id(w.Name).Call(state(), v.src)
}

func (v *scriptToHost) Iterable(it classify.Iterable) *jen.Statement {
	if v.err == nil {
		v.err = diag.Newf(diag.ErrUnimplemented, token.Position{}, "%s cannot be converted from Lua", typeString(it.T))
	}
	return jen.Nil()
}

func (v *scriptToHost) CustomMapped(m classify.CustomMapped) *jen.Statement {
	return mapperCode(m).Dot("FromLua").Call(state(), luartQual("CheckNotNil").Call(state(), v.src))
}

func (v *scriptToHost) Exposed(ex classify.Exposed) *jen.Statement {
	root := ex.Root
	if root.SelfConverting {
		// ToLua picks the representation; only a wrapped *T converts back.
		host := luartQual("CheckUnwrap").
			Types(jen.Op("*").Add(typeCode(root.Target))).
			Call(state(), v.src, jen.Lit(root.Name))
		if ex.Pointer {
			return host
		}
		return jen.Op("*").Add(host)
	}
	acc := luartQual("CheckAccessor").
		Types(jen.Op("*").Qual(root.AccessPkgPath, root.AccessName())).
		Call(state(), v.src).Dot("Wrapped")
	if ex.Pointer {
		return acc
	}
	return jen.Op("*").Add(acc)
}

func (v *scriptToHost) Native(n classify.Native) *jen.Statement {
	switch n.Kind {
	case classify.Table:
		return luartQual("CheckTable").Call(state(), v.src)
	case classify.LuaFunction:
		return luartQual("CheckFunction").Call(state(), v.src)
	}
	return jen.Add(v.src)
}

func mapperCode(m classify.CustomMapped) *jen.Statement {
	ref := m.Mapper
	if ref.Kind == gowrap.MapperClass {
		return jen.Parens(jen.Op("&").Qual(ref.PkgPath, ref.Name).Values())
	}
	return jen.Qual(ref.PkgPath, ref.Name)
}
