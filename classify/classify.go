// Package classify maps Go types onto the closed set of shapes luabind knows
// how to convert.
package classify

import (
	"fmt"
	"go/token"
	"go/types"

	"github.com/cockroachdb/errors"

	"github.com/chazu/luabind/diag"
	"github.com/chazu/luabind/gowrap"
)

// Classification is the result of classifying a type. The implementations
// are exactly the arms of Visitor.
type Classification interface {
	// Type is the classified Go type.
	Type() types.Type
	classification()
}

type PrimitiveKind int

const (
	String PrimitiveKind = iota
	Bool
	Int
	Int32
	Int64
	Float32
	Float64
)

func (k PrimitiveKind) String() string {
	return [...]string{"string", "bool", "int", "int32", "int64", "float32", "float64"}[k]
}

// Numeric reports whether the kind is a number on the Lua side.
func (k PrimitiveKind) Numeric() bool { return k != String && k != Bool }

// Integral reports whether the kind is an integer.
func (k PrimitiveKind) Integral() bool { return k == Int || k == Int32 || k == Int64 }

// Primitive is a builtin scalar, or a named type defined over one.
type Primitive struct {
	Kind PrimitiveKind
	T    types.Type
}

// Named reports whether the primitive is a defined type such as
// `type Level int`, which needs an explicit conversion.
func (p Primitive) Named() bool {
	_, ok := types.Unalias(p.T).(*types.Named)
	return ok
}

// Nullable is a pointer. Ref is set when the inner conversion consumes the
// pointer itself rather than the pointee.
type Nullable struct {
	Inner Classification
	Ref   bool
	T     types.Type
}

// Param is a classified function parameter.
type Param struct {
	Name string
	C    Classification
}

// Function is a func type, or a method signature.
type Function struct {
	Receiver   *Param
	Params     []Param
	Results    []Classification
	ReturnsErr bool
	T          types.Type
}

// Arity counts the script-visible arguments, receiver included.
func (f Function) Arity() int {
	n := len(f.Params)
	if f.Receiver != nil {
		n++
	}
	return n
}

// AllParams returns the receiver (if any) followed by the params.
func (f Function) AllParams() []Param {
	if f.Receiver == nil {
		return f.Params
	}
	return append([]Param{*f.Receiver}, f.Params...)
}

// Iterable is a slice or an iter.Seq.
type Iterable struct {
	Elem Classification
	Seq  bool
	T    types.Type
}

// CustomMapped defers conversion to a user mapper.
type CustomMapped struct {
	Mapper *gowrap.MapperRef
	T      types.Type
}

// Exposed is a type with its own generated adapter. Pointer is set when the
// conversion works on *T rather than T.
type Exposed struct {
	Root    *gowrap.Root
	Pointer bool
	T       types.Type
}

type NativeKind int

const (
	RawValue NativeKind = iota
	Table
	LuaFunction
)

// Native is a gopher-lua value passed through unconverted.
type Native struct {
	Kind NativeKind
	T    types.Type
}

func (c Primitive) Type() types.Type    { return c.T }
func (c Nullable) Type() types.Type     { return c.T }
func (c Function) Type() types.Type     { return c.T }
func (c Iterable) Type() types.Type     { return c.T }
func (c CustomMapped) Type() types.Type { return c.T }
func (c Exposed) Type() types.Type      { return c.T }
func (c Native) Type() types.Type       { return c.T }

func (Primitive) classification()    {}
func (Nullable) classification()     {}
func (Function) classification()     {}
func (Iterable) classification()     {}
func (CustomMapped) classification() {}
func (Exposed) classification()      {}
func (Native) classification()       {}

// Visitor handles every classification arm. Adding an arm breaks every
// visitor at compile time.
type Visitor[R any] interface {
	Primitive(Primitive) R
	Nullable(Nullable) R
	Function(Function) R
	Iterable(Iterable) R
	CustomMapped(CustomMapped) R
	Exposed(Exposed) R
	Native(Native) R
}

// Visit dispatches c to the matching arm of v.
func Visit[R any](c Classification, v Visitor[R]) R {
	switch c := c.(type) {
	case Primitive:
		return v.Primitive(c)
	case Nullable:
		return v.Nullable(c)
	case Function:
		return v.Function(c)
	case Iterable:
		return v.Iterable(c)
	case CustomMapped:
		return v.CustomMapped(c)
	case Exposed:
		return v.Exposed(c)
	case Native:
		return v.Native(c)
	}
	panic(fmt.Sprintf("classify: unknown classification %T", c))
}

// Site locates the member being classified, for error messages.
type Site struct {
	Root   string
	Member string
	Pos    token.Position
	// Mapper is a use-site mapper; it only applies to the outermost type.
	Mapper *gowrap.MapperRef
}

func (s Site) String() string {
	return s.Root + "." + s.Member
}

// Classifier classifies types against one Universe.
type Classifier struct {
	u *gowrap.Universe
}

func New(u *gowrap.Universe) *Classifier {
	return &Classifier{u: u}
}

// Classify classifies the type of a property.
func (c *Classifier) Classify(site Site, t types.Type) (Classification, error) {
	return c.classify(site, t, site.Mapper, false)
}

// Signature classifies a method signature. Unlike func-typed values, a
// method may return several values.
func (c *Classifier) Signature(site Site, sig *types.Signature) (Function, error) {
	return c.function(site, sig, sig, true)
}

var primitives = map[types.BasicKind]PrimitiveKind{
	types.String:  String,
	types.Bool:    Bool,
	types.Int:     Int,
	types.Int32:   Int32,
	types.Int64:   Int64,
	types.Float32: Float32,
	types.Float64: Float64,
}

func (c *Classifier) classify(site Site, t types.Type, mapper *gowrap.MapperRef, underPointer bool) (Classification, error) {
	t = types.Unalias(t)

	if mapper != nil {
		return CustomMapped{Mapper: mapper, T: t}, nil
	}
	if m := c.u.MapperFor(t); m != nil {
		return CustomMapped{Mapper: m, T: t}, nil
	}

	if b, ok := t.Underlying().(*types.Basic); ok {
		if k, ok := primitives[b.Kind()]; ok {
			return Primitive{Kind: k, T: t}, nil
		}
	}

	if p, ok := t.(*types.Pointer); ok {
		inner, err := c.classify(site, p.Elem(), nil, true)
		if err != nil {
			return nil, err
		}
		ref := false
		switch in := inner.(type) {
		case Exposed:
			in.Pointer = true
			inner, ref = in, true
		case Native:
			ref = in.Kind != RawValue
		}
		return Nullable{Inner: inner, Ref: ref, T: t}, nil
	}

	if elem, isSeq, err := iterableElem(site, t); err != nil {
		return nil, err
	} else if elem != nil {
		ec, err := c.classify(site, elem, nil, false)
		if err != nil {
			if errors.Is(err, diag.ErrUnsupportedType) {
				return nil, diag.Configf(site.Pos, "%s: element type %s of %s cannot be converted",
					site, typeString(elem), typeString(t))
			}
			return nil, err
		}
		return Iterable{Elem: ec, Seq: isSeq, T: t}, nil
	}

	// iter.Seq is itself a func type, so functions are matched after it.
	if sig, ok := t.Underlying().(*types.Signature); ok {
		return c.function(site, t, sig, false)
	}

	if root := c.u.RootFor(t); root != nil {
		return Exposed{Root: root, T: t}, nil
	}

	switch {
	case gowrap.IsLuaType(t, "LValue"):
		return Native{Kind: RawValue, T: t}, nil
	case gowrap.IsLuaType(t, "LTable") && underPointer:
		return Native{Kind: Table, T: t}, nil
	case gowrap.IsLuaType(t, "LFunction") && underPointer:
		return Native{Kind: LuaFunction, T: t}, nil
	}

	return nil, errors.WithHint(
		diag.Newf(diag.ErrUnsupportedType, site.Pos, "%s has type %s", site, typeString(t)),
		"annotate the field with //luabind:mapper, or expose the type")
}

// iterableElem returns the element type of a slice or iter.Seq.
func iterableElem(site Site, t types.Type) (types.Type, bool, error) {
	if named, ok := t.(*types.Named); ok && named.Obj().Pkg() != nil && named.Obj().Pkg().Path() == "iter" {
		switch named.Obj().Name() {
		case "Seq":
			return named.TypeArgs().At(0), true, nil
		default:
			return nil, false, diag.Configf(site.Pos, "%s: %s has %d type arguments; iterables take exactly one",
				site, typeString(t), named.TypeArgs().Len())
		}
	}
	if s, ok := t.Underlying().(*types.Slice); ok {
		return s.Elem(), false, nil
	}
	return nil, false, nil
}

func (c *Classifier) function(site Site, t types.Type, sig *types.Signature, method bool) (Function, error) {
	fn := Function{T: t}
	if sig.Variadic() {
		return fn, diag.Newf(diag.ErrUnimplemented, site.Pos, "%s: variadic functions are not supported", site)
	}

	params := sig.Params()
	start := 0
	if !method && params.Len() > 0 {
		if name := params.At(0).Name(); name == "self" || name == "this" {
			pc, err := c.classify(site, params.At(0).Type(), nil, false)
			if err != nil {
				return fn, err
			}
			fn.Receiver = &Param{Name: name, C: pc}
			start = 1
		}
	}
	for i := start; i < params.Len(); i++ {
		p := params.At(i)
		pc, err := c.classify(site, p.Type(), nil, false)
		if err != nil {
			return fn, err
		}
		name := p.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		fn.Params = append(fn.Params, Param{Name: name, C: pc})
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && gowrap.IsErrorType(results.At(n-1).Type()) {
		fn.ReturnsErr = true
		n--
	}
	if n > 1 && !method {
		return fn, diag.Newf(diag.ErrUnimplemented, site.Pos,
			"%s: function values may return at most one value besides error", site)
	}
	for i := range n {
		rc, err := c.classify(site, results.At(i).Type(), nil, false)
		if err != nil {
			return fn, err
		}
		fn.Results = append(fn.Results, rc)
	}
	return fn, nil
}

func typeString(t types.Type) string {
	return types.TypeString(t, func(p *types.Package) string { return p.Name() })
}
