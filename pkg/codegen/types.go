package codegen

import (
	"go/types"

	"github.com/dave/jennifer/jen"
)

const (
	luaPath   = "github.com/yuin/gopher-lua"
	luartPath = "github.com/chazu/luabind/lib/luart"
)

// typeCode renders a go/types type as jennifer code, qualifying named types
// by import path so the file imports what it uses.
func typeCode(t types.Type) *jen.Statement {
	switch t := t.(type) {
	case *types.Alias:
		return qualified(t.Obj(), t.TypeArgs())
	case *types.Named:
		return qualified(t.Obj(), t.TypeArgs())
	case *types.Basic:
		return jen.Id(t.Name())
	case *types.Pointer:
		return jen.Op("*").Add(typeCode(t.Elem()))
	case *types.Slice:
		return jen.Index().Add(typeCode(t.Elem()))
	case *types.Array:
		return jen.Index(jen.Lit(int(t.Len()))).Add(typeCode(t.Elem()))
	case *types.Map:
		return jen.Map(typeCode(t.Key())).Add(typeCode(t.Elem()))
	case *types.Signature:
		return jen.Func().Add(signatureCode(t))
	case *types.Interface:
		if t.Empty() {
			return jen.Any()
		}
	}
	return jen.Id(typeString(t))
}

func typeString(t types.Type) string {
	return types.TypeString(t, func(p *types.Package) string { return p.Name() })
}

func qualified(obj *types.TypeName, args *types.TypeList) *jen.Statement {
	var s *jen.Statement
	if obj.Pkg() == nil {
		s = jen.Id(obj.Name())
	} else {
		s = jen.Qual(obj.Pkg().Path(), obj.Name())
	}
	if args.Len() > 0 {
		var codes []jen.Code
		for t := range args.Types() {
			codes = append(codes, typeCode(t))
		}
		s = s.Types(codes...)
	}
	return s
}

// signatureCode renders the parameter and result lists of sig.
func signatureCode(sig *types.Signature) *jen.Statement {
	var params []jen.Code
	for i := range sig.Params().Len() {
		p := sig.Params().At(i)
		if sig.Variadic() && i == sig.Params().Len()-1 {
			params = append(params, jen.Op("...").Add(typeCode(p.Type().(*types.Slice).Elem())))
			continue
		}
		params = append(params, typeCode(p.Type()))
	}
	s := jen.Params(params...)

	var results []jen.Code
	for i := range sig.Results().Len() {
		results = append(results, typeCode(sig.Results().At(i).Type()))
	}
	switch len(results) {
	case 0:
	case 1:
		s.Add(results[0])
	default:
		s.Parens(jen.List(results...))
	}
	return s
}
