package codegen

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
)

// Header is the first line of every generated adapter file.
const Header = "Code generated by luabind. DO NOT EDIT."

// Render prints the adapter as a gofmt-ed Go file in the root's access
// package.
func Render(ad *Adapter) (string, error) {
	root := ad.Root
	f := jen.NewFilePathName(root.AccessPkgPath, root.AccessPkgName)
	f.HeaderComment(Header)
	f.ImportAlias(luaPath, "lua")

	access := root.AccessName()
	self := func() *jen.Statement { return jen.Id("a").Op("*").Id(access) }
	lstate := func() *jen.Statement { return state().Op("*").Add(luaQual("LState")) }
	target := jen.Op("*").Add(typeCode(root.Target))

	var parent *jen.Statement
	if root.Parent != nil {
		parent = jen.Qual(root.Parent.AccessPkgPath, root.Parent.AccessName())
	}

	// Adapter type and constructor.
	fields := []jen.Code{jen.Id("Wrapped").Add(target.Clone())}
	if parent != nil {
		fields = append(fields, jen.Id("parent").Op("*").Add(parent.Clone()))
	}
	f.Commentf("%s exposes %s.%s to Lua.", access, root.Target.Obj().Pkg().Name(), root.Target.Obj().Name())
	f.Type().Id(access).Struct(fields...)

	ctor := []jen.Code{jen.Id("a").Op(":=").Op("&").Id(access).Values(jen.Dict{jen.Id("Wrapped"): jen.Id("wrapped")})}
	if parent != nil {
		ctor = append(ctor, jen.If(jen.Id("wrapped").Op("!=").Nil()).Block(
			jen.Id("a").Dot("parent").Op("=").Qual(root.Parent.AccessPkgPath, "New"+root.Parent.AccessName()).
				Call(jen.Op("&").Id("wrapped").Dot(root.ParentField)),
		))
	}
	ctor = append(ctor, jen.Return(jen.Id("a")))
	f.Func().Id("New" + access).Params(jen.Id("wrapped").Add(target.Clone())).Op("*").Id(access).Block(ctor...)

	f.Func().Params(jen.Op("*").Id(access)).Id("LuaType").Params().String().Block(jen.Return(jen.Lit(root.Name)))
	f.Func().Params(self()).Id("Unwrap").Params().Any().Block(jen.Return(wrapped()))

	if parent != nil {
		f.Func().Params(self()).Id("LuaParent").Params().Add(luartQual("Accessor")).Block(
			jen.If(jen.Id("a").Dot("parent").Op("==").Nil()).Block(jen.Return(jen.Nil())),
			jen.Return(jen.Id("a").Dot("parent")),
		)
	}

	// Get.
	var getCases []jen.Code
	for _, br := range ad.Getters {
		getCases = append(getCases, jen.Case(jen.Lit(br.Key)).Block(br.Body...))
	}
	for _, m := range ad.Methods {
		getCases = append(getCases, jen.Case(jen.Lit(m.Key)).Block(
			jen.Return(state().Dot("NewFunction").Call(jen.Id("a").Dot(m.Name)), jen.True()),
		))
	}
	var getBody []jen.Code
	if len(getCases) > 0 {
		getBody = append(getBody, jen.Switch(jen.Id("key")).Block(getCases...))
	}
	if parent != nil {
		getBody = append(getBody, jen.If(jen.Id("a").Dot("parent").Op("!=").Nil()).Block(
			jen.Return(jen.Id("a").Dot("parent").Dot("Get").Call(state(), jen.Id("key"))),
		))
	}
	getBody = append(getBody, jen.Return(jen.Nil(), jen.False()))
	f.Func().Params(self()).Id("Get").
		Params(lstate(), jen.Id("key").String()).
		Params(luaQual("LValue"), jen.Bool()).
		Block(getBody...)

	// Set.
	var setCases []jen.Code
	for _, br := range ad.Setters {
		setCases = append(setCases, jen.Case(jen.Lit(br.Key)).Block(br.Body...))
	}
	var setBody []jen.Code
	if len(setCases) > 0 {
		setBody = append(setBody, jen.Switch(jen.Id("key")).Block(setCases...))
	}
	if parent != nil {
		setBody = append(setBody, jen.If(jen.Id("a").Dot("parent").Op("!=").Nil()).Block(
			jen.Return(jen.Id("a").Dot("parent").Dot("Set").Call(state(), jen.Id("key"), jen.Id("value"))),
		))
	}
	setBody = append(setBody, jen.Return(jen.False()))
	f.Func().Params(self()).Id("Set").
		Params(lstate(), jen.Id("key").String(), jen.Id("value").Add(luaQual("LValue"))).
		Bool().
		Block(setBody...)

	for _, m := range ad.Methods {
		f.Commentf("%s calls %s.%s.", m.Name, root.Name, m.GoName)
		f.Func().Params(self()).Id(m.Name).Params(lstate()).Int().Block(m.Body...)
	}

	if ad.Factory {
		factory := root.FactoryName()
		f.Commentf("%s boxes v for Lua. A nil v becomes nil.", factory)
		f.Func().Id(factory).Params(lstate(), jen.Id("v").Add(target.Clone())).Add(luaQual("LValue")).Block(
			jen.If(jen.Id("v").Op("==").Nil()).Block(jen.Return(luaQual("LNil"))),
			jen.Return(luartQual("ToLua").Call(state(), jen.Id("New"+access).Call(jen.Id("v")))),
		)
	}

	for _, w := range ad.Wrappers {
		f.Add(w.Code)
	}

	f.Var().Id("_").Add(luartQual("Accessor")).Op("=").Parens(jen.Op("*").Id(access)).Call(jen.Nil())

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", errors.Wrapf(err, "rendering %s", access)
	}
	return buf.String(), nil
}

// FileName is the adapter file name for a root, e.g. person_access.go.
func FileName(stem string) string {
	return fmt.Sprintf("%s_access.go", stem)
}
