package typing

import (
	"cmp"
	"slices"
	"strings"
	"text/template"

	"github.com/chazu/luabind/classify"
)

var tsFile = template.Must(template.New("ts").Funcs(template.FuncMap{
	"doc": tsDoc,
}).Parse(`// Generated with luabind
{{doc .Doc ""}}
{{- range .Imports}}
import {{"{"}}{{.Name}}{{"}"}} from "{{.From}}";
{{- end}}

/** @noSelf **/
export interface {{.Name}}{{with .Parent}} extends {{.}}{{end}} {
{{- range .Members}}
{{doc .Doc "    "}}
    {{.Decl}};
{{- end}}
}
export type {{.Name}}Type = {{.Name}};
`))

type tsImport struct {
	Name string
	From string
}

type tsMember struct {
	Doc  string
	Decl string
}

// TypeScript renders the declaration file for m. All numbers are number;
// methods are declared on a @noSelf interface so TypeScriptToLua calls them
// with a dot.
func TypeScript(m *Model) (string, error) {
	data := struct {
		Name    string
		Doc     string
		Parent  string
		Imports []tsImport
		Members []tsMember
	}{Name: m.Root.Name, Doc: m.Root.Doc}

	imports := make(map[string]string)
	if p := m.Root.Parent; p != nil {
		data.Parent = p.Name
		imports[p.Name] = "./" + p.Name
	}

	for _, e := range m.Entries {
		var decl string
		if e.Func != nil {
			decl = e.Name + tsSignature(*e.Func, ":")
			collectImports(imports, *e.Func)
		} else {
			ro := ""
			if !e.Mutable {
				ro = "readonly "
			}
			decl = ro + e.Name + ": " + classify.Visit[string](e.Type, tsNamer{})
			classify.Visit[struct{}](e.Type, tsImporter(imports))
		}
		data.Members = append(data.Members, tsMember{Doc: e.Doc, Decl: decl})
	}

	delete(imports, m.Root.Name)
	for name, from := range imports {
		data.Imports = append(data.Imports, tsImport{Name: name, From: from})
	}
	slices.SortFunc(data.Imports, func(a, b tsImport) int { return cmp.Compare(a.Name, b.Name) })

	var sb strings.Builder
	if err := tsFile.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func tsDoc(doc, indent string) string {
	var sb strings.Builder
	sb.WriteString(indent + "/**\n")
	for _, l := range docLines(doc) {
		sb.WriteString(indent + " * " + l + "\n")
	}
	sb.WriteString(indent + " */")
	return sb.String()
}

type tsNamer struct{}

func (tsNamer) Primitive(p classify.Primitive) string {
	switch p.Kind {
	case classify.String:
		return "string"
	case classify.Bool:
		return "boolean"
	}
	return "number"
}

func (n tsNamer) Nullable(x classify.Nullable) string {
	return tsGroup(classify.Visit[string](x.Inner, n)) + " | undefined"
}

func (tsNamer) Function(f classify.Function) string { return tsSignature(f, " =>") }

func (n tsNamer) Iterable(it classify.Iterable) string {
	return tsGroup(classify.Visit[string](it.Elem, n)) + "[]"
}

func (tsNamer) CustomMapped(m classify.CustomMapped) string { return mappedName(m.T) }

func (tsNamer) Exposed(e classify.Exposed) string { return e.Root.Name }

func (tsNamer) Native(n classify.Native) string {
	switch n.Kind {
	case classify.Table:
		return "Record<string, any>"
	case classify.LuaFunction:
		return "(...args: any[]) => any"
	}
	return "any"
}

// tsSignature renders (a: T) R with sep between the parameters and the
// result: ":" for methods, " =>" for function types. A bound receiver
// becomes the this parameter.
func tsSignature(f classify.Function, sep string) string {
	var params []string
	if f.Receiver != nil {
		params = append(params, "this: "+classify.Visit[string](f.Receiver.C, tsNamer{}))
	}
	for _, p := range f.Params {
		params = append(params, p.Name+": "+classify.Visit[string](p.C, tsNamer{}))
	}

	ret := "void"
	switch len(f.Results) {
	case 0:
	case 1:
		ret = classify.Visit[string](f.Results[0], tsNamer{})
	default:
		var rs []string
		for _, r := range f.Results {
			rs = append(rs, classify.Visit[string](r, tsNamer{}))
		}
		ret = "LuaMultiReturn<[" + strings.Join(rs, ", ") + "]>"
	}
	return "(" + strings.Join(params, ", ") + ")" + sep + " " + ret
}

// tsGroup parenthesizes unions and function types, the only forms that bind
// looser than [] and | undefined.
func tsGroup(s string) string {
	if strings.Contains(s, " | ") || strings.Contains(s, "=>") {
		return "(" + s + ")"
	}
	return s
}

// tsImporter records the exposed and mapped types a classification refers
// to, keyed by name.
type tsImporter map[string]string

func (tsImporter) Primitive(classify.Primitive) struct{} { return struct{}{} }

func (im tsImporter) Nullable(x classify.Nullable) struct{} {
	return classify.Visit[struct{}](x.Inner, im)
}

func (im tsImporter) Function(f classify.Function) struct{} {
	collectImports(im, f)
	return struct{}{}
}

func (im tsImporter) Iterable(it classify.Iterable) struct{} {
	return classify.Visit[struct{}](it.Elem, im)
}

func (im tsImporter) CustomMapped(m classify.CustomMapped) struct{} {
	name := mappedName(m.T)
	from := "./" + name
	if m.Mapper.Import != "" {
		from = m.Mapper.Import
	}
	im[name] = from
	return struct{}{}
}

func (im tsImporter) Exposed(e classify.Exposed) struct{} {
	im[e.Root.Name] = "./" + e.Root.Name
	return struct{}{}
}

func (tsImporter) Native(classify.Native) struct{} { return struct{}{} }

func collectImports(im map[string]string, f classify.Function) {
	for _, p := range f.AllParams() {
		classify.Visit[struct{}](p.C, tsImporter(im))
	}
	for _, r := range f.Results {
		classify.Visit[struct{}](r, tsImporter(im))
	}
}
