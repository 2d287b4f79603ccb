package typing

import (
	"strings"
	"text/template"

	"github.com/chazu/luabind/classify"
)

var luaFile = template.Must(template.New("lua").Funcs(template.FuncMap{
	"doc": luaDoc,
}).Parse(`--- Generated with luabind
{{doc .Doc}}
--- @class {{.Name}}{{with .Parent}}: {{.}}{{end}}
{{- range .Fields}}
{{doc .Doc}}
--- {{if .Mutable}}mutable{{else}}immutable{{end}}
--- @field {{.Name}} {{.Type}}
{{- end}}
`))

type luaField struct {
	Name    string
	Doc     string
	Mutable bool
	Type    string
}

// Lua renders the LuaLS annotation file for m. Integers and floats stay
// distinct (integer, number).
func Lua(m *Model) (string, error) {
	data := struct {
		Name   string
		Doc    string
		Parent string
		Fields []luaField
	}{Name: m.Root.Name, Doc: m.Root.Doc}
	if m.Root.Parent != nil {
		data.Parent = m.Root.Parent.Name
	}

	for _, e := range m.Entries {
		f := luaField{Name: e.Name, Doc: e.Doc, Mutable: e.Mutable}
		if e.Func != nil {
			f.Type = luaFunc(*e.Func, "self: "+m.Root.Name)
		} else {
			f.Type = classify.Visit[string](e.Type, luaNamer{})
		}
		data.Fields = append(data.Fields, f)
	}

	var sb strings.Builder
	if err := luaFile.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func luaDoc(doc string) string {
	return "--- " + strings.Join(docLines(doc), "\n--- ")
}

type luaNamer struct{}

func (luaNamer) Primitive(p classify.Primitive) string {
	switch {
	case p.Kind == classify.String:
		return "string"
	case p.Kind == classify.Bool:
		return "boolean"
	case p.Kind.Integral():
		return "integer"
	}
	return "number"
}

func (n luaNamer) Nullable(x classify.Nullable) string {
	return luaGroup(classify.Visit[string](x.Inner, n)) + "?"
}

func (luaNamer) Function(f classify.Function) string { return luaFunc(f, "") }

func (n luaNamer) Iterable(it classify.Iterable) string {
	return luaGroup(classify.Visit[string](it.Elem, n)) + "[]"
}

func (luaNamer) CustomMapped(m classify.CustomMapped) string { return mappedName(m.T) }

func (luaNamer) Exposed(e classify.Exposed) string { return e.Root.Name }

func (luaNamer) Native(n classify.Native) string {
	switch n.Kind {
	case classify.Table:
		return "table"
	case classify.LuaFunction:
		return "function"
	}
	return "any"
}

// luaFunc renders fun(a: T): R. self, when set, is prepended to the
// parameters.
func luaFunc(f classify.Function, self string) string {
	var params []string
	if self != "" {
		params = append(params, self)
	}
	for _, p := range f.AllParams() {
		params = append(params, p.Name+": "+classify.Visit[string](p.C, luaNamer{}))
	}
	s := "fun(" + strings.Join(params, ", ") + ")"
	if len(f.Results) == 0 {
		return s
	}
	var results []string
	for _, r := range f.Results {
		results = append(results, classify.Visit[string](r, luaNamer{}))
	}
	return s + ": " + strings.Join(results, ", ")
}

// luaGroup parenthesizes types a suffix would otherwise bind into.
func luaGroup(s string) string {
	if strings.HasPrefix(s, "fun(") || strings.HasSuffix(s, "?") {
		return "(" + s + ")"
	}
	return s
}
