// Package typing writes editor typings for generated adapters: a LuaLS
// annotation file and a TypeScript declaration file for TypeScriptToLua.
package typing

import (
	"go/types"
	"regexp"
	"strings"

	"github.com/chazu/luabind/classify"
	"github.com/chazu/luabind/gowrap"
)

const noDoc = "No documentation provided"

// Entry is one typed member.
type Entry struct {
	Name    string
	Doc     string
	Mutable bool

	// Exactly one of Type and Func is set.
	Type classify.Classification
	Func *classify.Function
}

// Model is the typing view of one root.
type Model struct {
	Root    *gowrap.Root
	Entries []Entry
}

// Build classifies the members of root for the typing emitters.
func Build(cl *classify.Classifier, root *gowrap.Root, members *gowrap.MemberMap) (*Model, error) {
	m := &Model{Root: root}
	for _, mem := range members.Members() {
		site := classify.Site{Root: root.Name, Member: mem.LuaName(), Pos: mem.Position()}
		e := Entry{Name: mem.LuaName(), Doc: mem.DocString()}
		switch mem := mem.(type) {
		case *gowrap.Property:
			site.Mapper = mem.Mapper
			c, err := cl.Classify(site, mem.Type)
			if err != nil {
				return nil, err
			}
			_, list := c.(classify.Iterable)
			e.Type = c
			e.Mutable = mem.HasSetter && !list
		case *gowrap.Function:
			fn, err := cl.Signature(site, mem.Sig)
			if err != nil {
				return nil, err
			}
			e.Func = &fn
		}
		m.Entries = append(m.Entries, e)
	}
	return m, nil
}

// mappedName is the display name of a mapped type.
func mappedName(t types.Type) string {
	if n, ok := types.Unalias(t).(*types.Named); ok {
		return n.Obj().Name()
	}
	return types.TypeString(t, func(*types.Package) string { return "" })
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// docLines splits a doc comment, substituting the placeholder for an empty
// one.
func docLines(doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return []string{noDoc}
	}
	lines := lineBreak.Split(doc, -1)
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}
