package gowrap

import (
	"go/ast"
	"go/token"
	"reflect"
	"strings"

	"github.com/chazu/luabind/diag"
)

const directivePrefix = "//luabind:"

// Markers are the luabind directives found in one comment group.
type Markers struct {
	Expose   *ExposeMarker
	Exclude  bool
	External *ExternalMarker
	Mapper   *MapperMarker
}

type ExposeMarker struct {
	Policy Policy
	Pos    token.Position
}

type ExternalMarker struct {
	Whitelist []string
	Pos       token.Position
}

// MapperMarker is an unresolved //luabind:mapper directive.
type MapperMarker struct {
	Ref    string // "Var", "pkg.Var", or "example.com/pkg.Type"
	Import string
	Pos    token.Position
}

// ReadMarkers parses the //luabind: directives in cg. Each marker may
// appear at most once.
func ReadMarkers(fset *token.FileSet, cg *ast.CommentGroup) (Markers, error) {
	var m Markers
	if cg == nil {
		return m, nil
	}
	for _, c := range cg.List {
		if !strings.HasPrefix(c.Text, directivePrefix) {
			continue
		}
		pos := fset.Position(c.Slash)
		fields := strings.Fields(strings.TrimPrefix(c.Text, directivePrefix))
		if len(fields) == 0 {
			return m, diag.Configf(pos, "empty luabind directive")
		}
		verb, args := fields[0], fields[1:]
		switch verb {
		case "expose":
			if m.Expose != nil {
				return m, diag.Configf(pos, "duplicate //luabind:expose directive")
			}
			e := &ExposeMarker{Pos: pos}
			if len(args) > 1 {
				return m, diag.Configf(pos, "//luabind:expose takes at most one policy")
			}
			if len(args) == 1 {
				switch args[0] {
				case "opt-in":
					e.Policy = OptIn
				case "opt-out":
					e.Policy = OptOut
				default:
					return m, diag.Configf(pos, "unknown expose policy %q", args[0])
				}
			}
			m.Expose = e
		case "exclude":
			if m.Exclude {
				return m, diag.Configf(pos, "duplicate //luabind:exclude directive")
			}
			m.Exclude = true
		case "external":
			if m.External != nil {
				return m, diag.Configf(pos, "duplicate //luabind:external directive")
			}
			m.External = &ExternalMarker{Whitelist: args, Pos: pos}
		case "mapper":
			if m.Mapper != nil {
				return m, diag.Configf(pos, "duplicate //luabind:mapper directive")
			}
			if len(args) == 0 {
				return m, diag.Configf(pos, "//luabind:mapper needs a mapper reference")
			}
			mm := &MapperMarker{Ref: args[0], Pos: pos}
			for _, opt := range args[1:] {
				k, v, ok := strings.Cut(opt, "=")
				if !ok || k != "import" {
					return m, diag.Configf(pos, "unknown mapper option %q", opt)
				}
				mm.Import = v
			}
			m.Mapper = mm
		default:
			return m, diag.Configf(pos, "unknown directive //luabind:%s", verb)
		}
	}
	return m, nil
}

// FieldTag is the parsed `lua:"..."` struct tag.
type FieldTag struct {
	Name      string
	Skip      bool
	ReadOnly  bool
	WriteOnly bool
}

// ParseFieldTag reads the lua key of a raw struct tag. `lua:"-"` skips the
// field.
func ParseFieldTag(raw string) FieldTag {
	v, ok := reflect.StructTag(raw).Lookup("lua")
	if !ok {
		return FieldTag{}
	}
	if v == "-" {
		return FieldTag{Skip: true}
	}
	name, opts, _ := strings.Cut(v, ",")
	tag := FieldTag{Name: name}
	for _, opt := range strings.Split(opts, ",") {
		switch opt {
		case "readonly":
			tag.ReadOnly = true
		case "writeonly":
			tag.WriteOnly = true
		}
	}
	return tag
}
