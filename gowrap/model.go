// Package gowrap introspects annotated Go packages and builds the member
// model luabind generates adapters and typings from.
package gowrap

import (
	"go/token"
	"go/types"
	"slices"

	"github.com/chazu/luabind/diag"
)

// Policy controls which members of an internal root are visited.
type Policy int

const (
	// OptOut includes every exported member unless it is excluded.
	OptOut Policy = iota
	// OptIn includes only members that carry their own expose directive.
	OptIn
)

func (p Policy) String() string {
	if p == OptIn {
		return "opt-in"
	}
	return "opt-out"
}

// Root is one annotated declaration: a struct marked with //luabind:expose,
// or an alias marked with //luabind:external.
type Root struct {
	Name    string // script-visible name, e.g. "Person"
	PkgPath string
	PkgName string
	Dir     string
	Pos     token.Position
	Doc     string

	// Target is the named type whose members are exposed. For an external
	// root it is the alias target.
	Target *types.Named

	External  bool
	Policy    Policy
	Whitelist []string

	// AccessPkgPath and AccessPkgName locate the generated adapter.
	AccessPkgPath string
	AccessPkgName string

	Parent      *Root
	ParentField string // embedded field linking to Parent
	Open        bool   // another root embeds this one

	// SelfConverting is set when *Target implements luart.Exposable.
	SelfConverting bool

	// Problems are configuration errors found while indexing. A root with
	// problems is never generated.
	Problems []error
}

// AccessName is the name of the generated adapter type.
func (r *Root) AccessName() string { return r.Name + "Access" }

// FactoryName is the name of the generated boxing function.
func (r *Root) FactoryName() string { return r.Name + "ToLua" }

// MapperKind distinguishes singleton mappers from instantiated ones.
type MapperKind int

const (
	// MapperObject is a package-level variable used as-is.
	MapperObject MapperKind = iota
	// MapperClass is a type instantiated at each conversion site.
	MapperClass
)

// MapperRef points at a user-supplied luart.Mapper implementation.
type MapperRef struct {
	Kind    MapperKind
	PkgPath string
	Name    string
	Import  string // TypeScript module the mapped type is imported from
	Pos     token.Position
}

// Member is a script-visible property or function of a root. The set of
// implementations is closed: *Property and *Function.
type Member interface {
	LuaName() string
	Owner() *Root
	Position() token.Position
	DocString() string
	member()
}

// Property is a field-like member. It may come from a struct field or from
// a GetX/SetX method pair.
type Property struct {
	Name   string
	GoName string
	Type   types.Type
	Root   *Root
	Pos    token.Position

	Field     bool // backed by a struct field
	HasGetter bool
	HasSetter bool
	GetterErr bool // GetX returns a trailing error
	SetterErr bool // SetX returns an error

	GetterDoc string
	SetterDoc string
	Doc       string

	// Mapper is a use-site mapper from a field directive.
	Mapper *MapperRef
}

func (p *Property) LuaName() string          { return p.Name }
func (p *Property) Owner() *Root             { return p.Root }
func (p *Property) Position() token.Position { return p.Pos }
func (*Property) member()                    {}

// Getter is the method read for a method-backed property.
func (p *Property) Getter() string { return "Get" + p.GoName }

// Setter is the method called for a method-backed property.
func (p *Property) Setter() string { return "Set" + p.GoName }

// DocString merges accessor docs the way the typings show them.
func (p *Property) DocString() string {
	switch {
	case p.Doc != "":
		return p.Doc
	case p.GetterDoc != "" && p.SetterDoc != "":
		return "Getter: " + p.GetterDoc + "\nSetter: " + p.SetterDoc
	case p.GetterDoc != "":
		return p.GetterDoc
	default:
		return p.SetterDoc
	}
}

// Function is a callable member backed by a method.
type Function struct {
	Name   string
	GoName string
	Sig    *types.Signature
	Root   *Root
	Pos    token.Position
	Doc    string
}

func (f *Function) LuaName() string          { return f.Name }
func (f *Function) Owner() *Root             { return f.Root }
func (f *Function) Position() token.Position { return f.Pos }
func (f *Function) DocString() string        { return f.Doc }
func (*Function) member()                    {}

// Merge combines two members registered under the same script name. It is
// pure: neither argument is modified.
//
// Only a getter-only and a setter-only property of the same type merge; any
// other collision is a configuration error.
func Merge(existing, incoming Member) (Member, error) {
	a, okA := existing.(*Property)
	b, okB := incoming.(*Property)
	if !okA || !okB {
		return nil, diag.Configf(incoming.Position(),
			"%s is declared twice on %s", incoming.LuaName(), incoming.Owner().Name)
	}
	if a.Field || b.Field {
		return nil, diag.Configf(b.Pos,
			"%s clashes with a field of the same name on %s", b.Name, b.Root.Name)
	}
	if !types.Identical(a.Type, b.Type) {
		return nil, diag.Configf(b.Pos,
			"getter and setter for %s disagree on type: %s vs %s",
			b.Name, types.TypeString(a.Type, nil), types.TypeString(b.Type, nil))
	}
	if (a.HasGetter && b.HasGetter) || (a.HasSetter && b.HasSetter) {
		return nil, diag.Configf(b.Pos, "%s has two accessors of the same kind", b.Name)
	}

	merged := *a
	if b.HasGetter {
		merged.HasGetter = true
		merged.GetterErr = b.GetterErr
		merged.GetterDoc = b.GetterDoc
		merged.Pos = b.Pos
	}
	if b.HasSetter {
		merged.HasSetter = true
		merged.SetterErr = b.SetterErr
		merged.SetterDoc = b.SetterDoc
	}
	return &merged, nil
}

// MemberMap maps script names to members, keeping first-registration order.
type MemberMap struct {
	order   []string
	members map[string]Member
}

func NewMemberMap() *MemberMap {
	return &MemberMap{members: make(map[string]Member)}
}

// Add registers m, merging it with an existing member of the same name.
func (mm *MemberMap) Add(m Member) error {
	prev, ok := mm.members[m.LuaName()]
	if !ok {
		mm.order = append(mm.order, m.LuaName())
		mm.members[m.LuaName()] = m
		return nil
	}
	merged, err := Merge(prev, m)
	if err != nil {
		return err
	}
	mm.members[m.LuaName()] = merged
	return nil
}

func (mm *MemberMap) Get(name string) (Member, bool) {
	m, ok := mm.members[name]
	return m, ok
}

func (mm *MemberMap) Len() int { return len(mm.order) }

// Names returns the member names in registration order.
func (mm *MemberMap) Names() []string { return slices.Clone(mm.order) }

// Members returns the members in registration order.
func (mm *MemberMap) Members() []Member {
	out := make([]Member, 0, len(mm.order))
	for _, name := range mm.order {
		out = append(out, mm.members[name])
	}
	return out
}
