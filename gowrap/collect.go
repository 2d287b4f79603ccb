package gowrap

import (
	"go/types"
	"slices"
	"strings"

	"github.com/chazu/luabind/diag"
)

// Collector walks one root and gathers its script-visible members.
// Collect is idempotent: a second call returns the first result.
type Collector struct {
	u    *Universe
	root *Root
	rep  *diag.Reporter

	visited bool
	members *MemberMap
	err     error
}

func NewCollector(u *Universe, root *Root, rep *diag.Reporter) *Collector {
	return &Collector{u: u, root: root, rep: rep}
}

// Collect returns the members of the root in source order: fields first,
// then methods.
func (c *Collector) Collect() (*MemberMap, error) {
	if c.visited {
		return c.members, c.err
	}
	c.visited = true

	if len(c.root.Problems) > 0 {
		c.err = c.root.Problems[0]
		return nil, c.err
	}
	acc := NewMemberMap()
	if c.root.External {
		acc, c.err = c.visitAlias(acc)
	} else {
		acc, c.err = c.visitTarget(acc)
	}
	if c.err != nil {
		return nil, c.err
	}
	c.members = acc
	return acc, nil
}

func (c *Collector) visitAlias(acc *MemberMap) (*MemberMap, error) {
	if len(c.root.Whitelist) == 0 {
		c.rep.Warnf(c.root.Pos, "%s has an empty //luabind:external whitelist; nothing will be exposed", c.root.Name)
	}
	acc, err := c.visitTarget(acc)
	if err != nil {
		return nil, err
	}
	for _, name := range c.root.Whitelist {
		if !c.declares(name) {
			c.rep.Warnf(c.root.Pos, "%s is whitelisted on %s but not declared there", name, c.root.Name)
		}
	}
	return acc, nil
}

func (c *Collector) declares(goName string) bool {
	if st, ok := c.root.Target.Underlying().(*types.Struct); ok {
		for i := range st.NumFields() {
			if st.Field(i).Name() == goName {
				return true
			}
		}
	}
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(c.root.Target), true, c.root.Target.Obj().Pkg(), goName)
	return obj != nil
}

func (c *Collector) visitTarget(acc *MemberMap) (*MemberMap, error) {
	target := c.root.Target
	if st, ok := target.Underlying().(*types.Struct); ok {
		for i := range st.NumFields() {
			f := st.Field(i)
			if f.Embedded() {
				continue
			}
			prop, err := c.fieldProperty(f, st.Tag(i))
			if err != nil {
				return nil, err
			}
			if prop == nil {
				continue
			}
			if err := acc.Add(prop); err != nil {
				return nil, err
			}
		}
	}

	mset := types.NewMethodSet(types.NewPointer(target))
	for sel := range mset.Methods() {
		fn, ok := sel.Obj().(*types.Func)
		if !ok || len(sel.Index()) > 1 {
			continue
		}
		if c.root.SelfConverting && fn.Name() == "ToLua" {
			continue
		}
		m, err := c.methodMember(fn)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		if err := acc.Add(m); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// include applies exclusion, visibility and policy in that order.
func (c *Collector) include(obj types.Object, markers Markers) bool {
	if c.root.External {
		if !slices.Contains(c.root.Whitelist, obj.Name()) {
			return false
		}
		if !obj.Exported() {
			c.rep.Warnf(c.u.Fset.Position(obj.Pos()), "%s on %s is not exported; skipping", obj.Name(), c.root.Name)
			return false
		}
		return true
	}
	if markers.Exclude || !obj.Exported() {
		return false
	}
	if c.root.Policy == OptIn {
		return markers.Expose != nil
	}
	return true
}

// markersOf reads directives on a member. External roots ignore them.
func (c *Collector) markersOf(ms memberSyntax) (Markers, error) {
	if c.root.External {
		return Markers{}, nil
	}
	return ReadMarkers(c.u.Fset, ms.Doc)
}

func (c *Collector) fieldProperty(f *types.Var, rawTag string) (*Property, error) {
	ms := c.u.syntaxOf(f)
	markers, err := c.markersOf(ms)
	if err != nil {
		return nil, err
	}
	tag := ParseFieldTag(rawTag)
	if tag.Skip || !c.include(f, markers) {
		return nil, nil
	}
	pos := c.u.Fset.Position(f.Pos())
	if tag.ReadOnly && tag.WriteOnly {
		return nil, diag.Configf(pos, "%s cannot be both readonly and writeonly", f.Name())
	}

	name := tag.Name
	if name == "" {
		name = LuaKey(f.Name())
	}
	prop := &Property{
		Name:      name,
		GoName:    f.Name(),
		Type:      f.Type(),
		Root:      c.root,
		Pos:       pos,
		Field:     true,
		HasGetter: !tag.WriteOnly,
		HasSetter: !tag.ReadOnly,
		Doc:       docText(ms),
	}
	if markers.Mapper != nil {
		ref, err := c.u.resolveMapper(c.root.Target.Obj().Pkg(), markers.Mapper)
		if err != nil {
			return nil, err
		}
		prop.Mapper = ref
	}
	return prop, nil
}

func (c *Collector) methodMember(fn *types.Func) (Member, error) {
	ms := c.u.syntaxOf(fn)
	markers, err := c.markersOf(ms)
	if err != nil {
		return nil, err
	}
	if !c.include(fn, markers) {
		return nil, nil
	}
	pos := c.u.Fset.Position(fn.Pos())
	sig := fn.Type().(*types.Signature)
	doc := docText(ms)

	if prefix, prop, ok := AccessorName(fn.Name()); ok {
		switch {
		case prefix == "Get" && isGetterShape(sig):
			return &Property{
				Name:      LuaKey(prop),
				GoName:    prop,
				Type:      sig.Results().At(0).Type(),
				Root:      c.root,
				Pos:       pos,
				HasGetter: true,
				GetterErr: sig.Results().Len() == 2,
				GetterDoc: doc,
			}, nil
		case prefix == "Set" && isSetterShape(sig):
			return &Property{
				Name:      LuaKey(prop),
				GoName:    prop,
				Type:      sig.Params().At(0).Type(),
				Root:      c.root,
				Pos:       pos,
				HasSetter: true,
				SetterErr: sig.Results().Len() == 1,
				SetterDoc: doc,
			}, nil
		}
	}

	return &Function{
		Name:   LuaKey(fn.Name()),
		GoName: fn.Name(),
		Sig:    sig,
		Root:   c.root,
		Pos:    pos,
		Doc:    doc,
	}, nil
}

func isGetterShape(sig *types.Signature) bool {
	if sig.Params().Len() != 0 || sig.Variadic() {
		return false
	}
	res := sig.Results()
	switch res.Len() {
	case 1:
		return !IsErrorType(res.At(0).Type())
	case 2:
		return !IsErrorType(res.At(0).Type()) && IsErrorType(res.At(1).Type())
	}
	return false
}

func isSetterShape(sig *types.Signature) bool {
	if sig.Params().Len() != 1 || sig.Variadic() {
		return false
	}
	res := sig.Results()
	return res.Len() == 0 || (res.Len() == 1 && IsErrorType(res.At(0).Type()))
}

func docText(ms memberSyntax) string {
	if ms.Doc != nil {
		if s := strings.TrimSpace(ms.Doc.Text()); s != "" {
			return s
		}
	}
	if ms.Comment != nil {
		return strings.TrimSpace(ms.Comment.Text())
	}
	return ""
}
