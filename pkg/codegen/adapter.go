package codegen

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"

	"github.com/chazu/luabind/classify"
	"github.com/chazu/luabind/diag"
	"github.com/chazu/luabind/gowrap"
)

// Adapter is everything rendered into one <Root>Access file. Code fragments
// are complete statements; rendering only arranges them.
type Adapter struct {
	Root     *gowrap.Root
	Getters  []Branch
	Setters  []Branch
	Methods  []BoundMethod
	Wrappers []*FuncWrapper

	// Factory is false when the host type converts itself.
	Factory bool
}

// Branch is one case of the Get or Set switch.
type Branch struct {
	Key  string
	Body []jen.Code
}

// BoundMethod is a method of the wrapped value exposed as a Lua function.
type BoundMethod struct {
	Key    string
	Name   string // adapter method implementing the call, e.g. callGreet
	GoName string
	Body   []jen.Code
}

// Builder turns collected members into an Adapter.
type Builder struct {
	classifier *classify.Classifier
	rep        *diag.Reporter
}

func NewBuilder(classifier *classify.Classifier, rep *diag.Reporter) *Builder {
	return &Builder{classifier: classifier, rep: rep}
}

// wrapped is the expression holding the host value inside adapter methods.
func wrapped() *jen.Statement { return jen.Id("a").Dot("Wrapped") }

// Build classifies every member of root and emits its dispatch code. The
// first member that cannot be converted fails the whole root.
func (b *Builder) Build(root *gowrap.Root, members *gowrap.MemberMap) (*Adapter, error) {
	em := NewEmitter(strcase.ToLowerCamel(root.Name))
	ad := &Adapter{Root: root, Factory: !root.SelfConverting}

	for _, m := range members.Members() {
		site := classify.Site{Root: root.Name, Member: m.LuaName(), Pos: m.Position()}
		var err error
		switch m := m.(type) {
		case *gowrap.Property:
			site.Mapper = m.Mapper
			err = b.property(ad, em, site, m)
		case *gowrap.Function:
			err = b.method(ad, em, site, m)
		}
		if err != nil {
			return nil, withSite(err, site)
		}
	}

	wrappers, err := em.Wrappers()
	if err != nil {
		return nil, withSite(err, classify.Site{Root: root.Name, Member: "function wrappers", Pos: root.Pos})
	}
	ad.Wrappers = wrappers
	return ad, nil
}

// withSite positions errors raised deep inside an emitter at the member.
func withSite(err error, site classify.Site) error {
	if pos, ok := diag.PositionOf(err); ok && pos.IsValid() {
		return err
	}
	var de *diag.Error
	if errors.As(err, &de) {
		return diag.Newf(de.Kind, site.Pos, "%s: %s", site, de.Msg)
	}
	return errors.Wrapf(err, "%s", site)
}

func (b *Builder) property(ad *Adapter, em *Emitter, site classify.Site, p *gowrap.Property) error {
	c, err := b.classifier.Classify(site, p.Type)
	if err != nil {
		return err
	}

	if it, ok := c.(classify.Iterable); ok {
		if ex, ok := it.Elem.(classify.Exposed); ok && ex.Root.Open && !ex.Root.SelfConverting {
			b.rep.Warnf(p.Pos, "%s: elements of %s are converted as %s; embedding types will not be seen through the list",
				site, p.GoName, ex.Root.Name)
		}
		if p.HasSetter {
			b.rep.Warnf(p.Pos, "%s: lists cannot be assigned from Lua; %s is read-only", site, site.Member)
			p2 := *p
			p2.HasSetter = false
			p = &p2
		}
	}

	if p.HasGetter {
		body, err := b.getter(em, c, p)
		if err != nil {
			return err
		}
		ad.Getters = append(ad.Getters, Branch{Key: p.Name, Body: body})
	}
	if p.HasSetter {
		body, err := b.setter(em, c, p)
		if err != nil {
			return err
		}
		ad.Setters = append(ad.Setters, Branch{Key: p.Name, Body: body})
	}
	return nil
}

func (b *Builder) getter(em *Emitter, c classify.Classification, p *gowrap.Property) ([]jen.Code, error) {
	if p.Field {
		conv, err := em.HostToScript(c, wrapped().Dot(p.GoName), true)
		if err != nil {
			return nil, err
		}
		return []jen.Code{jen.Return(conv.Code, jen.True())}, nil
	}

	call := wrapped().Dot(p.Getter()).Call()
	if !p.GetterErr {
		conv, err := em.HostToScript(c, call, false)
		if err != nil {
			return nil, err
		}
		return []jen.Code{jen.Return(conv.Code, jen.True())}, nil
	}
	conv, err := em.HostToScript(c, jen.Id("v"), true)
	if err != nil {
		return nil, err
	}
	return []jen.Code{
		jen.List(jen.Id("v"), jen.Err()).Op(":=").Add(call),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			state().Dot("RaiseError").Call(jen.Lit("%s"), jen.Err().Dot("Error").Call()),
		),
		jen.Return(conv.Code, jen.True()),
	}, nil
}

func (b *Builder) setter(em *Emitter, c classify.Classification, p *gowrap.Property) ([]jen.Code, error) {
	conv, err := em.ScriptToHost(c, jen.Id("value"))
	if err != nil {
		return nil, err
	}
	if p.Field {
		return []jen.Code{
			wrapped().Dot(p.GoName).Op("=").Add(conv.Code),
			jen.Return(jen.True()),
		}, nil
	}
	call := wrapped().Dot(p.Setter()).Call(conv.Code)
	if !p.SetterErr {
		return []jen.Code{call, jen.Return(jen.True())}, nil
	}
	return []jen.Code{
		jen.If(jen.Err().Op(":=").Add(call), jen.Err().Op("!=").Nil()).Block(
			state().Dot("RaiseError").Call(jen.Lit("%s"), jen.Err().Dot("Error").Call()),
		),
		jen.Return(jen.True()),
	}, nil
}

// method binds a method of the wrapped value. The Lua function accepts both
// obj:m(x) and obj.m(x).
func (b *Builder) method(ad *Adapter, em *Emitter, site classify.Site, f *gowrap.Function) error {
	fn, err := b.classifier.Signature(site, f.Sig)
	if err != nil {
		return err
	}

	var body, args []jen.Code
	if len(fn.Params) > 0 {
		body = append(body, methodArgs(fn))
	}
	for i, p := range fn.Params {
		conv, err := em.ScriptToHost(p.C, jen.Id("args").Dot("At").Call(jen.Lit(i)))
		if err != nil {
			return err
		}
		args = append(args, conv.Code)
	}
	push, err := em.callAndPush(wrapped().Dot(f.GoName).Call(args...), fn)
	if err != nil {
		return err
	}
	body = append(body, push...)

	ad.Methods = append(ad.Methods, BoundMethod{
		Key:    f.Name,
		Name:   fmt.Sprintf("call%s", f.GoName),
		GoName: f.GoName,
		Body:   body,
	})
	return nil
}

// methodArgs gathers the Lua arguments of a bound method. When the first
// parameter can hold the receiver, self is only skipped on a colon call.
func methodArgs(fn classify.Function) jen.Code {
	if acceptsAdapter(fn.Params[0].C) {
		return jen.Id("args").Op(":=").Add(luartQual("MethodArgsN")).Call(state(), jen.Id("a"), jen.Lit(len(fn.Params)))
	}
	return jen.Id("args").Op(":=").Add(luartQual("MethodArgs")).Call(state(), jen.Id("a"))
}

func acceptsAdapter(c classify.Classification) bool {
	switch c := c.(type) {
	case classify.Exposed:
		return true
	case classify.Nullable:
		return acceptsAdapter(c.Inner)
	case classify.Native:
		return c.Kind == classify.RawValue
	}
	return false
}
