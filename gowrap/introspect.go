package gowrap

import (
	"cmp"
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"

	"github.com/chazu/luabind/diag"
)

const luaPkgPath = "github.com/yuin/gopher-lua"

// LoadOptions configure Load.
type LoadOptions struct {
	Dir           string   // working directory for the go tool
	Tags          []string // build tags
	AccessPackage string   // sub-package adapters are generated into; "access" if empty
}

// Universe is everything luabind knows after loading: every root, every
// declaration-level mapper, and the syntax of every field and method.
type Universe struct {
	Fset     *token.FileSet
	Packages []*packages.Package
	Roots    []*Root

	// Problems are directive errors on declarations that are not roots.
	Problems []error

	accessPkg string
	byPath    map[string]*packages.Package
	roots     map[*types.TypeName]*Root
	mappers   map[*types.TypeName]*MapperRef
	syntax    map[token.Pos]memberSyntax
}

type memberSyntax struct {
	Doc     *ast.CommentGroup
	Comment *ast.CommentGroup
}

// Load loads the packages matching patterns and indexes their roots.
func Load(ctx context.Context, opts LoadOptions, patterns ...string) (*Universe, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports,
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", strings.Join(patterns, " "))
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages found for %s", strings.Join(patterns, " "))
	}
	var pkgErrs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			pkgErrs = append(pkgErrs, e.Error())
		}
	})
	if len(pkgErrs) > 0 {
		return nil, errors.Newf("package errors: %s", strings.Join(pkgErrs, "; "))
	}

	return NewUniverse(pkgs, opts.AccessPackage), nil
}

// NewUniverse indexes already-loaded packages. The packages need syntax and
// type information.
func NewUniverse(pkgs []*packages.Package, accessPkg string) *Universe {
	if accessPkg == "" {
		accessPkg = "access"
	}
	u := &Universe{
		Packages:  slices.Clone(pkgs),
		accessPkg: accessPkg,
		byPath:    make(map[string]*packages.Package),
		roots:     make(map[*types.TypeName]*Root),
		mappers:   make(map[*types.TypeName]*MapperRef),
		syntax:    make(map[token.Pos]memberSyntax),
	}
	slices.SortFunc(u.Packages, func(a, b *packages.Package) int {
		return cmp.Compare(a.PkgPath, b.PkgPath)
	})
	for _, pkg := range u.Packages {
		if u.Fset == nil {
			u.Fset = pkg.Fset
		}
		u.byPath[pkg.PkgPath] = pkg
	}
	for _, pkg := range u.Packages {
		for _, file := range pkg.Syntax {
			u.indexFile(pkg, file)
		}
	}
	u.resolveHierarchy()

	slices.SortStableFunc(u.Roots, func(a, b *Root) int {
		return cmp.Or(
			cmp.Compare(a.PkgPath, b.PkgPath),
			cmp.Compare(a.Pos.Filename, b.Pos.Filename),
			cmp.Compare(a.Pos.Offset, b.Pos.Offset),
		)
	})
	return u
}

// Package returns a loaded package by import path.
func (u *Universe) Package(pkgPath string) *packages.Package {
	return u.byPath[pkgPath]
}

// RootFor returns the root exposing t, or nil.
func (u *Universe) RootFor(t types.Type) *Root {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return nil
	}
	return u.roots[named.Origin().Obj()]
}

// MapperFor returns the declaration-level mapper of t, or nil.
func (u *Universe) MapperFor(t types.Type) *MapperRef {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return nil
	}
	return u.mappers[named.Origin().Obj()]
}

func (u *Universe) syntaxOf(obj types.Object) memberSyntax {
	return u.syntax[obj.Pos()]
}

func (u *Universe) indexFile(pkg *packages.Package, file *ast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv != nil {
				u.syntax[d.Name.Pos()] = memberSyntax{Doc: d.Doc}
			}
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}
				u.indexType(pkg, ts, doc)
			}
		}
	}
}

func (u *Universe) indexType(pkg *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup) {
	ast.Inspect(ts.Type, func(n ast.Node) bool {
		st, ok := n.(*ast.StructType)
		if !ok {
			return true
		}
		for _, f := range st.Fields.List {
			ms := memberSyntax{Doc: f.Doc, Comment: f.Comment}
			for _, name := range f.Names {
				u.syntax[name.Pos()] = ms
			}
		}
		return true
	})

	markers, err := ReadMarkers(u.Fset, doc)
	if err != nil {
		u.Problems = append(u.Problems, err)
		return
	}
	obj, _ := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if obj == nil {
		return
	}
	pos := u.Fset.Position(ts.Name.Pos())

	if markers.Mapper != nil {
		ref, err := u.resolveMapper(pkg.Types, markers.Mapper)
		if err != nil {
			u.Problems = append(u.Problems, err)
		} else if named, ok := types.Unalias(obj.Type()).(*types.Named); ok {
			u.mappers[named.Obj()] = ref
		}
	}

	switch {
	case markers.Expose != nil && markers.External != nil:
		u.Problems = append(u.Problems,
			diag.Configf(pos, "%s carries both //luabind:expose and //luabind:external", obj.Name()))
	case markers.Expose != nil:
		u.addStructRoot(pkg, obj, pos, markers.Expose, doc)
	case markers.External != nil:
		u.addExternalRoot(pkg, obj, pos, markers.External, doc)
	}
}

func (u *Universe) newRoot(pkg *packages.Package, obj *types.TypeName, pos token.Position, doc *ast.CommentGroup) *Root {
	dir := ""
	if len(pkg.GoFiles) > 0 {
		dir = filepath.Dir(pkg.GoFiles[0])
	}
	r := &Root{
		Name:          obj.Name(),
		PkgPath:       pkg.PkgPath,
		PkgName:       pkg.Name,
		Dir:           dir,
		Pos:           pos,
		AccessPkgPath: AccessPackage(pkg.PkgPath, u.accessPkg),
		AccessPkgName: path.Base(u.accessPkg),
	}
	if doc != nil {
		r.Doc = strings.TrimSpace(doc.Text())
	}
	u.Roots = append(u.Roots, r)
	return r
}

func (u *Universe) addStructRoot(pkg *packages.Package, obj *types.TypeName, pos token.Position, e *ExposeMarker, doc *ast.CommentGroup) {
	r := u.newRoot(pkg, obj, pos, doc)
	r.Policy = e.Policy
	if obj.IsAlias() {
		r.Problems = append(r.Problems,
			diag.Configf(pos, "%s is an alias; use //luabind:external to expose it", obj.Name()))
		return
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		r.Problems = append(r.Problems, diag.Configf(pos, "%s must be a struct to be exposed", obj.Name()))
		return
	}
	if named.TypeParams().Len() > 0 {
		r.Problems = append(r.Problems, diag.Newf(diag.ErrUnimplemented, pos, "generic type %s cannot be exposed", obj.Name()))
		return
	}
	if prev, dup := u.roots[obj]; dup {
		r.Problems = append(r.Problems, diag.Configf(pos, "%s is already exposed as %s", obj.Name(), prev.Name))
		return
	}
	r.Target = named
	r.SelfConverting = selfConverting(named)
	u.roots[obj] = r
}

func (u *Universe) addExternalRoot(pkg *packages.Package, obj *types.TypeName, pos token.Position, ext *ExternalMarker, doc *ast.CommentGroup) {
	r := u.newRoot(pkg, obj, pos, doc)
	r.External = true
	r.Whitelist = ext.Whitelist
	if !obj.IsAlias() {
		r.Problems = append(r.Problems,
			diag.Configf(pos, "//luabind:external needs a type alias such as type %s = pkg.%s", obj.Name(), obj.Name()))
		return
	}
	named, ok := types.Unalias(obj.Type()).(*types.Named)
	if !ok || named.TypeArgs().Len() > 0 {
		r.Problems = append(r.Problems, diag.Configf(pos, "%s must alias a non-generic named type", obj.Name()))
		return
	}
	if prev, dup := u.roots[named.Obj()]; dup {
		r.Problems = append(r.Problems, diag.Configf(pos, "%s is already exposed as %s", named.Obj().Name(), prev.Name))
		return
	}
	r.Target = named
	r.SelfConverting = selfConverting(named)
	u.roots[named.Obj()] = r
}

// resolveHierarchy links each struct root to the single exposed struct it
// embeds, if any.
func (u *Universe) resolveHierarchy() {
	for _, r := range u.Roots {
		if r.External || r.Target == nil {
			continue
		}
		st := r.Target.Underlying().(*types.Struct)
		var parents []*Root
		var fields []string
		for i := range st.NumFields() {
			f := st.Field(i)
			if !f.Embedded() {
				continue
			}
			p := u.RootFor(f.Type())
			if p == nil || p.External {
				continue
			}
			parents = append(parents, p)
			fields = append(fields, f.Name())
		}
		switch len(parents) {
		case 0:
		case 1:
			r.Parent = parents[0]
			r.ParentField = fields[0]
			parents[0].Open = true
		default:
			r.Problems = append(r.Problems, diag.Configf(r.Pos,
				"%s embeds %d exposed types (%s); at most one may act as its parent",
				r.Name, len(parents), strings.Join(fields, ", ")))
		}
	}
}

func (u *Universe) resolveMapper(pkg *types.Package, m *MapperMarker) (*MapperRef, error) {
	scope := pkg
	name := m.Ref
	if i := strings.LastIndex(m.Ref, "."); i >= 0 {
		qual := m.Ref[:i]
		name = m.Ref[i+1:]
		scope = nil
		if qual == pkg.Path() || qual == pkg.Name() {
			scope = pkg
		}
		for _, imp := range pkg.Imports() {
			if scope == nil && (imp.Path() == qual || imp.Name() == qual) {
				scope = imp
			}
		}
		if p := u.byPath[qual]; scope == nil && p != nil {
			scope = p.Types
		}
		if scope == nil {
			return nil, diag.Configf(m.Pos, "mapper package %q is neither imported by %s nor loaded", qual, pkg.Path())
		}
	}

	ref := &MapperRef{PkgPath: scope.Path(), Name: name, Import: m.Import, Pos: m.Pos}
	switch obj := scope.Scope().Lookup(name).(type) {
	case *types.Var:
		if !hasMapperMethods(obj.Type()) {
			return nil, diag.Configf(m.Pos, "mapper %s has no ToLua/FromLua methods", m.Ref)
		}
		ref.Kind = MapperObject
	case *types.TypeName:
		if !hasMapperMethods(types.NewPointer(obj.Type())) {
			return nil, diag.Configf(m.Pos, "mapper %s has no ToLua/FromLua methods", m.Ref)
		}
		ref.Kind = MapperClass
	case nil:
		return nil, diag.Configf(m.Pos, "mapper %s not found in %s", name, scope.Path())
	default:
		return nil, diag.Configf(m.Pos, "mapper %s must be a variable or a type", m.Ref)
	}
	return ref, nil
}

func hasMapperMethods(t types.Type) bool {
	ms := types.NewMethodSet(t)
	return ms.Lookup(nil, "ToLua") != nil && ms.Lookup(nil, "FromLua") != nil
}

// selfConverting reports whether *named has ToLua(*lua.LState) lua.LValue.
func selfConverting(named *types.Named) bool {
	sel := types.NewMethodSet(types.NewPointer(named)).Lookup(nil, "ToLua")
	if sel == nil {
		return false
	}
	sig, ok := sel.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 1 || sig.Results().Len() != 1 {
		return false
	}
	ptr, ok := sig.Params().At(0).Type().(*types.Pointer)
	return ok && IsLuaType(ptr.Elem(), "LState") && IsLuaType(sig.Results().At(0).Type(), "LValue")
}

// IsLuaType reports whether t is the named gopher-lua type name.
func IsLuaType(t types.Type, name string) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	return named.Obj().Pkg().Path() == luaPkgPath && named.Obj().Name() == name
}

// IsErrorType reports whether t is the predeclared error type.
func IsErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}
