// Package generator runs the luabind pipeline: load packages, then collect,
// build, render and validate every root, then write the artifacts.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/tliron/commonlog"

	"github.com/chazu/luabind/classify"
	"github.com/chazu/luabind/diag"
	"github.com/chazu/luabind/gowrap"
	"github.com/chazu/luabind/pkg/codegen"
	"github.com/chazu/luabind/pkg/typing"
)

// Artifact kinds, also the values accepted in Options.Emit.
const (
	KindAccess     = "access"
	KindLua        = "lua"
	KindTypeScript = "typescript"
)

// AllKinds lists every artifact kind in generation order.
var AllKinds = []string{KindAccess, KindLua, KindTypeScript}

// Options configures a Generator. Zero values take the defaults.
type Options struct {
	// Dir is where package patterns are resolved.
	Dir string
	// OutDir is the base of LuaDir and TypeScriptDir; Dir when empty.
	OutDir        string
	AccessPackage string
	LuaDir        string
	TypeScriptDir string
	Tags          []string
	// Emit selects the artifact kinds to produce; all when empty.
	Emit []string
}

func (o Options) withDefaults() Options {
	if o.AccessPackage == "" {
		o.AccessPackage = "access"
	}
	if o.LuaDir == "" {
		o.LuaDir = "lualib"
	}
	if o.TypeScriptDir == "" {
		o.TypeScriptDir = "typings"
	}
	if o.OutDir == "" {
		o.OutDir = o.Dir
	}
	if len(o.Emit) == 0 {
		o.Emit = AllKinds
	}
	return o
}

func (o Options) emits(kind string) bool {
	return slices.Contains(o.Emit, kind)
}

// Artifact is one generated file.
type Artifact struct {
	Root    string
	Kind    string
	Path    string
	Content []byte
}

// RootFailure records why a root produced nothing.
type RootFailure struct {
	Root string
	Pos  token.Position
	Err  error
}

func (f RootFailure) String() string {
	if f.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %v", f.Pos, f.Root, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Root, f.Err)
}

// Report is the outcome of a run.
type Report struct {
	Roots       []string
	Artifacts   []Artifact
	Failures    []RootFailure
	Diagnostics []diag.Diagnostic

	// Problems are directive errors on declarations that never became roots.
	Problems []error

	// Written and Unchanged are filled by Write.
	Written   []string
	Unchanged []string
}

// OK reports whether every root generated and no directive was rejected.
func (r *Report) OK() bool { return len(r.Failures) == 0 && len(r.Problems) == 0 }

// Generator produces adapters and typings for annotated Go packages.
type Generator struct {
	fs   afero.Fs
	opts Options
	log  commonlog.Logger
}

// New creates a generator writing to fs.
func New(fs afero.Fs, opts Options) *Generator {
	return &Generator{
		fs:   fs,
		opts: opts.withDefaults(),
		log:  commonlog.GetLogger("luabind.generator"),
	}
}

// Options returns the effective options.
func (g *Generator) Options() Options { return g.opts }

// Run plans and writes. The report is returned even when some roots fail;
// err is only set when loading or writing fails.
func (g *Generator) Run(ctx context.Context, patterns ...string) (*Report, error) {
	report, err := g.Plan(ctx, patterns...)
	if err != nil {
		return nil, err
	}
	if err := g.Write(report); err != nil {
		return report, err
	}
	return report, nil
}

// Plan loads the packages and renders every artifact in memory.
func (g *Generator) Plan(ctx context.Context, patterns ...string) (*Report, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	g.log.Infof("loading %v", patterns)
	u, err := gowrap.Load(ctx, gowrap.LoadOptions{
		Dir:           g.opts.Dir,
		Tags:          g.opts.Tags,
		AccessPackage: g.opts.AccessPackage,
	}, patterns...)
	if err != nil {
		return nil, err
	}
	return g.PlanUniverse(u), nil
}

// PlanUniverse renders every root of an already-loaded universe. Adapters go
// to the access package the universe was loaded with. A root that
// fails, or whose embedded parent fails, contributes no artifacts; the other
// roots are unaffected.
func (g *Generator) PlanUniverse(u *gowrap.Universe) *Report {
	rep := diag.NewReporter("luabind.generator")
	cl := classify.New(u)
	report := &Report{Problems: u.Problems}
	for _, err := range u.Problems {
		rep.Fail(err)
	}

	produced := make(map[*gowrap.Root][]Artifact)
	failed := make(map[*gowrap.Root]bool)
	for _, r := range u.Roots {
		report.Roots = append(report.Roots, r.Name)
		arts, err := g.root(u, cl, rep, r)
		if err != nil {
			rep.Fail(err)
			failed[r] = true
			report.Failures = append(report.Failures, failure(r, err))
			continue
		}
		produced[r] = arts
	}

	claimed := make(map[string]string)
	for _, r := range u.Roots {
		if failed[r] {
			continue
		}
		if p := failedAncestor(r, failed); p != nil {
			err := diag.Configf(r.Pos, "%s embeds %s, which failed to generate", r.Name, p.Name)
			rep.Fail(err)
			report.Failures = append(report.Failures, failure(r, err))
			continue
		}
		if err := claim(claimed, r, produced[r]); err != nil {
			rep.Fail(err)
			report.Failures = append(report.Failures, failure(r, err))
			continue
		}
		report.Artifacts = append(report.Artifacts, produced[r]...)
	}

	report.Diagnostics = rep.Diagnostics()
	g.log.Infof("planned %d artifacts for %d roots, %d failed",
		len(report.Artifacts), len(u.Roots), len(report.Failures))
	return report
}

func failure(r *gowrap.Root, err error) RootFailure {
	pos, ok := diag.PositionOf(err)
	if !ok || !pos.IsValid() {
		pos = r.Pos
	}
	return RootFailure{Root: r.Name, Pos: pos, Err: err}
}

func failedAncestor(r *gowrap.Root, failed map[*gowrap.Root]bool) *gowrap.Root {
	for p := r.Parent; p != nil; p = p.Parent {
		if failed[p] {
			return p
		}
	}
	return nil
}

// claim rejects a root whose typing files would overwrite another root's,
// which happens when two packages expose types of the same name.
func claim(claimed map[string]string, r *gowrap.Root, arts []Artifact) error {
	owner := r.PkgPath + "." + r.Name
	for _, a := range arts {
		if prev, ok := claimed[a.Path]; ok {
			return diag.Configf(r.Pos, "%s would overwrite %s, generated for %s", owner, a.Path, prev)
		}
	}
	for _, a := range arts {
		claimed[a.Path] = owner
	}
	return nil
}

// root renders the artifacts of one root. A panic is turned into an error so
// it cannot take the other roots down.
func (g *Generator) root(u *gowrap.Universe, cl *classify.Classifier, rep *diag.Reporter, r *gowrap.Root) (arts []Artifact, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Newf("internal error generating %s: %v", r.Name, p)
		}
	}()

	g.log.Debugf("generating %s.%s", r.PkgPath, r.Name)
	members, err := gowrap.NewCollector(u, r, rep).Collect()
	if err != nil {
		return nil, err
	}

	ad, err := codegen.NewBuilder(cl, rep).Build(r, members)
	if err != nil {
		return nil, err
	}
	accessPath := filepath.Join(r.Dir, filepath.FromSlash(strings.TrimPrefix(r.AccessPkgPath, r.PkgPath+"/")),
		codegen.FileName(gowrap.FileStem(r.Name)))
	if g.opts.emits(KindAccess) {
		code, err := codegen.Render(ad)
		if err != nil {
			return nil, err
		}
		if errs := codegen.NewCodeValidator(accessPath).Validate(code, codegen.Expected(ad)...); len(errs) > 0 {
			return nil, errors.Newf("generated adapter for %s is invalid:\n%s",
				r.Name, codegen.FormatValidationErrors(errs, filepath.Base(accessPath)))
		}
		arts = append(arts, Artifact{Root: r.Name, Kind: KindAccess, Path: accessPath, Content: []byte(code)})
	}

	model, err := typing.Build(cl, r, members)
	if err != nil {
		return nil, err
	}
	if g.opts.emits(KindLua) {
		text, err := typing.Lua(model)
		if err != nil {
			return nil, errors.Wrapf(err, "rendering Lua typing for %s", r.Name)
		}
		arts = append(arts, Artifact{Root: r.Name, Kind: KindLua,
			Path: g.outPath(g.opts.LuaDir, r.Name+".lua"), Content: []byte(text)})
	}
	if g.opts.emits(KindTypeScript) {
		text, err := typing.TypeScript(model)
		if err != nil {
			return nil, errors.Wrapf(err, "rendering TypeScript typing for %s", r.Name)
		}
		arts = append(arts, Artifact{Root: r.Name, Kind: KindTypeScript,
			Path: g.outPath(g.opts.TypeScriptDir, r.Name+".d.ts"), Content: []byte(text)})
	}
	return arts, nil
}

// outPath places a typing file; an absolute dir ignores OutDir.
func (g *Generator) outPath(dir, file string) string {
	if filepath.IsAbs(dir) {
		return filepath.Join(dir, file)
	}
	return filepath.Join(g.opts.OutDir, dir, file)
}

// Write stores every artifact of report. Each file is written to a temporary
// sibling and renamed into place, so readers never see a partial file. Files
// whose content is already current are left alone.
func (g *Generator) Write(report *Report) error {
	for _, a := range report.Artifacts {
		if existing, err := afero.ReadFile(g.fs, a.Path); err == nil && bytes.Equal(existing, a.Content) {
			report.Unchanged = append(report.Unchanged, a.Path)
			continue
		}
		if err := writeAtomic(g.fs, a.Path, a.Content); err != nil {
			return err
		}
		g.log.Infof("wrote %s", a.Path)
		report.Written = append(report.Written, a.Path)
	}
	return nil
}

func writeAtomic(fs afero.Fs, path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for %s", path)
	}
	_, werr := tmp.Write(content)
	cerr := tmp.Close()
	if err := errors.CombineErrors(werr, cerr); err != nil {
		_ = fs.Remove(tmp.Name())
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := fs.Chmod(tmp.Name(), 0o644); err != nil {
		_ = fs.Remove(tmp.Name())
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := fs.Rename(tmp.Name(), path); err != nil {
		_ = fs.Remove(tmp.Name())
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}
