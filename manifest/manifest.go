// Package manifest handles luabind.toml project configuration.
package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// FileName is the name of the configuration file.
const FileName = "luabind.toml"

// Emit kinds.
const (
	EmitAccess     = "access"
	EmitLua        = "lua"
	EmitTypeScript = "typescript"
)

// Manifest represents a luabind.toml configuration.
type Manifest struct {
	Generate Generate `toml:"generate"`

	// Dir is the directory containing luabind.toml (set at load time). For
	// defaults it is the directory the search started from.
	Dir string `toml:"-"`
}

// Generate configures what is generated and where.
type Generate struct {
	Packages      []string `toml:"packages"`
	AccessPackage string   `toml:"access-package"`
	LuaDir        string   `toml:"lua-dir"`
	TypeScriptDir string   `toml:"typescript-dir"`
	Tags          []string `toml:"tags"`
	Emit          []string `toml:"emit"`
}

// Default returns the configuration used when no luabind.toml exists.
func Default(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %s", dir)
	}
	m := &Manifest{Dir: abs}
	m.applyDefaults()
	return m, nil
}

// Load parses luabind.toml from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	m, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", path)
	}
	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %s", dir)
	}
	return m, nil
}

// Parse decodes a manifest and applies defaults. Unknown keys and emit kinds
// are errors.
func Parse(data string) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(data, &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Newf("unknown keys: %s", strings.Join(keys, ", "))
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	g := &m.Generate
	if len(g.Packages) == 0 {
		g.Packages = []string{"./..."}
	}
	if g.AccessPackage == "" {
		g.AccessPackage = "access"
	}
	if g.LuaDir == "" {
		g.LuaDir = "lualib"
	}
	if g.TypeScriptDir == "" {
		g.TypeScriptDir = "typings"
	}
	if len(g.Emit) == 0 {
		g.Emit = []string{EmitAccess, EmitLua, EmitTypeScript}
	}
}

// Validate checks the emit kinds and the access package name.
func (m *Manifest) Validate() error {
	for _, e := range m.Generate.Emit {
		if !slices.Contains([]string{EmitAccess, EmitLua, EmitTypeScript}, e) {
			return errors.Newf("unknown emit kind %q (want access, lua or typescript)", e)
		}
	}
	ap := m.Generate.AccessPackage
	if filepath.IsAbs(ap) || strings.HasPrefix(ap, "..") || strings.Contains(ap, `\`) {
		return errors.Newf("access-package %q must be a relative sub-package path", ap)
	}
	return nil
}

// FindAndLoad walks up from startDir to find a luabind.toml file,
// then loads and returns the manifest. Without one, the defaults rooted at
// startDir are returned.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(startDir)
		}
		dir = parent
	}
}

// LuaDirPath returns the absolute path of the LuaLS typing directory.
func (m *Manifest) LuaDirPath() string {
	return m.resolve(m.Generate.LuaDir)
}

// TypeScriptDirPath returns the absolute path of the TypeScript typing
// directory.
func (m *Manifest) TypeScriptDirPath() string {
	return m.resolve(m.Generate.TypeScriptDir)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
