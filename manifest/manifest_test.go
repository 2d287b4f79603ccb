package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[generate]
packages = ["./model/...", "./scene"]
access-package = "luaaccess"
lua-dir = "scripts/types"
typescript-dir = "ts/types"
tags = ["lua"]
emit = ["access", "lua"]
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	g := m.Generate
	if !slices.Equal(g.Packages, []string{"./model/...", "./scene"}) {
		t.Errorf("packages = %v", g.Packages)
	}
	if g.AccessPackage != "luaaccess" {
		t.Errorf("access-package = %q, want luaaccess", g.AccessPackage)
	}
	if g.LuaDir != "scripts/types" {
		t.Errorf("lua-dir = %q, want scripts/types", g.LuaDir)
	}
	if g.TypeScriptDir != "ts/types" {
		t.Errorf("typescript-dir = %q, want ts/types", g.TypeScriptDir)
	}
	if !slices.Equal(g.Tags, []string{"lua"}) {
		t.Errorf("tags = %v, want [lua]", g.Tags)
	}
	if !slices.Equal(g.Emit, []string{EmitAccess, EmitLua}) {
		t.Errorf("emit = %v, want [access lua]", g.Emit)
	}
	if !filepath.IsAbs(m.Dir) {
		t.Errorf("Dir = %q, want an absolute path", m.Dir)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[generate]\n")

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	g := m.Generate
	if !slices.Equal(g.Packages, []string{"./..."}) {
		t.Errorf("default packages = %v, want [./...]", g.Packages)
	}
	if g.AccessPackage != "access" {
		t.Errorf("default access-package = %q", g.AccessPackage)
	}
	if g.LuaDir != "lualib" || g.TypeScriptDir != "typings" {
		t.Errorf("default dirs = %q, %q", g.LuaDir, g.TypeScriptDir)
	}
	if len(g.Tags) != 0 {
		t.Errorf("default tags = %v, want none", g.Tags)
	}
	if !slices.Equal(g.Emit, []string{EmitAccess, EmitLua, EmitTypeScript}) {
		t.Errorf("default emit = %v", g.Emit)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[generate\n", ""},
		{"unknown key", "[generate]\nlua_dir = \"x\"\n", "generate.lua_dir"},
		{"unknown table", "[project]\nname = \"x\"\n", "project.name"},
		{"emit kind", "[generate]\nemit = [\"python\"]\n", `unknown emit kind "python"`},
		{"absolute access", "[generate]\naccess-package = \"/tmp/access\"\n", "relative sub-package"},
		{"parent access", "[generate]\naccess-package = \"../access\"\n", "relative sub-package"},
		{"wrong type", "[generate]\npackages = \"./...\"\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a missing luabind.toml")
	}
	if !strings.Contains(err.Error(), "cannot read") {
		t.Errorf("error = %v", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, "[generate]\nlua-dir = \"found\"\n")

	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m.Generate.LuaDir != "found" {
		t.Errorf("lua-dir = %q, want found", m.Generate.LuaDir)
	}
	want, _ := filepath.Abs(dir)
	if m.Dir != want {
		t.Errorf("Dir = %q, want %q", m.Dir, want)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if m.Dir != want {
		t.Errorf("Dir = %q, want %q", m.Dir, want)
	}
	if m.Generate.LuaDir != "lualib" {
		t.Errorf("expected defaults without a luabind.toml, got %+v", m.Generate)
	}
}

func TestDirPaths(t *testing.T) {
	m := &Manifest{
		Dir:      "/app",
		Generate: Generate{LuaDir: "lualib", TypeScriptDir: "/abs/typings"},
	}
	if got := m.LuaDirPath(); got != filepath.Join("/app", "lualib") {
		t.Errorf("LuaDirPath = %q", got)
	}
	if got := m.TypeScriptDirPath(); got != "/abs/typings" {
		t.Errorf("TypeScriptDirPath = %q", got)
	}
}
