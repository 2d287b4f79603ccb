package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/luabind/generator"
)

const samplePkg = "github.com/chazu/luabind/internal/fixture/sample"

func TestConfig_FlagsOverrideManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "luabind.toml"), []byte(`
[generate]
packages = ["./model/..."]
lua-dir = "types/lua"
tags = ["dev"]
`), 0o644))

	f := &flags{dir: dir, tsDir: "types/ts", emit: []string{"lua"}}
	m, opts, patterns, err := f.config(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"./model/..."}, patterns)
	assert.Equal(t, m.Dir, opts.Dir)
	assert.Equal(t, m.Dir, opts.OutDir)
	assert.Equal(t, "types/lua", opts.LuaDir)
	assert.Equal(t, "types/ts", opts.TypeScriptDir)
	assert.Equal(t, "access", opts.AccessPackage)
	assert.Equal(t, []string{"dev"}, opts.Tags)
	assert.Equal(t, []string{"lua"}, opts.Emit)

	_, _, patterns, err = f.config([]string{"./scene"})
	require.NoError(t, err)
	assert.Equal(t, []string{"./scene"}, patterns)
}

func TestConfig_RejectsBadEmit(t *testing.T) {
	f := &flags{dir: t.TempDir(), emit: []string{"java"}}
	_, _, _, err := f.config(nil)
	assert.ErrorContains(t, err, `unknown emit kind "java"`)
}

func TestCheck(t *testing.T) {
	disk := afero.NewMemMapFs()
	opts := generator.Options{OutDir: "/proj"}

	stale, report, err := check(context.Background(), disk, opts, []string{samplePkg})
	require.NoError(t, err)
	require.True(t, report.OK())
	assert.Len(t, stale, len(report.Artifacts), "everything is missing on an empty disk")

	exists, err := afero.Exists(disk, filepath.Join("/proj", "lualib", "Person.lua"))
	require.NoError(t, err)
	assert.False(t, exists, "check must not write to disk")

	_, err = generator.New(disk, opts).Run(context.Background(), samplePkg)
	require.NoError(t, err)
	stale, _, err = check(context.Background(), disk, opts, []string{samplePkg})
	require.NoError(t, err)
	assert.Empty(t, stale)

	edited := filepath.Join("/proj", "typings", "Person.d.ts")
	require.NoError(t, afero.WriteFile(disk, edited, []byte("// edited by hand\n"), 0o644))
	stale, _, err = check(context.Background(), disk, opts, []string{samplePkg})
	require.NoError(t, err)
	assert.Equal(t, []string{edited}, stale)
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/src/model/person.go", fsnotify.Write, true},
		{"/src/model/person.go", fsnotify.Create, true},
		{"/src/model/person.go", fsnotify.Remove, true},
		{"/src/model/person.go", fsnotify.Chmod, false},
		{"/src/model/person_test.go", fsnotify.Write, false},
		{"/src/model/access/person_access.go", fsnotify.Write, false},
		{"/src/model/person_access.go", fsnotify.Write, true},
		{"/src/lualib/Person.lua", fsnotify.Write, false},
	}
	for _, tt := range tests {
		got := relevant(fsnotify.Event{Name: tt.name, Op: tt.op}, "access")
		assert.Equal(t, tt.want, got, "%s %s", tt.op, tt.name)
	}
}

func TestSkipDir(t *testing.T) {
	assert.True(t, skipDir(".git"))
	assert.True(t, skipDir("node_modules"))
	assert.True(t, skipDir(".cache"))
	assert.False(t, skipDir("model"))
	assert.False(t, skipDir("."))
}

func TestDebouncer(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	for range 5 {
		d.Touch()
		time.Sleep(2 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())

	d.Touch()
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "stopped debouncer must not fire")
}

func TestPrintReport(t *testing.T) {
	var out, errOut bytes.Buffer
	report := &generator.Report{
		Roots:     []string{"Person", "Entity"},
		Written:   []string{"/proj/lualib/Person.lua"},
		Unchanged: []string{"/proj/lualib/Entity.lua"},
		Failures:  []generator.RootFailure{{Root: "Broken", Err: assert.AnError}},
	}
	printReport(&out, &errOut, "/proj", report)

	assert.Contains(t, out.String(), "wrote "+filepath.Join("lualib", "Person.lua"))
	assert.Contains(t, out.String(), "2 roots, 1 files written, 1 unchanged, 1 failed")
	assert.Contains(t, errOut.String(), "error: Broken: ")
}

func TestRootCmd_Flags(t *testing.T) {
	root := rootCmd()
	require.NoError(t, root.ParseFlags([]string{"-vv", "--lua-dir", "x"}))
	n, err := root.PersistentFlags().GetCount("verbose")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"generate", "check", "watch"})
}
