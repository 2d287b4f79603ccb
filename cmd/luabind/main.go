// luabind generates gopher-lua adapters and editor typings for annotated Go
// types.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/luabind/generator"
	"github.com/chazu/luabind/manifest"
)

type flags struct {
	verbose       int
	dir           string
	accessPackage string
	luaDir        string
	tsDir         string
	tags          []string
	emit          []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "luabind",
		Short: "Generate gopher-lua adapters and Lua/TypeScript typings for Go types",
		Long: `luabind reads Go packages, finds types marked with //luabind:expose or
//luabind:external, and writes for each of them:

  <pkg>/access/<type>_access.go   gopher-lua adapter
  lualib/<Type>.lua               LuaLS annotations
  typings/<Type>.d.ts             TypeScriptToLua declarations

Settings come from the nearest luabind.toml; flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			commonlog.Configure(f.verbose, nil)
		},
	}

	pf := root.PersistentFlags()
	pf.CountVarP(&f.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	pf.StringVarP(&f.dir, "dir", "C", ".", "directory to run in")
	pf.StringVar(&f.accessPackage, "access-package", "", "sub-package adapters are generated into")
	pf.StringVar(&f.luaDir, "lua-dir", "", "directory for LuaLS typings")
	pf.StringVar(&f.tsDir, "typescript-dir", "", "directory for TypeScript typings")
	pf.StringSliceVar(&f.tags, "tags", nil, "build tags used when loading packages")
	pf.StringSliceVar(&f.emit, "emit", nil, "artifact kinds to produce: access, lua, typescript")

	root.AddCommand(
		generateCmd(f),
		checkCmd(f),
		watchCmd(f),
	)
	return root
}

// config resolves the manifest and applies flag overrides. Patterns given on
// the command line replace the configured packages.
func (f *flags) config(args []string) (*manifest.Manifest, generator.Options, []string, error) {
	m, err := manifest.FindAndLoad(f.dir)
	if err != nil {
		return nil, generator.Options{}, nil, err
	}
	g := &m.Generate
	if f.accessPackage != "" {
		g.AccessPackage = f.accessPackage
	}
	if f.luaDir != "" {
		g.LuaDir = f.luaDir
	}
	if f.tsDir != "" {
		g.TypeScriptDir = f.tsDir
	}
	if len(f.tags) > 0 {
		g.Tags = f.tags
	}
	if len(f.emit) > 0 {
		g.Emit = f.emit
	}
	if err := m.Validate(); err != nil {
		return nil, generator.Options{}, nil, err
	}

	patterns := g.Packages
	if len(args) > 0 {
		patterns = args
	}
	opts := generator.Options{
		Dir:           m.Dir,
		OutDir:        m.Dir,
		AccessPackage: g.AccessPackage,
		LuaDir:        g.LuaDir,
		TypeScriptDir: g.TypeScriptDir,
		Tags:          g.Tags,
		Emit:          g.Emit,
	}
	return m, opts, patterns, nil
}
