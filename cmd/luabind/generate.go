package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chazu/luabind/diag"
	"github.com/chazu/luabind/generator"
)

func generateCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [packages...]",
		Short: "Write adapters and typings",
		Example: `  luabind generate
  luabind generate ./model/...
  luabind generate --emit lua,typescript`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, opts, patterns, err := f.config(args)
			if err != nil {
				return err
			}
			report, err := generator.New(afero.NewOsFs(), opts).Run(cmd.Context(), patterns...)
			if report != nil {
				printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), m.Dir, report)
			}
			if err != nil {
				return err
			}
			if !report.OK() {
				return errors.Newf("%d of %d roots failed", len(report.Failures)+len(report.Problems), len(report.Roots))
			}
			return nil
		},
	}
}

// printReport writes diagnostics to errw and a per-file summary to w.
func printReport(w, errw io.Writer, base string, report *generator.Report) {
	for _, d := range report.Diagnostics {
		if d.Severity == diag.Warning {
			fmt.Fprintln(errw, d)
		}
	}
	for _, err := range report.Problems {
		fmt.Fprintf(errw, "error: %v\n", err)
	}
	for _, fail := range report.Failures {
		fmt.Fprintf(errw, "error: %s\n", fail)
	}
	for _, p := range report.Written {
		fmt.Fprintf(w, "wrote %s\n", rel(base, p))
	}
	fmt.Fprintf(w, "%d roots, %d files written, %d unchanged, %d failed\n",
		len(report.Roots), len(report.Written), len(report.Unchanged), len(report.Failures))
}

func rel(base, p string) string {
	if r, err := filepath.Rel(base, p); err == nil {
		return r
	}
	return p
}
