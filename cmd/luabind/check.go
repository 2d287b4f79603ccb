package main

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chazu/luabind/generator"
)

func checkCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [packages...]",
		Short: "Report generated files that are missing or out of date",
		Long: `check generates everything in memory and compares it with the files on
disk. Nothing is written. It exits non-zero when a file would change or a
root fails, which makes it suitable for CI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, opts, patterns, err := f.config(args)
			if err != nil {
				return err
			}
			stale, report, err := check(cmd.Context(), afero.NewOsFs(), opts, patterns)
			if err != nil {
				return err
			}
			for _, fail := range report.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", fail)
			}
			for _, p := range stale {
				fmt.Fprintf(cmd.OutOrStdout(), "stale %s\n", rel(m.Dir, p))
			}
			switch {
			case !report.OK():
				return errors.Newf("%d roots failed", len(report.Failures)+len(report.Problems))
			case len(stale) > 0:
				return errors.Newf("%d generated files are out of date; run luabind generate", len(stale))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d files up to date\n", len(report.Unchanged))
			return nil
		},
	}
}

// check writes through a copy-on-write layer over disk, so files the
// generator would write are exactly the stale ones.
func check(ctx context.Context, disk afero.Fs, opts generator.Options, patterns []string) ([]string, *generator.Report, error) {
	overlay := afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(disk), afero.NewMemMapFs())
	report, err := generator.New(overlay, opts).Run(ctx, patterns...)
	if err != nil {
		return nil, nil, err
	}
	return report.Written, report, nil
}
