package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spa/internal/depcheck"
	"github.com/vango-dev/spa/internal/errors"
)

func checkDepsCmd() *cobra.Command {
	var (
		modFile string
		tests   bool
	)

	cmd := &cobra.Command{
		Use:   "check-deps [dir]",
		Short: "Compare imports with go.mod requirements",
		Long: `Compare the third-party imports of a source tree with the direct
requirements of its go.mod.

Requirements nothing imports are reported as superfluous. Imported
modules that are not required are reported as missing, together with
the files that import them, and make the command fail.

Examples:
  spa check-deps
  spa check-deps ./service
  spa check-deps src -m go.mod
  spa check-deps --tests`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runCheckDeps(cmd, dir, modFile, tests)
		},
	}

	cmd.Flags().StringVarP(&modFile, "mod", "m", "", "Module file to check against (default <dir>/go.mod)")
	cmd.Flags().BoolVar(&tests, "tests", false, "Also scan _test.go files")

	return cmd
}

func runCheckDeps(cmd *cobra.Command, dir, modFile string, tests bool) error {
	report, err := depcheck.Check(cmd.Context(), depcheck.Options{
		Dir:          dir,
		ModFile:      modFile,
		IncludeTests: tests,
	})
	if err != nil {
		return err
	}

	name := report.Module
	if name == "" {
		name = filepath.Base(dir)
	}
	depcheck.Print(cmd.OutOrStdout(), name, report)

	if len(report.Superfluous) > 0 {
		warn(cmd.ErrOrStderr(), "%d superfluous requirement(s)", len(report.Superfluous))
	}
	if !report.OK() {
		return errors.New("E163").
			WithDetailf("%d imported module(s) are not required by %s", len(report.Missing), name)
	}
	return nil
}
