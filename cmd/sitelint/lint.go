package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitelint"
)

func newLintCommand(a *app) *cobra.Command {
	var (
		format      string
		baseline    string
		maxWarnings int
	)
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Lint the site and report findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.module.Lint(cmd.Context(), sitelint.LintCommand{
				Root:        a.config.Root,
				Format:      format,
				Baseline:    baseline,
				MaxWarnings: maxWarnings,
			})
			if err != nil {
				return err
			}
			if result.ExitCode != exitOK {
				return exitCodeError{code: exitFailure}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "report format: text or json")
	cmd.Flags().StringVar(&baseline, "baseline", "", "baseline database suppressing known findings")
	cmd.Flags().IntVar(&maxWarnings, "max-warnings", -1, "fail when warnings exceed this number (-1 disables)")
	return cmd
}
