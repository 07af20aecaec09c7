package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitelint"
)

func newBaselineCommand(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage accepted findings",
	}
	cmd.PersistentFlags().StringVar(&path, "baseline", "", "baseline database (default is the configured one or "+sitelint.DefaultBaselineFile+")")

	save := &cobra.Command{
		Use:   "save",
		Short: "Accept every current finding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.module.SaveBaseline(cmd.Context(), sitelint.SaveBaselineCommand{Root: a.config.Root, Baseline: path})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d findings to %s\n", result.Entries, result.Path)
			return nil
		},
	}
	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove every accepted finding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.module.ClearBaseline(cmd.Context(), sitelint.ClearBaselineCommand{Root: a.config.Root, Baseline: path})
		},
	}
	cmd.AddCommand(save, clear)
	return cmd
}
