package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitelint"
	"github.com/goliatone/go-sitelint/internal/watch"
)

func newWatchCommand(a *app) *cobra.Command {
	var (
		baseline string
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Lint again whenever posts, assets or build files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			lintOnce := func(ctx context.Context) error {
				_, err := a.module.Lint(ctx, sitelint.LintCommand{Root: a.config.Root, Baseline: baseline, MaxWarnings: -1})
				return err
			}
			if err := lintOnce(ctx); err != nil {
				return err
			}

			watcher, err := watch.New(watchPaths(a.config),
				watch.WithDebounce(debounce),
				watch.WithLogger(a.provider),
			)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes, press Ctrl+C to stop")
			return watcher.Run(ctx, func(ctx context.Context, changed []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d file(s) changed\n", len(changed))
				return lintOnce(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&baseline, "baseline", "", "baseline database suppressing known findings")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before linting again")
	return cmd
}

// watchPaths lists every existing input of a lint run.
func watchPaths(cfg sitelint.Config) []string {
	candidates := []string{cfg.ContentDir, cfg.Deploy.Workflows, cfg.Deploy.Netlify}
	candidates = append(candidates, cfg.AssetDirs...)
	candidates = append(candidates, cfg.ConfigFiles...)
	candidates = append(candidates, cfg.Deploy.Scripts...)

	seen := map[string]bool{}
	var out []string
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(cfg.Root, filepath.FromSlash(candidate)))
		if err != nil {
			continue
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			if _, err := os.Stat(match); err == nil {
				seen[match] = true
				out = append(out, match)
			}
		}
	}
	return out
}
