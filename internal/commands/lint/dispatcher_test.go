package lintcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-sitelint/internal/runtimeconfig"
)

// flakyConfig fails configuration validation for the first failures loads.
func flakyConfig(attempts *int, failures int) func(*runtimeconfig.Config) {
	return func(cfg *runtimeconfig.Config) {
		*attempts++
		if *attempts <= failures {
			cfg.Workers = -1
		}
	}
}

func TestDispatchedSaveBaselineRetriesUntilSuccess(t *testing.T) {
	root := sampleSite(t)
	var (
		out      bytes.Buffer
		attempts int
	)
	service := NewService(Options{
		Out:       &out,
		Now:       func() time.Time { return fixedNow },
		Configure: flakyConfig(&attempts, 1),
	})

	sub := dispatcher.SubscribeCommand(NewSaveBaselineHandler(service, nil), runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	var saved BaselineResult
	if err := dispatcher.Dispatch(context.Background(), SaveBaselineCommand{Root: root, Result: &saved}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if saved.Entries != 1 || saved.Path != DefaultBaselineFile {
		t.Fatalf("unexpected baseline result %+v", saved)
	}
	if _, err := os.Stat(filepath.Join(root, DefaultBaselineFile)); err != nil {
		t.Fatalf("expected baseline database: %v", err)
	}
}

func TestDispatchedLintRetryExhaustionPropagatesError(t *testing.T) {
	root := sampleSite(t)
	var (
		out      bytes.Buffer
		attempts int
	)
	service := NewService(Options{
		Out:       &out,
		Now:       func() time.Time { return fixedNow },
		Configure: flakyConfig(&attempts, 10),
	})

	sub := dispatcher.SubscribeCommand(NewLintSiteHandler(service, nil), runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	var result LintResult
	if err := dispatcher.Dispatch(context.Background(), LintSiteCommand{Root: root, Result: &result}); err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no report output, got %q", out.String())
	}
}
