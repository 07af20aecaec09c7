package lintcmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-sitelint/internal/lint"
	"github.com/goliatone/go-sitelint/pkg/testsupport"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := testsupport.WriteTree(root, testsupport.SampleSite()); err != nil {
		t.Fatalf("write site: %v", err)
	}
	return root
}

func newTestService(out *bytes.Buffer) *Service {
	return NewService(Options{Out: out, Now: func() time.Time { return fixedNow }})
}

func TestLintSiteReportsFindings(t *testing.T) {
	root := sampleSite(t)
	var out bytes.Buffer
	set, err := RegisterLintCommands(nil, newTestService(&out), nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var result LintResult
	msg := LintSiteCommand{Root: root, Format: "json", Result: &result}
	if err := set.Lint.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if result.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", result.ExitCode)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected one finding, got %+v", result.Findings)
	}
	finding := result.Findings[0]
	if finding.Rule != lint.RuleFrontMatterTitle || finding.Path != "content/posts/missing-title.md" {
		t.Fatalf("unexpected finding %+v", finding)
	}

	var payload struct {
		Summary struct {
			Errors int `json:"errors"`
			Posts  int `json:"posts"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out.String())
	}
	if payload.Summary.Errors != 1 || payload.Summary.Posts != 2 {
		t.Fatalf("unexpected summary %+v", payload.Summary)
	}
}

func TestLintSiteRuleOverrides(t *testing.T) {
	root := sampleSite(t)
	config := "rules:\n  frontmatter/title:\n    severity: warning\n"
	if err := os.WriteFile(filepath.Join(root, ".sitelint.yaml"), []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	service := newTestService(&out)

	result, err := service.LintSite(context.Background(), LintSiteCommand{Root: root, MaxWarnings: -1})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if result.ExitCode != 0 || result.Summary.Warnings != 1 {
		t.Fatalf("expected a single tolerated warning, got %+v", result.Summary)
	}

	result, err = service.LintSite(context.Background(), LintSiteCommand{Root: root, MaxWarnings: 0})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if result.ExitCode != 1 {
		t.Fatalf("expected warnings over the limit to fail, got %d", result.ExitCode)
	}
}

func TestBaselineSuppressesKnownFindings(t *testing.T) {
	var out bytes.Buffer
	exerciseBaselineCommands(t, sampleSite(t), newTestService(&out))
}

func TestCachedBaselineFollowsSaveAndClear(t *testing.T) {
	cfg := repocache.DefaultConfig()
	cfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	var out bytes.Buffer
	service := NewService(Options{
		Out:                &out,
		Now:                func() time.Time { return fixedNow },
		BaselineCache:      cacheService,
		BaselineSerializer: repocache.NewDefaultKeySerializer(),
	})

	saved := sampleSite(t)
	exerciseBaselineCommands(t, saved, service)

	// a second site linted through the same cache has its own baseline
	other := sampleSite(t)
	if _, err := service.SaveBaseline(context.Background(), SaveBaselineCommand{Root: saved}); err != nil {
		t.Fatalf("save baseline: %v", err)
	}
	warm, err := service.LintSite(context.Background(), LintSiteCommand{Root: saved, Baseline: DefaultBaselineFile})
	if err != nil || warm.Suppressed != 1 {
		t.Fatalf("expected saved baseline to suppress one finding, got %+v %v", warm, err)
	}
	if err := os.WriteFile(filepath.Join(other, DefaultBaselineFile), nil, 0o644); err != nil {
		t.Fatalf("create empty baseline: %v", err)
	}
	result, err := service.LintSite(context.Background(), LintSiteCommand{Root: other, Baseline: DefaultBaselineFile})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if result.Suppressed != 0 || len(result.Findings) != 1 {
		t.Fatalf("expected other site to ignore the first baseline, got %+v", result)
	}
}

func exerciseBaselineCommands(t *testing.T, root string, service *Service) {
	t.Helper()
	set, err := RegisterLintCommands(nil, service, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()

	var saved BaselineResult
	if err := set.SaveBaseline.Execute(ctx, SaveBaselineCommand{Root: root, Result: &saved}); err != nil {
		t.Fatalf("save baseline: %v", err)
	}
	if saved.Entries != 1 || saved.Path != DefaultBaselineFile {
		t.Fatalf("unexpected baseline result %+v", saved)
	}

	var result LintResult
	if err := set.Lint.Execute(ctx, LintSiteCommand{Root: root, Baseline: DefaultBaselineFile, Result: &result}); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if result.ExitCode != 0 || result.Suppressed != 1 || len(result.Findings) != 0 {
		t.Fatalf("expected finding to be suppressed, got %+v", result)
	}

	if err := set.ClearBaseline.Execute(ctx, ClearBaselineCommand{Root: root}); err != nil {
		t.Fatalf("clear baseline: %v", err)
	}
	result = LintResult{}
	if err := set.Lint.Execute(ctx, LintSiteCommand{Root: root, Baseline: DefaultBaselineFile, Result: &result}); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if result.ExitCode != 1 || result.Suppressed != 0 {
		t.Fatalf("expected finding after clearing baseline, got %+v", result)
	}
}

func TestLintSiteMissingBaselineIsIgnored(t *testing.T) {
	root := sampleSite(t)
	var out bytes.Buffer
	result, err := newTestService(&out).LintSite(context.Background(), LintSiteCommand{Root: root, Baseline: "missing.db"})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if result.Suppressed != 0 || len(result.Findings) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(filepath.Join(root, "missing.db")); !os.IsNotExist(err) {
		t.Fatalf("expected baseline file not to be created, got %v", err)
	}
}

func TestNewPostPassesLint(t *testing.T) {
	root := sampleSite(t)
	var out bytes.Buffer
	service := newTestService(&out)
	set, err := RegisterLintCommands(nil, service, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var created NewPostResult
	if err := set.NewPost.Execute(context.Background(), NewPostCommand{Root: root, Title: "Envoy external authorization", Result: &created}); err != nil {
		t.Fatalf("new post: %v", err)
	}
	if filepath.Dir(created.Path) != "content/posts" {
		t.Fatalf("expected post in content dir, got %s", created.Path)
	}

	result, err := service.LintSite(context.Background(), LintSiteCommand{Root: root})
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	for _, f := range result.Findings {
		if f.Path == created.Path {
			t.Fatalf("scaffolded post has finding %+v", f)
		}
	}
	if result.Summary.Posts != 3 {
		t.Fatalf("expected three posts, got %d", result.Summary.Posts)
	}
}

func TestMessagesValidate(t *testing.T) {
	var out bytes.Buffer
	set, err := RegisterLintCommands(nil, newTestService(&out), nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()

	cases := []struct {
		name string
		err  error
	}{
		{"lint without root", set.Lint.Execute(ctx, LintSiteCommand{})},
		{"lint unknown format", set.Lint.Execute(ctx, LintSiteCommand{Root: ".", Format: "xml"})},
		{"lint bad max warnings", set.Lint.Execute(ctx, LintSiteCommand{Root: ".", MaxWarnings: -2})},
		{"new post without title", set.NewPost.Execute(ctx, NewPostCommand{Root: "."})},
		{"new post escaping root", set.NewPost.Execute(ctx, NewPostCommand{Root: ".", Title: "x", Dir: "../elsewhere"})},
		{"new post escaping root after clean", set.NewPost.Execute(ctx, NewPostCommand{Root: ".", Title: "x", Dir: "content/../../x"})},
		{"new post absolute dir", set.NewPost.Execute(ctx, NewPostCommand{Root: ".", Title: "x", Dir: "/tmp/posts"})},
		{"baseline without root", set.SaveBaseline.Execute(ctx, SaveBaselineCommand{})},
	}
	for _, tc := range cases {
		if tc.err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !goerrors.IsCategory(tc.err, goerrors.CategoryValidation) {
			t.Fatalf("%s: expected validation category, got %v", tc.name, tc.err)
		}
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestRegisterLintCommands(t *testing.T) {
	reg := &recordingRegistry{}
	if _, err := RegisterLintCommands(reg, NewService(Options{}), nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.handlers) != 4 {
		t.Fatalf("expected 4 handlers, got %d", len(reg.handlers))
	}
	if _, err := RegisterLintCommands(reg, nil, nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}
