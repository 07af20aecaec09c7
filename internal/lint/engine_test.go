package lint

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-sitelint/internal/deploy"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

func sampleSite() *Site {
	return &Site{
		Root: ".",
		FS:   fstest.MapFS{"static/css/custom.css": {Data: []byte("body{}")}},
		Config: &interfaces.SiteConfig{
			Path:       "hugo.toml",
			BaseURL:    "https://example.github.io/blog/",
			BaseURLSet: true,
			Stylesheets: []interfaces.ConfigEntry{
				{Key: "params.custom_css", Value: "css/custom.css"},
				{Key: "params.custom_css", Value: "css/gone.css"},
			},
		},
		Posts: []*interfaces.Post{
			post("content/posts/b-post.md", "---\ntitle: B\ndate: 2024-01-01\n---\n\n```go\nx\n"),
			post("content/posts/a-post.md", "---\ndate: 2024-01-01\n---\n"),
			post("content/posts/c-post.md", "---\ntitle: C\ndate: 2024-01-01\n---\n"),
		},
		Commands: []deploy.Command{
			{Source: "Makefile", Line: 4, Origin: "Makefile", Text: "hugo -b https://example.github.io/blog/"},
		},
		Now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEngineRun(t *testing.T) {
	registry, err := DefaultRegistry(Options{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	result, err := NewEngine(registry, WithWorkers(2)).Run(context.Background(), sampleSite())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := make([]string, 0, len(result.Findings))
	for _, f := range result.Findings {
		got = append(got, fmt.Sprintf("%s:%d %s %s", f.Path, f.Line, f.Rule, f.Severity))
		if f.Fingerprint == "" {
			t.Fatalf("expected fingerprint on %+v", f)
		}
	}
	want := []string{
		"Makefile:4 deploy/base-url-flag error",
		"content/posts/a-post.md:1 frontmatter/title error",
		"content/posts/b-post.md:6 markdown/fence error",
		"hugo.toml:0 site/stylesheets error",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected findings:\n got %v\nwant %v", got, want)
	}
	if result.Posts != 3 || result.Rules != 12 {
		t.Fatalf("unexpected counters %+v", result)
	}
}

func TestEngineOutputDoesNotDependOnWorkers(t *testing.T) {
	registry, err := DefaultRegistry(Options{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	one, err := NewEngine(registry, WithWorkers(1)).Run(context.Background(), sampleSite())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	many, err := NewEngine(registry, WithWorkers(16)).Run(context.Background(), sampleSite())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(one.Findings, many.Findings) {
		t.Fatalf("findings differ between worker counts")
	}
}

func TestEngineAppliesOverrides(t *testing.T) {
	registry, err := DefaultRegistry(Options{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	off := false
	if err := registry.Configure(RuleBaseURLFlag, Override{Enabled: &off}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := registry.Configure(RuleFence, Override{Severity: SeverityWarning}); err != nil {
		t.Fatalf("configure: %v", err)
	}

	result, err := NewEngine(registry).Run(context.Background(), sampleSite())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, f := range result.Findings {
		if f.Rule == RuleBaseURLFlag {
			t.Fatalf("disabled rule reported %+v", f)
		}
		if f.Rule == RuleFence && f.Severity != SeverityWarning {
			t.Fatalf("expected severity override, got %+v", f)
		}
	}
}

func TestEngineRecoversFromPanickingRule(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(newStubRule("test/panic", SeverityError, func(*interfaces.Post) []Finding {
		panic("boom")
	})); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := NewEngine(registry).Run(context.Background(), &Site{Posts: []*interfaces.Post{post("a.md", "x")}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].Message != "rule failed: boom" {
		t.Fatalf("unexpected findings %+v", result.Findings)
	}
}

func TestEngineHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	registry, err := DefaultRegistry(Options{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if _, err := NewEngine(registry).Run(ctx, sampleSite()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEngineRequiresSite(t *testing.T) {
	if _, err := NewEngine(nil).Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil site")
	}
}
