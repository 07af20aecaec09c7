package lint

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

type onlyInfoRule struct{ ruleInfo }

type stubPostRule struct {
	ruleInfo
	check func(*interfaces.Post) []Finding
}

func (r stubPostRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	return r.check(post)
}

func newStubRule(id string, sev Severity, check func(*interfaces.Post) []Finding) stubPostRule {
	return stubPostRule{ruleInfo: ruleInfo{id: id, description: id, severity: sev}, check: check}
}

func TestRegistryRejectsInvalidRules(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(onlyInfoRule{ruleInfo{id: "x/y"}}); !errors.Is(err, ErrRuleKind) {
		t.Fatalf("expected ErrRuleKind, got %v", err)
	}
	if err := registry.Register(newStubRule("", SeverityError, nil)); !errors.Is(err, ErrRuleInvalid) {
		t.Fatalf("expected ErrRuleInvalid, got %v", err)
	}
	if err := registry.Register(newStubRule("x/a", SeverityError, nil)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(newStubRule("x/a", SeverityError, nil)); !errors.Is(err, ErrRuleDuplicate) {
		t.Fatalf("expected ErrRuleDuplicate, got %v", err)
	}
}

func TestRegistryConfigure(t *testing.T) {
	registry, err := DefaultRegistry(Options{})
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	if len(registry.All()) != 12 {
		t.Fatalf("expected 12 built-in rules, got %d", len(registry.All()))
	}

	disabled := false
	if err := registry.Configure(RuleFenceLanguage, Override{Enabled: &disabled}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if registry.Enabled(RuleFenceLanguage) {
		t.Fatal("expected rule to be disabled")
	}
	if err := registry.Configure(RuleSlug, Override{Severity: "error"}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if registry.Severity(RuleSlug) != SeverityError {
		t.Fatalf("expected severity override, got %s", registry.Severity(RuleSlug))
	}
	if registry.Severity(RuleFutureDate) != SeverityWarning {
		t.Fatalf("expected default severity, got %s", registry.Severity(RuleFutureDate))
	}
	if err := registry.Configure("nope/rule", Override{}); !errors.Is(err, ErrRuleUnknown) {
		t.Fatalf("expected ErrRuleUnknown, got %v", err)
	}
	if err := registry.Configure(RuleSlug, Override{Severity: "loud"}); !errors.Is(err, ErrSeverityInvalid) {
		t.Fatalf("expected ErrSeverityInvalid, got %v", err)
	}

	posts, sites := registry.active()
	if len(posts) != 8 || len(sites) != 3 {
		t.Fatalf("expected 8 post rules and 3 site rules, got %d and %d", len(posts), len(sites))
	}
}
