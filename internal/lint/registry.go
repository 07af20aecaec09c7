package lint

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrRuleInvalid   = errors.New("lint: rule must have an id")
	ErrRuleDuplicate = errors.New("lint: rule already registered")
	ErrRuleUnknown   = errors.New("lint: unknown rule")
	ErrRuleKind      = errors.New("lint: rule implements neither PostRule nor SiteRule")
)

// Override changes how a registered rule runs.
type Override struct {
	Enabled  *bool
	Severity Severity
}

// Registry holds the rules known to an engine together with their overrides.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string]Rule
	disabled map[string]bool
	severity map[string]Severity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:    map[string]Rule{},
		disabled: map[string]bool{},
		severity: map[string]Severity{},
	}
}

// Register adds rules, rejecting duplicates.
func (r *Registry) Register(rules ...Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range rules {
		if rule == nil || strings.TrimSpace(rule.ID()) == "" {
			return ErrRuleInvalid
		}
		_, isPost := rule.(PostRule)
		_, isSite := rule.(SiteRule)
		if !isPost && !isSite {
			return fmt.Errorf("%w: %s", ErrRuleKind, rule.ID())
		}
		if _, exists := r.rules[rule.ID()]; exists {
			return fmt.Errorf("%w: %s", ErrRuleDuplicate, rule.ID())
		}
		r.rules[rule.ID()] = rule
	}
	return nil
}

// Configure applies an override to a registered rule.
func (r *Registry) Configure(id string, override Override) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRuleUnknown, id)
	}
	if override.Enabled != nil {
		r.disabled[id] = !*override.Enabled
	}
	if override.Severity != "" {
		sev, err := ParseSeverity(string(override.Severity))
		if err != nil {
			return fmt.Errorf("lint: rule %s: %w", id, err)
		}
		r.severity[id] = sev
	}
	return nil
}

// Rule returns the rule registered under id.
func (r *Registry) Rule(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	return rule, ok
}

// All returns every registered rule sorted by id.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Enabled reports whether id is registered and not disabled.
func (r *Registry) Enabled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rules[id]
	return ok && !r.disabled[id]
}

// Severity returns the effective severity of id.
func (r *Registry) Severity(id string) Severity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sev, ok := r.severity[id]; ok {
		return sev
	}
	if rule, ok := r.rules[id]; ok {
		return rule.DefaultSeverity()
	}
	return SeverityError
}

// active splits the enabled rules by kind.
func (r *Registry) active() ([]PostRule, []SiteRule) {
	var (
		posts []PostRule
		sites []SiteRule
	)
	for _, rule := range r.All() {
		if !r.Enabled(rule.ID()) {
			continue
		}
		if pr, ok := rule.(PostRule); ok {
			posts = append(posts, pr)
		}
		if sr, ok := rule.(SiteRule); ok {
			sites = append(sites, sr)
		}
	}
	return posts, sites
}
