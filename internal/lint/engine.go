package lint

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-sitelint/internal/logging"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

const defaultWorkers = 4

// Result is the outcome of a lint run.
type Result struct {
	Findings []Finding
	Posts    int
	Rules    int
	Duration time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers bounds the number of posts checked concurrently. Values below
// one fall back to the default.
func WithWorkers(workers int) EngineOption {
	return func(e *Engine) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logging.Ensure(logger)
	}
}

// Engine runs the enabled rules of a registry against a site.
type Engine struct {
	registry *Registry
	workers  int
	logger   interfaces.Logger
}

// NewEngine returns an engine over registry.
func NewEngine(registry *Registry, opts ...EngineOption) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	e := &Engine{
		registry: registry,
		workers:  defaultWorkers,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the rules the engine runs.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Run checks every post with the post rules, then the site rules. Findings
// are sorted by path, line and rule, and carry their effective severity and
// fingerprint. A cancelled context aborts the run.
func (e *Engine) Run(ctx context.Context, site *Site) (*Result, error) {
	if site == nil {
		return nil, fmt.Errorf("lint: site is required")
	}
	start := time.Now()
	postRules, siteRules := e.registry.active()

	e.logger.WithContext(ctx).Debug("lint.run.started", "posts", len(site.Posts), "post_rules", len(postRules), "site_rules", len(siteRules))

	perPost, err := e.checkPosts(ctx, site, postRules)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for _, batch := range perPost {
		findings = append(findings, batch...)
	}
	for _, rule := range siteRules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		findings = append(findings, e.runSiteRule(ctx, site, rule)...)
	}

	for i := range findings {
		f := &findings[i]
		f.Severity = e.registry.Severity(f.Rule)
		f.Fingerprint = Fingerprint(f.Rule, f.Path, f.Message)
	}
	SortFindings(findings)

	result := &Result{
		Findings: findings,
		Posts:    len(site.Posts),
		Rules:    len(postRules) + len(siteRules),
		Duration: time.Since(start),
	}
	e.logger.WithContext(ctx).Info("lint.run.completed", "posts", result.Posts, "rules", result.Rules, "findings", len(findings), "duration", result.Duration)
	return result, nil
}

// checkPosts fans posts out to a bounded worker pool. Results are stored by
// post index so output order does not depend on scheduling.
func (e *Engine) checkPosts(ctx context.Context, site *Site, rules []PostRule) ([][]Finding, error) {
	out := make([][]Finding, len(site.Posts))
	if len(rules) == 0 || len(site.Posts) == 0 {
		return out, ctx.Err()
	}

	workers := e.workers
	if workers > len(site.Posts) {
		workers = len(site.Posts)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				post := site.Posts[idx]
				var found []Finding
				for _, rule := range rules {
					if ctx.Err() != nil {
						return
					}
					found = append(found, e.runPostRule(ctx, site, post, rule)...)
				}
				out[idx] = found
			}
		}()
	}

	for idx := range site.Posts {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) runPostRule(ctx context.Context, site *Site, post *interfaces.Post, rule PostRule) (found []Finding) {
	defer func() {
		if r := recover(); r != nil {
			logging.WithFinding(e.logger, post.Path, rule.ID()).Error("lint.rule.panic", "panic", r)
			found = []Finding{{Rule: rule.ID(), Path: post.Path, Message: fmt.Sprintf("rule failed: %v", r)}}
		}
	}()
	return stamp(rule.ID(), rule.CheckPost(ctx, site, post))
}

func (e *Engine) runSiteRule(ctx context.Context, site *Site, rule SiteRule) (found []Finding) {
	defer func() {
		if r := recover(); r != nil {
			logging.WithFinding(e.logger, "", rule.ID()).Error("lint.rule.panic", "panic", r)
			found = []Finding{{Rule: rule.ID(), Message: fmt.Sprintf("rule failed: %v", r)}}
		}
	}()
	return stamp(rule.ID(), rule.CheckSite(ctx, site))
}

// stamp makes sure every finding names the rule that produced it.
func stamp(id string, findings []Finding) []Finding {
	for i := range findings {
		if findings[i].Rule == "" {
			findings[i].Rule = id
		}
	}
	return findings
}
