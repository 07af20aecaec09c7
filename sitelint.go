// Package sitelint checks a static blog repository: post front matter,
// fenced code blocks, stylesheet references in the site configuration and
// base URL overrides in deployment scripts.
package sitelint

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-repository-cache/cache"

	lintcmd "github.com/goliatone/go-sitelint/internal/commands/lint"
	"github.com/goliatone/go-sitelint/internal/lint"
	"github.com/goliatone/go-sitelint/internal/logging"
	"github.com/goliatone/go-sitelint/internal/markdown"
	"github.com/goliatone/go-sitelint/internal/runtimeconfig"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

// Config exports the linter configuration.
type Config = runtimeconfig.Config

// Finding exports a single lint finding.
type Finding = lint.Finding

// Severity exports finding severities.
type Severity = lint.Severity

// LintCommand exports the lint request.
type LintCommand = lintcmd.LintSiteCommand

// LintResult exports the lint outcome.
type LintResult = lintcmd.LintResult

// SaveBaselineCommand exports the baseline save request.
type SaveBaselineCommand = lintcmd.SaveBaselineCommand

// BaselineResult exports the baseline save outcome.
type BaselineResult = lintcmd.BaselineResult

// ClearBaselineCommand exports the baseline clear request.
type ClearBaselineCommand = lintcmd.ClearBaselineCommand

// NewPostCommand exports the post scaffold request.
type NewPostCommand = lintcmd.NewPostCommand

// DefaultBaselineFile is used when neither a command nor the configuration
// names a baseline database.
const DefaultBaselineFile = lintcmd.DefaultBaselineFile

// DefaultConfig returns the configuration of a stock Hugo site.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads .sitelint.{yaml,toml,json} from root, or file when set.
func LoadConfig(root, file string) (Config, string, error) {
	return runtimeconfig.Load(root, file)
}

// Option configures a Module.
type Option func(*lintcmd.Options)

// WithLoggerProvider routes module logs to provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *lintcmd.Options) { o.Logger = provider }
}

// WithOutput sets where reports are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *lintcmd.Options) { o.Out = w }
}

// WithColor toggles ANSI styling of text reports.
func WithColor(enabled bool) Option {
	return func(o *lintcmd.Options) { o.Color = enabled }
}

// WithConfigFile names the .sitelint file to read instead of searching the root.
func WithConfigFile(file string) Option {
	return func(o *lintcmd.Options) { o.ConfigFile = file }
}

// WithConfigOverride adjusts every loaded configuration before validation.
func WithConfigOverride(fn func(*Config)) Option {
	return func(o *lintcmd.Options) { o.Configure = fn }
}

// WithClock overrides time.Now, used for dates and the future-date rule.
func WithClock(now func() time.Time) Option {
	return func(o *lintcmd.Options) { o.Now = now }
}

// WithBaselineCache caches baseline reads through cacheService.
func WithBaselineCache(cacheService cache.CacheService, serializer cache.KeySerializer) Option {
	return func(o *lintcmd.Options) {
		o.BaselineCache = cacheService
		o.BaselineSerializer = serializer
	}
}

// Module is the top level sitelint runtime facade.
type Module struct {
	service  *lintcmd.Service
	handlers *lintcmd.HandlerSet
	logger   interfaces.Logger
}

// New constructs a module.
func New(opts ...Option) (*Module, error) {
	var cfg lintcmd.Options
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	service := lintcmd.NewService(cfg)
	handlers, err := lintcmd.RegisterLintCommands(nil, service, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Module{
		service:  service,
		handlers: handlers,
		logger:   logging.ModuleLogger(cfg.Logger, ""),
	}, nil
}

// Lint runs the linter and writes the report.
func (m *Module) Lint(ctx context.Context, cmd LintCommand) (*LintResult, error) {
	result := &LintResult{}
	cmd.Result = result
	if err := m.handlers.Lint.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveBaseline accepts every current finding.
func (m *Module) SaveBaseline(ctx context.Context, cmd SaveBaselineCommand) (*BaselineResult, error) {
	result := &BaselineResult{}
	cmd.Result = result
	if err := m.handlers.SaveBaseline.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return result, nil
}

// ClearBaseline removes every accepted finding.
func (m *Module) ClearBaseline(ctx context.Context, cmd ClearBaselineCommand) error {
	return m.handlers.ClearBaseline.Execute(ctx, cmd)
}

// NewPost scaffolds a post and returns its path relative to the root.
func (m *Module) NewPost(ctx context.Context, cmd NewPostCommand) (string, error) {
	result := &lintcmd.NewPostResult{}
	cmd.Result = result
	if err := m.handlers.NewPost.Execute(ctx, cmd); err != nil {
		return "", err
	}
	return result.Path, nil
}

// RuleStatus describes a registered rule under the configuration of a site.
type RuleStatus struct {
	ID          string
	Description string
	Severity    Severity
	Enabled     bool
}

// Rules lists the rules for the site at root, sorted by id.
func (m *Module) Rules(root string) ([]RuleStatus, error) {
	cfg, err := m.service.Config(root)
	if err != nil {
		return nil, err
	}
	registry, err := m.service.Registry(cfg)
	if err != nil {
		return nil, err
	}
	var out []RuleStatus
	for _, rule := range registry.All() {
		out = append(out, RuleStatus{
			ID:          rule.ID(),
			Description: rule.Description(),
			Severity:    registry.Severity(rule.ID()),
			Enabled:     registry.Enabled(rule.ID()),
		})
	}
	return out, nil
}

// Preview is a single post with its rendered body and findings.
type Preview struct {
	Post     *interfaces.Post
	HTML     []byte
	Findings []Finding
}

// Preview loads file (relative to root), renders its body with goldmark and
// collects the findings reported for it.
func (m *Module) Preview(ctx context.Context, root, file string) (*Preview, error) {
	cfg, err := m.service.Config(root)
	if err != nil {
		return nil, err
	}
	if filepath.IsAbs(file) {
		rel, err := filepath.Rel(cfg.Root, file)
		if err != nil {
			return nil, fmt.Errorf("sitelint: preview %s: %w", file, err)
		}
		file = rel
	}
	name := filepath.ToSlash(filepath.Clean(file))
	loader := markdown.NewLoader(os.DirFS(cfg.Root), markdown.LoaderConfig{Logger: m.logger})
	post, err := loader.LoadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	html, err := markdown.NewRenderer(markdown.RenderOptions{Unsafe: true}).Render(post.Body)
	if err != nil {
		return nil, err
	}

	result, err := m.service.Lint(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sitelint: preview lint: %w", err)
	}
	var findings []Finding
	for _, f := range result.Findings {
		if f.Path == post.Path {
			findings = append(findings, f)
		}
	}
	return &Preview{Post: post, HTML: html, Findings: findings}, nil
}
