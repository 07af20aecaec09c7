package lintcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-repository-cache/cache"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-sitelint/internal/baseline"
	"github.com/goliatone/go-sitelint/internal/commands"
	"github.com/goliatone/go-sitelint/internal/lint"
	"github.com/goliatone/go-sitelint/internal/logging"
	"github.com/goliatone/go-sitelint/internal/report"
	"github.com/goliatone/go-sitelint/internal/runtimeconfig"
	"github.com/goliatone/go-sitelint/internal/scaffold"
	"github.com/goliatone/go-sitelint/internal/site"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

// DefaultBaselineFile is used by baseline commands when neither the message
// nor the configuration names a database.
const DefaultBaselineFile = ".sitelint-baseline.db"

// Options wires the service to its collaborators.
type Options struct {
	Logger interfaces.LoggerProvider
	// Out receives reports; defaults to os.Stdout.
	Out   io.Writer
	Color bool
	// ConfigFile names an explicit .sitelint file, relative to the root.
	ConfigFile string
	// Configure adjusts the loaded configuration, e.g. from CLI flags.
	Configure func(*runtimeconfig.Config)
	Now       func() time.Time
	// BaselineCache enables cached baseline reads when both are set.
	BaselineCache      cache.CacheService
	BaselineSerializer cache.KeySerializer
}

// Service implements the operations behind the lint commands.
type Service struct {
	opts   Options
	logger interfaces.Logger
}

// NewService returns a service with defaults applied.
func NewService(opts Options) *Service {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts, logger: logging.LintLogger(opts.Logger)}
}

// Config loads and validates the configuration for root.
func (s *Service) Config(root string) (runtimeconfig.Config, error) {
	cfg, used, err := runtimeconfig.Load(root, s.opts.ConfigFile)
	if err != nil {
		return runtimeconfig.Config{}, err
	}
	if s.opts.Configure != nil {
		s.opts.Configure(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return runtimeconfig.Config{}, err
	}
	if used != "" {
		s.logger.Debug("lint.config.loaded", "path", used)
	}
	return cfg, nil
}

// Registry returns the built-in rules with the configured overrides applied.
func (s *Service) Registry(cfg runtimeconfig.Config) (*lint.Registry, error) {
	var opts lint.Options
	if path := strings.TrimSpace(cfg.FrontMatterSchema); path != "" {
		schema, err := compileSchema(cfg.Root, path)
		if err != nil {
			return nil, err
		}
		opts.FrontMatterSchema = schema
	}

	registry, err := lint.DefaultRegistry(opts)
	if err != nil {
		return nil, err
	}
	for id, rule := range cfg.Rules {
		override := lint.Override{Enabled: rule.Enabled, Severity: lint.Severity(rule.Severity)}
		if err := registry.Configure(id, override); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Lint runs every enabled rule against the site described by cfg.
func (s *Service) Lint(ctx context.Context, cfg runtimeconfig.Config) (*lint.Result, error) {
	ctx, cancel := commands.Deadline(ctx, cfg.Timeout)
	defer cancel()

	registry, err := s.Registry(cfg)
	if err != nil {
		return nil, err
	}
	snapshot, err := site.Open(ctx, site.Options{Config: cfg, Logger: s.opts.Logger, Now: s.opts.Now})
	if err != nil {
		return nil, err
	}
	engine := lint.NewEngine(registry,
		lint.WithWorkers(cfg.Workers),
		lint.WithLogger(s.logger),
	)
	return engine.Run(ctx, snapshot)
}

// LintSite implements LintSiteCommand.
func (s *Service) LintSite(ctx context.Context, msg LintSiteCommand) (*LintResult, error) {
	cfg, err := s.Config(msg.Root)
	if err != nil {
		return nil, err
	}
	result, err := s.Lint(ctx, cfg)
	if err != nil {
		return nil, err
	}

	out := &LintResult{Findings: result.Findings}
	if path := pick(msg.Baseline, cfg.Baseline); path != "" {
		if err := s.applyBaseline(ctx, cfg.Root, path, out); err != nil {
			return nil, err
		}
	}

	format := msg.Format
	if format == "" {
		format = report.FormatText
	}
	rep := report.Report{
		Findings:   out.Findings,
		Suppressed: out.Suppressed,
		Posts:      result.Posts,
		Duration:   result.Duration,
	}
	if err := report.Write(s.opts.Out, format, rep, report.Options{Color: s.opts.Color}); err != nil {
		return nil, err
	}
	out.Summary = report.Summarize(rep)
	out.ExitCode = report.ExitCode(out.Summary, msg.MaxWarnings)
	return out, nil
}

func (s *Service) applyBaseline(ctx context.Context, root, path string, out *LintResult) error {
	target := resolve(root, path)
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("lint.baseline.missing", "path", path)
		return nil
	}

	repo, closeFn, err := s.openBaseline(ctx, target)
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("lintcmd: list baseline: %w", err)
	}
	kept, suppressed := baseline.Filter(out.Findings, entries)
	out.Findings = kept
	out.Suppressed = len(suppressed)
	out.Stale = len(baseline.Stale(entries, suppressed))
	if out.Stale > 0 {
		s.logger.Info("lint.baseline.stale", "entries", out.Stale, "path", path)
	}
	return nil
}

// SaveBaseline implements SaveBaselineCommand.
func (s *Service) SaveBaseline(ctx context.Context, msg SaveBaselineCommand) (*BaselineResult, error) {
	cfg, err := s.Config(msg.Root)
	if err != nil {
		return nil, err
	}
	result, err := s.Lint(ctx, cfg)
	if err != nil {
		return nil, err
	}

	path := pick(msg.Baseline, cfg.Baseline, DefaultBaselineFile)
	repo, closeFn, err := s.openBaseline(ctx, resolve(cfg.Root, path))
	if err != nil {
		return nil, err
	}
	defer closeFn()

	entries := baseline.FromFindings(result.Findings, s.opts.Now())
	if err := repo.Replace(ctx, entries); err != nil {
		return nil, fmt.Errorf("lintcmd: save baseline: %w", err)
	}
	logging.BaselineLogger(s.opts.Logger).Info("baseline.saved", "path", path, "entries", len(entries))
	return &BaselineResult{Path: path, Entries: len(entries)}, nil
}

// ClearBaseline implements ClearBaselineCommand. A missing database is not
// an error.
func (s *Service) ClearBaseline(ctx context.Context, msg ClearBaselineCommand) error {
	cfg, err := s.Config(msg.Root)
	if err != nil {
		return err
	}
	target := resolve(cfg.Root, pick(msg.Baseline, cfg.Baseline, DefaultBaselineFile))
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	repo, closeFn, err := s.openBaseline(ctx, target)
	if err != nil {
		return err
	}
	defer closeFn()
	return repo.Clear(ctx)
}

// NewPost implements NewPostCommand.
func (s *Service) NewPost(_ context.Context, msg NewPostCommand) (*NewPostResult, error) {
	cfg, err := s.Config(msg.Root)
	if err != nil {
		return nil, err
	}
	path, err := scaffold.NewPost(scaffold.PostOptions{
		Root:  cfg.Root,
		Dir:   pick(msg.Dir, cfg.ContentDir),
		Title: msg.Title,
		Draft: msg.Draft,
		Tags:  msg.Tags,
		Now:   s.opts.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &NewPostResult{Path: path}, nil
}

func (s *Service) openBaseline(ctx context.Context, path string) (baseline.Repository, func(), error) {
	db, err := baseline.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	repo := baseline.NewScopedBunRepositoryWithCache(db, path, s.opts.BaselineCache, s.opts.BaselineSerializer)
	return repo, func() { _ = db.Close() }, nil
}

func compileSchema(root, path string) (*jsonschema.Schema, error) {
	file, err := os.Open(resolve(root, path))
	if err != nil {
		return nil, fmt.Errorf("lintcmd: open front matter schema: %w", err)
	}
	defer file.Close()
	return lint.CompileFrontMatterSchema(path, file)
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func pick(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
