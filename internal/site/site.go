// Package site assembles the snapshot the lint engine checks: site
// configuration, posts and deployment commands.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/goliatone/go-sitelint/internal/deploy"
	"github.com/goliatone/go-sitelint/internal/lint"
	"github.com/goliatone/go-sitelint/internal/logging"
	"github.com/goliatone/go-sitelint/internal/markdown"
	"github.com/goliatone/go-sitelint/internal/runtimeconfig"
	"github.com/goliatone/go-sitelint/internal/siteconfig"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

// Options controls Open.
type Options struct {
	Config runtimeconfig.Config
	// FS overrides the filesystem; defaults to os.DirFS(Config.Root).
	FS     fs.FS
	Logger interfaces.LoggerProvider
	// Now defaults to time.Now.
	Now func() time.Time
}

// Open reads the repository described by opts. A missing or broken site
// configuration is recorded on the snapshot for the site rules to report;
// problems reading posts or deployment files are returned as errors.
func Open(ctx context.Context, opts Options) (*lint.Site, error) {
	cfg := opts.Config
	fsys := opts.FS
	if fsys == nil {
		root := cfg.Root
		if root == "" {
			root = "."
		}
		fsys = os.DirFS(root)
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	logger := logging.SiteLogger(opts.Logger).WithContext(ctx)

	snapshot := &lint.Site{
		Root:      cfg.Root,
		FS:        fsys,
		AssetDirs: cfg.AssetDirs,
		Now:       now(),
	}

	name, err := siteconfig.Locate(fsys, cfg.ConfigFiles)
	switch {
	case errors.Is(err, siteconfig.ErrNotFound):
		logger.Warn("site.config.missing", "candidates", cfg.ConfigFiles)
	case err != nil:
		snapshot.ConfigErr = err
	default:
		loaded, err := siteconfig.Load(fsys, name, cfg.StylesheetKeys)
		if err != nil {
			logger.Warn("site.config.invalid", "path", name, "error", err)
			snapshot.ConfigErr = err
		} else {
			snapshot.Config = loaded
		}
	}

	loader := markdown.NewLoader(fsys, markdown.LoaderConfig{
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
		Logger:    logging.MarkdownLogger(opts.Logger),
	})
	posts, err := loader.LoadDirectory(ctx, cfg.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("site: load posts: %w", err)
	}
	snapshot.Posts = posts

	commands, broken, err := scanDeploy(fsys, cfg.Deploy)
	if err != nil {
		return nil, fmt.Errorf("site: scan deploy files: %w", err)
	}
	for _, parseErr := range broken {
		logger.Warn("site.deploy.invalid", "path", parseErr.Source, "error", parseErr.Err)
	}
	snapshot.Commands = commands
	snapshot.DeployErrors = broken

	logger.Debug("site.opened", "posts", len(posts), "commands", len(commands), "config", name)
	return snapshot, nil
}

// scanDeploy collects build commands. Unparseable files are returned
// separately so the remaining files and posts are still checked.
func scanDeploy(fsys fs.FS, cfg runtimeconfig.DeployConfig) ([]deploy.Command, []*deploy.ParseError, error) {
	var out []deploy.Command

	workflows, broken, err := deploy.ScanWorkflows(fsys, cfg.Workflows)
	if err != nil {
		return nil, nil, err
	}
	out = append(out, workflows...)

	netlify, err := deploy.ScanNetlify(fsys, cfg.Netlify)
	var parseErr *deploy.ParseError
	switch {
	case errors.As(err, &parseErr):
		broken = append(broken, parseErr)
	case err != nil:
		return nil, nil, err
	}
	out = append(out, netlify...)

	scripts, err := deploy.ScanScripts(fsys, cfg.Scripts)
	if err != nil {
		return nil, nil, err
	}
	out = append(out, scripts...)

	deploy.SortCommands(out)
	return out, broken, nil
}
