package lint

import (
	"context"
	"io/fs"
	"time"

	"github.com/goliatone/go-sitelint/internal/deploy"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

// Site is the snapshot of a repository that rules inspect.
type Site struct {
	Root string
	// FS is rooted at Root.
	FS fs.FS
	// Config is nil when no configuration file was found or it failed to
	// load; ConfigErr then explains why.
	Config    *interfaces.SiteConfig
	ConfigErr error
	AssetDirs []string
	Posts     []*interfaces.Post
	// Commands are the build commands found in deployment files.
	Commands []deploy.Command
	// DeployErrors lists deployment files that could not be parsed.
	DeployErrors []*deploy.ParseError
	// Now is the reference time for date checks.
	Now time.Time
}

// Rule is implemented by every check. A rule also implements PostRule,
// SiteRule or both.
type Rule interface {
	ID() string
	Description() string
	DefaultSeverity() Severity
}

// PostRule checks a single post. It must be safe for concurrent use.
type PostRule interface {
	Rule
	CheckPost(ctx context.Context, site *Site, post *interfaces.Post) []Finding
}

// SiteRule checks the repository as a whole.
type SiteRule interface {
	Rule
	CheckSite(ctx context.Context, site *Site) []Finding
}

type ruleInfo struct {
	id          string
	description string
	severity    Severity
}

func (r ruleInfo) ID() string                { return r.id }
func (r ruleInfo) Description() string       { return r.description }
func (r ruleInfo) DefaultSeverity() Severity { return r.severity }

func (r ruleInfo) finding(path string, line int, message string) Finding {
	return Finding{Rule: r.id, Path: path, Line: line, Message: message}
}
