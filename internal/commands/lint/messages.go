package lintcmd

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitelint/internal/lint"
	"github.com/goliatone/go-sitelint/internal/report"
)

const (
	lintSiteMessageType      = "sitelint.lint.site"
	saveBaselineMessageType  = "sitelint.baseline.save"
	clearBaselineMessageType = "sitelint.baseline.clear"
	newPostMessageType       = "sitelint.post.new"
)

// LintSiteCommand lints the site at Root and writes a report.
type LintSiteCommand struct {
	Root string `json:"root"`
	// Format is text (default) or json.
	Format string `json:"format,omitempty"`
	// Baseline overrides the configured baseline database.
	Baseline string `json:"baseline,omitempty"`
	// MaxWarnings fails the run when exceeded; -1 never fails on warnings.
	MaxWarnings int `json:"max_warnings"`
	// Result receives the outcome when set.
	Result *LintResult `json:"-"`
}

// LintResult is filled in by the lint handler.
type LintResult struct {
	Findings   []lint.Finding
	Suppressed int
	// Stale counts baseline entries that no longer match a finding.
	Stale    int
	Summary  report.Summary
	ExitCode int
}

// Type implements command.Message.
func (LintSiteCommand) Type() string { return lintSiteMessageType }

// Validate ensures the message carries a root and a known format.
func (m LintSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Root, validation.By(requiredText("sitelint.lint.site.root_required", "root is required"))),
		validation.Field(&m.Format, validation.In(report.FormatText, report.FormatJSON).
			Error("format must be text or json")),
		validation.Field(&m.MaxWarnings, validation.Min(-1).Error("max_warnings must be -1 or greater")),
	)
}

// SaveBaselineCommand records the current findings as accepted.
type SaveBaselineCommand struct {
	Root     string          `json:"root"`
	Baseline string          `json:"baseline,omitempty"`
	Result   *BaselineResult `json:"-"`
}

// BaselineResult reports what was written.
type BaselineResult struct {
	Path    string
	Entries int
}

// Type implements command.Message.
func (SaveBaselineCommand) Type() string { return saveBaselineMessageType }

// Validate ensures a root is present.
func (m SaveBaselineCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Root, validation.By(requiredText("sitelint.baseline.save.root_required", "root is required"))),
	)
}

// ClearBaselineCommand removes every accepted finding.
type ClearBaselineCommand struct {
	Root     string `json:"root"`
	Baseline string `json:"baseline,omitempty"`
}

// Type implements command.Message.
func (ClearBaselineCommand) Type() string { return clearBaselineMessageType }

// Validate ensures a root is present.
func (m ClearBaselineCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Root, validation.By(requiredText("sitelint.baseline.clear.root_required", "root is required"))),
	)
}

// NewPostCommand scaffolds a post under the content directory.
type NewPostCommand struct {
	Root  string `json:"root"`
	Title string `json:"title"`
	// Dir defaults to the configured content directory.
	Dir    string         `json:"dir,omitempty"`
	Draft  bool           `json:"draft,omitempty"`
	Tags   []string       `json:"tags,omitempty"`
	Result *NewPostResult `json:"-"`
}

// NewPostResult holds the created file, relative to the root.
type NewPostResult struct {
	Path string
}

// Type implements command.Message.
func (NewPostCommand) Type() string { return newPostMessageType }

// Validate ensures root and title are present and Dir stays inside the root.
func (m NewPostCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Root, validation.By(requiredText("sitelint.post.new.root_required", "root is required"))),
		validation.Field(&m.Title, validation.By(requiredText("sitelint.post.new.title_required", "title is required"))),
		validation.Field(&m.Dir, validation.By(func(value any) error {
			dir, _ := value.(string)
			if dir != "" && !filepath.IsLocal(filepath.Clean(filepath.FromSlash(dir))) {
				return validation.NewError("sitelint.post.new.dir_outside_root", "dir must be relative to the root")
			}
			return nil
		})),
	)
}

func requiredText(code, message string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
