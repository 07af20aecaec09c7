package lint

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-sitelint/internal/markdown"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

const (
	RuleSlug       = "post/slug"
	RuleFutureDate = "post/future-date"
)

type slugRule struct{ ruleInfo }

func newSlugRule() PostRule {
	return slugRule{ruleInfo{
		id:          RuleSlug,
		description: "file name is a valid URL slug",
		severity:    SeverityWarning,
	}}
}

// CheckPost validates the file name, or the directory name for page bundles
// (index.md and _index.md). A slug set in front matter takes precedence over
// both.
func (r slugRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	candidate, source := postSlug(post)
	if candidate == "" || slug.IsValid(candidate) {
		return nil
	}
	msg := fmt.Sprintf("%s %q is not a valid slug", source, candidate)
	if normalized, err := slug.Normalize(candidate); err == nil && normalized != "" {
		msg += fmt.Sprintf(" (try %q)", normalized)
	}
	line := 0
	if source == "slug" {
		line = post.KeyLine("slug", 1)
	}
	return []Finding{r.finding(post.Path, line, msg)}
}

func postSlug(post *interfaces.Post) (string, string) {
	if value, ok := markdown.Lookup(post.FrontMatter, "slug").(string); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), "slug"
	}
	base := path.Base(post.Path)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "index" || name == "_index" {
		dir := path.Base(path.Dir(post.Path))
		if dir == "." || dir == "/" {
			return "", ""
		}
		return dir, "directory name"
	}
	return name, "file name"
}

type futureDateRule struct{ ruleInfo }

func newFutureDateRule() PostRule {
	return futureDateRule{ruleInfo{
		id:          RuleFutureDate,
		description: "published posts are not dated in the future",
		severity:    SeverityWarning,
	}}
}

// CheckPost flags non-draft posts the generator would skip without
// --buildFuture.
func (r futureDateRule) CheckPost(_ context.Context, site *Site, post *interfaces.Post) []Finding {
	if post.Draft || post.Date.IsZero() || site.Now.IsZero() || !post.Date.After(site.Now) {
		return nil
	}
	msg := fmt.Sprintf("post is dated %s, in the future; it will not be published until then", post.Date.Format("2006-01-02"))
	return []Finding{r.finding(post.Path, post.KeyLine("date", 1), msg)}
}
