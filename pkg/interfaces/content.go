package interfaces

import (
	"strings"
	"time"
)

// Post is a Markdown article loaded from the content directory.
type Post struct {
	// Path is slash separated and relative to the site root.
	Path string
	// Format names the front matter syntax: yaml, toml or json.
	Format string
	Title  string
	Date   time.Time
	// DateRaw keeps the original front matter value so rules can report
	// unparseable dates verbatim.
	DateRaw any
	Draft   bool
	// FrontMatter holds every key from the metadata block.
	FrontMatter map[string]any
	// FrontMatterErr is set when the metadata block is missing or malformed.
	FrontMatterErr error
	// KeyLines maps lower-cased top-level front matter keys to their line.
	KeyLines map[string]int
	Body     []byte
	// BodyLine is the 1-based line in the file where Body starts.
	BodyLine     int
	CodeBlocks   []CodeBlock
	Checksum     []byte
	LastModified time.Time
}

// HasKey reports whether the front matter declares key.
func (p *Post) HasKey(key string) bool {
	if p == nil || p.FrontMatter == nil {
		return false
	}
	_, ok := p.FrontMatter[key]
	return ok
}

// KeyLine returns the line declaring key, or fallback when it is unknown.
func (p *Post) KeyLine(key string, fallback int) int {
	if p == nil {
		return fallback
	}
	if line, ok := p.KeyLines[strings.ToLower(key)]; ok {
		return line
	}
	return fallback
}

// CodeBlock is a fenced code block found in a post body.
type CodeBlock struct {
	Fence     string
	Info      string
	StartLine int
	// EndLine is zero when the block is never closed.
	EndLine int
	Closed  bool
}

// Language returns the first word of the info string.
func (b CodeBlock) Language() string {
	for i, r := range b.Info {
		if r == ' ' || r == '\t' || r == '{' {
			return b.Info[:i]
		}
	}
	return b.Info
}

// SiteConfig is the projection of the site generator configuration file that
// the linter cares about.
type SiteConfig struct {
	Path    string
	Format  string
	BaseURL string
	// BaseURLSet distinguishes an explicit empty value from a missing key.
	BaseURLSet  bool
	Title       string
	Params      map[string]any
	Stylesheets []ConfigEntry
}

// ConfigEntry is one value read from the site configuration together with the
// key it came from.
type ConfigEntry struct {
	Key   string
	Value string
}
