package markdown

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

var (
	// ErrNoFrontMatter is reported for files that do not open with a
	// front matter delimiter.
	ErrNoFrontMatter = errors.New("markdown: front matter not found")
	// ErrUnterminatedFrontMatter is reported when the closing delimiter is missing.
	ErrUnterminatedFrontMatter = errors.New("markdown: front matter is not terminated")
)

// Front matter formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// DateLayouts are tried in order when a date is given as a string.
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type block struct {
	format   string
	open     string
	close    string
	bodyLine int
}

var delimiters = []struct {
	open, close, format string
}{
	{"---", "---", FormatYAML},
	{"---yaml", "---", FormatYAML},
	{"+++", "+++", FormatTOML},
	{"---toml", "---", FormatTOML},
	{";;;", ";;;", FormatJSON},
	{"---json", "---", FormatJSON},
	{"{", "}", FormatJSON},
}

var utf8BOM = []byte("\ufeff")

// locateBlock finds the front matter delimiters and the line where the body
// starts. It does not decode anything.
func locateBlock(lines []string) (block, error) {
	if len(lines) == 0 {
		return block{bodyLine: 1}, ErrNoFrontMatter
	}
	first := strings.TrimRight(strings.TrimPrefix(lines[0], "\ufeff"), " \t")
	for _, d := range delimiters {
		if first != d.open {
			continue
		}
		for i := 1; i < len(lines); i++ {
			if strings.TrimRight(lines[i], " \t") == d.close {
				return block{format: d.format, open: d.open, close: d.close, bodyLine: i + 2}, nil
			}
		}
		return block{format: d.format, open: d.open, close: d.close, bodyLine: 1}, ErrUnterminatedFrontMatter
	}
	return block{bodyLine: 1}, ErrNoFrontMatter
}

// ParseFrontMatter decodes the metadata block of source and returns it with
// the remaining body and the detected format.
func ParseFrontMatter(source []byte) (map[string]any, []byte, string, error) {
	res := parse(source)
	return res.meta, res.body, res.format, res.err
}

type parsed struct {
	meta     map[string]any
	keyLines map[string]int
	body     []byte
	format   string
	bodyLine int
	err      error
}

func parse(source []byte) parsed {
	source = bytes.TrimPrefix(source, utf8BOM)
	lines := splitLines(source)
	blk, err := locateBlock(lines)
	if err != nil {
		return parsed{body: source, format: blk.format, bodyLine: 1, err: err}
	}

	res := parsed{
		body:     bodyFrom(lines, blk.bodyLine),
		format:   blk.format,
		bodyLine: blk.bodyLine,
		keyLines: keyLines(lines[1:blk.bodyLine-2], blk.format),
	}
	meta := map[string]any{}
	if _, err := frontmatter.MustParse(bytes.NewReader(source), &meta); err != nil {
		res.err = fmt.Errorf("markdown: parse %s front matter: %w", blk.format, err)
		return res
	}
	res.meta = normalizeMap(meta)
	return res
}

// BuildPost assembles a Post. Front matter problems do not fail the build;
// they are kept on Post.FrontMatterErr so lint rules can report them.
func BuildPost(path string, source []byte, modified time.Time) *interfaces.Post {
	res := parse(source)
	meta := res.meta
	sum := sha256.Sum256(source)

	post := &interfaces.Post{
		Path:           path,
		Format:         res.format,
		FrontMatter:    meta,
		FrontMatterErr: res.err,
		KeyLines:       res.keyLines,
		Body:           res.body,
		BodyLine:       res.bodyLine,
		Checksum:       sum[:],
		LastModified:   modified,
	}
	if title, ok := Lookup(meta, "title").(string); ok {
		post.Title = strings.TrimSpace(title)
	}
	post.DateRaw = Lookup(meta, "date")
	if date, ok := ParseDate(post.DateRaw); ok {
		post.Date = date
	}
	if draft, ok := Lookup(meta, "draft").(bool); ok {
		post.Draft = draft
	}
	post.CodeBlocks = ScanFences(post.Body, post.BodyLine)
	return post
}

// Lookup returns the value stored under key, matching keys case-insensitively
// the way the site generator does.
func Lookup(meta map[string]any, key string) any {
	if meta == nil {
		return nil
	}
	if value, ok := meta[key]; ok {
		return value
	}
	for k, value := range meta {
		if strings.EqualFold(k, key) {
			return value
		}
	}
	return nil
}

// ParseDate accepts native timestamps (TOML) and strings in DateLayouts.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range DateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// keyLines records the line of each top-level key in the front matter block.
// block starts on file line 2.
func keyLines(block []string, format string) map[string]int {
	out := map[string]int{}
	for i, line := range block {
		indented := line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '#'
		if indented && format != FormatJSON {
			continue
		}
		key := ""
		switch format {
		case FormatYAML:
			key, _, _ = strings.Cut(line, ":")
		case FormatTOML:
			if strings.HasPrefix(line, "[") {
				// Keys after a table header are no longer top level.
				return out
			}
			key, _, _ = strings.Cut(line, "=")
		case FormatJSON:
			trimmed := strings.TrimSpace(line)
			if !strings.HasPrefix(trimmed, `"`) {
				continue
			}
			key, _, _ = strings.Cut(trimmed[1:], `"`)
		}
		key = strings.ToLower(strings.Trim(strings.TrimSpace(key), `"'`))
		if key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		if _, ok := out[key]; !ok {
			out[key] = i + 2
		}
	}
	return out
}

func splitLines(source []byte) []string {
	if len(source) == 0 {
		return nil
	}
	lines := strings.Split(string(source), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func bodyFrom(lines []string, line int) []byte {
	switch {
	case line <= 1:
		return []byte(strings.Join(lines, "\n"))
	case line > len(lines):
		return nil
	default:
		return []byte(strings.Join(lines[line-1:], "\n"))
	}
}

// normalizeMap converts YAML v2 style map[any]any values into map[string]any
// so JSON schema validation and type checks see one shape.
func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, inner := range v {
			m[fmt.Sprint(k)] = normalizeValue(inner)
		}
		return m
	case map[string]any:
		return normalizeMap(v)
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return value
	}
}
