// Package scaffold creates new posts with front matter that passes the
// built-in lint rules.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	ErrTitleRequired = errors.New("scaffold: title is required")
	ErrSlugInvalid   = errors.New("scaffold: title does not produce a valid slug")
	// ErrExists is returned instead of overwriting a post.
	ErrExists = errors.New("scaffold: post already exists")
	// ErrDirOutsideRoot rejects directories that resolve outside Root.
	ErrDirOutsideRoot = errors.New("scaffold: directory must stay inside the root")
)

// PostOptions describes the post to create.
type PostOptions struct {
	// Root is the site root on disk.
	Root string
	// Dir is the content directory relative to Root.
	Dir string
	// Title may be a human title or a slug such as "jwt-claims", which is
	// turned into "Jwt Claims".
	Title string
	Draft bool
	Tags  []string
	// Now stamps the date; defaults to time.Now.
	Now time.Time
}

type frontMatter struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	Draft bool     `yaml:"draft"`
	Tags  []string `yaml:"tags,omitempty"`
}

// NewPost writes <slug>.md under Root/Dir and returns its path relative to
// Root, slash separated.
func NewPost(opts PostOptions) (string, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if slug.IsValid(title) {
		title = titleFromSlug(title)
	}
	name, err := slug.Normalize(title)
	if err != nil || name == "" {
		return "", fmt.Errorf("%w: %q", ErrSlugInvalid, opts.Title)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	content, err := render(frontMatter{
		Title: title,
		Date:  now.Format(time.RFC3339),
		Draft: opts.Draft,
		Tags:  opts.Tags,
	})
	if err != nil {
		return "", err
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	dir := filepath.Clean(filepath.FromSlash(opts.Dir))
	if !filepath.IsLocal(dir) {
		return "", fmt.Errorf("%w: %q", ErrDirOutsideRoot, opts.Dir)
	}
	rel := filepath.Join(dir, name+".md")
	target := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("scaffold: create directory: %w", err)
	}

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, filepath.ToSlash(rel))
		}
		return "", fmt.Errorf("scaffold: create %s: %w", rel, err)
	}
	if _, err := file.Write(content); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("scaffold: write %s: %w", rel, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("scaffold: close %s: %w", rel, err)
	}
	return filepath.ToSlash(rel), nil
}

func titleFromSlug(value string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(value)
	return cases.Title(language.English).String(words)
}

func render(meta frontMatter) ([]byte, error) {
	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("scaffold: encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(encoded)
	buf.WriteString("---\n\n")
	return buf.Bytes(), nil
}
