package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-sitelint/internal/logging"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

// LoaderConfig controls post discovery.
type LoaderConfig struct {
	// Pattern is matched against the file name, or against the path relative
	// to the walked directory when it contains a slash. Defaults to "*.md".
	Pattern   string
	Recursive bool
	Logger    interfaces.Logger
}

// Loader reads posts from a filesystem rooted at the site root.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
	logger    interfaces.Logger
}

// NewLoader returns a Loader reading from fsys.
func NewLoader(fsys fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:        fsys,
		pattern:   pattern,
		recursive: cfg.Recursive,
		logger:    logging.Ensure(cfg.Logger),
	}
}

// LoadFile reads and parses a single post. name is slash separated and
// relative to the filesystem root.
func (l *Loader) LoadFile(ctx context.Context, name string) (*interfaces.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = path.Clean(strings.TrimPrefix(name, "./"))

	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: stat %s: %w", name, err)
	}

	post := BuildPost(name, data, info.ModTime())
	if post.FrontMatterErr != nil {
		logging.WithFields(l.logger, map[string]any{"path": name}).
			Debug("markdown.frontmatter.invalid", "error", post.FrontMatterErr)
	}
	return post, nil
}

// LoadDirectory returns every post under dir that matches the pattern, sorted
// by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*interfaces.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := path.Clean(strings.TrimPrefix(dir, "./"))
	if root == "" {
		root = "."
	}

	var posts []*interfaces.Post
	err := fs.WalkDir(l.fs, root, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if name != root && (!l.recursive || isHidden(d.Name())) {
				return fs.SkipDir
			}
			return nil
		}
		if !l.matches(root, name) {
			return nil
		}
		post, err := l.LoadFile(ctx, name)
		if err != nil {
			return err
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdown loader: walk %s: %w", root, err)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Path < posts[j].Path
	})
	l.logger.Debug("markdown.loader.loaded", "dir", root, "posts", len(posts))
	return posts, nil
}

func (l *Loader) matches(root, name string) bool {
	target := path.Base(name)
	if strings.Contains(l.pattern, "/") {
		rel := strings.TrimPrefix(name, root+"/")
		if root == "." {
			rel = name
		}
		target = rel
	}
	ok, err := path.Match(l.pattern, target)
	return err == nil && ok
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
