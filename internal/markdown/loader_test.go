package markdown

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"
	"time"
)

var zeroTime time.Time

func TestLoaderLoadDirectoryRecursive(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata/site"), LoaderConfig{Recursive: true})

	posts, err := loader.LoadDirectory(context.Background(), "content/posts")
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Path != "content/posts/2024/second-post.md" || posts[1].Path != "content/posts/first-post.md" {
		t.Fatalf("unexpected order: %s, %s", posts[0].Path, posts[1].Path)
	}
	if !posts[0].Draft {
		t.Fatal("expected second post to be a draft")
	}
}

func TestLoaderLoadDirectoryFlat(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata/site"), LoaderConfig{})

	posts, err := loader.LoadDirectory(context.Background(), "./content/posts")
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "First post" {
		t.Fatalf("expected only the top-level post, got %+v", posts)
	}
}

func TestLoaderSkipsHiddenDirectories(t *testing.T) {
	fsys := fstest.MapFS{
		"posts/a.md":          {Data: []byte("---\ntitle: A\ndate: 2024-01-01\n---\n")},
		"posts/.drafts/b.md":  {Data: []byte("---\ntitle: B\ndate: 2024-01-01\n---\n")},
		"posts/nested/c.md":   {Data: []byte("---\ntitle: C\ndate: 2024-01-01\n---\n")},
		"posts/nested/c.html": {Data: []byte("<p>c</p>")},
	}
	loader := NewLoader(fsys, LoaderConfig{Recursive: true})

	posts, err := loader.LoadDirectory(context.Background(), "posts")
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
}

func TestLoaderPatternWithDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"posts/2024/a.md": {Data: []byte("---\ntitle: A\n---\n")},
		"posts/2023/b.md": {Data: []byte("---\ntitle: B\n---\n")},
	}
	loader := NewLoader(fsys, LoaderConfig{Pattern: "2024/*.md", Recursive: true})

	posts, err := loader.LoadDirectory(context.Background(), "posts")
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	if len(posts) != 1 || posts[0].Path != "posts/2024/a.md" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
}

func TestLoaderMissingDirectory(t *testing.T) {
	loader := NewLoader(fstest.MapFS{}, LoaderConfig{})

	_, err := loader.LoadDirectory(context.Background(), "content/posts")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoaderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewLoader(fstest.MapFS{}, LoaderConfig{})
	if _, err := loader.LoadFile(ctx, "a.md"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
