package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-sitelint/internal/logging/console"
)

func startWatcher(t *testing.T, paths []string) <-chan []string {
	t.Helper()
	w, err := New(paths, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	calls := make(chan []string, 16)
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, changed []string) error {
			calls <- changed
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return calls
}

func waitFor(t *testing.T, calls <-chan []string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-calls:
			for _, p := range changed {
				if p == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change to %s", want)
		}
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	root := t.TempDir()
	calls := startWatcher(t, []string{root})

	target := filepath.Join(root, "post.md")
	if err := os.WriteFile(target, []byte("---\ntitle: x\n---\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, calls, target)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	calls := startWatcher(t, []string{root})

	dir := filepath.Join(root, "2024")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	waitFor(t, calls, dir)

	target := filepath.Join(dir, "nested.md")
	if err := os.WriteFile(target, []byte("body"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, calls, target)
}

func TestWatcherSingleFileIgnoresSiblings(t *testing.T) {
	root := t.TempDir()
	config := filepath.Join(root, "hugo.toml")
	if err := os.WriteFile(config, []byte("baseURL = 'https://example.org/'\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	calls := startWatcher(t, []string{config})

	if err := os.WriteFile(filepath.Join(root, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(config, []byte("baseURL = 'https://example.com/'\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case changed := <-calls:
		for _, p := range changed {
			if p != config {
				t.Fatalf("unexpected change %s", p)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config change")
	}
}

func TestNewRequiresExistingPath(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, ErrNoPaths) {
		t.Fatalf("expected ErrNoPaths, got %v", err)
	}
}

func TestNewLogsMissingPathEvent(t *testing.T) {
	var logs bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &logs})

	root := t.TempDir()
	w, err := New([]string{root, filepath.Join(root, "missing")}, WithLogger(provider))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if !strings.Contains(logs.String(), "watch.path.missing") {
		t.Fatalf("expected watch.path.missing entry, got %q", logs.String())
	}
}
