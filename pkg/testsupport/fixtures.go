package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteTree creates files under root. Keys are slash separated paths.
func WriteTree(root string, files map[string]string) error {
	for name, content := range files {
		target := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("testsupport: mkdir for %s: %w", name, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return fmt.Errorf("testsupport: write %s: %w", name, err)
		}
	}
	return nil
}

// SampleSite is a small Hugo site with one valid post and one post missing
// its title.
func SampleSite() map[string]string {
	return map[string]string{
		"hugo.toml":                      "baseURL = \"https://blog.example.org/\"\ntitle = \"Notes\"\n\n[params]\ncustom_css = [\"css/custom.css\"]\n",
		"static/css/custom.css":          "body { margin: 0 }\n",
		"content/posts/good-post.md":     "---\ntitle: Good post\ndate: 2024-05-01\ndraft: false\n---\n\nBody.\n",
		"content/posts/missing-title.md": "---\ndate: 2024-05-02\n---\n\nBody.\n",
	}
}
