package deploy

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// DefaultScriptPatterns are globbed relative to the repository root.
var DefaultScriptPatterns = []string{"Makefile", "*.sh", "scripts/*.sh"}

// ScanScripts returns the command lines of every file matching patterns.
// Comment lines are dropped and Makefile recipe prefixes (@, -) are removed.
func ScanScripts(fsys fs.FS, patterns []string) ([]Command, error) {
	if len(patterns) == 0 {
		patterns = DefaultScriptPatterns
	}

	seen := map[string]bool{}
	var names []string
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "./")
		if pattern == "" {
			continue
		}
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("deploy: glob %s: %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				names = append(names, match)
			}
		}
	}
	sort.Strings(names)

	var out []Command
	for _, name := range names {
		info, err := fs.Stat(fsys, name)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("deploy: read %s: %w", name, err)
		}
		makefile := isMakefile(name)
		for _, cmd := range joinContinuations(strings.Split(string(data), "\n"), 1) {
			if makefile {
				cmd.Text = strings.TrimLeft(cmd.Text, "@-+ \t")
			}
			cmd.Source = name
			cmd.Origin = path.Base(name)
			out = append(out, cmd)
		}
	}
	return out, nil
}

func isMakefile(name string) bool {
	base := strings.ToLower(path.Base(name))
	return base == "makefile" || base == "gnumakefile" || strings.HasSuffix(base, ".mk")
}
