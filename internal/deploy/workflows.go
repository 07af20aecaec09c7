package deploy

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultWorkflowDir is where GitHub Actions keeps workflow files.
const DefaultWorkflowDir = ".github/workflows"

// ScanWorkflows returns every run step of the workflow files in dir. A missing
// directory yields no commands. Files that are not valid YAML are skipped and
// returned as parse errors; only read failures abort the scan.
func ScanWorkflows(fsys fs.FS, dir string) ([]Command, []*ParseError, error) {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultWorkflowDir
	}
	dir = path.Clean(strings.TrimPrefix(dir, "./"))

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("deploy: read %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		ext := strings.ToLower(path.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		names = append(names, path.Join(dir, entry.Name()))
	}
	sort.Strings(names)

	var (
		out    []Command
		broken []*ParseError
	)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, nil, fmt.Errorf("deploy: read %s: %w", name, err)
		}
		cmds, err := ParseWorkflow(name, data)
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			broken = append(broken, parseErr)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		out = append(out, cmds...)
	}
	return out, broken, nil
}

// ParseWorkflow extracts the run steps of a single workflow document.
func ParseWorkflow(name string, data []byte) ([]Command, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Source: name, Line: yamlErrorLine(err), Err: err}
	}
	var out []Command
	collectRuns(&doc, "", func(origin string, key, value *yaml.Node) {
		if key.Value != "run" {
			out = append(out, Command{Source: name, Origin: origin, Line: key.Line, Text: key.Value + "=" + value.Value})
			return
		}
		first := value.Line
		if value.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
			first++
		}
		for _, cmd := range joinContinuations(strings.Split(value.Value, "\n"), first) {
			cmd.Source = name
			cmd.Origin = origin
			out = append(out, cmd)
		}
	})
	return out, nil
}

// collectRuns visits run steps and HUGO_BASEURL environment entries.
func collectRuns(node *yaml.Node, prefix string, fn func(origin string, key, value *yaml.Node)) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			collectRuns(child, prefix, fn)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			origin := key.Value
			if prefix != "" {
				origin = prefix + "." + key.Value
			}
			if value.Kind == yaml.ScalarNode && (key.Value == "run" || strings.EqualFold(key.Value, baseURLEnv)) {
				fn(origin, key, value)
				continue
			}
			collectRuns(value, origin, fn)
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			collectRuns(child, fmt.Sprintf("%s[%d]", prefix, i), fn)
		}
	}
}

// yamlErrorLine extracts the position from messages such as
// "yaml: line 3: did not find expected key".
func yamlErrorLine(err error) int {
	var line int
	msg := err.Error()
	if i := strings.Index(msg, "line "); i >= 0 {
		if _, scanErr := fmt.Sscanf(msg[i:], "line %d", &line); scanErr != nil {
			return 0
		}
	}
	return line
}
