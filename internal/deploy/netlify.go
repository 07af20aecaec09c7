package deploy

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultNetlifyFile is the Netlify build configuration.
const DefaultNetlifyFile = "netlify.toml"

type netlifyConfig struct {
	Build   netlifyBuild            `toml:"build"`
	Context map[string]netlifyBuild `toml:"context"`
}

type netlifyBuild struct {
	Command     string            `toml:"command"`
	Environment map[string]string `toml:"environment"`
}

// ScanNetlify returns the build commands of name. A missing file yields no
// commands. Environment blocks that set HUGO_BASEURL are returned as
// commands of the form "HUGO_BASEURL=<value>" so FindBaseURLOverrides sees
// them.
func ScanNetlify(fsys fs.FS, name string) ([]Command, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultNetlifyFile
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("deploy: read %s: %w", name, err)
	}

	var cfg netlifyConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Source: name, Line: tomlErrorLine(err), Err: err}
	}

	var out []Command
	add := func(origin string, build netlifyBuild) {
		if text := strings.TrimSpace(build.Command); text != "" {
			out = append(out, Command{Source: name, Origin: origin + ".command", Line: lineOf(data, text), Text: text})
		}
		for key, value := range build.Environment {
			if strings.EqualFold(key, baseURLEnv) {
				out = append(out, Command{
					Source: name,
					Origin: origin + ".environment." + key,
					Line:   lineOf(data, key),
					Text:   key + "=" + QuoteShell(value),
				})
			}
		}
	}

	add("build", cfg.Build)
	contexts := make([]string, 0, len(cfg.Context))
	for ctxName := range cfg.Context {
		contexts = append(contexts, ctxName)
	}
	sort.Strings(contexts)
	for _, ctxName := range contexts {
		add("context."+ctxName, cfg.Context[ctxName])
	}
	return out, nil
}

// lineOf returns the first line containing the first line of needle. TOML
// metadata carries no key positions, so the raw text is searched instead.
func lineOf(data []byte, needle string) int {
	if i := strings.IndexByte(needle, '\n'); i >= 0 {
		needle = needle[:i]
	}
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return 0
	}
	for i, line := range bytes.Split(data, []byte("\n")) {
		if bytes.Contains(line, []byte(needle)) {
			return i + 1
		}
	}
	return 0
}

func tomlErrorLine(err error) int {
	var parseErr toml.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Position.Line
	}
	return 0
}
