// Package deploy finds site generator invocations in deployment definitions
// (CI workflows, netlify.toml, Makefiles and shell scripts) and reports build
// commands that override the configured base URL.
package deploy

import (
	"fmt"
	"sort"
	"strings"
)

// Command is one shell command line found in a deployment file.
type Command struct {
	// Source is the file the command was read from, relative to the root.
	Source string
	// Line is 1-based; zero when the position is unknown.
	Line int
	// Origin names where inside Source the command lives, e.g.
	// "jobs.build.steps[2].run" or "build.command".
	Origin string
	Text   string
}

// Override is a base URL override found in a command.
type Override struct {
	Command Command
	// Flag is the flag or environment variable as written.
	Flag  string
	Value string
}

// ParseError reports a deployment file that could not be parsed.
type ParseError struct {
	Source string
	// Line is zero when the parser gave no position.
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("deploy: parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SortCommands orders commands by source then line.
func SortCommands(cmds []Command) {
	sort.SliceStable(cmds, func(i, j int) bool {
		if cmds[i].Source != cmds[j].Source {
			return cmds[i].Source < cmds[j].Source
		}
		return cmds[i].Line < cmds[j].Line
	})
}

// joinContinuations merges lines ending in a backslash with the next line.
// The returned slice holds the merged text and the line it started on.
func joinContinuations(lines []string, firstLine int) []Command {
	var (
		out     []Command
		pending strings.Builder
		start   int
	)
	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t\r")
		if pending.Len() == 0 {
			start = firstLine + i
		}
		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			pending.WriteByte(' ')
			continue
		}
		pending.WriteString(line)
		text := strings.TrimSpace(pending.String())
		pending.Reset()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		out = append(out, Command{Line: start, Text: text})
	}
	if text := strings.TrimSpace(pending.String()); text != "" && !strings.HasPrefix(text, "#") {
		out = append(out, Command{Line: start, Text: text})
	}
	return out
}
