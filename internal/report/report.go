// Package report renders lint results for people (text) and tools (JSON) and
// maps them to a process exit code.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-sitelint/internal/lint"
)

// ErrFormatUnknown is returned by Write for unsupported formats.
var ErrFormatUnknown = errors.New("report: unknown format")

// Formats understood by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Report is what gets rendered.
type Report struct {
	Findings   []lint.Finding
	Suppressed int
	Posts      int
	Duration   time.Duration
}

// Summary counts findings per severity.
type Summary struct {
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
	Infos      int `json:"infos"`
	Suppressed int `json:"suppressed"`
	Posts      int `json:"posts"`
}

// Total is the number of reported findings.
func (s Summary) Total() int {
	return s.Errors + s.Warnings + s.Infos
}

// Summarize counts the findings of r.
func Summarize(r Report) Summary {
	s := Summary{Suppressed: r.Suppressed, Posts: r.Posts}
	for _, f := range r.Findings {
		switch f.Severity {
		case lint.SeverityError:
			s.Errors++
		case lint.SeverityWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s
}

// ExitCode is 1 when there is any error, or when warnings exceed
// maxWarnings. A negative maxWarnings never fails on warnings.
func ExitCode(s Summary, maxWarnings int) int {
	if s.Errors > 0 {
		return 1
	}
	if maxWarnings >= 0 && s.Warnings > maxWarnings {
		return 1
	}
	return 0
}

// Options tunes rendering.
type Options struct {
	// Color enables ANSI styling of the text format.
	Color bool
}

// Write renders r in format.
func Write(w io.Writer, format string, r Report, opts Options) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return Text(w, r, opts)
	case FormatJSON:
		return JSON(w, r)
	default:
		return fmt.Errorf("%w: %s", ErrFormatUnknown, format)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
