package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-sitelint/internal/lint"
)

var (
	locationStyle = lipgloss.NewStyle().Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Text writes one line per finding followed by a summary:
//
//	content/posts/a.md:12: error: code block opened with ``` is never closed [markdown/fence]
func Text(w io.Writer, r Report, opts Options) error {
	paint := func(style lipgloss.Style, s string) string {
		if !opts.Color {
			return s
		}
		return style.Render(s)
	}

	var b strings.Builder
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "%s: %s: %s %s\n",
			paint(locationStyle, f.Location()),
			paint(severityStyle(f.Severity), string(f.Severity)),
			f.Message,
			paint(ruleStyle, "["+f.Rule+"]"),
		)
	}

	s := Summarize(r)
	if len(r.Findings) > 0 {
		b.WriteString("\n")
	}
	line := "no problems found"
	style := okStyle
	if s.Total() > 0 {
		line = fmt.Sprintf("%s (%s, %s, %s)",
			plural(s.Total(), "problem"),
			plural(s.Errors, "error"),
			plural(s.Warnings, "warning"),
			plural(s.Infos, "info"),
		)
		style = severityStyle(worst(s))
	}
	line += " in " + plural(s.Posts, "post")
	if s.Suppressed > 0 {
		line += fmt.Sprintf(", %d suppressed by baseline", s.Suppressed)
	}
	b.WriteString(paint(style, line))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func severityStyle(sev lint.Severity) lipgloss.Style {
	switch sev {
	case lint.SeverityError:
		return errorStyle
	case lint.SeverityWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

func worst(s Summary) lint.Severity {
	switch {
	case s.Errors > 0:
		return lint.SeverityError
	case s.Warnings > 0:
		return lint.SeverityWarning
	default:
		return lint.SeverityInfo
	}
}
