package lint

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ErrSeverityInvalid is returned by ParseSeverity for unknown names.
var ErrSeverityInvalid = errors.New("lint: invalid severity")

// ParseSeverity accepts error, warning (or warn) and info in any case.
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrSeverityInvalid, value)
	}
}

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Finding is a single problem reported by a rule.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	// Path is relative to the site root; empty for repository-wide findings.
	Path string `json:"path,omitempty"`
	// Line is 1-based; zero when the finding is not tied to a line.
	Line        int    `json:"line,omitempty"`
	Message     string `json:"message"`
	Fingerprint string `json:"fingerprint"`
}

// Location renders path:line, or only the path when the line is unknown.
func (f Finding) Location() string {
	switch {
	case f.Path == "":
		return "."
	case f.Line > 0:
		return fmt.Sprintf("%s:%d", f.Path, f.Line)
	default:
		return f.Path
	}
}

// Fingerprint derives a stable identifier for a finding. The line number is
// left out so that edits elsewhere in a file keep the fingerprint unchanged.
func Fingerprint(rule, path, message string) string {
	key := "sitelint:finding:" + strings.TrimSpace(rule) + ":" + strings.TrimSpace(path) + ":" + strings.TrimSpace(message)
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		uid = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return uid.String()
}

// SortFindings orders findings by path, line, rule and message.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}
