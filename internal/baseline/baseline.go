// Package baseline stores accepted findings so that sitelint can be adopted on
// a repository with existing problems: findings recorded in the baseline are
// suppressed and only new ones fail the run.
package baseline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitelint/internal/lint"
)

// ErrEntryNotFound is returned when no entry carries the fingerprint.
var ErrEntryNotFound = errors.New("baseline: entry not found")

// Entry is an accepted finding.
type Entry struct {
	bun.BaseModel `bun:"table:baseline_entries,alias:be"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Fingerprint string    `bun:"fingerprint,notnull,unique" json:"fingerprint"`
	Rule        string    `bun:"rule,notnull" json:"rule"`
	Path        string    `bun:"path" json:"path"`
	Message     string    `bun:"message,notnull" json:"message"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Repository persists baseline entries.
type Repository interface {
	List(ctx context.Context) ([]*Entry, error)
	Get(ctx context.Context, fingerprint string) (*Entry, error)
	Add(ctx context.Context, entry *Entry) (*Entry, error)
	// Replace swaps the whole baseline for entries.
	Replace(ctx context.Context, entries []*Entry) error
	Clear(ctx context.Context) error
}

// FromFindings builds one entry per distinct fingerprint.
func FromFindings(findings []lint.Finding, now time.Time) []*Entry {
	seen := map[string]bool{}
	out := make([]*Entry, 0, len(findings))
	for _, f := range findings {
		fp := fingerprintOf(f)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, &Entry{
			ID:          uuid.New(),
			Fingerprint: fp,
			Rule:        f.Rule,
			Path:        f.Path,
			Message:     f.Message,
			CreatedAt:   now.UTC(),
		})
	}
	sortEntries(out)
	return out
}

// Filter splits findings into those not covered by the baseline and those
// suppressed by it.
func Filter(findings []lint.Finding, entries []*Entry) (kept, suppressed []lint.Finding) {
	known := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry != nil {
			known[entry.Fingerprint] = true
		}
	}
	for _, f := range findings {
		if known[fingerprintOf(f)] {
			suppressed = append(suppressed, f)
			continue
		}
		kept = append(kept, f)
	}
	return kept, suppressed
}

// Stale returns entries that no longer match any finding; they can be
// dropped from the baseline.
func Stale(entries []*Entry, findings []lint.Finding) []*Entry {
	current := make(map[string]bool, len(findings))
	for _, f := range findings {
		current[fingerprintOf(f)] = true
	}
	var out []*Entry
	for _, entry := range entries {
		if entry != nil && !current[entry.Fingerprint] {
			out = append(out, entry)
		}
	}
	return out
}

func fingerprintOf(f lint.Finding) string {
	if fp := strings.TrimSpace(f.Fingerprint); fp != "" {
		return fp
	}
	return lint.Fingerprint(f.Rule, f.Path, f.Message)
}

func sortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}
