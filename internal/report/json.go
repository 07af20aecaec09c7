package report

import (
	"encoding/json"
	"io"

	"github.com/goliatone/go-sitelint/internal/lint"
)

type jsonReport struct {
	Summary    Summary        `json:"summary"`
	Findings   []lint.Finding `json:"findings"`
	DurationMS int64          `json:"duration_ms"`
}

// JSON writes the findings and summary as an indented JSON document.
func JSON(w io.Writer, r Report) error {
	findings := r.Findings
	if findings == nil {
		findings = []lint.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Summary:    Summarize(r),
		Findings:   findings,
		DurationMS: r.Duration.Milliseconds(),
	})
}
