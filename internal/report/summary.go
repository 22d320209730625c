package report

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/ttscrape/internal/model"
)

// Count is a labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary describes one crawl run.
type Summary struct {
	Year        int       `json:"year"`
	GeneratedAt time.Time `json:"generated_at"`

	Courses int `json:"courses"`
	Classes int `json:"classes"`
	Times   int `json:"times"`

	// Careers counts courses per career.
	Careers []Count `json:"careers"`
	// Modes counts classes per delivery mode.
	Modes []Count `json:"modes"`
	// Terms counts classes per teaching period.
	Terms []Count `json:"terms"`
	// Subjects counts courses per subject area code.
	Subjects []Count `json:"subjects"`

	RunID   string `json:"run_id,omitempty"`
	Digest  string `json:"digest,omitempty"`
	Changed *bool  `json:"changed,omitempty"`
}

// NewSummary tallies ds.
func NewSummary(year int, ds *model.Dataset, now time.Time) *Summary {
	s := &Summary{
		Year:        year,
		GeneratedAt: now,
	}
	s.Courses, s.Classes, s.Times = ds.Counts()

	careers := make(map[string]int)
	subjects := make(map[string]int)
	for _, c := range ds.Courses {
		careers[c.Career]++
		subjects[subjectArea(c.CourseCode)]++
	}
	terms := make(map[string]int)
	for _, c := range ds.Classes {
		terms[c.Term]++
	}

	s.Careers = tally(careers)
	s.Modes = tally(ds.ModeCounts())
	s.Terms = tally(terms)
	s.Subjects = tally(subjects)
	return s
}

// WithRun attaches the history run the summary was saved as.
func (s *Summary) WithRun(id, digest string, changed bool) *Summary {
	s.RunID = id
	s.Digest = digest
	s.Changed = &changed
	return s
}

// subjectArea returns the alphabetic prefix of a course code, e.g. COMP
// for COMP1511.
func subjectArea(code string) string {
	i := strings.IndexFunc(code, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if i < 0 {
		return code
	}
	return code[:i]
}

// tally orders counts by descending count, then label. Empty labels are
// reported as "(none)".
func tally(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for label, n := range m {
		if label == "" {
			label = "(none)"
		}
		counts = append(counts, Count{Label: label, Count: n})
	}
	slices.SortFunc(counts, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return counts
}
