package report

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter renders summaries as plain text for the terminal.
type TextWriter struct {
	baseWriter

	// verbose adds the per-term and per-subject breakdowns.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables the detailed breakdowns.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs s.
func (w *TextWriter) Write(s *Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 50))
	fmt.Fprintf(&sb, "\n TIMETABLE %d\n", s.Year)
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Courses:        %d\n", s.Courses)
	fmt.Fprintf(&sb, "Classes:        %d\n", s.Classes)
	fmt.Fprintf(&sb, "Meeting times:  %d\n", s.Times)
	if s.RunID != "" {
		fmt.Fprintf(&sb, "Run:            %s\n", s.RunID)
	}
	if s.Changed != nil {
		status := "unchanged"
		if *s.Changed {
			status = "changed"
		}
		fmt.Fprintf(&sb, "Since last run: %s\n", status)
	}

	writeCounts(&sb, "Delivery modes", s.Modes)
	writeCounts(&sb, "Careers", s.Careers)
	if w.verbose {
		writeCounts(&sb, "Teaching periods", s.Terms)
		writeCounts(&sb, "Subject areas", s.Subjects)
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func writeCounts(sb *strings.Builder, title string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, c := range counts {
		fmt.Fprintf(sb, "  %-30s %6d\n", c.Label, c.Count)
	}
}
