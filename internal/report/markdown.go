package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// maxSubjects bounds the subject area table.
const maxSubjects = 15

// MarkdownWriter renders summaries as Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs s as a Markdown document.
func (w *MarkdownWriter) Write(s *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeModes(md, s)
	w.writeCounts(md, "Careers", "Career", "Courses", s.Careers)
	w.writeCounts(md, "Teaching Periods", "Term", "Classes", s.Terms)
	w.writeSubjects(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1(fmt.Sprintf("Timetable %d", s.Year))
	md.PlainText("")

	rows := [][]string{
		{"Year", strconv.Itoa(s.Year)},
		{"Generated", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Courses", strconv.Itoa(s.Courses)},
		{"Classes", strconv.Itoa(s.Classes)},
		{"Meeting Times", strconv.Itoa(s.Times)},
	}
	if s.RunID != "" {
		rows = append(rows, []string{"Run", "`" + s.RunID + "`"})
	}
	if s.Digest != "" {
		rows = append(rows, []string{"Digest", "`" + shortDigest(s.Digest) + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case s.Courses == 0:
		md.Warningf("No courses were found for %d.", s.Year)
	case s.Changed == nil:
	case *s.Changed:
		md.Importantf("The timetable changed since the previous %d run.", s.Year)
	default:
		md.Note(fmt.Sprintf("The timetable is unchanged since the previous %d run.", s.Year))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeModes(md *markdown.Markdown, s *Summary) {
	md.H2("Delivery Modes")
	md.PlainText("")

	if len(s.Modes) == 0 {
		md.PlainText("No classes.")
		md.PlainText("")
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Classes by Delivery Mode"),
		piechart.WithShowData(true),
	)
	for _, m := range s.Modes {
		chart.LabelAndIntValue(m.Label, uint64(m.Count)) //nolint:gosec // counts are never negative
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, title, label, unit string, counts []Count) {
	md.H2(title)
	md.PlainText("")
	if len(counts) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Label, strconv.Itoa(c.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{label, unit},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSubjects(md *markdown.Markdown, s *Summary) {
	subjects := s.Subjects
	if len(subjects) > maxSubjects {
		subjects = subjects[:maxSubjects]
	}
	w.writeCounts(md, "Largest Subject Areas", "Subject Area", "Courses", subjects)
	if len(s.Subjects) > maxSubjects {
		md.PlainTextf("%d more subject areas not shown.", len(s.Subjects)-maxSubjects)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by [ttscrape](https://github.com/nao1215/ttscrape)*")
}

func shortDigest(d string) string {
	if len(d) <= 16 {
		return d
	}
	return d[:16]
}
