package extract

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/ttscrape/internal/model"
)

// Banner labels.
const (
	labelFaculty = "Faculty"
	labelSchool  = "School"
	labelCampus  = "Campus"
	labelCareer  = "Career"
)

// Options controls how a course page is extracted.
type Options struct {
	// Strict fails the whole page when one class table is malformed.
	// Otherwise the class is logged and skipped.
	Strict bool

	// Logger receives skipped-class warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// CoursePage completes partial from its course page.
func CoursePage(doc *goquery.Document, partial model.PartialCourse, opts Options) (model.Course, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	course := model.Course{
		Code:   partial.Code,
		Name:   partial.Name,
		UOC:    partial.UOC,
		Career: partial.Career,
	}

	banner := findLabel(doc.Selection, "td.label", labelFaculty).Closest("table")
	if banner.Length() == 0 {
		return model.Course{}, fmt.Errorf("%w: no %q label", ErrLayout, labelFaculty)
	}
	applyBanner(banner, &course)

	summary := findLabel(doc.Selection, "td.tableHeading", labelTeachingPeriod).Closest("table")
	if summary.Length() == 0 {
		return model.Course{}, fmt.Errorf("%w: no %q heading", ErrLayout, labelTeachingPeriod)
	}
	course.Terms = summaryTerms(summary)

	course.Classes = []model.Class{}
	for _, table := range classTables(doc, summary) {
		cl, err := ParseClass(Cells(table), &course)
		if err != nil {
			if opts.Strict {
				return model.Course{}, err
			}
			logger.Warn("skipping malformed class", "course_id", course.ID(), "error", err)
			continue
		}
		course.Classes = append(course.Classes, cl)
	}
	course.Modes = modes(course.Classes)

	return course, nil
}

// applyBanner copies Faculty, School and Campus from the banner table into
// course. The banner career is used only when the listing gave none.
func applyBanner(banner *goquery.Selection, course *model.Course) {
	f := newFolder()
	banner.Find("tr").Each(func(_ int, row *goquery.Selection) {
		labels := row.ChildrenFiltered("td.label")
		values := row.ChildrenFiltered("td.data")
		n := min(labels.Length(), values.Length())
		for i := range n {
			value := cellText(values.Eq(i))
			switch f.fold(text(labels.Eq(i))) {
			case f.fold(labelFaculty):
				course.Faculty = optional(value)
			case f.fold(labelSchool):
				course.School = optional(value)
			case f.fold(labelCampus):
				course.Campus = optional(value)
			case f.fold(labelCareer):
				if course.Career == "" {
					course.Career = value
				}
			}
		}
	})
}

// summaryTerms returns the distinct term codes of the term summary table
// in document order.
func summaryTerms(summary *goquery.Selection) []string {
	terms := []string{}
	summary.Find("tr").Each(func(_ int, row *goquery.Selection) {
		first := row.ChildrenFiltered("td.data").First()
		if first.Length() == 0 {
			return
		}
		term, _, _ := strings.Cut(cellText(first), periodSeparator)
		term = strings.TrimSpace(term)
		if term != "" && !slices.Contains(terms, term) {
			terms = append(terms, term)
		}
	})
	return terms
}

// classTables returns the tables holding a "Class Nbr" label that come
// after the term summary, in document order, each once.
func classTables(doc *goquery.Document, summary *goquery.Selection) []*goquery.Selection {
	tables := doc.Find("table")
	summaryAt := tables.IndexOfSelection(summary)

	f := newFolder()
	want := f.fold(labelClassNbr)

	var (
		out  []*goquery.Selection
		seen = make(map[int]struct{})
	)
	doc.Find("td.label").Each(func(_ int, label *goquery.Selection) {
		if f.fold(text(label)) != want {
			return
		}
		table := label.Closest("table")
		at := tables.IndexOfSelection(table)
		if at <= summaryAt {
			return
		}
		if _, dup := seen[at]; dup {
			return
		}
		seen[at] = struct{}{}
		out = append(out, table)
	})
	return out
}

// modes returns the sorted distinct delivery modes of classes.
func modes(classes []model.Class) []string {
	out := []string{}
	for _, cl := range classes {
		if cl.Mode != "" && !slices.Contains(out, cl.Mode) {
			out = append(out, cl.Mode)
		}
	}
	slices.Sort(out)
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
