package extract

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/ttscrape/internal/model"
)

const (
	dataRowSelector       = "tr.rowLowlight, tr.rowHighlight"
	careerHeadingSelector = "td.classSearchMinorHeading"
)

// SubjectAreas walks the index page and emits one SubjectAreaRef per data
// row, in document order. Links are resolved against base. An error from
// emit stops the walk and is returned as is.
func SubjectAreas(doc *goquery.Document, base *url.URL, emit func(model.SubjectAreaRef) error) error {
	rows := doc.Find(dataRowSelector)
	for i := range rows.Length() {
		row := rows.Eq(i)
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 3 {
			return fmt.Errorf("%w: subject area row %d has %d cells, want 3", ErrLayout, i, cells.Length())
		}
		link, err := firstLink(row, base)
		if err != nil {
			return fmt.Errorf("subject area row %d: %w", i, err)
		}
		ref := model.SubjectAreaRef{
			Code:   cellText(cells.Eq(0)),
			Name:   cellText(cells.Eq(1)),
			School: cellText(cells.Eq(2)),
			URL:    link,
		}
		if err := emit(ref); err != nil {
			return err
		}
	}
	return nil
}

// Courses walks a subject-area page row by row in a single pass. A career
// heading row sets the career of the data rows below it; each data row
// yields a PartialCourse. The same (code, career) pair is emitted at most
// once per page. A non-numeric unit value fails with ErrInvalidUOC.
func Courses(doc *goquery.Document, base *url.URL, emit func(model.PartialCourse) error) error {
	var (
		career string
		seen   = make(map[[2]string]struct{})
		rows   = doc.Find("tr")
	)

	for i := range rows.Length() {
		row := rows.Eq(i)

		if heading := row.ChildrenFiltered(careerHeadingSelector); heading.Length() > 0 {
			career = cellText(heading.First())
			continue
		}
		if !row.Is(dataRowSelector) {
			continue
		}

		cells := row.ChildrenFiltered("td")
		if cells.Length() < 3 {
			return fmt.Errorf("%w: course row has %d cells, want 3", ErrLayout, cells.Length())
		}
		code := cellText(cells.Eq(0))
		uocText := cellText(cells.Eq(2))
		uoc, err := strconv.Atoi(uocText)
		if err != nil {
			return fmt.Errorf("%w: course %s: %q", ErrInvalidUOC, code, uocText)
		}

		key := [2]string{code, career}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		link, err := firstLink(row, base)
		if err != nil {
			return fmt.Errorf("course %s: %w", code, err)
		}
		pc := model.PartialCourse{
			Code:   code,
			Name:   cellText(cells.Eq(1)),
			Career: career,
			UOC:    uoc,
			URL:    link,
		}
		if err := emit(pc); err != nil {
			return err
		}
	}
	return nil
}
