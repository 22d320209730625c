package year

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// placeholder is the path segment replaced by a concrete year.
const placeholder = "/year/"

var yearSegment = regexp.MustCompile(`/(\d{4})/`)

// Template is a timetable URL with a "/year/" placeholder segment, such as
// https://timetable.example.edu/year/subjectSearch.html.
type Template struct {
	raw string
}

// NewTemplate validates raw and wraps it.
func NewTemplate(raw string) (Template, error) {
	if !strings.Contains(raw, placeholder) {
		return Template{}, fmt.Errorf("%w: %q", ErrTemplateMissingYear, raw)
	}
	return Template{raw: raw}, nil
}

// URLForYear returns the template with the first placeholder replaced by y.
func (t Template) URLForYear(y int) string {
	return strings.Replace(t.raw, placeholder, "/"+strconv.Itoa(y)+"/", 1)
}

// String returns the raw template.
func (t Template) String() string {
	return t.raw
}

// YearOf extracts the first four-digit path segment of url.
func YearOf(url string) (int, error) {
	m := yearSegment.FindStringSubmatch(url)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrNoYearInURL, url)
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoYearInURL, url)
	}
	return y, nil
}
