package model

import "strings"

// idSeparator joins the parts of every derived identifier.
const idSeparator = "_"

// CourseID derives the course identifier from its code and career. The
// same code is offered separately per career, so both take part.
func CourseID(code, career string) string {
	if career == "" {
		return code
	}
	return code + idSeparator + career
}

// ClassID derives the class identifier. term is the short term code
// (e.g. "T1"), not the full teaching period.
func ClassID(courseID, classNbr, term, year string) string {
	return strings.Join([]string{courseID, classNbr, term, year}, idSeparator)
}

// TimeID derives the identifier of a meeting. It has no random part, so
// re-running a crawl over unchanged pages reproduces it.
func TimeID(classID string, t Time) string {
	return strings.Join([]string{classID, t.Day.String(), t.Location, t.Time, t.Weeks}, idSeparator)
}
