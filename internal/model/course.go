package model

// Course is one course offering of a career, as shown on a course page.
// A Course owns its classes; classes refer back to it only through the
// CourseID string they carry.
type Course struct {
	// Code is the subject-area course code, e.g. "COMP1511".
	Code string `json:"course_code"`

	// Name is the course title from the subject-area listing.
	Name string `json:"course_name"`

	// UOC is the unit value of the course.
	UOC int `json:"uoc"`

	// Faculty, School and Campus come from the course page banner.
	// They are nil when the banner omits them.
	Faculty *string `json:"faculty,omitempty"`
	School  *string `json:"school,omitempty"`
	Campus  *string `json:"campus,omitempty"`

	// Career is the study career the listing placed the course under,
	// e.g. "Undergraduate". Empty when neither the listing nor the banner
	// named one.
	Career string `json:"career"`

	// Terms lists the distinct term codes in the order the term summary
	// table shows them.
	Terms []string `json:"terms"`

	// Modes is the sorted distinct set of delivery modes of the classes.
	Modes []string `json:"modes"`

	// Classes are the classes offered for the course.
	Classes []Class `json:"classes"`
}

// ID returns the course identifier. See CourseID.
func (c *Course) ID() string {
	return CourseID(c.Code, c.Career)
}

// Class is one class (lecture, tutorial, lab, ...) of a course in one term.
type Class struct {
	// CourseID and Career tie the class to its course.
	CourseID string `json:"course_id"`
	Career   string `json:"career"`

	// ClassNbr is the class number shown on the page.
	ClassNbr string `json:"class_nbr"`

	Section         string `json:"section"`
	Term            string `json:"term"`
	Activity        string `json:"activity"`
	Year            string `json:"year"`
	Status          string `json:"status"`
	CourseEnrolment string `json:"course_enrolment"`
	OfferingPeriod  string `json:"offering_period"`
	MeetingDates    string `json:"meeting_dates"`
	CensusDate      string `json:"census_date"`
	Consent         string `json:"consent"`
	Mode            string `json:"mode"`

	// Notes holds the free text following "Class Notes"; nil when empty.
	Notes *string `json:"class_notes,omitempty"`

	// Times is nil when the class had no meeting block at all, and empty
	// when the block listed no meetings.
	Times []Time `json:"times"`
}

// ID returns the class identifier. See ClassID.
func (c *Class) ID() string {
	return ClassID(c.CourseID, c.ClassNbr, c.Term, c.Year)
}

// Time is one weekly meeting of a class.
type Time struct {
	Day        Day     `json:"day"`
	Time       string  `json:"time"`
	Location   string  `json:"location"`
	Weeks      string  `json:"weeks"`
	Instructor *string `json:"instructor,omitempty"`
}

// PartialCourse is a course discovered on a subject-area page whose course
// page has not been fetched yet. It lives for a single crawl.
type PartialCourse struct {
	Code   string
	Name   string
	Career string
	UOC    int
	URL    string
}

// SubjectAreaRef is one row of the timetable index: a subject area and the
// page listing its courses.
type SubjectAreaRef struct {
	Code   string
	Name   string
	School string
	URL    string
}
