package model

// CourseRow is one row of the courses table.
type CourseRow struct {
	CourseID   string   `json:"course_id"`
	CourseCode string   `json:"course_code"`
	CourseName string   `json:"course_name"`
	UOC        int      `json:"uoc"`
	Faculty    *string  `json:"faculty"`
	School     *string  `json:"school"`
	Campus     *string  `json:"campus"`
	Career     string   `json:"career"`
	Terms      []string `json:"terms"`
	Modes      []string `json:"modes"`
}

// ClassRow is one row of the classes table.
type ClassRow struct {
	ClassID         string  `json:"class_id"`
	Career          string  `json:"career"`
	CourseID        string  `json:"course_id"`
	Section         string  `json:"section"`
	Term            string  `json:"term"`
	Activity        string  `json:"activity"`
	Year            string  `json:"year"`
	Status          string  `json:"status"`
	CourseEnrolment string  `json:"course_enrolment"`
	OfferingPeriod  string  `json:"offering_period"`
	MeetingDates    string  `json:"meeting_dates"`
	CensusDate      string  `json:"census_date"`
	Consent         string  `json:"consent"`
	Mode            string  `json:"mode"`
	ClassNotes      *string `json:"class_notes"`
}

// TimeRow is one row of the times table.
type TimeRow struct {
	ID         string  `json:"id"`
	ClassID    string  `json:"class_id"`
	Career     string  `json:"career"`
	Day        string  `json:"day"`
	Instructor *string `json:"instructor"`
	Location   string  `json:"location"`
	Time       string  `json:"time"`
	Weeks      string  `json:"weeks"`
}

// Dataset is the flat, relational form of one crawl: every row carries the
// foreign keys needed to load it into the warehouse tables.
type Dataset struct {
	Courses []CourseRow `json:"courses"`
	Classes []ClassRow  `json:"classes"`
	Times   []TimeRow   `json:"times"`
}

// Flatten converts courses into a Dataset. Row order follows the order of
// courses, their classes and their meetings.
func Flatten(courses []Course) *Dataset {
	ds := &Dataset{
		Courses: make([]CourseRow, 0, len(courses)),
		Classes: []ClassRow{},
		Times:   []TimeRow{},
	}

	for i := range courses {
		c := &courses[i]
		ds.Courses = append(ds.Courses, CourseRow{
			CourseID:   c.ID(),
			CourseCode: c.Code,
			CourseName: c.Name,
			UOC:        c.UOC,
			Faculty:    c.Faculty,
			School:     c.School,
			Campus:     c.Campus,
			Career:     c.Career,
			Terms:      nonNil(c.Terms),
			Modes:      nonNil(c.Modes),
		})

		for j := range c.Classes {
			cl := &c.Classes[j]
			classID := cl.ID()
			ds.Classes = append(ds.Classes, ClassRow{
				ClassID:         classID,
				Career:          cl.Career,
				CourseID:        cl.CourseID,
				Section:         cl.Section,
				Term:            cl.Term,
				Activity:        cl.Activity,
				Year:            cl.Year,
				Status:          cl.Status,
				CourseEnrolment: cl.CourseEnrolment,
				OfferingPeriod:  cl.OfferingPeriod,
				MeetingDates:    cl.MeetingDates,
				CensusDate:      cl.CensusDate,
				Consent:         cl.Consent,
				Mode:            cl.Mode,
				ClassNotes:      cl.Notes,
			})

			for _, t := range cl.Times {
				ds.Times = append(ds.Times, TimeRow{
					ID:         TimeID(classID, t),
					ClassID:    classID,
					Career:     cl.Career,
					Day:        t.Day.String(),
					Instructor: t.Instructor,
					Location:   t.Location,
					Time:       t.Time,
					Weeks:      t.Weeks,
				})
			}
		}
	}
	return ds
}

// Counts returns the number of course, class and time rows.
func (d *Dataset) Counts() (courses, classes, times int) {
	return len(d.Courses), len(d.Classes), len(d.Times)
}

// ModeCounts returns how many classes use each delivery mode.
func (d *Dataset) ModeCounts() map[string]int {
	counts := make(map[string]int)
	for _, c := range d.Classes {
		counts[c.Mode]++
	}
	return counts
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
