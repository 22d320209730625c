// Package extract turns timetable pages into records.
//
// Three page kinds are understood:
//
//   - the index page, listing subject areas (SubjectAreas)
//   - a subject-area page, listing courses grouped by career (Courses)
//   - a course page: a banner, a term summary and one table per class
//     (CoursePage)
//
// Tables on a course page are located through landmark labels ("Faculty",
// "Teaching Period", "Class Nbr") rather than by position, and a page
// missing one of them fails with ErrLayout. Class tables are flattened
// into a token stream (Cells) which ParseClass walks with a cursor.
//
// Extraction is a pure function of the page: running it twice over the
// same bytes yields identical records and identifiers.
package extract
