// Package model defines the timetable records produced by a crawl.
//
// Courses own their classes and classes own their meetings; the reverse
// direction is expressed only through the plain identifier strings each
// record carries (CourseID, ClassID, TimeID). All identifiers are pure
// functions of scraped values, so crawling unchanged pages twice yields
// identical ids.
//
// Dataset is the flat, table-shaped form used by every output: the JSON
// files, the warehouse upload and the PostgreSQL sink.
package model
