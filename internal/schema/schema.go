// Package schema holds the warehouse table definitions shared by the
// batch uploader and the PostgreSQL sink.
package schema

import (
	"embed"
	"fmt"
)

//go:embed sql
var files embed.FS

// Table describes one warehouse table.
type Table struct {
	// Name is the table name.
	Name string

	// Columns lists the columns in load order. They match the JSON field
	// names of the corresponding model row type.
	Columns []string

	// Up creates the table; Down drops it.
	Up   string
	Down string
}

const (
	Courses = "courses"
	Classes = "classes"
	Times   = "times"
)

var columns = map[string][]string{
	Courses: {
		"course_id", "course_code", "course_name", "uoc", "faculty",
		"school", "campus", "career", "terms", "modes",
	},
	Classes: {
		"class_id", "career", "course_id", "section", "term", "activity",
		"year", "status", "course_enrolment", "offering_period",
		"meeting_dates", "census_date", "consent", "mode", "class_notes",
	},
	Times: {
		"id", "class_id", "career", "day", "instructor", "location",
		"time", "weeks",
	},
}

// Order is the order tables are created and loaded in. Drop in reverse.
var Order = []string{Courses, Classes, Times}

// Get returns the named table.
func Get(name string) (Table, error) {
	cols, ok := columns[name]
	if !ok {
		return Table{}, fmt.Errorf("unknown table %q", name)
	}
	up, err := files.ReadFile("sql/" + name + "/up.sql")
	if err != nil {
		return Table{}, fmt.Errorf("reading %s up migration: %w", name, err)
	}
	down, err := files.ReadFile("sql/" + name + "/down.sql")
	if err != nil {
		return Table{}, fmt.Errorf("reading %s down migration: %w", name, err)
	}
	return Table{
		Name:    name,
		Columns: append([]string(nil), cols...),
		Up:      string(up),
		Down:    string(down),
	}, nil
}

// All returns every table in Order.
func All() ([]Table, error) {
	tables := make([]Table, 0, len(Order))
	for _, name := range Order {
		t, err := Get(name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}
