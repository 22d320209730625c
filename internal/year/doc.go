// Package year maps academic years onto timetable URLs and finds the
// newest year the timetable publishes.
//
// The timetable serves one tree per year under a path segment holding the
// four-digit year. A Template carries the "/year/" placeholder for that
// segment; the Resolver probes concrete years until it finds live data.
package year
