// Package crawler walks the timetable of one academic year and returns
// every course it lists.
//
// # Levels
//
// The timetable is three levels deep and each level is crawled the same
// way:
//
//	index page     -> subject areas   (schoolLevel)
//	subject area   -> partial courses (subjectAreaLevel)
//	partial course -> course          (courseLevel)
//
// A level is a producer/consumer pair. The producer fetches the parent
// page and parses it on the parse pool, sending each child on an
// unbuffered channel as soon as the parse reaches it. The consumer starts
// one goroutine per child without a cap; the shared rate limiter inside
// the fetch client is the only throttle. A level finishes when its channel
// is closed and every child has returned.
//
// # Failure
//
// The first error of a level wins, but siblings are not cancelled: they
// run to completion and their results are dropped. Errors carry the URL
// of every page on the path to the failure. The context is only used to
// stop the whole crawl on shutdown.
//
// # State
//
// All inputs live in a ScrapingContext built by the caller. Nothing in
// this package reads the environment or global state.
package crawler
