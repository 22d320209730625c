package crawler

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/ttscrape/internal/extract"
	"github.com/nao1215/ttscrape/internal/model"
)

// Crawl crawls the timetable of year y and returns its courses sorted by
// course id.
func (sc *ScrapingContext) Crawl(ctx context.Context, y int) ([]model.Course, error) {
	start := time.Now()
	indexURL := sc.template.URLForYear(y)
	sc.logger.Info("crawl started", "year", y, "url", indexURL)

	courses, err := sc.schoolLevel(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(courses, func(a, b model.Course) int {
		return strings.Compare(a.ID(), b.ID())
	})
	courses = sc.dropDuplicates(courses)

	sc.logger.Info("crawl finished",
		"year", y,
		"courses", len(courses),
		"elapsed", time.Since(start),
	)
	return courses, nil
}

// CrawlCurrent resolves the newest year with data, starting from now's
// year, and crawls it.
func (sc *ScrapingContext) CrawlCurrent(ctx context.Context, now time.Time) (int, []model.Course, error) {
	if sc.resolver == nil {
		return 0, nil, ErrNoResolver
	}
	y, err := sc.resolver.Resolve(ctx, now.Year())
	if err != nil {
		return 0, nil, fmt.Errorf("resolving year: %w", err)
	}
	courses, err := sc.Crawl(ctx, y)
	if err != nil {
		return 0, nil, err
	}
	return y, courses, nil
}

// schoolLevel crawls every subject area listed on the index page.
func (sc *ScrapingContext) schoolLevel(ctx context.Context, indexURL string) ([]model.Course, error) {
	produce := func(emit func(model.SubjectAreaRef) error) error {
		err := sc.parsePage(ctx, indexURL, func(doc *goquery.Document, base *url.URL) error {
			return extract.SubjectAreas(doc, base, emit)
		})
		if err != nil {
			return fmt.Errorf("index %s: %w", indexURL, err)
		}
		return nil
	}

	perArea, err := fanOut(ctx, produce, sc.subjectAreaLevel)
	if err != nil {
		return nil, err
	}
	var courses []model.Course
	for _, cs := range perArea {
		courses = append(courses, cs...)
	}
	return courses, nil
}

// subjectAreaLevel crawls every course listed on one subject-area page.
func (sc *ScrapingContext) subjectAreaLevel(ctx context.Context, ref model.SubjectAreaRef) ([]model.Course, error) {
	produce := func(emit func(model.PartialCourse) error) error {
		return sc.parsePage(ctx, ref.URL, func(doc *goquery.Document, base *url.URL) error {
			return extract.Courses(doc, base, emit)
		})
	}

	courses, err := fanOut(ctx, produce, sc.courseLevel)
	if err != nil {
		return nil, fmt.Errorf("subject area %s (%s): %w", ref.Code, ref.URL, err)
	}
	sc.logger.Debug("subject area done", "subject_area", ref.Code, "courses", len(courses))
	return courses, nil
}

// courseLevel completes one course from its course page.
func (sc *ScrapingContext) courseLevel(ctx context.Context, pc model.PartialCourse) (model.Course, error) {
	var course model.Course
	err := sc.parsePage(ctx, pc.URL, func(doc *goquery.Document, _ *url.URL) error {
		var err error
		course, err = extract.CoursePage(doc, pc, sc.extractOptions())
		return err
	})
	if err != nil {
		return model.Course{}, fmt.Errorf("course %s (%s): %w", model.CourseID(pc.Code, pc.Career), pc.URL, err)
	}
	return course, nil
}

// parsePage fetches pageURL, then parses it and runs walk while holding a
// parse pool slot.
func (sc *ScrapingContext) parsePage(ctx context.Context, pageURL string, walk func(*goquery.Document, *url.URL) error) error {
	base, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}

	body, err := sc.fetcher.Page(ctx, pageURL)
	if err != nil {
		return err
	}

	if err := sc.pool.Acquire(ctx, 1); err != nil {
		return err
	}
	defer sc.pool.Release(1)

	doc, err := extract.ParseDocument(body)
	if err != nil {
		return err
	}
	return walk(doc, base)
}

// dropDuplicates removes courses whose id repeats that of the previous
// course. courses must be sorted by id.
func (sc *ScrapingContext) dropDuplicates(courses []model.Course) []model.Course {
	return slices.CompactFunc(courses, func(a, b model.Course) bool {
		if a.ID() != b.ID() {
			return false
		}
		sc.logger.Warn("course listed by more than one subject area", "course_id", a.ID())
		return true
	})
}
