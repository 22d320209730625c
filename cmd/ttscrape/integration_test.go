package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/ttscrape/internal/config"
	"github.com/nao1215/ttscrape/internal/report"
	"github.com/nao1215/ttscrape/internal/upload"
)

const testIndexPage = `<html><body><table>
<tr class="rowLowlight"><td class="data">COMP</td><td class="data"><a href="COMPKENS.html">Computer Science</a></td><td class="data">CSE</td></tr>
<tr class="rowHighlight"><td class="data">MATH</td><td class="data"><a href="MATHKENS.html">Mathematics</a></td><td class="data">Maths</td></tr>
</table></body></html>`

const testCompPage = `<html><body><table>
<tr><td class="classSearchMinorHeading">Undergraduate</td></tr>
<tr class="rowLowlight"><td class="data"><a href="COMP2521.html">COMP2521</a></td><td class="data">Data Structures</td><td class="data">6</td></tr>
<tr class="rowHighlight"><td class="data"><a href="COMP1511.html">COMP1511</a></td><td class="data">Programming Fundamentals</td><td class="data">6</td></tr>
</table></body></html>`

const testMathPage = `<html><body><table>
<tr><td class="classSearchMinorHeading">Undergraduate</td></tr>
<tr class="rowLowlight"><td class="data"><a href="MATH1131.html">MATH1131</a></td><td class="data">Mathematics 1A</td><td class="data">6</td></tr>
</table></body></html>`

func testCoursePage(classNbr, mode string) string {
	return fmt.Sprintf(`<html><body>
<table><tr><td class="label">Faculty</td><td class="data">Engineering</td><td class="label">Campus</td><td class="data">Sydney</td></tr></table>
<table><tr><td class="tableHeading">Teaching Period</td></tr><tr><td class="data">T1 - Term One</td></tr></table>
<table>
<tr><td class="label">Class Nbr</td><td class="data">%s</td></tr>
<tr><td class="label">Teaching Period</td><td class="data">T1 - 17/02/2025</td></tr>
<tr><td class="label">Instruction Mode</td><td class="data">%s</td></tr>
<tr><td class="label">Meeting Information</td></tr>
<tr><td><table><tr><td class="data">Mon</td><td class="data">09:00 - 11:00</td><td class="data">K17</td><td class="data">1-10</td></tr></table></td></tr>
<tr><td class="label">Class Notes</td></tr>
</table>
</body></html>`, classNbr, mode)
}

// newTimetableServer serves a two-subject timetable for 2025 only.
func newTimetableServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv, _ := newCountingTimetableServer(t)
	return srv
}

// newCountingTimetableServer is newTimetableServer that also reports how
// often each path was requested.
func newCountingTimetableServer(t *testing.T) (*httptest.Server, func(path string) int) {
	t.Helper()

	pages := map[string]string{
		"/2025/subjectSearch.html": testIndexPage,
		"/2025/COMPKENS.html":      testCompPage,
		"/2025/MATHKENS.html":      testMathPage,
		"/2025/COMP1511.html":      testCoursePage("1001", "In Person"),
		"/2025/COMP2521.html":      testCoursePage("2002", "Online"),
		"/2025/MATH1131.html":      testCoursePage("3003", "In Person"),
	}
	var (
		mu   sync.Mutex
		hits = make(map[string]int)
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()

		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, func(path string) int {
		mu.Lock()
		defer mu.Unlock()
		return hits[path]
	}
}

// writeTestConfig writes a .ttscrape file keeping the history database
// inside dir.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, ".ttscrape")
	content := fmt.Sprintf("history:\n  dir: %q\n", filepath.Join(dir, "db"))
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func scrapeArgs(srv *httptest.Server, cfgPath string, extra ...string) []string {
	args := []string{
		"scrape",
		"--config", cfgPath,
		"--url", srv.URL + "/year/subjectSearch.html",
		"--rate", "1000",
		"--spacing", "1ms",
	}
	return append(args, extra...)
}

func TestScrape_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := newTimetableServer(t)
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	outDir := filepath.Join(dir, "out", "{year}")
	reportPath := filepath.Join(dir, "timetable-{year}.md")

	out, err := execute(t, scrapeArgs(srv, cfgPath, "--year", "2025", "-o", outDir, "--report", reportPath)...)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	for _, want := range []string{"TIMETABLE 2025", "Courses:        3", "Classes:        3", "Since last run: changed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	ds, err := report.ReadDataset(filepath.Join(dir, "out", "2025"))
	if err != nil {
		t.Fatalf("dataset not written: %v", err)
	}
	if courses, classes, times := ds.Counts(); courses != 3 || classes != 3 || times != 3 {
		t.Errorf("expected 3/3/3 rows, got %d/%d/%d", courses, classes, times)
	}

	md, err := os.ReadFile(filepath.Join(dir, "timetable-2025.md"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(md), "Timetable 2025") {
		t.Errorf("unexpected report:\n%s", md)
	}

	t.Run("second run is unchanged", func(t *testing.T) {
		out, err := execute(t, scrapeArgs(srv, cfgPath, "--year", "2025", "-o", outDir)...)
		if err != nil {
			t.Fatalf("scrape failed: %v", err)
		}
		if !strings.Contains(out, "Since last run: unchanged") {
			t.Errorf("expected unchanged run, got:\n%s", out)
		}
	})

	t.Run("history lists both runs", func(t *testing.T) {
		out, err := execute(t, "history", "--config", cfgPath)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if n := strings.Count(out, "2025"); n < 2 {
			t.Errorf("expected two 2025 runs, got:\n%s", out)
		}
	})

	t.Run("history of an unknown year", func(t *testing.T) {
		_, err := execute(t, "history", "--config", cfgPath, "--year", "1999")
		if err == nil || !strings.Contains(err.Error(), "no runs recorded") {
			t.Errorf("expected empty history error, got %v", err)
		}
	})
}

func TestScrape_NewestYear(t *testing.T) {
	t.Parallel()

	srv, hits := newCountingTimetableServer(t)
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	// No --year: the newest published year is found by probing back from
	// the current year.
	out, err := execute(t, scrapeArgs(srv, cfgPath,
		"--horizon", "200",
		"-o", filepath.Join(dir, "{year}"),
		"--no-history",
	)...)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	if !strings.Contains(out, "TIMETABLE 2025") {
		t.Errorf("expected the 2025 timetable, got:\n%s", out)
	}
	if _, err := report.ReadDataset(filepath.Join(dir, "2025")); err != nil {
		t.Fatalf("dataset not written: %v", err)
	}
	for _, path := range []string{"/2025/COMPKENS.html", "/2025/COMP1511.html", "/2025/MATH1131.html"} {
		if n := hits(path); n != 1 {
			t.Errorf("expected %s to be crawled once, got %d requests", path, n)
		}
	}
}

func TestScrape_JSONSummary(t *testing.T) {
	t.Parallel()

	srv := newTimetableServer(t)
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	out, err := execute(t, scrapeArgs(srv, cfgPath, "--year", "2025", "-o", dir, "--json", "--no-history")...)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}

	var s report.Summary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("summary is not JSON: %v\n%s", err, out)
	}
	if s.Year != 2025 || s.Courses != 3 || s.RunID != "" {
		t.Errorf("unexpected summary %+v", s)
	}
	if _, err := os.Stat(filepath.Join(dir, "db")); !os.IsNotExist(err) {
		t.Errorf("expected no history database with --no-history, stat err = %v", err)
	}
}

func TestScrape_ConfigErrors(t *testing.T) {
	t.Parallel()

	srv := newTimetableServer(t)
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "template without year segment",
			args: []string{"scrape", "--config", cfgPath, "--url", srv.URL + "/subjectSearch.html"},
			want: "configuration error",
		},
		{
			name: "zero rate",
			args: scrapeArgs(srv, cfgPath, "--rate", "0"),
			want: "configuration error",
		},
		{
			name: "multiple years with postgres",
			args: scrapeArgs(srv, cfgPath, "--year", "2024", "--year", "2025", "--postgres"),
			want: "configuration error",
		},
		{
			name: "missing config file",
			args: []string{"scrape", "--config", filepath.Join(dir, "missing.yaml")},
			want: config.ErrConfigNotFound.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestResolveYear(t *testing.T) {
	t.Parallel()

	srv := newTimetableServer(t)
	cfgPath := writeTestConfig(t, t.TempDir())

	out, err := execute(t, "resolve-year", "--config", cfgPath,
		"--url", srv.URL+"/year/subjectSearch.html",
		"--from", "2027", "--rate", "1000", "--spacing", "1ms")
	if err != nil {
		t.Fatalf("resolve-year failed: %v", err)
	}
	if strings.TrimSpace(out) != "2025" {
		t.Errorf("expected 2025, got %q", out)
	}
}

// batchInsertServer records every batch_insert body.
type batchInsertServer struct {
	mu     sync.Mutex
	bodies [][]upload.Request
}

func newBatchInsertServer(t *testing.T, key string) (*httptest.Server, *batchInsertServer) {
	t.Helper()

	rec := &batchInsertServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/batch_insert" || r.Header.Get("X-API-Key") != key {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var reqs []upload.Request
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			http.Error(w, `{"error":"bad json"}`, http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		rec.bodies = append(rec.bodies, reqs)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

// Not parallel: the upload credentials come from the environment.
func TestScrapeAndUpload(t *testing.T) {
	const key = "test-key-123"
	upSrv, rec := newBatchInsertServer(t, key)
	t.Setenv(config.EnvUploadURL, upSrv.URL)
	t.Setenv(config.EnvUploadAPIKey, key)

	srv := newTimetableServer(t)
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	if _, err := execute(t, scrapeArgs(srv, cfgPath, "--year", "2025", "-o", dir, "--upload", "--dry-run")...); err != nil {
		t.Fatalf("scrape --upload failed: %v", err)
	}

	out, err := execute(t, "upload", "--config", cfgPath, "--input", dir)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.Contains(out, "Uploaded 3 courses, 3 classes, 3 times") {
		t.Errorf("unexpected output %q", out)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.bodies) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(rec.bodies))
	}
	if !rec.bodies[0][0].Metadata.DryRun {
		t.Error("expected the scrape upload to be a dry run")
	}
	if rec.bodies[1][0].Metadata.DryRun {
		t.Error("expected the replayed upload not to be a dry run")
	}
	for _, body := range rec.bodies {
		if len(body) != 3 || body[0].Metadata.TableName != "courses" {
			t.Errorf("unexpected batch %+v", body)
		}
	}
}

// Not parallel: clears the upload credentials from the environment.
func TestUpload_MissingCredentials(t *testing.T) {
	t.Setenv(config.EnvUploadURL, "")
	t.Setenv(config.EnvUploadAPIKey, "")

	_, err := execute(t, "upload", "--config", writeTestConfig(t, t.TempDir()), "--input", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), config.ErrMissingUploadCredentials.Error()) {
		t.Errorf("expected missing credentials error, got %v", err)
	}
}
