package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

const nbsp = "\u00a0"

// ParseDocument parses an HTML page.
func ParseDocument(body []byte) (*goquery.Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// Cells flattens a table into text tokens. Only innermost cells (cells
// without nested cells) contribute, in document order. Each cell's text is
// split on newlines; every piece is trimmed and empty pieces are dropped.
func Cells(table *goquery.Selection) []string {
	var tokens []string
	table.Find("td").Each(func(_ int, td *goquery.Selection) {
		if td.Find("td").Length() > 0 {
			return
		}
		for _, line := range strings.Split(text(td), "\n") {
			if s := strings.TrimSpace(line); s != "" {
				tokens = append(tokens, s)
			}
		}
	})
	return tokens
}

// text returns the text of s with non-breaking spaces turned into spaces.
func text(s *goquery.Selection) string {
	return strings.ReplaceAll(s.Text(), nbsp, " ")
}

// cellText returns the trimmed text of s.
func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(text(s))
}

// firstLink resolves the href of the first anchor under s against base.
func firstLink(s *goquery.Selection, base *url.URL) (string, error) {
	href, ok := s.Find("a[href]").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", fmt.Errorf("%w: row has no link", ErrLayout)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: bad link %q: %w", ErrLayout, href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// folder compares labels case-insensitively. A cases.Caser is stateful,
// so each goroutine needs its own.
type folder struct {
	caser cases.Caser
}

func newFolder() *folder {
	return &folder{caser: cases.Fold()}
}

func (f *folder) fold(s string) string {
	return f.caser.String(strings.TrimSpace(s))
}

// findLabel returns the first cell under doc matching selector whose text
// folds to label.
func findLabel(doc *goquery.Selection, selector, label string) *goquery.Selection {
	f := newFolder()
	want := f.fold(label)
	return doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return f.fold(text(s)) == want
	}).First()
}
