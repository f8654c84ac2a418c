package testutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses rendered markup into a goquery document for assertions.
func ParseHTML(t testing.TB, body string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Texts returns the trimmed text of every node matching selector, in document order.
func Texts(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}
