package aiclient

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>?`)
	spacePattern = regexp.MustCompile(`[ \t]+`)
)

// StripHTML returns the visible text of an HTML fragment. Listing titles and
// descriptions arrive with markup from scraped sources.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(tagPattern.ReplaceAllString(fragment, ""))
	}
	doc.Find("script, style, noscript").Remove()
	text := doc.Text()
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
