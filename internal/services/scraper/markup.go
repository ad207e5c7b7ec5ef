package scraper

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// MaxHTMLSize bounds documents handed to the parser.
const MaxHTMLSize = 10 * 1024 * 1024

var (
	strictPolicy = bluemonday.StrictPolicy()
	blockBreaks  = regexp.MustCompile(`(?i)<br\s*/?>|</p\s*>|</li\s*>|</div\s*>`)
	inlineSpace  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
)

func loadHTML(doc string) (*goquery.Document, error) {
	if len(strings.TrimSpace(doc)) == 0 || len(doc) > MaxHTMLSize {
		return nil, ErrInvalidHTML
	}
	return goquery.NewDocumentFromReader(strings.NewReader(doc))
}

// plainText strips any markup embedded in a structured-data string, decodes
// entities and collapses runs of spaces. Line breaks implied by block tags
// are kept as newlines.
func plainText(s string) string {
	if strings.ContainsAny(s, "<&") {
		s = blockBreaks.ReplaceAllString(s, "\n")
		s = html.UnescapeString(strictPolicy.Sanitize(s))
		// Entity-encoded markup ("&lt;p&gt;") survives one round; drop it too.
		if strings.Contains(s, "<") {
			s = html.UnescapeString(strictPolicy.Sanitize(blockBreaks.ReplaceAllString(s, "\n")))
		}
	}

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(inlineSpace.ReplaceAllString(l, " "))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// singleLine is plainText folded onto one line, for titles and ingredients.
func singleLine(s string) string {
	return strings.Join(strings.Split(plainText(s), "\n"), " ")
}
