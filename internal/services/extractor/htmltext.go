package extractor

import (
	"regexp"
	"strings"
)

// Ellipsis marks text cut to the model's character budget.
const Ellipsis = "..."

var (
	htmlMarker   = regexp.MustCompile(`(?i)<(html|body)\b`)
	scriptBlocks = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlocks  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	anyTag       = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespace   = regexp.MustCompile(`\s+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// LooksLikeHTML reports whether s carries an <html> or <body> tag.
func LooksLikeHTML(s string) bool {
	return htmlMarker.MatchString(s)
}

// CleanHTML reduces a page to the words a text model should read. It is not
// a sanitizer: the output is a prompt, never rendered.
func CleanHTML(s string) string {
	s = scriptBlocks.ReplaceAllString(s, " ")
	s = styleBlocks.ReplaceAllString(s, " ")
	s = anyTag.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Truncate cuts s to at most maxChars characters, appending Ellipsis when
// anything was dropped. A non-positive budget leaves s alone.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + Ellipsis
}

// PrepareText is the input stage of the fallback: clean when the input is a
// page, then fit it to the budget.
func PrepareText(input string, maxChars int) string {
	text := strings.TrimSpace(input)
	if LooksLikeHTML(text) {
		text = CleanHTML(text)
	}
	return Truncate(text, maxChars)
}
