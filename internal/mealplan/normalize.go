package mealplan

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:markdown|md)?[ \t]*\n")
	fenceClose = regexp.MustCompile("\n?```$")
	htmlMarkup = regexp.MustCompile(`(?i)<(?:h[1-6]|ul|ol|li)\b[^>]*>`)
	mdHeader   = regexp.MustCompile(`(?m)^[ \t]*##\s`)
)

// Normalize cleans up common generator deviations before extraction:
// a leading BOM, a code fence wrapped around the whole answer, and
// answers written in HTML instead of markdown. A document that already
// has a markdown header is never converted, so a stray tag in a
// markdown answer leaves it untouched. It is not part of Extract, which
// stays a plain function of its input.
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.TrimPrefix(raw, "\uFEFF"))

	if loc := fenceOpen.FindStringIndex(s); loc != nil && strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(fenceClose.ReplaceAllString(s[loc[1]:], ""))
	}

	if htmlMarkup.MatchString(s) && !mdHeader.MatchString(s) {
		md, err := htmltomarkdown.ConvertString(s)
		if err == nil && strings.TrimSpace(md) != "" {
			s = md
		}
	}

	return s
}
