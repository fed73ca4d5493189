// Package slug derives the public changelog lookup keys. The algorithm is
// load-bearing for URL stability and must not change.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// maxTitleLen caps the slugified title before the item prefix is applied.
const maxTitleLen = 50

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaceRuns    = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// ForItem returns the base slug for a completed item:
// "item-{number}-{slugified title}".
func ForItem(number int64, title string) string {
	return fmt.Sprintf("item-%d-%s", number, fromTitle(title))
}

// WithSuffix appends a numeric disambiguation suffix.
func WithSuffix(base string, suffix int) string {
	return fmt.Sprintf("%s-%d", base, suffix)
}

// fromTitle lowercases the title, strips everything outside [a-z0-9 -],
// turns whitespace runs into hyphens, collapses hyphen runs, and truncates
// to maxTitleLen characters.
func fromTitle(title string) string {
	s := strings.ToLower(title)
	s = invalidChars.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	if len(s) > maxTitleLen {
		s = s[:maxTitleLen]
	}
	return s
}
