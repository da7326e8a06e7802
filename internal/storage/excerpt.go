package storage

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// excerptContext is the number of bytes kept on either side of a match.
const excerptContext = 10

// CompilePattern compiles a search query, mapping syntax errors to
// ErrInvalidPattern.
func CompilePattern(query string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

// Excerpt returns the first match of re in body with a few bytes of context on
// each side, or "" when body does not match. The window is widened to rune
// boundaries so multi-byte characters are never split.
func Excerpt(re *regexp.Regexp, body string) string {
	loc := re.FindStringIndex(body)
	if loc == nil {
		return ""
	}
	start := loc[0] - excerptContext
	if start < 0 {
		start = 0
	}
	end := loc[1] + excerptContext
	if end > len(body) {
		end = len(body)
	}
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}
	return body[start:end]
}
