package app

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// zettelMetrics counts the words, runes and lines of a zettel body.
type zettelMetrics struct {
	words int
	chars int
	lines int
}

func computeZettelMetrics(body string) zettelMetrics {
	if body == "" {
		return zettelMetrics{}
	}
	lines := strings.Count(body, "\n")
	if !strings.HasSuffix(body, "\n") {
		lines++
	}
	return zettelMetrics{
		words: len(strings.Fields(body)),
		chars: utf8.RuneCountInString(body),
		lines: lines,
	}
}

// metricsSummary is shown in the zettel footer. Blank bodies have none.
func metricsSummary(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	m := computeZettelMetrics(body)
	return fmt.Sprintf("W:%d C:%d L:%d", m.words, m.chars, m.lines)
}
