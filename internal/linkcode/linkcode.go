// Package linkcode finds bracket links in a zettel body and assigns each one
// a short letter code that can be typed to follow it.
//
// A link is written as [label] or [label](target). A link whose opening
// bracket directly follows a backtick is left alone. Codes are drawn from the
// lowercase letters that are not already bound to page shortcuts. A document
// uses single letters while it has no more links than available letters, and
// two letters for every link otherwise; the first letter changes slowest.
package linkcode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrTooManyLinks is returned when a body has more links than two-letter
// codes can address.
var ErrTooManyLinks = errors.New("too many links in document")

var linkPattern = regexp.MustCompile(`\[([^\]]+)\](?:\(([^)]+)\))?`)

// SpanKind tells the renderer how to style a span.
type SpanKind int

const (
	Plain SpanKind = iota
	Link
	Code
)

// Span is a run of text with a single style.
type Span struct {
	Kind SpanKind
	Text string
}

// Line is one line of the body split into spans.
type Line []Span

// Document is an encoded body.
type Document struct {
	Lines []Line
	// Links maps each code to the target of the link it was assigned to.
	Links map[string]string
	// CodeLen is the length shared by every code in Links.
	CodeLen int
}

// Lookup returns the target for code.
func (d Document) Lookup(code string) (string, bool) {
	target, ok := d.Links[code]
	return target, ok
}

// Alphabet returns a..z without the runes in reserved.
func Alphabet(reserved string) []rune {
	out := make([]rune, 0, 26)
	for r := 'a'; r <= 'z'; r++ {
		if !strings.ContainsRune(reserved, r) {
			out = append(out, r)
		}
	}
	return out
}

type match struct {
	start, end int // whole match, including any (target)
	labelEnd   int // end of "[label]"
	target     string
}

func findLinks(line string) []match {
	var out []match
	for _, loc := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
		if loc[0] > 0 && line[loc[0]-1] == '`' {
			continue
		}
		m := match{start: loc[0], end: loc[1], labelEnd: loc[3] + 1}
		if loc[4] >= 0 {
			m.target = line[loc[4]:loc[5]]
		} else {
			m.target = strings.Trim(line[loc[2]:loc[3]], "[]")
		}
		out = append(out, m)
	}
	return out
}

// Encode scans body and assigns codes in order of first occurrence, line by
// line and left to right. With overlay set every link span is preceded by a
// Code span showing its code. The (target) part of a link is never part of
// the output.
func Encode(body, reserved string, overlay bool) (Document, error) {
	alphabet := Alphabet(reserved)
	k := len(alphabet)

	rawLines := strings.Split(body, "\n")
	found := make([][]match, len(rawLines))
	total := 0
	for i, line := range rawLines {
		found[i] = findLinks(line)
		total += len(found[i])
	}

	doc := Document{
		Lines:   make([]Line, 0, len(rawLines)),
		Links:   make(map[string]string, total),
		CodeLen: 1,
	}
	switch {
	case total <= k:
	case total <= k*k:
		doc.CodeLen = 2
	default:
		return Document{}, fmt.Errorf("%w: %d links, room for %d", ErrTooManyLinks, total, k*k)
	}

	n := 0
	for i, line := range rawLines {
		var spans Line
		pos := 0
		for _, m := range found[i] {
			code := codeFor(alphabet, doc.CodeLen, n)
			n++
			if m.start > pos {
				spans = append(spans, Span{Kind: Plain, Text: line[pos:m.start]})
			}
			if overlay {
				spans = append(spans, Span{Kind: Code, Text: "[" + code + "]"})
			}
			spans = append(spans, Span{Kind: Link, Text: line[m.start:m.labelEnd]})
			doc.Links[code] = m.target
			pos = m.end
		}
		if pos < len(line) {
			spans = append(spans, Span{Kind: Plain, Text: line[pos:]})
		}
		doc.Lines = append(doc.Lines, spans)
	}
	return doc, nil
}

func codeFor(alphabet []rune, size, n int) string {
	if size == 1 {
		return string(alphabet[n])
	}
	k := len(alphabet)
	return string([]rune{alphabet[n/k], alphabet[n%k]})
}
