package linkcode

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestEncodeScenario(t *testing.T) {
	doc, err := Encode("See [config](sys:config) and [home]", "qecfls", false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := map[string]string{"a": "sys:config", "b": "home"}
	if !reflect.DeepEqual(doc.Links, want) {
		t.Fatalf("expected links %v, got %v", want, doc.Links)
	}
	if doc.CodeLen != 1 {
		t.Fatalf("expected code length 1, got %d", doc.CodeLen)
	}
	if got := doc.Text(); got != "See [config] and [home]" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestEncodeBracketedLabel(t *testing.T) {
	doc, err := Encode("see [[wiki page]] here", "", false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := doc.Links["a"]; got != "wiki page" {
		t.Fatalf("expected target without brackets, got %q", got)
	}
}

func TestEncodeOverlay(t *testing.T) {
	doc, err := Encode("See [config](sys:config) and [home]", "qecfls", true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := Line{
		{Kind: Plain, Text: "See "},
		{Kind: Code, Text: "[a]"},
		{Kind: Link, Text: "[config]"},
		{Kind: Plain, Text: " and "},
		{Kind: Code, Text: "[b]"},
		{Kind: Link, Text: "[home]"},
	}
	if len(doc.Lines) != 1 || !reflect.DeepEqual(doc.Lines[0], want) {
		t.Fatalf("unexpected spans %#v", doc.Lines)
	}
}

func TestEncodeSkipsReservedLetters(t *testing.T) {
	doc, err := Encode("[x] [y] [z]", "ab", false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := map[string]string{"c": "x", "d": "y", "e": "z"}
	if !reflect.DeepEqual(doc.Links, want) {
		t.Fatalf("expected %v, got %v", want, doc.Links)
	}
}

func TestEncodeBacktickEscape(t *testing.T) {
	doc, err := Encode("code: `[not a link]` but [real]", "", false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(doc.Links) != 1 || doc.Links["a"] != "real" {
		t.Fatalf("expected only the unescaped link, got %v", doc.Links)
	}
	if got := doc.Text(); got != "code: `[not a link]` but [real]" {
		t.Fatalf("escaped text must be kept verbatim, got %q", got)
	}
}

func TestEncodeMultiline(t *testing.T) {
	doc, err := Encode("first [one]\n\nsecond [two](2) [three]", "", false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(doc.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(doc.Lines))
	}
	want := map[string]string{"a": "one", "b": "2", "c": "three"}
	if !reflect.DeepEqual(doc.Links, want) {
		t.Fatalf("expected %v, got %v", want, doc.Links)
	}
	if len(doc.Lines[1]) != 0 {
		t.Fatalf("expected an empty middle line, got %#v", doc.Lines[1])
	}
}

func body(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[link %d](target-%d)\n", i, i)
	}
	return b.String()
}

func TestEncodeSingleLetterCodes(t *testing.T) {
	k := len(Alphabet("cefloqpsy"))
	doc, err := Encode(body(k), "cefloqpsy", false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if doc.CodeLen != 1 || len(doc.Links) != k {
		t.Fatalf("expected %d single-letter codes, got len=%d count=%d", k, doc.CodeLen, len(doc.Links))
	}
	for code := range doc.Links {
		if len(code) != 1 {
			t.Fatalf("code %q is not a single letter", code)
		}
	}
}

func TestEncodeTwoLetterCodes(t *testing.T) {
	reserved := "cefloqpsy"
	alphabet := Alphabet(reserved)
	k := len(alphabet)
	for _, n := range []int{k + 1, k * k} {
		doc, err := Encode(body(n), reserved, false)
		if err != nil {
			t.Fatalf("encode %d links: %v", n, err)
		}
		if doc.CodeLen != 2 || len(doc.Links) != n {
			t.Fatalf("expected %d two-letter codes, got len=%d count=%d", n, doc.CodeLen, len(doc.Links))
		}
		for i := 0; i < n; i++ {
			code := string([]rune{alphabet[i/k], alphabet[i%k]})
			if got := doc.Links[code]; got != fmt.Sprintf("target-%d", i) {
				t.Fatalf("code %q: expected target-%d, got %q", code, i, got)
			}
		}
	}
}

func TestEncodeOverflow(t *testing.T) {
	k := len(Alphabet(""))
	_, err := Encode(body(k*k+1), "", false)
	if !errors.Is(err, ErrTooManyLinks) {
		t.Fatalf("expected ErrTooManyLinks, got %v", err)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	in := body(40)
	first, err := Encode(in, "q", true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := Encode(in, "q", true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("encoding the same body twice gave different results")
	}
}

func TestEncodeNoLinks(t *testing.T) {
	doc, err := Encode("just text", "", true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if doc.CodeLen != 1 || len(doc.Links) != 0 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if _, ok := doc.Lookup("a"); ok {
		t.Fatal("lookup should miss on an empty map")
	}
}

func TestRenderKeepsText(t *testing.T) {
	doc, err := Encode("a [b](c) d", "", true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := doc.Render(DefaultStyles())
	for _, want := range []string{"a ", "[a]", "[b]", " d"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered output %q is missing %q", out, want)
		}
	}
	if strings.Contains(out, "(c)") {
		t.Fatalf("target must not be rendered: %q", out)
	}
}

func TestBuffer(t *testing.T) {
	b := NewBuffer(2)
	if code, done := b.Push('a'); done || code != "" {
		t.Fatalf("expected partial code, got %q %v", code, done)
	}
	if b.Len() != 1 {
		t.Fatalf("expected length 1, got %d", b.Len())
	}
	code, done := b.Push('d')
	if !done || code != "ad" {
		t.Fatalf("expected complete code ad, got %q %v", code, done)
	}
	if b.Len() != 0 {
		t.Fatal("buffer should restart after a complete code")
	}

	b.Push('x')
	b.Reset()
	if b.Len() != 0 {
		t.Fatal("reset should discard partial input")
	}

	single := NewBuffer(1)
	if code, done := single.Push('k'); !done || code != "k" {
		t.Fatalf("expected k, got %q %v", code, done)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	reserved := "cefloqpsy"
	doc, err := Encode(body(100), reserved, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for code, target := range doc.Links {
		buf := NewBuffer(doc.CodeLen)
		var got string
		var done bool
		for _, r := range code {
			got, done = buf.Push(r)
		}
		if !done {
			t.Fatalf("code %q did not complete", code)
		}
		if resolved, ok := doc.Lookup(got); !ok || resolved != target {
			t.Fatalf("code %q resolved to %q, want %q", code, resolved, target)
		}
	}
}
