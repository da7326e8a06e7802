package app

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	out := renderMarkdown("# Heading\n\nSome *body* text.", "notty", 60)
	if !strings.Contains(out, "Heading") || !strings.Contains(out, "body") {
		t.Fatalf("unexpected render output %q", out)
	}
}

func TestNormalizeGlamourStyle(t *testing.T) {
	tests := map[string]string{
		"":        "dark",
		" Light ": "light",
		"notty":   "notty",
		"dracula": "dark",
	}
	for in, want := range tests {
		if got := normalizeGlamourStyle(in); got != want {
			t.Fatalf("normalizeGlamourStyle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRendererCacheIsBounded(t *testing.T) {
	for width := 20; width < 20+(maxRendererCacheEntries+3)*RenderWidthBucket; width += RenderWidthBucket {
		if _, err := getRenderer("notty", width); err != nil {
			t.Fatalf("renderer for width %d: %v", width, err)
		}
	}
	rendererCacheMu.Lock()
	defer rendererCacheMu.Unlock()
	if len(rendererCache) > maxRendererCacheEntries {
		t.Fatalf("expected at most %d cached renderers, got %d", maxRendererCacheEntries, len(rendererCache))
	}
	if len(rendererCache) != rendererCacheOrder.Len() || len(rendererCache) != len(rendererCacheNodes) {
		t.Fatal("cache bookkeeping out of sync")
	}
}
