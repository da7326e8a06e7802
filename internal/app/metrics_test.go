package app

import "testing"

func TestComputeZettelMetrics(t *testing.T) {
	metrics := computeZettelMetrics("one two\nthree\n")
	if metrics.words != 3 {
		t.Fatalf("expected 3 words, got %d", metrics.words)
	}
	if metrics.chars != 14 {
		t.Fatalf("expected 14 chars, got %d", metrics.chars)
	}
	if metrics.lines != 2 {
		t.Fatalf("expected 2 lines, got %d", metrics.lines)
	}
}

func TestMetricsSummary(t *testing.T) {
	if got := metricsSummary("  \n"); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
	if got := metricsSummary("héllo world"); got != "W:2 C:11 L:1" {
		t.Fatalf("unexpected summary %q", got)
	}
}
