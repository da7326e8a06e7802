package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// truncate fits a string to the given terminal width.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "")
}

// padBlock normalizes content to a fixed width and height so old UI text is cleared.
func padBlock(content string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}

	for i, line := range lines {
		line = truncate(line, width)
		visible := lipgloss.Width(line)
		if visible < width {
			line += strings.Repeat(" ", width-visible)
		}
		lines[i] = line
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// clamp bounds a value between minVal and maxVal.
func clamp(value, minVal, maxVal int) int {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}

// renderWidthBucket buckets widths so the renderer cache is more reusable.
func renderWidthBucket(width int) int {
	if width <= 0 {
		return 80
	}
	if width < 20 {
		return width
	}
	return (width / RenderWidthBucket) * RenderWidthBucket
}

// frame draws a titled pane filling width x height with a one line footer
// below it.
func frame(style lipgloss.Style, title, body, footer string, width, height int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	innerWidth := max(width-style.GetHorizontalFrameSize(), 1)
	innerHeight := max(height-style.GetVerticalFrameSize()-2, 1)

	content := titleStyle.Render(truncate(title, innerWidth)) + "\n" + padBlock(body, innerWidth, innerHeight)
	return style.Render(content) + "\n" + statusStyle.Render(truncate(footer, width))
}

// bodySize returns the room frame leaves for the body of a page.
func bodySize(width, height int) (int, int) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	w := max(width-paneStyle.GetHorizontalFrameSize(), 1)
	h := max(height-paneStyle.GetVerticalFrameSize()-2, 1)
	return w, h
}
