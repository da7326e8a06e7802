package app

import (
	"bytes"
	"container/list"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type rendererKey struct {
	style string
	width int
}

var (
	// maxRendererCacheEntries bounds the number of Glamour renderers retained
	// in memory.
	maxRendererCacheEntries = 8

	rendererCacheMu sync.Mutex

	// rendererCache maps a style and width bucket to a reusable Glamour
	// TermRenderer. Creating one parses the style JSON, so renderers are
	// reused while the terminal width stays in the same bucket.
	rendererCache = map[rendererKey]*glamour.TermRenderer{}

	// rendererCacheOrder tracks keys in LRU order (front = least recent).
	rendererCacheOrder = list.New()
	rendererCacheNodes = map[rendererKey]*list.Element{}
)

// renderMarkdown converts a zettel body to ANSI output for the preview mode.
// If the renderer fails the raw markdown is returned so the user still sees
// the content.
func renderMarkdown(content, style string, width int) string {
	width = renderWidthBucket(width)
	renderer, err := getRenderer(style, width)
	if err != nil {
		appLog.Error("create markdown renderer", "width", width, "error", err)
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		appLog.Error("render markdown content", "width", width, "error", err)
		return content
	}
	return strings.Trim(out, "\n")
}

func getRenderer(style string, width int) (*glamour.TermRenderer, error) {
	key := rendererKey{style: normalizeGlamourStyle(style), width: width}
	rendererCacheMu.Lock()
	defer rendererCacheMu.Unlock()
	if renderer, ok := rendererCache[key]; ok {
		if node, ok := rendererCacheNodes[key]; ok {
			rendererCacheOrder.MoveToBack(node)
		}
		return renderer, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamourStyleOption(key.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	rendererCache[key] = renderer
	rendererCacheNodes[key] = rendererCacheOrder.PushBack(key)
	for len(rendererCache) > maxRendererCacheEntries && rendererCacheOrder.Len() > 0 {
		oldest := rendererCacheOrder.Front()
		k, _ := oldest.Value.(rendererKey)
		rendererCacheOrder.Remove(oldest)
		delete(rendererCache, k)
		delete(rendererCacheNodes, k)
	}
	return renderer, nil
}

func normalizeGlamourStyle(style string) string {
	switch style = strings.ToLower(strings.TrimSpace(style)); style {
	case "auto", "dark", "light", "notty":
		return style
	default:
		// dark avoids the OSC background query auto detection sends
		return "dark"
	}
}

func glamourStyleOption(style string) glamour.TermRendererOption {
	if style == "auto" {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStandardStyle(style)
}

// firstHeading returns the text of the first markdown heading in body, or "".
func firstHeading(body string) string {
	source := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		heading = strings.TrimSpace(string(headingText(h, source)))
		return ast.WalkStop, nil
	})
	return heading
}

func headingText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.Write(headingText(c, source))
		}
	}
	return buf.Bytes()
}
