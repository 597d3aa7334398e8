package tui

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/glamour"
)

//go:embed assets/instructions.md
var instructionsMarkdown string

//go:embed assets/about.md
var aboutMarkdown string

func renderMarkdown(input string, width int) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithWordWrap(width),
		glamour.WithStandardStyle("dark"),
	)
	if err != nil {
		return input
	}
	out, err := renderer.Render(input)
	if err != nil {
		return input
	}
	return out
}

// markdownCache keeps rendered tab content keyed by width so resizes
// re-render but repeated views do not.
type markdownCache struct {
	width    int
	rendered map[string]string
}

func (c *markdownCache) get(name, source string, width int) string {
	if c.width != width || c.rendered == nil {
		c.rendered = make(map[string]string)
		c.width = width
	}
	if out, ok := c.rendered[name]; ok {
		return out
	}
	out := renderMarkdown(source, width)
	c.rendered[name] = out
	return out
}
