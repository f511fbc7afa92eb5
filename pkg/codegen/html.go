// Package codegen turns an exported node forest into an HTML fragment and a
// matching stylesheet. Both generators are deterministic: the same forest
// always yields the same text.
package codegen

import (
	"strings"
	"unicode/utf8"

	"github.com/kataras/design-tagger/pkg/export"
	"golang.org/x/net/html"
)

// inlineContentLimit is the content length, in characters, below which a
// text-only element is written on one line.
const inlineContentLimit = 50

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// Dedup selects how repeated CSS rules are collapsed.
type Dedup string

const (
	// DedupExact drops a rule only when its full text was already emitted.
	DedupExact Dedup = "exact"
	// DedupSelector merges rules sharing a selector. Later values win per
	// property; the selector keeps its first position.
	DedupSelector Dedup = "selector"
)

// Generator renders HTML and CSS. The zero value uses exact deduplication.
type Generator struct {
	Dedup Dedup
}

// GenerateHTML renders nodes with the default Generator.
func GenerateHTML(nodes []*export.Node) string {
	return Generator{}.HTML(nodes)
}

// GenerateCSS renders the stylesheet of nodes with the default Generator.
func GenerateCSS(nodes []*export.Node) string {
	return Generator{}.CSS(nodes)
}

// HTML renders nodes as an indented HTML fragment, two spaces per level.
func (g Generator) HTML(nodes []*export.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, renderNode(n, 0))
	}
	return strings.Join(parts, "\n")
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func renderNode(n *export.Node, depth int) string {
	ind := indent(depth)
	open := "<" + n.Tag + renderAttributes(n)

	if voidElements[strings.ToLower(n.Tag)] {
		return ind + open + " />"
	}
	open += ">"
	closing := "</" + n.Tag + ">"

	content := strings.TrimSpace(n.Content)
	children := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, renderNode(c, depth+1))
	}

	var b strings.Builder
	switch {
	case content != "" && len(children) > 0:
		b.WriteString(ind + open + "\n")
		b.WriteString(renderContent(content, depth+1) + "\n")
		b.WriteString(strings.Join(children, "\n") + "\n")
		b.WriteString(ind + closing)
	case content != "":
		if utf8.RuneCountInString(content) < inlineContentLimit && !strings.Contains(content, "\n") {
			b.WriteString(ind + open + html.EscapeString(content) + closing)
			break
		}
		b.WriteString(ind + open + "\n")
		b.WriteString(renderContent(content, depth+1) + "\n")
		b.WriteString(ind + closing)
	case len(children) > 0:
		b.WriteString(ind + open + "\n")
		b.WriteString(strings.Join(children, "\n") + "\n")
		b.WriteString(ind + closing)
	default:
		b.WriteString(ind + open + closing)
	}
	return b.String()
}

// renderContent escapes text content and indents each of its lines.
func renderContent(content string, depth int) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = indent(depth) + html.EscapeString(strings.TrimSpace(line))
	}
	return strings.Join(lines, "\n")
}

// renderAttributes writes the attributes in their stored order. Empty values
// are skipped. className and class are written once, as class, where the
// first of them appears. An img without src gets the node's image source.
func renderAttributes(n *export.Node) string {
	var b strings.Builder
	hasSrc, hasClass := false, false
	n.Attributes.Range(func(k, v string) bool {
		if k == "className" || k == "class" {
			if !hasClass {
				hasClass = true
				if classes := ClassNames(n); len(classes) > 0 {
					b.WriteString(` class="` + html.EscapeString(strings.Join(classes, " ")) + `"`)
				}
			}
			return true
		}
		if v == "" {
			return true
		}
		if k == "src" {
			hasSrc = true
		}
		b.WriteString(" " + k + `="` + html.EscapeString(v) + `"`)
		return true
	})
	if !hasSrc && n.Source != "" && strings.EqualFold(n.Tag, "img") {
		b.WriteString(` src="` + html.EscapeString(n.Source) + `"`)
	}
	return b.String()
}
