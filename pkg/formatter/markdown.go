package formatter

import (
	"fmt"
	"strings"

	"github.com/kataras/design-tagger/pkg/export"
)

// ToMarkdown renders an export as a markdown document: the export metadata,
// an inventory of every tagged element and the generated HTML and CSS code.
func ToMarkdown(exp *export.Export, htmlCode, cssCode string) string {
	var sb strings.Builder

	title := exp.Metadata.FileName
	if title == "" {
		title = "Untitled"
	}
	sb.WriteString(fmt.Sprintf("# Design Export - %s\n\n", title))
	sb.WriteString("This document contains the tagged elements exported from the design file and the code generated for them.\n\n")

	// Metadata
	sb.WriteString("## Metadata\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	writeRow(&sb, "Plugin", exp.Metadata.PluginName)
	writeRow(&sb, "Version", exp.Metadata.Version)
	writeRow(&sb, "Export Date", exp.Metadata.ExportDate)
	writeRow(&sb, "File", exp.Metadata.FileName)
	writeRow(&sb, "Page", exp.Metadata.PageName)
	sb.WriteString(fmt.Sprintf("| Elements | %d |\n\n", export.Count(exp.Tree)))

	// Tag inventory
	if len(exp.Tree) > 0 {
		sb.WriteString("## Tagged Elements\n\n")
		sb.WriteString("| Element | Tag | Type | ID | Attributes |\n")
		sb.WriteString("|---------|-----|------|----|------------|\n")
		export.Walk(exp.Tree, func(n *export.Node, depth int) {
			name := strings.Repeat("&nbsp;&nbsp;", depth) + escapeCell(n.ElementName)
			sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | `%s` | %s |\n",
				name, n.Tag, n.ElementType, n.ElementID, attributeList(n)))
		})
		sb.WriteString("\n")
	}

	if htmlCode != "" {
		sb.WriteString("## HTML\n\n")
		sb.WriteString("```html\n")
		sb.WriteString(htmlCode)
		sb.WriteString("\n```\n\n")
	}

	if cssCode != "" {
		sb.WriteString("## CSS\n\n")
		sb.WriteString("```css\n")
		sb.WriteString(cssCode)
		sb.WriteString("\n```\n")
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, field, value string) {
	if value == "" {
		value = "-"
	}
	sb.WriteString(fmt.Sprintf("| %s | %s |\n", field, escapeCell(value)))
}

// attributeList formats the attributes of n as `key="value"` pairs.
func attributeList(n *export.Node) string {
	var parts []string
	n.Attributes.Range(func(k, v string) bool {
		parts = append(parts, fmt.Sprintf("`%s=%q`", k, v))
		return true
	})
	if len(parts) == 0 {
		return "-"
	}
	return escapeCell(strings.Join(parts, " "))
}

// escapeCell keeps a value inside its table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
