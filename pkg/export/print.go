package export

import (
	"fmt"
	"strings"

	tp "github.com/xlab/treeprint"
)

// Print renders the forest as an indented tree, one line per node:
//
//	section#hero "Hero" (frame 1:2)
func Print(nodes []*Node) string {
	printer := tp.New()
	for _, n := range nodes {
		printNode(printer, n)
	}
	return printer.String()
}

func printNode(printer tp.Tree, n *Node) {
	if len(n.Children) == 0 {
		printer.AddNode(label(n))
		return
	}
	branch := printer.AddBranch(label(n))
	for _, c := range n.Children {
		printNode(branch, c)
	}
}

func label(n *Node) string {
	var b strings.Builder
	b.WriteString(n.Tag)
	if id := n.Attributes.Value("id"); id != "" {
		b.WriteString("#" + id)
	}
	if class := n.Attributes.Value("className"); class != "" {
		b.WriteString("." + strings.Join(strings.Fields(class), "."))
	}
	if n.ElementName != "" {
		fmt.Fprintf(&b, " %q", n.ElementName)
	}
	fmt.Fprintf(&b, " (%s %s)", n.ElementType, n.ElementID)
	if c := strings.TrimSpace(n.Content); c != "" {
		if r := []rune(c); len(r) > 30 {
			c = string(r[:27]) + "..."
		}
		fmt.Fprintf(&b, " %q", c)
	}
	return b.String()
}
