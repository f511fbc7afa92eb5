package codegen

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Report summarizes generated code as a browser would see it.
type Report struct {
	Elements           int      `json:"elements"`
	Rules              int      `json:"rules"`
	Declarations       int      `json:"declarations"`
	DuplicateSelectors []string `json:"duplicateSelectors,omitempty"`
}

// Verify parses the generated HTML fragment and stylesheet back and reports
// what they contain. Selectors defined by more than one rule are listed,
// since later rules silently override earlier ones.
func Verify(htmlText, cssText string) (*Report, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	fragment, err := html.ParseFragment(strings.NewReader(htmlText), body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	report := &Report{}
	for _, n := range fragment {
		report.Elements += countElements(n)
	}

	sheet, err := parser.Parse(cssText)
	if err != nil {
		return nil, fmt.Errorf("parse css: %w", err)
	}
	seen := make(map[string]int)
	for _, r := range sheet.Rules {
		report.Rules++
		report.Declarations += len(r.Declarations)
		sel := strings.TrimSpace(r.Prelude)
		seen[sel]++
		if seen[sel] == 2 {
			report.DuplicateSelectors = append(report.DuplicateSelectors, sel)
		}
	}
	return report, nil
}

func countElements(n *html.Node) int {
	count := 0
	if n.Type == html.ElementNode {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countElements(c)
	}
	return count
}
