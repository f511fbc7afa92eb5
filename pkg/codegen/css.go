package codegen

import (
	"regexp"
	"strings"

	"github.com/kataras/design-tagger/pkg/export"
	"github.com/kataras/design-tagger/pkg/props"
)

var (
	kebabBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	classInvalid  = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-+`)
	classIdent    = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)
)

var vendorPrefixes = []string{"webkit-", "moz-", "ms-"}

// KebabCase converts a camelCase property name to its CSS form:
// backgroundColor -> background-color, webkitBackgroundClip ->
// -webkit-background-clip.
func KebabCase(s string) string {
	k := strings.ToLower(kebabBoundary.ReplaceAllString(s, "${1}-${2}"))
	for _, p := range vendorPrefixes {
		if strings.HasPrefix(k, p) {
			return "-" + k
		}
	}
	return k
}

// SanitizeClassName derives a CSS class name from free text such as a layer
// name: lowercase letters, digits and single inner hyphens only.
func SanitizeClassName(s string) string {
	s = classInvalid.ReplaceAllString(strings.ToLower(s), "")
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ClassNames returns the class names of n, read from its className and
// class attributes in that order, without repeats. A name that is not a
// valid CSS identifier is sanitized, and dropped if it still is not one.
func ClassNames(n *export.Node) []string {
	var names []string
	seen := make(map[string]bool)
	for _, key := range []string{"className", "class"} {
		for _, name := range strings.Fields(n.Attributes.Value(key)) {
			if !classIdent.MatchString(name) {
				name = SanitizeClassName(name)
			}
			if !classIdent.MatchString(name) || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Selector returns the selector of the rule generated for n: its explicit
// class names, else a class derived from the element name, else the tag.
func Selector(n *export.Node) string {
	if classes := ClassNames(n); len(classes) > 0 {
		return "." + strings.Join(classes, ".")
	}
	if class := SanitizeClassName(n.ElementName); classIdent.MatchString(class) {
		return "." + class
	}
	return n.Tag
}

// CSS renders one rule per node in depth-first pre-order. Nodes without
// styles produce no rule.
func (g Generator) CSS(nodes []*export.Node) string {
	var rules []string
	if g.Dedup == DedupSelector {
		rules = mergeBySelector(nodes)
	} else {
		seen := make(map[string]bool)
		export.Walk(nodes, func(n *export.Node, _ int) {
			rule := renderRule(Selector(n), n.Styles)
			if rule == "" || seen[rule] {
				return
			}
			seen[rule] = true
			rules = append(rules, rule)
		})
	}
	return strings.Join(rules, "\n\n")
}

func mergeBySelector(nodes []*export.Node) []string {
	var order []string
	merged := make(map[string]*props.Map)
	export.Walk(nodes, func(n *export.Node, _ int) {
		if n.Styles.Len() == 0 {
			return
		}
		sel := Selector(n)
		m, ok := merged[sel]
		if !ok {
			m = &props.Map{}
			merged[sel] = m
			order = append(order, sel)
		}
		m.Merge(n.Styles, true)
	})

	rules := make([]string, 0, len(order))
	for _, sel := range order {
		if rule := renderRule(sel, merged[sel]); rule != "" {
			rules = append(rules, rule)
		}
	}
	return rules
}

func renderRule(selector string, styles *props.Map) string {
	var body strings.Builder
	styles.Range(func(k, v string) bool {
		if strings.TrimSpace(v) == "" {
			return true
		}
		body.WriteString("  " + KebabCase(k) + ": " + v + ";\n")
		return true
	})
	if body.Len() == 0 {
		return ""
	}
	return selector + " {\n" + body.String() + "}"
}
