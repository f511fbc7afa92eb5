// Package export rebuilds the tagged part of a shape tree into a forest of
// styled nodes, ready to be serialized or turned into HTML and CSS.
package export

import (
	"math"
	"sort"
	"time"

	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/extractor"
	"github.com/kataras/design-tagger/pkg/layout"
	"github.com/kataras/design-tagger/pkg/props"
	"github.com/kataras/design-tagger/pkg/tags"
)

// Node is one tagged shape of the exported tree.
type Node struct {
	Tag         string     `json:"tag" msgpack:"tag"`
	ElementName string     `json:"elementName" msgpack:"elementName"`
	ElementType string     `json:"elementType" msgpack:"elementType"`
	ElementID   string     `json:"elementId" msgpack:"elementId"`
	Attributes  *props.Map `json:"attributes" msgpack:"attributes"`
	Styles      *props.Map `json:"styles" msgpack:"styles"`
	Children    []*Node    `json:"children" msgpack:"children"`
	Content     string     `json:"content,omitempty" msgpack:"content,omitempty"`
	Source      string     `json:"source,omitempty" msgpack:"source,omitempty"`

	// position of the source shape, used by visual ordering
	x, y float64
}

// Metadata describes an export.
type Metadata struct {
	PluginName string `json:"pluginName" msgpack:"pluginName"`
	Version    string `json:"version" msgpack:"version"`
	ExportDate string `json:"exportDate" msgpack:"exportDate"`
	FileName   string `json:"fileName" msgpack:"fileName"`
	PageName   string `json:"pageName" msgpack:"pageName"`
}

// Export is the export artifact: metadata plus the tagged forest.
type Export struct {
	Metadata Metadata `json:"metadata" msgpack:"metadata"`
	Tree     []*Node  `json:"tree" msgpack:"tree"`
}

// Order decides how siblings are ordered.
type Order string

const (
	// OrderNative keeps the order of the shape tree.
	OrderNative Order = "native"
	// OrderVisual sorts the children of every node top to bottom, then left
	// to right, by the position of their source shapes.
	OrderVisual Order = "visual"
)

// Options configure Assemble.
type Options struct {
	PluginName string
	Version    string
	Order      Order
	Thresholds layout.Thresholds
	// Now returns the export time. Defaults to time.Now.
	Now func() time.Time
}

// BuildTree returns the forest of tagged shapes under roots. Untagged shapes
// are skipped and their tagged descendants attach to the nearest tagged
// ancestor, or become roots. Nodes carry tag data only; their style maps
// are empty.
func BuildTree(roots []*design.Shape, snap tags.Snapshot) []*Node {
	b := &builder{snap: snap}
	return b.forest(roots)
}

// Assemble builds the styled export of doc.
func Assemble(doc *design.Document, snap tags.Snapshot, opts Options) *Export {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	b := &builder{
		snap:       snap,
		styled:     true,
		visual:     opts.Order == OrderVisual,
		thresholds: opts.Thresholds,
	}
	return &Export{
		Metadata: Metadata{
			PluginName: opts.PluginName,
			Version:    opts.Version,
			ExportDate: now().UTC().Format(time.RFC3339),
			FileName:   doc.FileName,
			PageName:   doc.PageName,
		},
		Tree: b.forest(doc.Shapes),
	}
}

type builder struct {
	snap       tags.Snapshot
	styled     bool
	visual     bool
	thresholds layout.Thresholds
}

func (b *builder) forest(roots []*design.Shape) []*Node {
	nodes := []*Node{}
	for _, s := range roots {
		nodes = append(nodes, b.build(s, false)...)
	}
	return nodes
}

// build returns the nodes s contributes to its parent: one node when s is
// tagged, otherwise the nodes of its children. inFlex tells whether that
// parent lays out its children as flex or grid.
func (b *builder) build(s *design.Shape, inFlex bool) []*Node {
	if s == nil {
		return nil
	}
	a, ok := b.snap.Lookup(s.ID)
	if !ok {
		var nodes []*Node
		for _, c := range s.Children {
			nodes = append(nodes, b.build(c, inFlex)...)
		}
		return nodes
	}

	node := &Node{
		Tag:         a.Tag,
		ElementName: s.Name,
		ElementType: string(s.Kind),
		ElementID:   s.ID,
		Attributes:  a.Attributes.Clone(),
		Styles:      &props.Map{},
		Children:    []*Node{},
		Content:     content(s),
		Source:      source(s),
		x:           coord(s.X),
		y:           coord(s.Y),
	}

	childInFlex := false
	if b.styled {
		node.Styles = b.styles(s, inFlex)
		switch node.Styles.Value("display") {
		case "flex", "grid":
			childInFlex = true
		}
	}

	for _, c := range s.Children {
		node.Children = append(node.Children, b.build(c, childInFlex)...)
	}
	if b.visual {
		sort.SliceStable(node.Children, func(i, j int) bool {
			ci, cj := node.Children[i], node.Children[j]
			if ci.y != cj.y {
				return ci.y < cj.y
			}
			return ci.x < cj.x
		})
	}
	return []*Node{node}
}

// styles merges extracted and inferred properties. Extraction reads explicit
// metadata, so it wins over inference.
func (b *builder) styles(s *design.Shape, inFlex bool) *props.Map {
	styles := extractor.ExtractStyles(s, extractor.Context{InFlex: inFlex})
	if !s.IsContainer() {
		styles.Merge(layout.Infer(s, b.thresholds), false)
	}
	if inFlex {
		styles.Delete(extractor.PositionKeys...)
	}
	return styles
}

func content(s *design.Shape) string {
	if s.Text == nil {
		return ""
	}
	return s.Text.Content
}

// source returns the image of s: its own image reference, else the first
// image fill. A URL is preferred over an opaque id.
func source(s *design.Shape) string {
	img := s.Image
	if img == nil {
		for _, f := range s.Fills {
			if f.Image != nil {
				img = f.Image
				break
			}
		}
	}
	if img == nil {
		return ""
	}
	if img.URL != "" {
		return img.URL
	}
	return img.ID
}

// coord places shapes without a position after positioned ones.
func coord(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}

// Walk visits every node of the forest in depth-first pre-order.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	var walk func([]*Node, int)
	walk = func(list []*Node, depth int) {
		for _, n := range list {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}

// Count returns the number of nodes in the forest.
func Count(nodes []*Node) int {
	n := 0
	Walk(nodes, func(*Node, int) { n++ })
	return n
}
