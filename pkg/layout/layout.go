// Package layout guesses flex layout for containers that carry no explicit
// auto-layout metadata, using only the absolute geometry of their children.
package layout

import (
	"math"
	"sort"
	"strconv"

	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/props"
)

// Thresholds are the pixel tolerances of the classification.
type Thresholds struct {
	// Alignment is the largest spread along the cross axis for children to
	// count as lined up.
	Alignment float64 `yaml:"alignmentThreshold" json:"alignmentThreshold"`
	// Spacing is the smallest spread along the main axis for children to
	// count as laid out along it.
	Spacing float64 `yaml:"spacingThreshold" json:"spacingThreshold"`
}

// DefaultThresholds are used when a threshold is zero.
var DefaultThresholds = Thresholds{Alignment: 20, Spacing: 50}

func (t Thresholds) withDefaults() Thresholds {
	if t.Alignment <= 0 {
		t.Alignment = DefaultThresholds.Alignment
	}
	if t.Spacing <= 0 {
		t.Spacing = DefaultThresholds.Spacing
	}
	return t
}

const (
	spanRatio   = 0.8 // children covering more than this share of the container spread out
	offsetRatio = 0.1 // a leading offset larger than this share centers the children
)

// box is a child rectangle projected on one axis pair: main is the layout
// axis, cross the other one.
type box struct {
	main, mainSize   float64
	cross, crossSize float64
}

// Infer returns the layout properties of s, or an empty map when s has fewer
// than two children, when any child lacks geometry or when the children
// form neither a row nor a column.
func Infer(s *design.Shape, t Thresholds) *props.Map {
	out := &props.Map{}
	if s == nil || len(s.Children) < 2 {
		return out
	}
	for _, c := range s.Children {
		if !c.HasGeometry() {
			return out
		}
	}
	t = t.withDefaults()

	xSpread := spread(s.Children, func(c *design.Shape) float64 { return *c.X })
	ySpread := spread(s.Children, func(c *design.Shape) float64 { return *c.Y })

	var (
		boxes        []box
		origin, size *float64
		direction    string
	)
	switch {
	case ySpread < t.Alignment && xSpread > t.Spacing:
		direction = "row"
		origin, size = s.X, s.Width
		for _, c := range s.Children {
			boxes = append(boxes, box{*c.X, *c.Width, *c.Y, *c.Height})
		}
	case xSpread < t.Alignment && ySpread > t.Spacing:
		direction = "column"
		origin, size = s.Y, s.Height
		for _, c := range s.Children {
			boxes = append(boxes, box{*c.Y, *c.Height, *c.X, *c.Width})
		}
	default:
		return out
	}

	out.Set("display", "flex")
	out.Set("flexDirection", direction)

	sort.SliceStable(boxes, func(i, j int) bool { return boxes[i].main < boxes[j].main })
	if gap, ok := averageGap(boxes); ok {
		out.Set("gap", px(gap))
	}
	if v := justify(boxes, origin, size); v != "" {
		out.Set("justifyContent", v)
	}
	if v := align(boxes, t.Alignment); v != "" {
		out.Set("alignItems", v)
	}
	return out
}

func spread(children []*design.Shape, coord func(*design.Shape) float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range children {
		v := coord(c)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

// averageGap averages the positive distances between consecutive boxes.
// Boxes must be sorted along the main axis.
func averageGap(boxes []box) (float64, bool) {
	var sum float64
	var n int
	for i := 1; i < len(boxes); i++ {
		if gap := boxes[i].main - (boxes[i-1].main + boxes[i-1].mainSize); gap > 0 {
			sum += gap
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func justify(boxes []box, origin, size *float64) string {
	if size == nil || *size <= 0 {
		return ""
	}
	start, end := math.Inf(1), math.Inf(-1)
	for _, b := range boxes {
		start = math.Min(start, b.main)
		end = math.Max(end, b.main+b.mainSize)
	}
	var o float64
	if origin != nil {
		o = *origin
	}
	extent := *size
	switch {
	case end-start > spanRatio*extent:
		return "space-between"
	case start-o > offsetRatio*extent:
		return "center"
	}
	return ""
}

// align picks the cross-axis alignment whose edges line up best. Ties go to
// the start edge, then the center.
func align(boxes []box, threshold float64) string {
	candidates := []struct {
		value string
		edge  func(box) float64
	}{
		{"flex-start", func(b box) float64 { return b.cross }},
		{"center", func(b box) float64 { return b.cross + b.crossSize/2 }},
		{"flex-end", func(b box) float64 { return b.cross + b.crossSize }},
	}
	best, bestSpread := "", threshold
	for _, c := range candidates {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, b := range boxes {
			e := c.edge(b)
			lo = math.Min(lo, e)
			hi = math.Max(hi, e)
		}
		if hi-lo < bestSpread {
			best, bestSpread = c.value, hi-lo
		}
	}
	return best
}

func px(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + "px"
}
