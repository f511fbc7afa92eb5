package design

// Kind classifies a shape. Only a few kinds change how a shape is styled:
// text shapes get typography, image shapes carry an image source.
type Kind string

const (
	KindBoard     Kind = "board"
	KindFrame     Kind = "frame"
	KindGroup     Kind = "group"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindPath      Kind = "path"
	KindOther     Kind = "other"
)

// Mixed is the sentinel value a design tool reports when a property differs
// across a multi-element selection. It is always treated as absent.
const Mixed = "mixed"

// Document is a set of shapes the user selected for export, plus the
// descriptive names of the file and page they came from.
type Document struct {
	FileName string
	PageName string
	Shapes   []*Shape
}

// Shape is one node of the design tool's scene graph in strict form.
// Pointer fields are optional; nil means the design tool did not report
// the property (or reported it as mixed or with an unusable type).
type Shape struct {
	ID       string
	Name     string
	Kind     Kind
	Children []*Shape

	X, Y          *float64
	Width, Height *float64
	Rotation      *float64
	Opacity       *float64

	Fills   []Fill
	Strokes []Stroke

	// Direct color-like properties consulted when no usable fill exists.
	BackgroundColor *string
	FillColor       *string
	Color           *string

	// Corner radius, in precedence order.
	BorderRadius *float64
	Corners      [4]*float64 // top-left, top-right, bottom-right, bottom-left
	Radius       *float64
	Radii        []float64
	RX, RY       *float64

	Effects []Effect
	Shadows []Effect // legacy shadow list
	Text    *Text

	Flex        *FlexLayout
	Grid        *GridLayout
	LayoutChild *LayoutChild
	Layout      *LegacyLayout

	Image *ImageRef
}

// Fill is one paint layer: a solid color, a gradient or an image.
type Fill struct {
	Color    *string
	Opacity  *float64
	Gradient *Gradient
	Image    *ImageRef
}

// GradientType is linear or radial.
type GradientType string

const (
	GradientLinear GradientType = "linear"
	GradientRadial GradientType = "radial"
)

// Gradient describes a gradient paint.
type Gradient struct {
	Type  GradientType
	Angle *float64 // degrees
	Stops []ColorStop
}

// ColorStop is a color and its position along a gradient.
type ColorStop struct {
	Color   string
	Opacity *float64
	Offset  float64 // 0.0 to 1.0
}

// StrokeAlignment tells on which side of the outline a stroke is painted.
type StrokeAlignment string

const (
	StrokeInside  StrokeAlignment = "inside"
	StrokeOutside StrokeAlignment = "outside"
	StrokeCenter  StrokeAlignment = "center"
)

// Stroke is one outline layer.
type Stroke struct {
	Color       *string
	Opacity     *float64
	Width       *float64
	Alignment   StrokeAlignment
	DashPattern []float64
}

// EffectType names a visual effect.
type EffectType string

const (
	EffectDropShadow  EffectType = "drop-shadow"
	EffectInnerShadow EffectType = "inner-shadow"
	EffectBlur        EffectType = "blur"
)

// Effect is a shadow or blur applied to a shape.
type Effect struct {
	Type    EffectType
	Hidden  bool
	OffsetX float64
	OffsetY float64
	Blur    float64
	Spread  float64
	Radius  float64 // blur radius for EffectBlur
	Color   *string
	Opacity *float64
}

// Text holds typography and content of a text shape. String fields hold the
// value verbatim as reported by the design tool; empty means absent.
type Text struct {
	Content       string
	FontFamily    string
	FontSize      string
	FontWeight    string
	FontStyle     string
	LineHeight    string
	LetterSpacing string
	Align         string // left, center, right, justify
	VerticalAlign string // top, center, bottom
	Decoration    string
	Transform     string
	Direction     string
	GrowType      string // auto-width, auto-height, fixed
}

// FlexLayout is auto-layout container metadata.
type FlexLayout struct {
	Direction      string
	Wrap           string
	JustifyContent string
	AlignItems     string
	AlignContent   string
	RowGap         *float64
	ColumnGap      *float64
	Padding        Padding
}

// GridLayout is grid container metadata.
type GridLayout struct {
	Rows           []string
	Columns        []string
	RowCount       int
	ColumnCount    int
	RowGap         *float64
	ColumnGap      *float64
	JustifyItems   string
	AlignItems     string
	Padding        Padding
}

// Padding holds per-side padding plus the symmetric axis fallbacks.
type Padding struct {
	Top, Right, Bottom, Left *float64
	Vertical, Horizontal     *float64
}

// LayoutChild is auto-layout metadata of a shape placed in a flex container.
type LayoutChild struct {
	FlexGrow   *float64
	FlexShrink *float64
	FlexBasis  *float64
	AlignSelf  string
	Margin     [4]*float64 // top, right, bottom, left
}

// LegacyLayout is older-style container metadata. It only fills in
// properties the auto-layout metadata left unset.
type LegacyLayout struct {
	Display        string
	Direction      string
	Wrap           string
	JustifyContent string
	AlignItems     string
	Gap            *float64
	RowGap         *float64
	ColumnGap      *float64
	Padding        Padding
}

// ImageRef points to image data carried by a shape or a fill.
type ImageRef struct {
	ID       string
	URL      string
	MimeType string
}

// IsText reports whether s is a text shape.
func (s *Shape) IsText() bool {
	return s != nil && s.Kind == KindText
}

// HasGeometry reports whether x, y, width and height are all known.
func (s *Shape) HasGeometry() bool {
	return s != nil && s.X != nil && s.Y != nil && s.Width != nil && s.Height != nil
}

// IsContainer reports whether s carries explicit layout container metadata.
func (s *Shape) IsContainer() bool {
	return s != nil && (s.Flex != nil || s.Grid != nil || s.Layout != nil)
}

// Walk visits s and every descendant in depth-first pre-order.
func (s *Shape) Walk(fn func(*Shape)) {
	if s == nil {
		return
	}
	fn(s)
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// Find returns the shape with the given id in the document, or nil.
func (d *Document) Find(id string) *Shape {
	var found *Shape
	for _, root := range d.Shapes {
		root.Walk(func(s *Shape) {
			if found == nil && s.ID == id {
				found = s
			}
		})
	}
	return found
}

// Select returns a copy of d whose roots are the shapes with the given ids,
// in that order, and the ids that were not found. Repeated ids and shapes
// nested under another selected shape are dropped, so every shape is
// reachable from at most one root.
func (d *Document) Select(ids []string) (*Document, []string) {
	selected := &Document{FileName: d.FileName, PageName: d.PageName}

	var (
		roots   []*Shape
		missing []string
	)
	picked := make(map[*Shape]bool, len(ids))
	for _, id := range ids {
		s := d.Find(id)
		if s == nil {
			missing = append(missing, id)
			continue
		}
		if picked[s] {
			continue
		}
		picked[s] = true
		roots = append(roots, s)
	}

	nested := make(map[*Shape]bool)
	for _, root := range roots {
		for _, c := range root.Children {
			c.Walk(func(s *Shape) { nested[s] = true })
		}
	}
	for _, root := range roots {
		if !nested[root] {
			selected.Shapes = append(selected.Shapes, root)
		}
	}
	return selected, missing
}

// Float returns a pointer to v. Handy for building shapes in code.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
