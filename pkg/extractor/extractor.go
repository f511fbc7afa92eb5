// Package extractor maps a single design shape to a flat map of CSS
// properties. Keys are camelCase CSS property names; values are valid CSS
// value strings. Extraction never fails: a property whose source data is
// missing or unusable is simply not emitted.
package extractor

import (
	"strings"

	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/props"
)

// Context carries what the extractor cannot know from the shape alone.
type Context struct {
	// InFlex is set when the nearest materialized ancestor lays its children
	// out as a flex or grid container. Such shapes are never positioned
	// absolutely.
	InFlex bool
}

// PositionKeys are the properties removed from shapes inside a flex or grid
// container.
var PositionKeys = []string{"position", "left", "top"}

// ExtractStyles returns the CSS properties of s. The result is never nil.
func ExtractStyles(s *design.Shape, ctx Context) *props.Map {
	styles := &props.Map{}
	if s == nil {
		return styles
	}

	extractDimensions(s, styles)
	if !ctx.InFlex {
		extractPosition(s, styles)
	}
	extractBackground(s, styles)
	extractBorder(s, styles)
	extractRadius(s, styles)
	extractEffects(s, styles)
	if s.IsText() {
		extractTypography(s, styles)
	}
	extractFlexContainer(s.Flex, styles)
	extractGridContainer(s.Grid, styles)
	extractFlexChild(s.LayoutChild, styles)
	extractLegacyLayout(s.Layout, styles)

	if s.IsText() && ctx.InFlex {
		styles.Delete(PositionKeys...)
	}

	// Drop anything that ended up empty.
	for _, k := range styles.Keys() {
		if strings.TrimSpace(styles.Value(k)) == "" {
			styles.Delete(k)
		}
	}
	return styles
}

func extractDimensions(s *design.Shape, styles *props.Map) {
	if s.Width != nil {
		put(styles, "width", px(*s.Width))
	}
	if s.Height != nil {
		put(styles, "height", px(*s.Height))
	}
	if s.Opacity != nil && *s.Opacity >= 0 && *s.Opacity < 1 {
		put(styles, "opacity", number(*s.Opacity))
	}
	if s.Rotation != nil && number(*s.Rotation) != "0" {
		put(styles, "transform", "rotate("+number(*s.Rotation)+"deg)")
	}
}

func extractPosition(s *design.Shape, styles *props.Map) {
	if s.X == nil && s.Y == nil {
		return
	}
	put(styles, "position", "absolute")
	if s.X != nil {
		put(styles, "left", px(*s.X))
	}
	if s.Y != nil {
		put(styles, "top", px(*s.Y))
	}
}

// extractBackground maps the first usable fill to a background. Text shapes
// paint their glyphs with their fills, so only an explicit background color
// applies to them.
func extractBackground(s *design.Shape, styles *props.Map) {
	if !s.IsText() {
		for _, f := range s.Fills {
			if g := gradient(f.Gradient); g != "" {
				put(styles, "backgroundImage", g)
				return
			}
			if c := fillColor(f); c != "" {
				put(styles, "backgroundColor", c)
				return
			}
		}
	}

	fallbacks := []*string{s.BackgroundColor}
	if !s.IsText() {
		fallbacks = append(fallbacks, s.FillColor, s.Color)
	}
	for _, c := range fallbacks {
		if c != nil && *c != "" {
			put(styles, "backgroundColor", *c)
			return
		}
	}
}

func extractBorder(s *design.Shape, styles *props.Map) {
	for _, st := range s.Strokes {
		if st.Color == nil || *st.Color == "" || !positive(st.Width) {
			continue
		}
		style := "solid"
		if len(st.DashPattern) > 0 {
			style = "dashed"
		}
		put(styles, "border", px(*st.Width)+" "+style+" "+Color(*st.Color, st.Opacity))
		switch st.Alignment {
		case design.StrokeInside:
			put(styles, "boxSizing", "border-box")
		case design.StrokeOutside:
			put(styles, "boxSizing", "content-box")
		}
		return
	}
}

func extractRadius(s *design.Shape, styles *props.Map) {
	if positive(s.BorderRadius) {
		put(styles, "borderRadius", px(*s.BorderRadius))
		return
	}
	if v := cornerRadius(s.Corners); v != "" {
		put(styles, "borderRadius", v)
		return
	}
	if positive(s.Radius) {
		put(styles, "borderRadius", px(*s.Radius))
		return
	}
	if len(s.Radii) == 4 {
		var corners [4]*float64
		for i := range s.Radii {
			corners[i] = &s.Radii[i]
		}
		if v := cornerRadius(corners); v != "" {
			put(styles, "borderRadius", v)
			return
		}
	}
	for _, r := range []*float64{s.RX, s.RY} {
		if positive(r) {
			put(styles, "borderRadius", px(*r))
			return
		}
	}
}

// cornerRadius renders four corner radii in top-left, top-right,
// bottom-right, bottom-left order. Four equal values collapse to one.
// It returns "" when no corner is positive.
func cornerRadius(corners [4]*float64) string {
	var (
		values [4]string
		found  bool
	)
	for i, c := range corners {
		v := 0.0
		if c != nil && *c > 0 {
			v = *c
			found = true
		}
		values[i] = px(v)
	}
	if !found {
		return ""
	}
	if values[0] == values[1] && values[1] == values[2] && values[2] == values[3] {
		return values[0]
	}
	return strings.Join(values[:], " ")
}

func extractEffects(s *design.Shape, styles *props.Map) {
	var shadows []string
	for _, e := range s.Effects {
		if e.Hidden {
			continue
		}
		switch e.Type {
		case design.EffectDropShadow:
			shadows = append(shadows, shadow(e))
		case design.EffectBlur:
			if e.Radius > 0 {
				put(styles, "filter", "blur("+px(e.Radius)+")")
			}
		}
	}
	if len(shadows) == 0 {
		for _, e := range s.Shadows {
			if e.Hidden || e.Type != design.EffectDropShadow {
				continue
			}
			shadows = append(shadows, shadow(e))
		}
	}
	if len(shadows) > 0 {
		put(styles, "boxShadow", strings.Join(shadows, ", "))
	}
}

func shadow(e design.Effect) string {
	color := "#000000"
	if e.Color != nil && *e.Color != "" {
		color = *e.Color
	}
	return strings.Join([]string{
		px(e.OffsetX), px(e.OffsetY), px(e.Blur), px(e.Spread), Color(color, e.Opacity),
	}, " ")
}

// put stores non-empty values only.
func put(styles *props.Map, key, value string) {
	if value != "" {
		styles.Set(key, value)
	}
}
