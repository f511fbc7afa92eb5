package extractor

import (
	"strconv"
	"strings"

	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/props"
)

var (
	textAligns = map[string]string{
		"left": "left", "center": "center", "right": "right", "justify": "justify",
		"justified": "justify", "start": "left", "end": "right",
	}
	verticalAligns = map[string]string{
		"top": "flex-start", "center": "center", "bottom": "flex-end",
	}
	textDecorations = map[string]string{
		"none": "none", "underline": "underline",
		"line-through": "line-through", "strikethrough": "line-through", "strike-through": "line-through",
	}
	textTransforms = map[string]string{
		"none": "none", "uppercase": "uppercase", "upper": "uppercase",
		"lowercase": "lowercase", "lower": "lowercase",
		"capitalize": "capitalize", "title": "capitalize",
	}
	textDirections = map[string]string{"ltr": "ltr", "rtl": "rtl"}
	growTypes      = map[string][2]string{
		"auto-width":  {"whiteSpace", "nowrap"},
		"auto-height": {"overflowWrap", "break-word"},
		"fixed":       {"overflow", "hidden"},
	}
)

// mapped looks v up in an allow-list. Values outside the list pass through
// unchanged, "mixed" and empty values are dropped.
func mapped(allow map[string]string, v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, design.Mixed) {
		return ""
	}
	key := strings.ToLower(strings.ReplaceAll(v, "_", "-"))
	if m, ok := allow[key]; ok {
		return m
	}
	return v
}

// verbatim drops empty and mixed values.
func verbatim(v string) string {
	return mapped(nil, v)
}

// length renders a numeric value as pixels and passes anything else, such
// as "1.5em" or "normal", through.
func length(v string) string {
	v = verbatim(v)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return px(f)
	}
	return v
}

// unitless renders a numeric value without a unit.
func unitless(v string) string {
	v = verbatim(v)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return number(f)
	}
	return v
}

func extractTypography(s *design.Shape, styles *props.Map) {
	t := s.Text
	if t == nil {
		t = &design.Text{}
	}

	put(styles, "fontFamily", verbatim(t.FontFamily))
	put(styles, "fontSize", length(t.FontSize))
	put(styles, "fontWeight", verbatim(t.FontWeight))
	put(styles, "fontStyle", verbatim(t.FontStyle))
	put(styles, "lineHeight", unitless(t.LineHeight))
	put(styles, "letterSpacing", length(t.LetterSpacing))
	put(styles, "textAlign", mapped(textAligns, t.Align))

	if v, ok := verticalAligns[strings.ToLower(verbatim(t.VerticalAlign))]; ok && !styles.Has("display") {
		put(styles, "display", "flex")
		put(styles, "flexDirection", "column")
		put(styles, "justifyContent", v)
	}

	put(styles, "textDecoration", mapped(textDecorations, t.Decoration))
	put(styles, "textTransform", mapped(textTransforms, t.Transform))
	put(styles, "direction", mapped(textDirections, t.Direction))

	extractTextColor(s, styles)

	if grow, ok := growTypes[strings.ToLower(verbatim(t.GrowType))]; ok {
		put(styles, grow[0], grow[1])
	}
}

// extractTextColor paints the glyphs with the first usable fill. A gradient
// fill is clipped to the text and suppresses the plain color.
func extractTextColor(s *design.Shape, styles *props.Map) {
	for _, f := range s.Fills {
		if g := gradient(f.Gradient); g != "" {
			put(styles, "background", g)
			put(styles, "webkitBackgroundClip", "text")
			put(styles, "webkitTextFillColor", "transparent")
			put(styles, "backgroundClip", "text")
			styles.Delete("color")
			return
		}
		if c := fillColor(f); c != "" {
			put(styles, "color", c)
			return
		}
	}
	for _, c := range []*string{s.Color, s.FillColor} {
		if c != nil && *c != "" {
			put(styles, "color", *c)
			return
		}
	}
}
