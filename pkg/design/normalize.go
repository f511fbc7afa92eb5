package design

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize converts a loosely typed shape object, as decoded from the design
// tool's JSON or YAML, into a strict Shape. It never fails: fields that are
// missing, carry the mixed sentinel or have an unexpected type are left nil.
func Normalize(raw map[string]any) *Shape {
	if raw == nil {
		return nil
	}
	s := &Shape{
		ID:   str(raw["id"]),
		Name: str(raw["name"]),
		Kind: normalizeKind(first(raw, "type", "kind")),
	}

	s.X = num(raw["x"])
	s.Y = num(raw["y"])
	s.Width = num(raw["width"])
	s.Height = num(raw["height"])
	s.Rotation = num(raw["rotation"])
	s.Opacity = num(raw["opacity"])

	for _, f := range list(raw["fills"]) {
		if fill, ok := normalizeFill(obj(f)); ok {
			s.Fills = append(s.Fills, fill)
		}
	}
	for _, st := range list(raw["strokes"]) {
		if stroke, ok := normalizeStroke(obj(st)); ok {
			s.Strokes = append(s.Strokes, stroke)
		}
	}

	s.BackgroundColor = optStr(first(raw, "backgroundColor", "background"))
	s.FillColor = optStr(first(raw, "fillColor", "fill"))
	s.Color = optStr(raw["color"])

	s.BorderRadius = num(raw["borderRadius"])
	s.Corners[0] = num(first(raw, "borderRadiusTopLeft", "r1"))
	s.Corners[1] = num(first(raw, "borderRadiusTopRight", "r2"))
	s.Corners[2] = num(first(raw, "borderRadiusBottomRight", "r3"))
	s.Corners[3] = num(first(raw, "borderRadiusBottomLeft", "r4"))
	s.Radius = num(first(raw, "radius", "cornerRadius"))
	for _, r := range list(first(raw, "radii", "rectangleCornerRadii")) {
		if v := num(r); v != nil {
			s.Radii = append(s.Radii, *v)
		}
	}
	s.RX = num(raw["rx"])
	s.RY = num(raw["ry"])

	for _, e := range list(raw["effects"]) {
		if eff, ok := normalizeEffect(obj(e)); ok {
			s.Effects = append(s.Effects, eff)
		}
	}
	if blur := obj(raw["blur"]); blur != nil {
		if r := num(first(blur, "value", "radius")); r != nil && !boolean(blur["hidden"]) {
			s.Effects = append(s.Effects, Effect{Type: EffectBlur, Radius: *r})
		}
	}
	for _, e := range list(raw["shadows"]) {
		if eff, ok := normalizeEffect(obj(e)); ok {
			s.Shadows = append(s.Shadows, eff)
		}
	}

	if s.Kind == KindText {
		s.Text = normalizeText(raw)
	}

	s.Flex = normalizeFlex(obj(raw["flex"]))
	s.Grid = normalizeGrid(obj(raw["grid"]))
	s.LayoutChild = normalizeLayoutChild(obj(raw["layoutChild"]))
	s.Layout = normalizeLegacyLayout(raw)

	if img := normalizeImage(first(raw, "image", "fillImage")); img != nil {
		s.Image = img
	} else if url := str(first(raw, "imageUrl", "src")); url != "" {
		s.Image = &ImageRef{URL: url}
	}

	for _, c := range list(raw["children"]) {
		if child := Normalize(obj(c)); child != nil {
			s.Children = append(s.Children, child)
		}
	}
	return s
}

func normalizeKind(v any) Kind {
	switch strings.ToLower(str(v)) {
	case "board":
		return KindBoard
	case "frame", "component", "instance":
		return KindFrame
	case "group":
		return KindGroup
	case "text":
		return KindText
	case "image":
		return KindImage
	case "rectangle", "rect":
		return KindRectangle
	case "ellipse", "circle":
		return KindEllipse
	case "path", "vector", "bool", "svg-raw":
		return KindPath
	}
	return KindOther
}

func normalizeFill(raw map[string]any) (Fill, bool) {
	if raw == nil {
		return Fill{}, false
	}
	if v, ok := raw["visible"].(bool); ok && !v {
		return Fill{}, false
	}
	f := Fill{Opacity: num(first(raw, "fillOpacity", "opacity"))}
	f.Color, f.Opacity = colorOf(first(raw, "fillColor", "color"), f.Opacity)
	if g := obj(first(raw, "fillColorGradient", "gradient")); g != nil {
		f.Gradient = normalizeGradient(g)
	}
	f.Image = normalizeImage(first(raw, "fillImage", "image"))
	if f.Color == nil && f.Gradient == nil && f.Image == nil {
		return Fill{}, false
	}
	return f, true
}

func normalizeGradient(raw map[string]any) *Gradient {
	g := &Gradient{Type: GradientLinear}
	if strings.EqualFold(str(raw["type"]), "radial") {
		g.Type = GradientRadial
	}
	g.Angle = num(raw["angle"])
	if g.Angle == nil && g.Type == GradientLinear {
		// Derive the CSS angle from the start/end handles when present.
		sx, sy := num(raw["startX"]), num(raw["startY"])
		ex, ey := num(raw["endX"]), num(raw["endY"])
		if sx != nil && sy != nil && ex != nil && ey != nil {
			deg := math.Atan2(*ex-*sx, *sy-*ey) * 180 / math.Pi
			if deg < 0 {
				deg += 360
			}
			g.Angle = &deg
		}
	}
	for _, st := range list(raw["stops"]) {
		m := obj(st)
		if m == nil {
			continue
		}
		color := str(m["color"])
		if color == "" {
			continue
		}
		stop := ColorStop{Color: color, Opacity: num(m["opacity"])}
		if off := num(m["offset"]); off != nil {
			stop.Offset = *off
		}
		g.Stops = append(g.Stops, stop)
	}
	if len(g.Stops) == 0 {
		return nil
	}
	return g
}

func normalizeStroke(raw map[string]any) (Stroke, bool) {
	if raw == nil {
		return Stroke{}, false
	}
	if v, ok := raw["visible"].(bool); ok && !v {
		return Stroke{}, false
	}
	s := Stroke{
		Opacity: num(first(raw, "strokeOpacity", "opacity")),
		Width:   num(first(raw, "strokeWidth", "width", "strokeWeight")),
	}
	s.Color, s.Opacity = colorOf(first(raw, "strokeColor", "color"), s.Opacity)
	switch strings.ToLower(str(first(raw, "strokeAlignment", "alignment"))) {
	case "inside", "inner":
		s.Alignment = StrokeInside
	case "outside", "outer":
		s.Alignment = StrokeOutside
	case "center":
		s.Alignment = StrokeCenter
	}
	for _, d := range list(first(raw, "dashPattern", "strokeDashes")) {
		if v := num(d); v != nil {
			s.DashPattern = append(s.DashPattern, *v)
		}
	}
	return s, true
}

func normalizeEffect(raw map[string]any) (Effect, bool) {
	if raw == nil {
		return Effect{}, false
	}
	e := Effect{Hidden: boolean(raw["hidden"])}
	if v, ok := raw["visible"].(bool); ok && !v {
		e.Hidden = true
	}
	switch strings.ToLower(strings.ReplaceAll(str(first(raw, "style", "type")), "_", "-")) {
	case "drop-shadow", "dropshadow", "shadow":
		e.Type = EffectDropShadow
	case "inner-shadow", "innershadow":
		e.Type = EffectInnerShadow
	case "blur", "layer-blur", "background-blur":
		e.Type = EffectBlur
	default:
		return Effect{}, false
	}
	offset := raw
	if o := obj(raw["offset"]); o != nil {
		offset = o
	}
	if v := num(first(offset, "offsetX", "x")); v != nil {
		e.OffsetX = *v
	}
	if v := num(first(offset, "offsetY", "y")); v != nil {
		e.OffsetY = *v
	}
	if v := num(raw["blur"]); v != nil {
		e.Blur = *v
	} else if v := num(raw["radius"]); v != nil && e.Type != EffectBlur {
		// Shadows of some tools report their blur as radius.
		e.Blur = *v
	}
	if v := num(raw["spread"]); v != nil {
		e.Spread = *v
	}
	if v := num(first(raw, "radius", "value")); v != nil {
		e.Radius = *v
	}
	// Colors come flat, as {color, opacity} or as an {r, g, b, a} object.
	if c := obj(raw["color"]); c != nil && c["r"] == nil {
		e.Color = optStr(c["color"])
		e.Opacity = num(c["opacity"])
	} else {
		e.Color, e.Opacity = colorOf(raw["color"], num(raw["opacity"]))
	}
	return e, true
}

func normalizeText(raw map[string]any) *Text {
	src := raw
	if nested := obj(raw["text"]); nested != nil {
		src = nested
	}
	get := func(keys ...string) string {
		for _, m := range []map[string]any{src, raw} {
			for _, k := range keys {
				if v := scalar(m[k]); v != "" {
					return v
				}
			}
		}
		return ""
	}
	return &Text{
		Content:       get("characters", "content"),
		FontFamily:    get("fontFamily"),
		FontSize:      get("fontSize"),
		FontWeight:    get("fontWeight"),
		FontStyle:     get("fontStyle"),
		LineHeight:    get("lineHeight"),
		LetterSpacing: get("letterSpacing"),
		Align:         get("align", "textAlign"),
		VerticalAlign: get("verticalAlign"),
		Decoration:    get("textDecoration", "decoration"),
		Transform:     get("textTransform", "transform"),
		Direction:     get("direction"),
		GrowType:      get("growType"),
	}
}

func normalizePadding(raw map[string]any) Padding {
	return Padding{
		Top:        num(first(raw, "topPadding", "paddingTop")),
		Right:      num(first(raw, "rightPadding", "paddingRight")),
		Bottom:     num(first(raw, "bottomPadding", "paddingBottom")),
		Left:       num(first(raw, "leftPadding", "paddingLeft")),
		Vertical:   num(first(raw, "verticalPadding", "paddingVertical")),
		Horizontal: num(first(raw, "horizontalPadding", "paddingHorizontal")),
	}
}

func normalizeFlex(raw map[string]any) *FlexLayout {
	if raw == nil {
		return nil
	}
	return &FlexLayout{
		Direction:      scalar(first(raw, "dir", "direction")),
		Wrap:           scalar(raw["wrap"]),
		JustifyContent: scalar(raw["justifyContent"]),
		AlignItems:     scalar(raw["alignItems"]),
		AlignContent:   scalar(raw["alignContent"]),
		RowGap:         num(raw["rowGap"]),
		ColumnGap:      num(raw["columnGap"]),
		Padding:        normalizePadding(raw),
	}
}

func normalizeGrid(raw map[string]any) *GridLayout {
	if raw == nil {
		return nil
	}
	g := &GridLayout{
		RowGap:       num(raw["rowGap"]),
		ColumnGap:    num(raw["columnGap"]),
		JustifyItems: scalar(raw["justifyItems"]),
		AlignItems:   scalar(raw["alignItems"]),
		Padding:      normalizePadding(raw),
	}
	g.Rows, g.RowCount = normalizeTracks(raw["rows"])
	g.Columns, g.ColumnCount = normalizeTracks(raw["columns"])
	return g
}

// normalizeTracks accepts either a track count or a list of tracks. A track
// is a CSS size string or an object {type, value} as reported by design tools.
func normalizeTracks(v any) ([]string, int) {
	if n := num(v); n != nil {
		return nil, int(*n)
	}
	var tracks []string
	for _, t := range list(v) {
		if s := scalar(t); s != "" {
			if n := num(s); n != nil {
				s = strconv.FormatFloat(math.Round(*n), 'f', -1, 64) + "px"
			}
			tracks = append(tracks, s)
			continue
		}
		m := obj(t)
		if m == nil {
			continue
		}
		value := num(m["value"])
		switch strings.ToLower(str(m["type"])) {
		case "flex", "fr":
			if value == nil {
				value = Float(1)
			}
			tracks = append(tracks, strconv.FormatFloat(*value, 'f', -1, 64)+"fr")
		case "fixed", "px":
			if value != nil {
				tracks = append(tracks, strconv.FormatFloat(math.Round(*value), 'f', -1, 64)+"px")
			}
		case "percent":
			if value != nil {
				tracks = append(tracks, strconv.FormatFloat(*value, 'f', -1, 64)+"%")
			}
		default:
			tracks = append(tracks, "auto")
		}
	}
	return tracks, len(tracks)
}

func normalizeLayoutChild(raw map[string]any) *LayoutChild {
	if raw == nil {
		return nil
	}
	return &LayoutChild{
		FlexGrow:   num(raw["flexGrow"]),
		FlexShrink: num(raw["flexShrink"]),
		FlexBasis:  num(raw["flexBasis"]),
		AlignSelf:  scalar(raw["alignSelf"]),
		Margin: [4]*float64{
			num(first(raw, "topMargin", "marginTop")),
			num(first(raw, "rightMargin", "marginRight")),
			num(first(raw, "bottomMargin", "marginBottom")),
			num(first(raw, "leftMargin", "marginLeft")),
		},
	}
}

// normalizeLegacyLayout reads the older layout object. It is either nested
// under "layout" or spread over flat layout* fields on the shape.
func normalizeLegacyLayout(raw map[string]any) *LegacyLayout {
	if m := obj(raw["layout"]); m != nil {
		return &LegacyLayout{
			Display:        scalar(first(m, "display", "type")),
			Direction:      scalar(first(m, "direction", "flexDirection")),
			Wrap:           scalar(first(m, "wrap", "flexWrap")),
			JustifyContent: scalar(m["justifyContent"]),
			AlignItems:     scalar(m["alignItems"]),
			Gap:            num(m["gap"]),
			RowGap:         num(m["rowGap"]),
			ColumnGap:      num(m["columnGap"]),
			Padding:        normalizePadding(m),
		}
	}
	display := scalar(raw["layout"])
	if display == "" {
		return nil
	}
	return &LegacyLayout{
		Display:        display,
		Direction:      scalar(raw["layoutFlexDir"]),
		Wrap:           scalar(raw["layoutWrapType"]),
		JustifyContent: scalar(raw["layoutJustifyContent"]),
		AlignItems:     scalar(raw["layoutAlignItems"]),
		Gap:            num(raw["layoutGap"]),
		RowGap:         num(raw["layoutRowGap"]),
		ColumnGap:      num(raw["layoutColumnGap"]),
		Padding: Padding{
			Top:    num(raw["layoutPaddingTop"]),
			Right:  num(raw["layoutPaddingRight"]),
			Bottom: num(raw["layoutPaddingBottom"]),
			Left:   num(raw["layoutPaddingLeft"]),
		},
	}
}

func normalizeImage(v any) *ImageRef {
	if s := str(v); s != "" {
		return &ImageRef{URL: s}
	}
	m := obj(v)
	if m == nil {
		return nil
	}
	img := &ImageRef{
		ID:       str(m["id"]),
		URL:      str(first(m, "url", "src", "dataUri")),
		MimeType: str(first(m, "mtype", "mimeType")),
	}
	if img.ID == "" && img.URL == "" {
		return nil
	}
	return img
}

// colorOf reads a color given either as a CSS string or as an {r, g, b, a}
// object with channels in the 0-1 range. The alpha channel of such an object
// becomes the opacity unless opacity is already known.
func colorOf(v any, opacity *float64) (*string, *float64) {
	m := obj(v)
	if m == nil {
		return optStr(v), opacity
	}
	r, g, b := num(m["r"]), num(m["g"]), num(m["b"])
	if r == nil || g == nil || b == nil {
		return nil, opacity
	}
	hex := colorToHex(*r, *g, *b)
	if a := num(m["a"]); opacity == nil && a != nil && *a < 1 {
		opacity = a
	}
	return &hex, opacity
}

// colorToHex converts 0-1 float channels to #RRGGBB.
func colorToHex(r, g, b float64) string {
	channel := func(c float64) int {
		return int(math.Round(math.Max(0, math.Min(1, c)) * 255))
	}
	return fmt.Sprintf("#%02X%02X%02X", channel(r), channel(g), channel(b))
}

// --- loose value helpers ------------------------------------------------

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func obj(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out
	}
	return nil
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func str(v any) string {
	s, ok := v.(string)
	if !ok || strings.EqualFold(s, Mixed) {
		return ""
	}
	return s
}

func optStr(v any) *string {
	if s := str(v); s != "" {
		return &s
	}
	return nil
}

// scalar returns strings verbatim and numbers in their shortest form.
func scalar(v any) string {
	if n, ok := v.(string); ok {
		return str(n)
	}
	if f := num(v); f != nil {
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
	return ""
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}

// num accepts JSON/YAML numbers and numeric strings. NaN and infinities are
// rejected so that every emitted length is a valid CSS value.
func num(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
