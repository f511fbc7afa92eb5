package extractor

import (
	"strconv"
	"strings"

	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/props"
)

var flexDirections = map[string]string{
	"row": "row", "column": "column", "row-reverse": "row-reverse", "column-reverse": "column-reverse",
	"horizontal": "row", "vertical": "column",
}

func extractFlexContainer(f *design.FlexLayout, styles *props.Map) {
	if f == nil {
		return
	}
	put(styles, "display", "flex")
	put(styles, "flexDirection", mapped(flexDirections, f.Direction))
	put(styles, "flexWrap", verbatim(f.Wrap))
	put(styles, "justifyContent", verbatim(f.JustifyContent))
	put(styles, "alignItems", verbatim(f.AlignItems))
	put(styles, "alignContent", verbatim(f.AlignContent))
	if positive(f.RowGap) {
		put(styles, "rowGap", px(*f.RowGap))
	}
	if positive(f.ColumnGap) {
		put(styles, "columnGap", px(*f.ColumnGap))
	}
	applyPadding(f.Padding, styles, true)
}

func extractGridContainer(g *design.GridLayout, styles *props.Map) {
	if g == nil {
		return
	}
	put(styles, "display", "grid")
	put(styles, "gridTemplateColumns", tracks(g.Columns, g.ColumnCount))
	put(styles, "gridTemplateRows", tracks(g.Rows, g.RowCount))
	if positive(g.RowGap) {
		put(styles, "rowGap", px(*g.RowGap))
	}
	if positive(g.ColumnGap) {
		put(styles, "columnGap", px(*g.ColumnGap))
	}
	put(styles, "justifyItems", verbatim(g.JustifyItems))
	put(styles, "alignItems", verbatim(g.AlignItems))
	applyPadding(g.Padding, styles, true)
}

func tracks(list []string, count int) string {
	if len(list) > 0 {
		return strings.Join(list, " ")
	}
	if count > 0 {
		return "repeat(" + strconv.Itoa(count) + ", 1fr)"
	}
	return ""
}

var paddingSides = [4]string{"paddingTop", "paddingRight", "paddingBottom", "paddingLeft"}

// applyPadding writes per-side padding first. Sides left unset fall back to
// the symmetric vertical or horizontal value. With overwrite false only
// properties not yet present are written.
func applyPadding(p design.Padding, styles *props.Map, overwrite bool) {
	set := func(key string, v float64) {
		if overwrite {
			put(styles, key, px(v))
		} else {
			styles.SetDefault(key, px(v))
		}
	}
	sides := [4]*float64{p.Top, p.Right, p.Bottom, p.Left}
	axis := [4]*float64{p.Vertical, p.Horizontal, p.Vertical, p.Horizontal}
	for i, key := range paddingSides {
		switch {
		case positive(sides[i]):
			set(key, *sides[i])
		case sides[i] == nil && positive(axis[i]):
			set(key, *axis[i])
		}
	}
}

var marginSides = [4]string{"marginTop", "marginRight", "marginBottom", "marginLeft"}

// extractFlexChild only emits grow and shrink when they differ from the CSS
// initial values (0 and 1), since an explicit initial value has no effect.
func extractFlexChild(c *design.LayoutChild, styles *props.Map) {
	if c == nil {
		return
	}
	if c.FlexGrow != nil && *c.FlexGrow != 0 {
		put(styles, "flexGrow", number(*c.FlexGrow))
	}
	if c.FlexShrink != nil && *c.FlexShrink != 1 {
		put(styles, "flexShrink", number(*c.FlexShrink))
	}
	if c.FlexBasis != nil {
		put(styles, "flexBasis", px(*c.FlexBasis))
	}
	put(styles, "alignSelf", verbatim(c.AlignSelf))
	for i, key := range marginSides {
		if positive(c.Margin[i]) {
			put(styles, key, px(*c.Margin[i]))
		}
	}
}

// extractLegacyLayout fills in container properties the auto-layout
// metadata left unset.
func extractLegacyLayout(l *design.LegacyLayout, styles *props.Map) {
	if l == nil {
		return
	}
	setDefault := func(key, value string) {
		if value != "" {
			styles.SetDefault(key, value)
		}
	}
	display := strings.ToLower(verbatim(l.Display))
	switch display {
	case "none":
		return
	case "", "auto":
		// Legacy metadata without a display mode still describes a flex box
		// when it carries a direction.
		if l.Direction == "" {
			return
		}
		display = "flex"
	case "horizontal", "vertical":
		if l.Direction == "" {
			l = withDirection(l, display)
		}
		display = "flex"
	}
	setDefault("display", display)
	setDefault("flexDirection", mapped(flexDirections, l.Direction))
	setDefault("flexWrap", verbatim(l.Wrap))
	setDefault("justifyContent", verbatim(l.JustifyContent))
	setDefault("alignItems", verbatim(l.AlignItems))
	if positive(l.Gap) {
		setDefault("gap", px(*l.Gap))
	}
	if positive(l.RowGap) {
		setDefault("rowGap", px(*l.RowGap))
	}
	if positive(l.ColumnGap) {
		setDefault("columnGap", px(*l.ColumnGap))
	}
	applyPadding(l.Padding, styles, false)
}

func withDirection(l *design.LegacyLayout, dir string) *design.LegacyLayout {
	c := *l
	c.Direction = dir
	return &c
}
