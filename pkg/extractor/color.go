package extractor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kataras/design-tagger/pkg/design"
)

// px formats v as a whole pixel length, e.g. 12.6 -> "13px".
func px(v float64) string {
	return number(math.Round(v)) + "px"
}

// number formats v in its shortest form with at most three decimals.
func number(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func positive(v *float64) bool { return v != nil && *v > 0 }

// parseHex decodes #rgb, #rrggbb and #rrggbbaa colors.
func parseHex(s string) (r, g, b int, a float64, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 && len(s) != 8 {
		return 0, 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	a = 1
	if len(s) == 8 {
		a = float64(v&0xFF) / 255
		v >>= 8
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), a, true
}

// Color renders a color with an optional opacity. Translucent colors become
// rgba(); opaque ones are returned as given. Colors that cannot be parsed
// are returned as given too.
func Color(c string, opacity *float64) string {
	r, g, b, a, ok := parseHex(c)
	if !ok {
		return c
	}
	if opacity != nil {
		a *= math.Max(0, *opacity)
	}
	if a >= 1 {
		return c
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, number(math.Round(a*100)/100))
}

// fillColor returns the CSS color of a solid fill, or "".
func fillColor(f design.Fill) string {
	if f.Color == nil || *f.Color == "" {
		return ""
	}
	return Color(*f.Color, f.Opacity)
}

// gradient renders a gradient paint as a CSS image function.
func gradient(g *design.Gradient) string {
	if g == nil || len(g.Stops) == 0 {
		return ""
	}
	stops := make([]string, 0, len(g.Stops))
	for _, s := range g.Stops {
		stops = append(stops, fmt.Sprintf("%s %s%%", Color(s.Color, s.Opacity), number(s.Offset*100)))
	}
	if g.Type == design.GradientRadial {
		return "radial-gradient(circle, " + strings.Join(stops, ", ") + ")"
	}
	angle := 180.0
	if g.Angle != nil {
		angle = *g.Angle
	}
	return fmt.Sprintf("linear-gradient(%sdeg, %s)", number(angle), strings.Join(stops, ", "))
}
