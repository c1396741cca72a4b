package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// Named CARTO colour scales, low to high.
var cartoStops = map[string][]color.NRGBA{
	"sunset": {
		{243, 231, 155, 255}, {250, 196, 132, 255}, {248, 160, 126, 255},
		{235, 127, 134, 255}, {206, 102, 147, 255}, {160, 89, 160, 255},
		{92, 83, 165, 255},
	},
	"sunsetdark": {
		{252, 222, 156, 255}, {250, 164, 118, 255}, {240, 116, 110, 255},
		{227, 79, 111, 255}, {220, 57, 119, 255}, {185, 37, 122, 255},
		{124, 29, 111, 255},
	},
	"agsunset": {
		{75, 41, 145, 255}, {135, 44, 162, 255}, {192, 54, 157, 255},
		{234, 79, 136, 255}, {250, 120, 118, 255}, {246, 169, 122, 255},
		{237, 217, 163, 255},
	},
	"aggrnyl": {
		{36, 86, 104, 255}, {15, 114, 121, 255}, {13, 143, 129, 255},
		{57, 171, 126, 255}, {110, 197, 116, 255}, {169, 220, 103, 255},
		{237, 239, 93, 255},
	},
}

// brewerPrefix selects a ColorBrewer palette by name, e.g. "brewer:OrRd".
const brewerPrefix = "brewer:"

// ScaleNames lists the built-in scale names accepted by NewScale, besides
// "brewer:<name>".
func ScaleNames() []string {
	return []string{
		"sunset", "sunsetdark", "agsunset", "aggrnyl",
		"blackbody", "kindlmann", "blue-red", "purple-orange",
	}
}

// NewScale returns a fresh colour map for name. Names are case-insensitive.
// The returned map has the range [0, 1]; use Fit to adapt it to data.
func NewScale(name string) (palette.ColorMap, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	var cm palette.ColorMap
	switch key {
	case "sunset", "sunsetdark", "agsunset", "aggrnyl":
		cm = NewStopScale(cartoStops[key])
	case "blackbody":
		cm = moreland.BlackBody()
	case "kindlmann":
		cm = moreland.Kindlmann()
	case "blue-red":
		cm = moreland.SmoothBlueRed()
	case "purple-orange":
		cm = moreland.SmoothPurpleOrange()
	default:
		if !strings.HasPrefix(key, brewerPrefix) {
			return nil, fmt.Errorf("unknown colour scale %q", name)
		}
		// brewer names are case-sensitive ("OrRd"), so use the raw suffix.
		p, err := brewer.GetPalette(brewer.TypeAny, strings.TrimSpace(name)[len(brewerPrefix):], 9)
		if err != nil {
			return nil, fmt.Errorf("unknown colour scale %q: %w", name, err)
		}
		stops := make([]color.NRGBA, 0, len(p.Colors()))
		for _, c := range p.Colors() {
			stops = append(stops, color.NRGBAModel.Convert(c).(color.NRGBA))
		}
		cm = NewStopScale(stops)
	}
	cm.SetMin(0)
	cm.SetMax(1)
	return cm, nil
}

// Fit sets the range of cm to cover values. With a midpoint the range is
// made symmetric around it and, for diverging maps, the convergence point
// is moved there. A degenerate range is widened so that At never fails.
func Fit(cm palette.ColorMap, values []float64, midpoint *float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if midpoint != nil {
		d := math.Max(math.Abs(hi-*midpoint), math.Abs(*midpoint-lo))
		lo, hi = *midpoint-d, *midpoint+d
	}
	if hi == lo {
		pad := math.Max(math.Abs(lo)*0.5, 0.5)
		lo, hi = lo-pad, hi+pad
	}

	cm.SetMin(lo)
	cm.SetMax(hi)
	if d, ok := cm.(palette.DivergingColorMap); ok {
		centre := (lo + hi) / 2
		if midpoint != nil {
			centre = *midpoint
		}
		d.SetConvergePoint(centre)
	}
}

// ColorAt returns the colour for v, clamping v into the map's range.
// Values the map cannot colour fall back to grey.
func ColorAt(cm palette.ColorMap, v float64) color.Color {
	v = math.Max(cm.Min(), math.Min(cm.Max(), v))
	c, err := cm.At(v)
	if err != nil {
		return color.Gray{Y: 128}
	}
	return c
}

// Spread returns n colours evenly spaced over the range of cm, one per
// category. Unlike cm.Palette it accepts n == 1.
func Spread(cm palette.ColorMap, n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		colors[i] = ColorAt(cm, cm.Min()+t*(cm.Max()-cm.Min()))
	}
	return colors
}

// StopScale interpolates linearly in RGB between evenly spaced colour stops.
// It implements palette.DivergingColorMap: values below the convergence
// point use the lower half of the stops, values above it the upper half.
type StopScale struct {
	stops    []color.NRGBA
	min, max float64
	converge float64
	alpha    float64
}

var _ palette.DivergingColorMap = (*StopScale)(nil)

// NewStopScale returns a scale over stops on the range [0, 1].
func NewStopScale(stops []color.NRGBA) *StopScale {
	return &StopScale{
		stops:    stops,
		max:      1,
		converge: 0.5,
		alpha:    1,
	}
}

// At implements palette.ColorMap.
func (s *StopScale) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < s.min:
		return nil, palette.ErrUnderflow
	case v > s.max:
		return nil, palette.ErrOverflow
	}
	if len(s.stops) == 0 {
		return nil, fmt.Errorf("colour scale has no stops")
	}
	if s.max == s.min {
		return s.withAlpha(s.stops[len(s.stops)/2]), nil
	}

	// Map v to [0, 1] piecewise so that the convergence point lands on 0.5.
	var t float64
	if v <= s.converge {
		if s.converge > s.min {
			t = 0.5 * (v - s.min) / (s.converge - s.min)
		}
	} else {
		t = 0.5
		if s.max > s.converge {
			t += 0.5 * (v - s.converge) / (s.max - s.converge)
		}
	}

	pos := t * float64(len(s.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(s.stops)-1 {
		return s.withAlpha(s.stops[len(s.stops)-1]), nil
	}
	frac := pos - float64(i)
	a, b := s.stops[i], s.stops[i+1]
	return s.withAlpha(color.NRGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 255,
	}), nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func (s *StopScale) withAlpha(c color.NRGBA) color.Color {
	c.A = uint8(math.Round(255 * s.alpha))
	return c
}

// Max implements palette.ColorMap.
func (s *StopScale) Max() float64 { return s.max }

// SetMax implements palette.ColorMap. It resets the convergence point.
func (s *StopScale) SetMax(v float64) {
	s.max = v
	s.converge = (s.min + s.max) / 2
}

// Min implements palette.ColorMap.
func (s *StopScale) Min() float64 { return s.min }

// SetMin implements palette.ColorMap. It resets the convergence point.
func (s *StopScale) SetMin(v float64) {
	s.min = v
	s.converge = (s.min + s.max) / 2
}

// Alpha implements palette.ColorMap.
func (s *StopScale) Alpha() float64 { return s.alpha }

// SetAlpha implements palette.ColorMap.
func (s *StopScale) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic(fmt.Sprintf("chart: invalid alpha %g", a))
	}
	s.alpha = a
}

// SetConvergePoint implements palette.DivergingColorMap.
func (s *StopScale) SetConvergePoint(v float64) {
	if v < s.min || v > s.max {
		panic(fmt.Sprintf("chart: convergence point %g outside [%g, %g]", v, s.min, s.max))
	}
	s.converge = v
}

// ConvergePoint implements palette.DivergingColorMap.
func (s *StopScale) ConvergePoint() float64 { return s.converge }

// Palette implements palette.ColorMap.
func (s *StopScale) Palette(n int) palette.Palette {
	return fixedPalette(Spread(s, n))
}

// fixedPalette is a palette.Palette over explicit colours.
type fixedPalette []color.Color

// Colors implements palette.Palette.
func (p fixedPalette) Colors() []color.Color { return p }

// NewPalette parses "#RRGGBB" colours into a palette.
func NewPalette(hex []string) (palette.Palette, error) {
	colors := make(fixedPalette, 0, len(hex))
	for _, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, nil
}

// ParseHex parses a "#RRGGBB" colour.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Hex formats c as "#RRGGBB".
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}
