package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultDonutPalette is used when a donut spec carries no palette.
var DefaultDonutPalette = []string{
	"#FFB437", "#FFA046", "#FF8C52", "#FF5E5B", "#FF3358",
	"#E72953", "#D81C4A", "#A4143F", "#731232", "#501121",
}

// drawDonut draws slices counterclockwise from twelve o'clock. Colours come
// from the fixed palette, reused cyclically. A pulled slice is moved out
// along its bisector by Pull times the radius.
func drawDonut(p *plot.Plot, spec *Spec, aspect float64) error {
	hex := spec.Palette
	if len(hex) == 0 {
		hex = DefaultDonutPalette
	}
	pal, err := NewPalette(hex)
	if err != nil {
		return err
	}
	colors := pal.Colors()

	total := 0.0
	for _, pt := range spec.Points {
		total += pt.Value
	}

	p.HideAxes()
	// The donut sits on the left; the legend uses the space on the right.
	p.X.Min, p.X.Max = -1.25, -1.25+2.5*math.Max(aspect, 1)
	p.Y.Min, p.Y.Max = -1.25, 1.25
	p.Legend.Top = true

	var labels plotter.XYLabels
	start := math.Pi / 2
	for i, pt := range spec.Points {
		if pt.Value <= 0 {
			continue
		}
		frac := pt.Value / total
		end := start + frac*2*math.Pi
		mid := (start + end) / 2
		dx := spec.PullAt(i) * math.Cos(mid)
		dy := spec.PullAt(i) * math.Sin(mid)

		ring := wedge(start, end, 1, spec.Hole, dx, dy)
		poly, err := plotter.NewPolygon(ring)
		if err != nil {
			return err
		}
		poly.Color = colors[i%len(colors)]
		poly.LineStyle = draw.LineStyle{Color: color.White, Width: vg.Points(1)}
		p.Add(poly)
		p.Legend.Add(pt.Label, poly)

		r := (1 + spec.Hole) / 2
		labels.XYs = append(labels.XYs, plotter.XY{X: dx + r*math.Cos(mid), Y: dy + r*math.Sin(mid)})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%.1f%%", frac*100))

		start = end
	}

	if len(labels.Labels) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return err
		}
		for i := range l.TextStyle {
			l.TextStyle[i].XAlign = draw.XCenter
			l.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(l)
	}
	return nil
}

// wedge returns the outline of an annular sector from angle a0 to a1,
// shifted by (dx, dy). With a zero inner radius it is a pie slice.
func wedge(a0, a1, outer, inner, dx, dy float64) plotter.XYs {
	steps := max(int(math.Ceil((a1-a0)/(math.Pi/90))), 2)
	ring := make(plotter.XYs, 0, 2*(steps+1))
	for k := 0; k <= steps; k++ {
		a := a0 + (a1-a0)*float64(k)/float64(steps)
		ring = append(ring, plotter.XY{X: dx + outer*math.Cos(a), Y: dy + outer*math.Sin(a)})
	}
	if inner <= 0 {
		return append(ring, plotter.XY{X: dx, Y: dy})
	}
	for k := steps; k >= 0; k-- {
		a := a0 + (a1-a0)*float64(k)/float64(steps)
		ring = append(ring, plotter.XY{X: dx + inner*math.Cos(a), Y: dy + inner*math.Sin(a)})
	}
	return ring
}
