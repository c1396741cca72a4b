package chart

import (
	"errors"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// defaultMaxBubble is the largest bubble diameter when the spec sets none.
const defaultMaxBubble = 60

// minBubbleRadius keeps tiny bubbles visible.
const minBubbleRadius = 2

// legendGlyphRadius sizes every legend marker, whatever its bubble size.
const legendGlyphRadius = 4

// legendGlyph draws a bubble's legend marker at a fixed radius.
type legendGlyph struct {
	draw.GlyphStyle
}

func bubbleLegend(sty draw.GlyphStyle) legendGlyph {
	sty.Radius = legendGlyphRadius
	return legendGlyph{GlyphStyle: sty}
}

// Thumbnail implements plot.Thumbnailer.
func (g legendGlyph) Thumbnail(c *draw.Canvas) {
	c.DrawGlyph(g.GlyphStyle, c.Center())
}

// drawBubbles adds one scatter per point so that each gets a legend entry.
// Marker area is proportional to Size. On a log Y axis, points with a
// non-positive Y cannot be placed and are left out.
func drawBubbles(p *plot.Plot, spec *Spec) error {
	cm, err := scaleFor(spec, "agsunset")
	if err != nil {
		return err
	}

	points := make([]Point, 0, len(spec.Points))
	for _, pt := range spec.Points {
		if spec.LogY && pt.Y <= 0 {
			continue
		}
		points = append(points, pt)
	}
	if len(points) == 0 {
		return errors.New("no point has a positive value for the log axis")
	}

	maxSize := 0.0
	for _, pt := range points {
		maxSize = math.Max(maxSize, pt.Size)
	}
	maxDiameter := spec.MaxBubble
	if maxDiameter <= 0 {
		maxDiameter = defaultMaxBubble
	}

	colors := Spread(cm, len(points))

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, pt := range points {
		radius := vg.Length(minBubbleRadius)
		if maxSize > 0 {
			radius = max(vg.Length(maxDiameter/2*math.Sqrt(pt.Size/maxSize)), minBubbleRadius)
		}
		s, err := plotter.NewScatter(plotter.XYs{{X: pt.X, Y: pt.Y}})
		if err != nil {
			return err
		}
		s.GlyphStyle = draw.GlyphStyle{
			Color:  colors[i%len(colors)],
			Radius: radius,
			Shape:  draw.CircleGlyph{},
		}
		p.Add(s)
		p.Legend.Add(pt.Label, bubbleLegend(s.GlyphStyle))

		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}

	padX := math.Max((maxX-minX)*0.1, 1)
	p.X.Min, p.X.Max = minX-padX, maxX+padX
	if spec.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Min, p.Y.Max = minY/2, maxY*2
	} else {
		padY := math.Max((maxY-minY)*0.1, 1)
		p.Y.Min, p.Y.Max = minY-padY, maxY+padY
	}
	p.Legend.Top = true
	return nil
}
