package chart

import (
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// drawBars adds one bar per point, coloured by value. Horizontal charts list
// the first point at the top. span is the canvas extent along the category
// axis and bounds the bar width.
func drawBars(p *plot.Plot, spec *Spec, horizontal bool, span vg.Length) error {
	cm, err := scaleFor(spec, "sunsetdark")
	if err != nil {
		return err
	}
	Fit(cm, spec.Values(), spec.Midpoint)

	n := len(spec.Points)
	width := min(span*0.6/vg.Length(n), 40)

	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, n),
		Labels: make([]string, n),
	}
	top := 0.0
	for i, pt := range spec.Points {
		pos := float64(i)
		if horizontal {
			pos = float64(n - 1 - i)
		}
		bar, err := plotter.NewBarChart(plotter.Values{pt.Value}, width)
		if err != nil {
			return err
		}
		bar.XMin = pos
		bar.Horizontal = horizontal
		bar.Color = ColorAt(cm, pt.Value)
		bar.LineStyle.Width = 0
		p.Add(bar)

		if horizontal {
			labels.XYs[i] = plotter.XY{X: pt.Value, Y: pos}
		} else {
			labels.XYs[i] = plotter.XY{X: pos, Y: pt.Value}
		}
		labels.Labels[i] = pt.Text
		top = max(top, pt.Value)
	}

	names := spec.Labels()
	if horizontal {
		slices.Reverse(names)
		p.NominalY(names...)
	} else {
		p.NominalX(names...)
	}

	if spec.ValueLabels {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return err
		}
		for i := range l.TextStyle {
			if horizontal {
				l.TextStyle[i].YAlign = draw.YCenter
			} else {
				l.TextStyle[i].XAlign = draw.XCenter
			}
		}
		if horizontal {
			l.Offset = vg.Point{X: 4}
		} else {
			l.Offset = vg.Point{Y: 4}
		}
		p.Add(l)

		// Leave room for labels outside the longest bar.
		if horizontal {
			p.X.Max = max(p.X.Max, top*1.15)
		} else {
			p.Y.Max = max(p.Y.Max, top*1.15)
		}
	}
	return nil
}
