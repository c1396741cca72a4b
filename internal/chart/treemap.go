package chart

import (
	"cmp"
	"image/color"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Rect is an axis-aligned rectangle; (X, Y) is the lower left corner.
type Rect struct {
	X, Y, W, H float64
}

// Squarify lays values out inside r as rectangles with areas proportional
// to the values, keeping aspect ratios close to 1 (Bruls, Huizing and van
// Wijk). The result is index-aligned with values; non-positive values get
// an empty Rect.
func Squarify(values []float64, r Rect) []Rect {
	out := make([]Rect, len(values))
	total := 0.0
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if v > 0 {
			total += v
			idx = append(idx, i)
		}
	}
	if total <= 0 || r.W <= 0 || r.H <= 0 {
		return out
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(values[b], values[a])
	})

	areas := make([]float64, len(values))
	scale := r.W * r.H / total
	for _, i := range idx {
		areas[i] = values[i] * scale
	}

	var row []int
	free := r
	for k := 0; k < len(idx); {
		i := idx[k]
		side := min(free.W, free.H)
		if len(row) == 0 || worst(append(row, i), areas, side) <= worst(row, areas, side) {
			row = append(row, i)
			k++
			continue
		}
		free = layoutRow(row, areas, free, out)
		row = nil
	}
	if len(row) > 0 {
		layoutRow(row, areas, free, out)
	}
	return out
}

// worst returns the largest aspect ratio of row laid along side.
func worst(row []int, areas []float64, side float64) float64 {
	sum, lo, hi := 0.0, areas[row[0]], areas[row[0]]
	for _, i := range row {
		sum += areas[i]
		lo = min(lo, areas[i])
		hi = max(hi, areas[i])
	}
	s2, w2 := sum*sum, side*side
	return max(w2*hi/s2, s2/(w2*lo))
}

// layoutRow places row along the shorter side of free and returns the
// space left over.
func layoutRow(row []int, areas []float64, free Rect, out []Rect) Rect {
	sum := 0.0
	for _, i := range row {
		sum += areas[i]
	}
	if free.W >= free.H {
		colW := sum / free.H
		y := free.Y + free.H
		for _, i := range row {
			h := areas[i] / colW
			y -= h
			out[i] = Rect{X: free.X, Y: y, W: colW, H: h}
		}
		free.X += colW
		free.W -= colW
		return free
	}
	rowH := sum / free.W
	x := free.X
	for _, i := range row {
		w := areas[i] / rowH
		out[i] = Rect{X: x, Y: free.Y + free.H - rowH, W: w, H: rowH}
		x += w
	}
	free.H -= rowH
	return free
}

// treemap header height and cell padding, in plot units (plot height is 1).
const (
	treemapHeader = 0.04
	treemapGap    = 0.004
)

// drawTreemap lays out parents first, then each parent's children inside
// it. Cells are coloured by value.
func drawTreemap(p *plot.Plot, spec *Spec, aspect float64) error {
	cm, err := scaleFor(spec, "sunset")
	if err != nil {
		return err
	}
	Fit(cm, spec.Values(), spec.Midpoint)

	var parents []string
	children := make(map[string][]int)
	for i, pt := range spec.Points {
		if _, ok := children[pt.Parent]; !ok {
			parents = append(parents, pt.Parent)
		}
		children[pt.Parent] = append(children[pt.Parent], i)
	}
	totals := make([]float64, len(parents))
	for j, parent := range parents {
		for _, i := range children[parent] {
			totals[j] += spec.Points[i].Value
		}
	}

	p.HideAxes()
	p.X.Min, p.X.Max = 0, aspect
	p.Y.Min, p.Y.Max = 0, 1

	var labels plotter.XYLabels
	white := color.White
	for j, pr := range Squarify(totals, Rect{W: aspect, H: 1}) {
		if pr.W <= 0 || pr.H <= 0 {
			continue
		}
		if err := addRect(p, pr, nil, draw.LineStyle{Color: white, Width: vg.Points(2)}); err != nil {
			return err
		}
		labels.XYs = append(labels.XYs, plotter.XY{X: pr.X + treemapGap, Y: pr.Y + pr.H - treemapHeader*0.8})
		labels.Labels = append(labels.Labels, parents[j])

		inner := Rect{X: pr.X + treemapGap, Y: pr.Y + treemapGap, W: pr.W - 2*treemapGap, H: pr.H - treemapHeader - treemapGap}
		ids := children[parents[j]]
		values := make([]float64, len(ids))
		for k, i := range ids {
			values[k] = spec.Points[i].Value
		}
		for k, cr := range Squarify(values, inner) {
			if cr.W <= 0 || cr.H <= 0 {
				continue
			}
			pt := spec.Points[ids[k]]
			fill := ColorAt(cm, pt.Value)
			if err := addRect(p, cr, fill, draw.LineStyle{Color: white, Width: vg.Points(0.5)}); err != nil {
				return err
			}
			if cr.W > 0.08 && cr.H > 0.05 {
				labels.XYs = append(labels.XYs, plotter.XY{X: cr.X + treemapGap, Y: cr.Y + cr.H - 0.035})
				labels.Labels = append(labels.Labels, pt.Label)
			}
		}
	}

	if len(labels.Labels) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return err
		}
		p.Add(l)
	}
	return nil
}

// addRect adds r as a polygon. A nil fill leaves it unfilled.
func addRect(p *plot.Plot, r Rect, fill color.Color, line draw.LineStyle) error {
	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: r.X, Y: r.Y},
		{X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H},
	})
	if err != nil {
		return err
	}
	poly.Color = fill
	poly.LineStyle = line
	p.Add(poly)
	return nil
}
