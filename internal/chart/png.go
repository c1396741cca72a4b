package chart

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
)

// Default PNG canvas size. At the default 72 dpi a point is one pixel.
const (
	DefaultWidth  = 900
	DefaultHeight = 560
)

// PNGRenderer draws charts with gonum/plot and writes them as PNG files.
type PNGRenderer struct {
	dir    string
	width  vg.Length
	height vg.Length

	// scales overrides the colour scale per report name.
	scales map[string]string

	logger *slog.Logger
}

// PNGOption configures a PNGRenderer.
type PNGOption func(*PNGRenderer)

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) PNGOption {
	return func(r *PNGRenderer) {
		if width > 0 {
			r.width = vg.Length(width)
		}
		if height > 0 {
			r.height = vg.Length(height)
		}
	}
}

// WithScaleOverride replaces the colour scale of the named report.
func WithScaleOverride(report, scale string) PNGOption {
	return func(r *PNGRenderer) {
		r.scales[report] = scale
	}
}

// WithPNGLogger sets the logger.
func WithPNGLogger(logger *slog.Logger) PNGOption {
	return func(r *PNGRenderer) {
		r.logger = logger
	}
}

// NewPNGRenderer creates a renderer writing into dir.
func NewPNGRenderer(dir string, opts ...PNGOption) *PNGRenderer {
	r := &PNGRenderer{
		dir:    dir,
		width:  DefaultWidth,
		height: DefaultHeight,
		scales: make(map[string]string),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the output directory.
func (r *PNGRenderer) Dir() string {
	return r.dir
}

// Path returns the file the chart for name is written to.
func (r *PNGRenderer) Path(name string) string {
	return filepath.Join(r.dir, name+".png")
}

// Render draws spec and writes it to Path(name).
func (r *PNGRenderer) Render(ctx context.Context, name string, spec *Spec) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := r.Encode(&buf, name, spec); err != nil {
		return err
	}

	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	path := r.Path(name)
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if _, err := buf.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close chart file: %w", err)
	}

	r.logger.Debug("chart written", "report", name, "path", path, "kind", spec.Kind)
	return nil
}

// Encode draws spec and writes the PNG image to w.
func (r *PNGRenderer) Encode(w io.Writer, name string, spec *Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s := *spec
	if scale, ok := r.scales[name]; ok && scale != "" {
		s.Scale = scale
	}

	width, height := r.canvasSize(&s)
	p, err := Plot(&s, width, height)
	if err != nil {
		return fmt.Errorf("failed to draw %s chart: %w", s.Kind, err)
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

// canvasSize grows horizontal bar charts with their row count so that
// category labels do not overlap.
func (r *PNGRenderer) canvasSize(s *Spec) (vg.Length, vg.Length) {
	w, h := r.width, r.height
	if s.Kind == KindHBar {
		need := vg.Length(len(s.Points))*16 + 120
		if need > h {
			h = need
		}
	}
	return w, h
}

// Plot builds the gonum plot for spec on a canvas of the given size.
func Plot(spec *Spec, width, height vg.Length) (*plot.Plot, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XTitle
	p.Y.Label.Text = spec.YTitle

	var err error
	switch spec.Kind {
	case KindBar:
		err = drawBars(p, spec, false, width)
	case KindHBar:
		err = drawBars(p, spec, true, height)
	case KindBubble:
		err = drawBubbles(p, spec)
	case KindTreemap:
		err = drawTreemap(p, spec, float64(width/height))
	case KindDonut:
		err = drawDonut(p, spec, float64(width/height))
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// scaleFor returns the colour map of spec, or fallback when none is named.
func scaleFor(spec *Spec, fallback string) (palette.ColorMap, error) {
	name := spec.Scale
	if name == "" {
		name = fallback
	}
	return NewScale(name)
}
