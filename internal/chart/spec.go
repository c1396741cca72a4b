package chart

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Kind is the chart family.
type Kind string

const (
	// KindBar is a vertical bar chart.
	KindBar Kind = "bar"
	// KindHBar is a horizontal bar chart.
	KindHBar Kind = "hbar"
	// KindBubble is a scatter chart whose marker area encodes a third value.
	KindBubble Kind = "bubble"
	// KindTreemap is a two-level treemap (parent to label).
	KindTreemap Kind = "treemap"
	// KindDonut is a pie chart with a hole.
	KindDonut Kind = "donut"
)

// Chart description errors.
var (
	// ErrEmptyChart is returned for a description without points.
	ErrEmptyChart = errors.New("chart has no data")

	// ErrInvalidChart is returned for an inconsistent description.
	ErrInvalidChart = errors.New("invalid chart description")
)

// Point is one mark of a chart.
//
// Not every field is meaningful for every kind:
//   - bar, hbar: Label and Value
//   - bubble: Label, X, Y and Size
//   - treemap: Parent, Label and Value (area and colour)
//   - donut: Label and Value
type Point struct {
	Label  string  `json:"label"`
	Parent string  `json:"parent,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Value  float64 `json:"value,omitempty"`

	// Text is a preformatted label drawn next to the mark.
	Text string `json:"text,omitempty"`
}

// Spec is a renderer-independent chart description.
type Spec struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	XTitle string `json:"x_title,omitempty"`
	YTitle string `json:"y_title,omitempty"`

	Points []Point `json:"points"`

	// Scale names a continuous colour scale (see NewScale).
	Scale string `json:"scale,omitempty"`

	// Midpoint, when set, centres the colour scale on this value.
	Midpoint *float64 `json:"midpoint,omitempty"`

	// Palette holds fixed "#RRGGBB" colours used cyclically by donuts.
	Palette []string `json:"palette,omitempty"`

	// Hole is the donut hole as a fraction of the radius.
	Hole float64 `json:"hole,omitempty"`

	// Pull holds the radial offset of each donut slice as a fraction of
	// the radius. Missing entries mean zero.
	Pull []float64 `json:"pull,omitempty"`

	// LogY draws the Y axis on a log scale.
	LogY bool `json:"log_y,omitempty"`

	// MaxBubble is the largest bubble diameter in pixels.
	MaxBubble float64 `json:"max_bubble,omitempty"`

	// ValueLabels draws each point's Text outside its bar.
	ValueLabels bool `json:"value_labels,omitempty"`

	// Hover is a hover template for renderers that support interaction.
	Hover string `json:"hover,omitempty"`
}

// Labels returns the point labels in order.
func (s *Spec) Labels() []string {
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = p.Label
	}
	return labels
}

// Values returns the point values in order.
func (s *Spec) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// PullAt returns the pull of point i.
func (s *Spec) PullAt(i int) float64 {
	if i < len(s.Pull) {
		return s.Pull[i]
	}
	return 0
}

// Validate reports whether the description can be rendered.
func (s *Spec) Validate() error {
	if s == nil {
		return ErrEmptyChart
	}
	switch s.Kind {
	case KindBar, KindHBar, KindBubble, KindTreemap, KindDonut:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidChart, s.Kind)
	}
	if len(s.Points) == 0 {
		return ErrEmptyChart
	}
	if len(s.Pull) > len(s.Points) {
		return fmt.Errorf("%w: %d pull values for %d points", ErrInvalidChart, len(s.Pull), len(s.Points))
	}
	if s.Hole < 0 || s.Hole >= 1 {
		return fmt.Errorf("%w: hole %g outside [0, 1)", ErrInvalidChart, s.Hole)
	}
	for _, c := range s.Palette {
		if _, err := ParseHex(c); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidChart, err)
		}
	}
	if s.Scale != "" {
		if _, err := NewScale(s.Scale); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidChart, err)
		}
	}
	if s.Midpoint != nil && !finite(*s.Midpoint) {
		return fmt.Errorf("%w: midpoint is not finite", ErrInvalidChart)
	}

	total := 0.0
	for i, p := range s.Points {
		if strings.TrimSpace(p.Label) == "" {
			return fmt.Errorf("%w: point %d has no label", ErrInvalidChart, i)
		}
		if !finite(p.X) || !finite(p.Y) || !finite(p.Size) || !finite(p.Value) {
			return fmt.Errorf("%w: point %q has a non-finite value", ErrInvalidChart, p.Label)
		}
		switch s.Kind {
		case KindTreemap:
			if p.Parent == "" {
				return fmt.Errorf("%w: treemap point %q has no parent", ErrInvalidChart, p.Label)
			}
			if p.Value < 0 {
				return fmt.Errorf("%w: treemap area of %q is negative", ErrInvalidChart, p.Label)
			}
		case KindDonut:
			if p.Value < 0 {
				return fmt.Errorf("%w: slice %q is negative", ErrInvalidChart, p.Label)
			}
		case KindBubble:
			if p.Size < 0 {
				return fmt.Errorf("%w: bubble %q has a negative size", ErrInvalidChart, p.Label)
			}
		}
		total += p.Value
	}
	if s.Kind == KindDonut && total <= 0 {
		return fmt.Errorf("%w: donut needs a positive total", ErrInvalidChart)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
