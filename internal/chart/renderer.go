package chart

import (
	"context"
	"slices"
	"sync"
)

// Renderer turns a chart description into output.
// name is the report name; file-based renderers derive file names from it.
type Renderer interface {
	Render(ctx context.Context, name string, spec *Spec) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, name string, spec *Spec) error

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, name string, spec *Spec) error {
	return f(ctx, name, spec)
}

// MultiRenderer renders to several renderers in order.
type MultiRenderer struct {
	renderers []Renderer
}

// NewMultiRenderer creates a MultiRenderer. Nil renderers are ignored.
func NewMultiRenderer(renderers ...Renderer) *MultiRenderer {
	m := &MultiRenderer{}
	for _, r := range renderers {
		if r != nil {
			m.renderers = append(m.renderers, r)
		}
	}
	return m
}

// Render renders with every renderer and stops at the first error.
func (m *MultiRenderer) Render(ctx context.Context, name string, spec *Spec) error {
	for _, r := range m.renderers {
		if err := r.Render(ctx, name, spec); err != nil {
			return err
		}
	}
	return nil
}

// Recorder keeps rendered descriptions in memory. It is safe for
// concurrent use.
type Recorder struct {
	mu    sync.Mutex
	names []string
	specs map[string]*Spec
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{specs: make(map[string]*Spec)}
}

// Render validates spec and records it under name.
func (r *Recorder) Render(_ context.Context, name string, spec *Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.specs[name]; !ok {
		r.names = append(r.names, name)
	}
	r.specs[name] = spec
	return nil
}

// Get returns the description recorded under name.
func (r *Recorder) Get(name string) (*Spec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.specs[name]
	return s, ok
}

// Names returns the recorded names in first-render order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.names)
}
