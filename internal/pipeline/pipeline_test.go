package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/corpreport/internal/analysis"
	"github.com/nao1215/corpreport/internal/chart"
	"github.com/nao1215/corpreport/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, ds *model.Dataset) analysis.Outcome
	callCount atomic.Int32
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, ds *model.Dataset) analysis.Outcome {
	m.callCount.Add(1)
	if m.doFunc != nil {
		return m.doFunc(ctx, ds)
	}
	return analysis.Outcome{Report: m.name, Summary: &model.Summary{Report: m.name}}
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func failingStep(name string, err error) *mockStep {
	return &mockStep{
		name: name,
		doFunc: func(context.Context, *model.Dataset) analysis.Outcome {
			return analysis.Outcome{Report: name, Err: err}
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func testDataset() *model.Dataset {
	return &model.Dataset{
		Companies: model.NewCompanyTable(
			model.Company{Name: "A", City: "Austin", State: "TX", PostalCode: "1", Revenue: model.ParseRevenue("100"), Industry: "Tech"},
			model.Company{Name: "B", City: "Boston", State: "MA", PostalCode: "2", Revenue: model.ParseRevenue("200"), Industry: "Tech"},
		),
		People:  model.NewPeopleTable(model.NewPerson("CEO"), model.NewPerson("ceo")),
		Sources: []model.SourceInfo{{Path: "companies.csv", Format: "csv", Fingerprint: "abc", Rows: 2}},
	}
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()
		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.concurrency != 1 || p.continueOnError {
			t.Errorf("unexpected defaults: concurrency=%d continueOnError=%v", p.concurrency, p.continueOnError)
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()
		p := New(WithContinueOnError(true), WithConcurrency(4), WithConcurrency(0))
		if !p.continueOnError || p.concurrency != 4 {
			t.Errorf("unexpected settings: concurrency=%d continueOnError=%v", p.concurrency, p.continueOnError)
		}
	})
}

// TestPipelineExecute tests sequential execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order and records the run", func(t *testing.T) {
		t.Parallel()
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		p := New(WithLogger(quietLogger()), WithClock(func() time.Time { return at }))
		p.AddSteps(&mockStep{name: "first"}, &mockStep{name: "second"})

		res, err := p.Execute(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Outcomes) != 2 || res.Outcomes[0].Report != "first" || res.Outcomes[1].Report != "second" {
			t.Errorf("unexpected outcomes: %+v", res.Outcomes)
		}
		if res.Run.ID == "" || !res.Run.GeneratedAt.Equal(at) {
			t.Errorf("unexpected run info: %+v", res.Run)
		}
		if len(res.Run.Sources) != 1 {
			t.Errorf("expected sources to be copied, got %v", res.Run.Sources)
		}
	})

	t.Run("stops on hard failure by default", func(t *testing.T) {
		t.Parallel()
		last := &mockStep{name: "last"}
		p := New(WithLogger(quietLogger()))
		p.AddSteps(failingStep("broken", errors.New("boom")), last)

		res, err := p.Execute(context.Background(), testDataset())
		if err == nil {
			t.Fatal("expected error")
		}
		if last.callCount.Load() != 0 {
			t.Error("expected later steps to be skipped")
		}
		if len(res.Outcomes) != 1 {
			t.Errorf("expected one outcome, got %d", len(res.Outcomes))
		}
	})

	t.Run("soft failures never stop the pipeline", func(t *testing.T) {
		t.Parallel()
		last := &mockStep{name: "last"}
		p := New(WithLogger(quietLogger()))
		p.AddSteps(failingStep("soft", model.ErrNoResult), last)

		res, err := p.Execute(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if last.callCount.Load() != 1 {
			t.Error("expected the last step to run")
		}
		if len(res.Warnings()) != 1 || res.Err() != nil {
			t.Errorf("expected one warning and no error, got %v / %v", res.Warnings(), res.Err())
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()
		last := &mockStep{name: "last"}
		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(failingStep("broken", errors.New("boom")), last)

		res, err := p.Execute(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if last.callCount.Load() != 1 {
			t.Error("expected the last step to run")
		}
		if res.Err() == nil {
			t.Error("expected the failure to be kept in the result")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		step := &mockStep{name: "never"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		if _, err := p.Execute(ctx, testDataset()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount.Load() != 0 {
			t.Error("expected no step to run")
		}
	})
}

// TestPipelineParallel tests concurrent execution.
func TestPipelineParallel(t *testing.T) {
	t.Parallel()

	t.Run("keeps step order", func(t *testing.T) {
		t.Parallel()
		var steps []Step
		var want []string
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			delay := time.Duration(5-len(want)) * time.Millisecond
			steps = append(steps, &mockStep{
				name: name,
				doFunc: func(context.Context, *model.Dataset) analysis.Outcome {
					time.Sleep(delay)
					return analysis.Outcome{Report: name}
				},
			})
			want = append(want, name)
		}
		p := New(WithLogger(quietLogger()), WithConcurrency(3))
		p.AddSteps(steps...)

		res, err := p.Execute(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got []string
		for _, o := range res.Outcomes {
			got = append(got, o.Report)
		}
		if !slices.Equal(want, got) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("real reports match sequential results", func(t *testing.T) {
		t.Parallel()
		seq, err := DefaultPipeline(nil, []Option{WithLogger(quietLogger())}, WithStepLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		par, err := DefaultPipeline(nil, []Option{WithLogger(quietLogger()), WithConcurrency(6)}, WithStepLogger(quietLogger()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		a, err := seq.Execute(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := par.Execute(context.Background(), testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(a.Outcomes) != 6 || len(b.Outcomes) != 6 {
			t.Fatalf("expected 6 outcomes each, got %d and %d", len(a.Outcomes), len(b.Outcomes))
		}
		for i := range a.Outcomes {
			if a.Outcomes[i].Report != b.Outcomes[i].Report {
				t.Errorf("outcome %d: %s vs %s", i, a.Outcomes[i].Report, b.Outcomes[i].Report)
			}
			if a.Outcomes[i].Summary == nil || b.Outcomes[i].Summary == nil {
				t.Errorf("outcome %d: expected a summary, got %v / %v", i, a.Outcomes[i].Err, b.Outcomes[i].Err)
				continue
			}
			if !equalRecords(a.Outcomes[i].Summary.Records(), b.Outcomes[i].Summary.Records()) {
				t.Errorf("outcome %d: summaries differ", i)
			}
		}
	})
}

func equalRecords(a, b [][]string) bool {
	return slices.EqualFunc(a, b, func(x, y []string) bool { return slices.Equal(x, y) })
}

// TestReportStep tests that a ReportStep renders through its renderer.
func TestReportStep(t *testing.T) {
	t.Parallel()

	rec := chart.NewRecorder()
	r, ok := analysis.Lookup(analysis.NameJobTitles)
	if !ok {
		t.Fatal("report not found")
	}
	step := NewReportStep(r, WithRenderer(rec), WithParams(analysis.Params{TopN: 1}), WithStepLogger(quietLogger()))
	if step.Name() != analysis.NameJobTitles || step.Report().Name != analysis.NameJobTitles {
		t.Errorf("unexpected name %q", step.Name())
	}

	out := step.Do(context.Background(), testDataset())
	if out.Error() != nil {
		t.Fatalf("unexpected error: %v", out.Error())
	}
	if out.Summary.Len() != 1 {
		t.Errorf("expected top 1, got %d rows", out.Summary.Len())
	}
	if _, ok := rec.Get(analysis.NameJobTitles); !ok {
		t.Error("expected chart to be recorded")
	}
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	p, err := DefaultPipeline([]string{"revenue_by_company", "company_locations"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{analysis.NameCompanyLocations, analysis.NameRevenueByCompany}
	if !slices.Equal(want, p.StepNames()) {
		t.Errorf("expected %v, got %v", want, p.StepNames())
	}

	if _, err := DefaultPipeline([]string{"nope"}, nil); !errors.Is(err, analysis.ErrUnknownReport) {
		t.Errorf("expected ErrUnknownReport, got %v", err)
	}
}

func TestResult(t *testing.T) {
	t.Parallel()

	res := &Result{Outcomes: []analysis.Outcome{
		{Report: "ok", Summary: &model.Summary{Report: "ok"}},
		{Report: "soft", Err: model.ErrNoResult},
		{Report: "hard", Err: errors.New("boom")},
		{Report: "render", Summary: &model.Summary{Report: "render"}, RenderErr: errors.New("no ink")},
	}}

	if got := len(res.Summaries()); got != 2 {
		t.Errorf("expected 2 summaries, got %d", got)
	}
	if o, ok := res.Outcome("soft"); !ok || !o.NoResult() {
		t.Error("expected soft outcome")
	}
	if _, ok := res.Outcome("missing"); ok {
		t.Error("expected no outcome")
	}
	err := res.Err()
	if err == nil || !containsAll(err.Error(), "boom", "no ink") {
		t.Errorf("expected both hard failures, got %v", err)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// TestBatchProcessor tests running one pipeline per dataset.
func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	factory := func() *Pipeline {
		p, err := DefaultPipeline([]string{analysis.NameRevenueByCompany}, []Option{WithLogger(quietLogger())},
			WithStepLogger(quietLogger()))
		if err != nil {
			panic(err)
		}
		return p
	}

	before := testDataset()
	after := testDataset()
	after.Companies.Rows = append(after.Companies.Rows,
		model.Company{Name: "C", Revenue: model.ParseRevenue("50")})

	bp := NewBatchProcessor(factory, WithBatchLogger(quietLogger()), WithBatchConcurrency(2))
	results, err := bp.ProcessBatch(context.Background(), []*model.Dataset{before, after})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if got := results[0].Outcomes[0].Summary.Len(); got != 2 {
		t.Errorf("expected 2 rows before, got %d", got)
	}
	if got := results[1].Outcomes[0].Summary.Len(); got != 3 {
		t.Errorf("expected 3 rows after, got %d", got)
	}
	if results[0].Run.ID == results[1].Run.ID {
		t.Error("expected distinct run IDs")
	}

	t.Run("pipeline error is returned", func(t *testing.T) {
		t.Parallel()
		broken := func() *Pipeline {
			p := New(WithLogger(quietLogger()))
			p.AddStep(failingStep("broken", errors.New("boom")))
			return p
		}
		bp := NewBatchProcessor(broken, WithBatchLogger(quietLogger()))
		if _, err := bp.ProcessBatch(context.Background(), []*model.Dataset{testDataset()}); err == nil {
			t.Error("expected error")
		}
	})
}
