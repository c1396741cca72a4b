package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestParseRevenue(t *testing.T) {
	t.Parallel()

	t.Run("currency text and plain number are equal", func(t *testing.T) {
		t.Parallel()
		a := ParseRevenue("$1,234.56")
		b := ParseRevenue("1234.56")
		if !a.Valid || !b.Valid {
			t.Fatalf("expected both values to be valid, got %v and %v", a.Valid, b.Valid)
		}
		if !a.Amount.Equal(b.Amount) {
			t.Errorf("expected %s to equal %s", a.Amount, b.Amount)
		}
	})

	t.Run("surrounding whitespace is ignored", func(t *testing.T) {
		t.Parallel()
		r := ParseRevenue("  $ 250 ")
		if !r.Valid {
			t.Fatal("expected value to be valid")
		}
		if !r.Amount.Equal(decimal.NewFromInt(250)) {
			t.Errorf("expected 250, got %s", r.Amount)
		}
	})

	invalid := []string{"", "   ", "n/a", "12abc", "-5", "$-1,000"}
	for _, raw := range invalid {
		t.Run("missing for "+raw, func(t *testing.T) {
			t.Parallel()
			if r := ParseRevenue(raw); r.Valid {
				t.Errorf("expected %q to be missing, got %s", raw, r.Amount)
			}
		})
	}
}

func TestNewRevenue(t *testing.T) {
	t.Parallel()

	if r := NewRevenue(math.NaN()); r.Valid {
		t.Error("expected NaN to be missing")
	}
	if r := NewRevenue(math.Inf(1)); r.Valid {
		t.Error("expected +Inf to be missing")
	}
	if r := NewRevenue(-1); r.Valid {
		t.Error("expected negative value to be missing")
	}
	r := NewRevenue(12.5)
	if f, ok := r.Float64(); !ok || f != 12.5 {
		t.Errorf("expected 12.5, got %v (valid=%v)", f, ok)
	}
}

func TestSumRevenue(t *testing.T) {
	t.Parallel()

	sum, n := SumRevenue([]Revenue{
		ParseRevenue("100"),
		MissingRevenue(),
		ParseRevenue("$0.10"),
		ParseRevenue("0.20"),
	})
	if n != 3 {
		t.Errorf("expected 3 valid values, got %d", n)
	}
	if got := Round2(sum); got != 100.3 {
		t.Errorf("expected 100.3, got %v", got)
	}
}

func TestPercentages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts []int64
		want   []float64
	}{
		{name: "thirds", counts: []int64{1, 1, 1}, want: []float64{33.34, 33.33, 33.33}},
		{name: "uneven", counts: []int64{3, 2, 1}, want: []float64{50, 33.33, 16.67}},
		{name: "sevenths", counts: []int64{1, 1, 1, 1, 1, 1, 1}, want: []float64{14.29, 14.29, 14.29, 14.29, 14.28, 14.28, 14.28}},
		{name: "largest remainder wins", counts: []int64{1, 2}, want: []float64{33.33, 66.67}},
		{name: "zero total", counts: []int64{0, 0}, want: []float64{0, 0}},
		{name: "empty", counts: nil, want: []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Percentages(tt.counts)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Percentages(%v) mismatch (-want +got):\n%s", tt.counts, diff)
			}
			var hundredths float64
			for _, p := range got {
				hundredths += math.Round(p * 100)
			}
			if len(got) > 0 && tt.counts[0] > 0 && hundredths != 10000 {
				t.Errorf("expected shares to add up to 100.00, got %g", hundredths/100)
			}
		})
	}
}

func TestRevenueMarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		A Revenue `json:"a"`
		B Revenue `json:"b"`
	}{A: ParseRevenue("1,000"), B: MissingRevenue()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"a":1000,"b":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestMissingColumnError(t *testing.T) {
	t.Parallel()

	table := CompanyTable{Columns: []string{ColumnCompanyName}}
	err := table.RequireColumns("Revenue_by_Company", ColumnCompanyName, ColumnRevenue)
	if err == nil {
		t.Fatal("expected error for missing Revenue column")
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected *MissingColumnError, got %T", err)
	}
	if mce.Column != ColumnRevenue || mce.Report != "Revenue_by_Company" {
		t.Errorf("unexpected error fields: %+v", mce)
	}
	if err := NewPeopleTable().RequireColumns("Unique_Job_Titles", ColumnJobTitle); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
