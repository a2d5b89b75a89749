package stats

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestSummarize(t *testing.T) {
	input := []Observation{
		{X: "4", Series: "auto", Value: 10},
		{X: "4", Series: "auto", Value: 14},
		{X: "4", Series: "manual", Value: 20},
	}

	t.Run("one row per distinct pair", func(t *testing.T) {
		groups, err := Summarize(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
	})

	t.Run("mean and count per group", func(t *testing.T) {
		groups, err := Summarize(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		auto := groups[0]
		if auto.X != "4" || auto.Series != "auto" {
			t.Fatalf("expected (4, auto) first, got (%s, %s)", auto.X, auto.Series)
		}
		if auto.N != 2 || auto.Mean != 12 {
			t.Fatalf("expected n=2 mean=12, got n=%d mean=%v", auto.N, auto.Mean)
		}

		manual := groups[1]
		if manual.N != 1 || manual.Mean != 20 {
			t.Fatalf("expected n=1 mean=20, got n=%d mean=%v", manual.N, manual.Mean)
		}
	})

	t.Run("single observation group is degenerate with zero spread", func(t *testing.T) {
		groups, err := Summarize(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		manual := groups[1]
		if !manual.Degenerate {
			t.Fatal("expected degenerate flag for n=1 group")
		}
		if manual.StdDev != 0 || manual.StdErr != 0 || manual.HalfWidth != 0 {
			t.Fatalf("expected zero spread, got sd=%v sem=%v hw=%v",
				manual.StdDev, manual.StdErr, manual.HalfWidth)
		}
	})

	t.Run("half-width is 1.96 times standard error", func(t *testing.T) {
		groups, err := Summarize(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, g := range groups {
			if g.StdErr < 0 {
				t.Fatalf("group (%s, %s): negative standard error %v", g.X, g.Series, g.StdErr)
			}
			if math.Abs(g.HalfWidth-1.96*g.StdErr) > 1e-12 {
				t.Fatalf("group (%s, %s): half-width %v != 1.96 * %v", g.X, g.Series, g.HalfWidth, g.StdErr)
			}
		}
	})

	t.Run("sample standard deviation uses n-1", func(t *testing.T) {
		groups, err := Summarize([]Observation{
			{X: "a", Series: "s", Value: 2},
			{X: "a", Series: "s", Value: 4},
			{X: "a", Series: "s", Value: 6},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(groups))
		}
		if got := groups[0].StdDev; math.Abs(got-2) > 1e-12 {
			t.Fatalf("expected stddev=2, got %v", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := Summarize(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := Summarize(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("expected identical output, got %v then %v", first, second)
		}
	})

	t.Run("empty input is an error", func(t *testing.T) {
		if _, err := Summarize(nil); !errors.Is(err, ErrNoObservations) {
			t.Fatalf("expected ErrNoObservations, got %v", err)
		}
	})

	t.Run("NaN measurement is rejected before aggregation", func(t *testing.T) {
		_, err := Summarize([]Observation{
			{X: "a", Series: "s", Value: 1},
			{X: "a", Series: "s", Value: math.NaN()},
		})
		if !errors.Is(err, ErrBadValue) {
			t.Fatalf("expected ErrBadValue, got %v", err)
		}
	})
}

func TestSeriesNamesAndXLevels(t *testing.T) {
	groups := []Group{
		{X: "4", Series: "auto"},
		{X: "4", Series: "manual"},
		{X: "6", Series: "auto"},
		{X: "8", Series: "auto"},
	}

	if names := SeriesNames(groups); !reflect.DeepEqual(names, []string{"auto", "manual"}) {
		t.Fatalf("unexpected series names: %v", names)
	}
	if levels := XLevels(groups); !reflect.DeepEqual(levels, []string{"4", "6", "8"}) {
		t.Fatalf("unexpected x levels: %v", levels)
	}
}

func TestAccumulator(t *testing.T) {
	t.Run("mean of empty accumulator is zero", func(t *testing.T) {
		var acc Accumulator
		if acc.Mean() != 0 || acc.StdDev() != 0 {
			t.Fatalf("expected zeros, got mean=%v sd=%v", acc.Mean(), acc.StdDev())
		}
	})

	t.Run("variance clamps rounding error", func(t *testing.T) {
		var acc Accumulator
		acc.Add(1e9)
		acc.Add(1e9)
		if v := acc.Variance(); v < 0 {
			t.Fatalf("expected non-negative variance, got %v", v)
		}
	})
}
