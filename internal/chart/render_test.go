package chart

import (
	"strings"
	"testing"

	"github.com/fs-kitamura/factorplot/internal/stats"
)

func sampleGroups() []stats.Group {
	return []stats.Group{
		{X: "4", Series: "auto", N: 3, Mean: 22.9, StdDev: 1.45, StdErr: 0.84, HalfWidth: 1.64},
		{X: "4", Series: "manual", N: 8, Mean: 28.1, StdDev: 4.2, StdErr: 1.48, HalfWidth: 2.91},
		{X: "6", Series: "auto", N: 4, Mean: 19.1, StdDev: 1.63, StdErr: 0.82, HalfWidth: 1.6},
		{X: "6", Series: "manual", N: 3, Mean: 20.6, StdDev: 0.75, StdErr: 0.43, HalfWidth: 0.85},
	}
}

func TestRender(t *testing.T) {
	cfg := DefaultConfig("Fuel economy", "cylinders", "transmission", "mpg")

	t.Run("emits an SVG document", func(t *testing.T) {
		svg, err := Render(cfg, sampleGroups())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(svg), "<svg") {
			t.Fatal("expected SVG markup in output")
		}
	})

	t.Run("labels appear in the output", func(t *testing.T) {
		svg, err := Render(cfg, sampleGroups())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := string(svg)
		for _, want := range []string{"Fuel economy", "Cylinders", "Mean Mpg", "Transmission", "auto", "manual"} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected output to contain %q", want)
			}
		}
	})

	t.Run("degenerate group renders without error", func(t *testing.T) {
		groups := append(sampleGroups(), stats.Group{
			X: "8", Series: "manual", N: 1, Mean: 15.4, Degenerate: true,
		})
		if _, err := Render(cfg, groups); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty input is an error", func(t *testing.T) {
		if _, err := Render(cfg, nil); err == nil {
			t.Fatal("expected error for empty groups")
		}
	})
}

func TestSeriesPoints(t *testing.T) {
	groups := []stats.Group{
		// First seen out of level order on purpose.
		{X: "8", Series: "manual", Mean: 15.4, HalfWidth: 1},
		{X: "4", Series: "manual", Mean: 28.1, HalfWidth: 2},
		{X: "4", Series: "auto", Mean: 22.9, HalfWidth: 3},
	}
	levels := []string{"4", "8"}
	levelIndex := map[string]int{"4": 0, "8": 1}

	pts, errs := seriesPoints(groups, "manual", levels, levelIndex)
	if len(pts) != 2 || len(errs) != 2 {
		t.Fatalf("expected 2 points, got %d points %d errors", len(pts), len(errs))
	}
	if pts[0].X != 0 || pts[0].Y != 28.1 {
		t.Fatalf("expected first point at level 4, got %+v", pts[0])
	}
	if pts[1].X != 1 || pts[1].Y != 15.4 {
		t.Fatalf("expected second point at level 8, got %+v", pts[1])
	}
	if errs[1].Low != 1 || errs[1].High != 1 {
		t.Fatalf("expected symmetric magnitudes, got %+v", errs[1])
	}
}
