package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/fs-kitamura/factorplot/internal/stats"
)

// errPoints carries a series' points together with symmetric error
// magnitudes, satisfying both plotter.XYer and plotter.YErrorer.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Render draws the summary groups as a two-factor line chart and
// returns the SVG bytes. Layout, scaling, legend, and geometry are all
// delegated to gonum/plot; this function only maps groups onto it:
// one line per series, error bars at mean +/- half-width, and point
// markers added last so they draw on top of lines and bars.
func Render(cfg Config, groups []stats.Group) ([]byte, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no summary groups to plot")
	}

	levels := stats.XLevels(groups)
	levelIndex := make(map[string]int, len(levels))
	for i, lv := range levels {
		levelIndex[lv] = i
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	p.BackgroundColor = color.White
	p.NominalX(levels...)
	p.X.Padding = vg.Points(12)

	p.Legend.Top = true
	if cfg.LegendTitle != "" {
		p.Legend.Add(cfg.LegendTitle)
	}

	for i, name := range stats.SeriesNames(groups) {
		pts, errs := seriesPoints(groups, name, levels, levelIndex)
		c := seriesColor(i)

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: build line: %w", name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = c

		bars, err := plotter.NewYErrorBars(errPoints{XYs: pts, YErrors: errs})
		if err != nil {
			return nil, fmt.Errorf("series %s: build error bars: %w", name, err)
		}
		bars.LineStyle.Color = c
		bars.CapWidth = vg.Points(5)

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: build markers: %w", name, err)
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}

		// Markers go last so they are not occluded.
		p.Add(line, bars, scatter)
		p.Legend.Add(name, line, scatter)
	}

	canvas := vgsvg.New(cfg.Width, cfg.Height)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write svg: %w", err)
	}
	return buf.Bytes(), nil
}

// seriesPoints extracts the (x index, mean) points and half-width
// error magnitudes for one series, walking x levels in axis order so
// line segments never double back. Levels the series does not cover
// are skipped; degenerate groups contribute zero-height bars.
func seriesPoints(groups []stats.Group, series string, levels []string, levelIndex map[string]int) (plotter.XYs, plotter.YErrors) {
	byLevel := make(map[string]stats.Group)
	for _, g := range groups {
		if g.Series == series {
			byLevel[g.X] = g
		}
	}

	var pts plotter.XYs
	var errs plotter.YErrors
	for _, lv := range levels {
		g, ok := byLevel[lv]
		if !ok {
			continue
		}
		pts = append(pts, plotter.XY{
			X: float64(levelIndex[g.X]),
			Y: g.Mean,
		})
		errs = append(errs, struct{ Low, High float64 }{
			Low:  g.HalfWidth,
			High: g.HalfWidth,
		})
	}

	return pts, errs
}
