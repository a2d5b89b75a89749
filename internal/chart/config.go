package chart

import (
	"image/color"
	"strings"

	"gonum.org/v1/plot/vg"
)

// Config describes one chart: titles, axis text, legend heading, and
// canvas size. It carries no data; Render pairs it with summary groups.
type Config struct {
	Title       string
	XLabel      string
	YLabel      string
	LegendTitle string
	Width       vg.Length
	Height      vg.Length
}

// DefaultConfig derives a chart configuration from dataset labels:
// x = first factor, y = mean of the measurement, one line per level of
// the second factor, legend headed with the second factor's label.
func DefaultConfig(title, xLabel, seriesLabel, valueLabel string) Config {
	return Config{
		Title:       title,
		XLabel:      labelText(xLabel),
		YLabel:      "Mean " + labelText(valueLabel),
		LegendTitle: labelText(seriesLabel),
		Width:       6 * vg.Inch,
		Height:      4 * vg.Inch,
	}
}

// Series color palette.
var defaultPalette = []color.Color{
	color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF},
	color.RGBA{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	color.RGBA{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	color.RGBA{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
	color.RGBA{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	color.RGBA{R: 0x06, G: 0xB6, B: 0xD4, A: 0xFF},
	color.RGBA{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	color.RGBA{R: 0x84, G: 0xCC, B: 0x16, A: 0xFF},
}

func seriesColor(i int) color.Color {
	return defaultPalette[i%len(defaultPalette)]
}

func labelText(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
