package chart

import (
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// palettes are sampled colour stops of the matplotlib colour maps.
var palettes = map[string][]drawing.Color{
	"viridis": hexColors("440154", "482878", "3e4989", "31688e", "26828e", "1f9e89", "35b779", "6ece58", "b5de2b", "fde725"),
	"magma":   hexColors("000004", "180f3d", "440f76", "721f81", "9e2f7f", "cd4071", "f1605d", "fd9668", "feca8d", "fcfdbf"),
}

// seriesColors are used for line series in order.
var seriesColors = hexColors("1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd")

func hexColors(hex ...string) []drawing.Color {
	out := make([]drawing.Color, len(hex))
	for i, h := range hex {
		out[i] = drawing.ColorFromHex(h)
	}
	return out
}

// paletteColors picks n evenly spaced colours from the named palette, skipping
// the darkest and lightest stops the way seaborn does.
func paletteColors(name string, n int) []drawing.Color {
	stops, ok := palettes[name]
	if !ok || n <= 0 {
		out := make([]drawing.Color, n)
		for i := range out {
			out[i] = seriesColors[0]
		}
		return out
	}

	inner := stops[1 : len(stops)-1]
	out := make([]drawing.Color, n)
	for i := range out {
		idx := 0
		if n > 1 {
			idx = i * (len(inner) - 1) / (n - 1)
		}
		out[i] = inner[idx]
	}
	return out
}

func seriesColor(i int) drawing.Color {
	return seriesColors[i%len(seriesColors)]
}
