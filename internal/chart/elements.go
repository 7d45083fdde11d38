package chart

import (
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var labelColor = drawing.ColorFromHex("333333")

// xLabel draws text centred under the canvas, offset pixels below it.
func xLabel(text string, offset int) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
		if text == "" {
			return
		}
		style := gochart.Style{FontSize: labelFontSize, FontColor: labelColor}.InheritFrom(defaults)
		style.GetTextOptions().WriteToRenderer(r)
		defer r.ResetStyle()

		box := r.MeasureText(text)
		x := canvas.Left + (canvas.Width()-box.Width())/2
		r.Text(text, x, canvas.Bottom+offset)
	}
}

// yLabel draws text rotated along the left edge of the canvas.
func yLabel(text string) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
		if text == "" {
			return
		}
		style := gochart.Style{FontSize: labelFontSize, FontColor: labelColor}.InheritFrom(defaults)
		style.GetTextOptions().WriteToRenderer(r)
		defer r.ResetStyle()

		box := r.MeasureText(text)
		x := canvas.Left - 30
		if x < box.Height() {
			x = box.Height()
		}
		y := canvas.Top + (canvas.Height()+box.Width())/2

		r.SetTextRotation(gochart.DegreesToRadians(270))
		r.Text(text, x, y)
		r.ClearTextRotation()
	}
}

// legendTitle draws the legend heading just above the plot area, where
// gochart.Legend places the legend box.
func legendTitle(text string) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
		style := gochart.Style{FontSize: 11, FontColor: labelColor}.InheritFrom(defaults)
		style.GetTextOptions().WriteToRenderer(r)
		defer r.ResetStyle()

		r.Text(text, canvas.Left+5, canvas.Top-6)
	}
}
