package render

import (
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type legendItem struct {
	label string
	color drawing.Color
}

const (
	legendPadding  = 8
	legendSwatch   = 5 // dot radius
	legendGap      = 8
	legendFontSize = 10
)

// legendElement draws a boxed list of colored time labels in the top-left
// corner of the plot area.
func legendElement(title string, items []legendItem) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		text := chart.Style{
			Font:      defaults.GetFont(),
			FontSize:  legendFontSize,
			FontColor: drawing.ColorBlack,
		}
		text.WriteToRenderer(r)

		titleBox := r.MeasureText(title)
		lineHeight := titleBox.Height() + 4
		width := titleBox.Width()
		for _, it := range items {
			if w := r.MeasureText(it.label).Width() + 2*legendSwatch + legendGap; w > width {
				width = w
			}
		}

		box := chart.Box{
			Top:  canvasBox.Top + legendPadding,
			Left: canvasBox.Left + legendPadding,
		}
		box.Right = box.Left + width + 2*legendPadding
		box.Bottom = box.Top + (len(items)+1)*lineHeight + 2*legendPadding

		chart.Draw.Box(r, box, chart.Style{
			FillColor:   drawing.ColorWhite.WithAlpha(220),
			StrokeColor: drawing.ColorBlack,
			StrokeWidth: 1,
		})

		text.WriteToRenderer(r)
		x := box.Left + legendPadding
		y := box.Top + legendPadding + titleBox.Height()
		r.Text(title, x, y)

		for _, it := range items {
			y += lineHeight
			chart.Style{FillColor: it.color, StrokeColor: it.color, StrokeWidth: 1}.WriteToRenderer(r)
			r.Circle(legendSwatch, x+legendSwatch, y-titleBox.Height()/2)
			r.FillStroke()

			text.WriteToRenderer(r)
			r.Text(it.label, x+2*legendSwatch+legendGap, y)
		}
	}
}
