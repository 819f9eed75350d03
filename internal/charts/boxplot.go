package charts

import (
	"fmt"
	"io"

	"github.com/spacesedan/sentidash/internal/models"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

const boxSlot = 110

// BoxPlot draws confidence quartiles per label. Confidence lives in [0,1] so
// the y axis is fixed.
func BoxPlot(w io.Writer, groups []models.LabelValues) error {
	if len(groups) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Confidence by label"
	p.Y.Label.Text = "confidence"

	names := make([]string, len(groups))
	for i, g := range groups {
		if len(g.Values) == 0 {
			return fmt.Errorf("%w: label %q has no values", ErrNoData, g.Label)
		}
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(g.Values))
		if err != nil {
			return fmt.Errorf("box for %q: %w", g.Label, err)
		}
		box.FillColor = drawing.ColorFromHex(ColorFor(g.Label)).WithAlpha(160)
		p.Add(box)
		names[i] = fmt.Sprintf("%s (n=%d)", g.Label, len(g.Values))
	}
	p.NominalX(names...)
	p.Add(plotter.NewGrid())
	p.Y.Min, p.Y.Max = 0, 1

	c := vgsvg.New(vg.Points(float64(max(width, 80+boxSlot*len(groups)))), vg.Points(height))
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write box plot: %w", err)
	}
	return nil
}
