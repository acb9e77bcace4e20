package report

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/anombench/internal/evaluate"
)

const HistogramFile = "error_histogram.png"

// WriteHistogramChart saves the error histogram as a bar chart in dir and
// returns the file path.
func WriteHistogramChart(dir string, res *evaluate.Result) (string, error) {
	if len(res.Histogram) == 0 {
		return "", fmt.Errorf("report: no histogram to plot")
	}

	p := plot.New()
	p.Title.Text = "Absolute error distribution"
	p.X.Label.Text = "|prediction - truth|"
	p.Y.Label.Text = "fraction of test samples"

	bars, err := plotter.NewBarChart(plotter.Values(res.Histogram), vg.Points(24))
	if err != nil {
		return "", err
	}
	bars.Color = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Add(plotter.NewGrid())
	p.NominalX(binLabels(res)...)
	p.Y.Min = 0

	path := filepath.Join(dir, HistogramFile)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", err
	}
	return path, nil
}

func binLabels(res *evaluate.Result) []string {
	labels := make([]string, len(res.Histogram))
	for i := range labels {
		if i+1 < len(res.BinEdges) {
			labels[i] = fmt.Sprintf("%.2g-%.2g", res.BinEdges[i], res.BinEdges[i+1])
		} else {
			labels[i] = fmt.Sprintf("bin %d", i)
		}
	}
	return labels
}
