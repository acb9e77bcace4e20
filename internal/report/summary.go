// Package report renders and persists the outcome of a run.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/anombench/internal/dataset"
	"github.com/san-kum/anombench/internal/evaluate"
	"github.com/san-kum/anombench/internal/experiment"
)

func metric(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-12s", label)) + " " + MetricValue.Render(value)
}

// Summary renders a styled text report.
func Summary(out *experiment.Outcome) string {
	cfg := out.Config
	res := out.Result

	var b strings.Builder
	b.WriteString(Title.Render("anombench "+string(res.Mode)) + "\n\n")
	b.WriteString(metric("processes", strings.Join(cfg.Processes, ", ")) + "\n")
	b.WriteString(metric("alphas", formatLabels(cfg.Alphas)) + "\n")
	b.WriteString(metric("t_max", fmt.Sprintf("%d (lag %d)", cfg.TMax, cfg.Lag)) + "\n")
	b.WriteString(metric("samples", fmt.Sprintf("%d train / %d test", out.TrainSize, out.TestSize)) + "\n")
	b.WriteString(metric("features", fmt.Sprintf("%d", out.FeatureLen)) + "\n")
	b.WriteString(metric("ratio_aN", fmt.Sprintf("%.3f", out.RatioAN)) + "\n")
	b.WriteString(metric("train time", out.TrainTime.String()) + "\n\n")

	if res.Mode.Categorical() {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-12s", "accuracy")) + " " +
			grade(res.Accuracy).Bold(true).Render(fmt.Sprintf("%.4f", res.Accuracy)) + "\n\n")
		b.WriteString(ConfusionTable(res))
	} else {
		b.WriteString(metric("mse", fmt.Sprintf("%.6f", res.MSE)) + "\n")
		b.WriteString(metric("mae", fmt.Sprintf("%.6f", res.MAE)) + "\n\n")
		b.WriteString(HistogramGraph(res) + "\n")
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func formatLabels(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = dataset.FormatLabel(v)
	}
	return strings.Join(parts, " ")
}

// ConfusionTable lays out the confusion matrix with truth as rows.
func ConfusionTable(res *evaluate.Result) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(w, "truth \\ pred\t")
	for _, c := range res.Classes {
		fmt.Fprintf(w, "%s\t", c)
	}
	fmt.Fprintln(w)
	for i, row := range res.Confusion {
		fmt.Fprintf(w, "%s\t", res.Classes[i])
		for _, n := range row {
			fmt.Fprintf(w, "%d\t", n)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return b.String()
}

// HistogramGraph plots the error mass per bin in the terminal.
func HistogramGraph(res *evaluate.Result) string {
	data := res.Histogram
	if len(data) == 0 {
		return Subtle.Render("no error histogram")
	}
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	caption := "absolute error mass"
	if n := len(res.BinEdges); n > 1 {
		caption = fmt.Sprintf("absolute error mass over [%.3g, %.3g], %d bins", res.BinEdges[0], res.BinEdges[n-1], len(res.Histogram))
	}
	return asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(48),
		asciigraph.Caption(caption),
	)
}
