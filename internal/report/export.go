package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/anombench/internal/dataset"
	"github.com/san-kum/anombench/internal/diffusion"
	"github.com/san-kum/anombench/internal/experiment"
)

const ResultFile = "result.json"

type ExportData struct {
	Mode        string   `json:"mode"`
	Processes   []string `json:"processes"`
	Alphas      []string `json:"alpha_range"`
	TMax        int      `json:"t_max"`
	Lag         int      `json:"t_lag"`
	NumTraj     int      `json:"num_traj"`
	Seed        int64    `json:"seed"`
	TrainSize   int      `json:"train_size"`
	TestSize    int      `json:"test_size"`
	RatioAN     float64  `json:"ratio_an"`
	TrainTimeMs float64  `json:"train_time_ms"`

	Accuracy  *float64 `json:"accuracy,omitempty"`
	Classes   []string `json:"classes,omitempty"`
	Confusion [][]int  `json:"confusion,omitempty"`

	MSE       *float64  `json:"mse,omitempty"`
	MAE       *float64  `json:"mae,omitempty"`
	Histogram []float64 `json:"histogram,omitempty"`
	BinEdges  []float64 `json:"bin_edges,omitempty"`

	Predictions []Prediction `json:"predictions"`
}

// Prediction pairs a test label with the model output, both in canonical
// label text.
type Prediction struct {
	Truth     string `json:"truth"`
	Predicted string `json:"predicted"`
}

func NewExportData(out *experiment.Outcome) ExportData {
	cfg := out.Config
	res := out.Result

	data := ExportData{
		Mode:        string(res.Mode),
		Processes:   cfg.Processes,
		Alphas:      make([]string, len(cfg.Alphas)),
		TMax:        cfg.TMax,
		Lag:         cfg.Lag,
		NumTraj:     cfg.NumTraj,
		Seed:        cfg.Seed,
		TrainSize:   out.TrainSize,
		TestSize:    out.TestSize,
		RatioAN:     out.RatioAN,
		TrainTimeMs: float64(out.TrainTime.Microseconds()) / 1000,
		Predictions: make([]Prediction, len(res.Predictions)),
	}
	for i, a := range cfg.Alphas {
		data.Alphas[i] = dataset.FormatLabel(a)
	}
	for i := range res.Predictions {
		data.Predictions[i] = Prediction{
			Truth:     dataset.FormatLabel(res.Truth[i]),
			Predicted: dataset.FormatLabel(res.Predictions[i]),
		}
	}

	if res.Mode.Categorical() {
		acc := res.Accuracy
		data.Accuracy = &acc
		data.Classes = res.Classes
		data.Confusion = res.Confusion
	} else {
		mse, mae := res.MSE, res.MAE
		data.MSE, data.MAE = &mse, &mae
		data.Histogram = res.Histogram
		data.BinEdges = res.BinEdges
	}
	return data
}

func encode(w io.Writer, out *experiment.Outcome) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(out))
}

func ExportJSON(path string, out *experiment.Outcome) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return encode(file, out)
}

func ExportJSONStdout(out *experiment.Outcome) error {
	return encode(os.Stdout, out)
}

// Write stores the artifacts enabled in the run's output settings and
// returns their paths.
func Write(out *experiment.Outcome) ([]string, error) {
	o := out.Config.Output
	if !o.JSON && !(o.Chart && !out.Result.Mode.Categorical()) {
		return nil, nil
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return nil, diffusion.Wrap(diffusion.StageReport, err)
	}

	var paths []string
	if o.JSON {
		path := filepath.Join(o.Dir, ResultFile)
		if err := ExportJSON(path, out); err != nil {
			return paths, diffusion.Wrap(diffusion.StageReport, err)
		}
		paths = append(paths, path)
	}
	if o.Chart && !out.Result.Mode.Categorical() {
		path, err := WriteHistogramChart(o.Dir, out.Result)
		if err != nil {
			return paths, diffusion.Wrap(diffusion.StageReport, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
