package dataset

import (
	"fmt"
	"strconv"

	"github.com/san-kum/anombench/internal/diffusion"
)

// FormatLabel renders a label as the shortest decimal that parses back to
// exactly the same float64.
func FormatLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseLabel decodes a label produced by FormatLabel.
func ParseLabel(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: label %q: %v", diffusion.ErrEvaluation, s, err)
	}
	return v, nil
}

// Label is the numeric label of every sample generated in bucket b.
func Label(b Bucket, mode diffusion.Mode) float64 {
	switch mode {
	case diffusion.Discrimination:
		return float64(b.Class)
	case diffusion.Anomaly:
		if b.Alpha == diffusion.NormalAlpha {
			return 0
		}
		return 1
	default:
		return b.Alpha
	}
}

// Classes names the label indices of a categorical mode; nil for regression.
func Classes(mode diffusion.Mode, processes []string) []string {
	switch mode {
	case diffusion.Discrimination:
		out := make([]string, len(processes))
		copy(out, processes)
		return out
	case diffusion.Anomaly:
		out := make([]string, len(diffusion.AnomalyClasses))
		copy(out, diffusion.AnomalyClasses)
		return out
	}
	return nil
}
