package diffusion

import (
	"errors"
	"fmt"
	"testing"
)

func TestStageErrorUnwrap(t *testing.T) {
	err := Wrap(StageTrain, fmt.Errorf("%w: 3 rows, 4 labels", ErrTraining))
	if !errors.Is(err, ErrTraining) {
		t.Fatalf("expected ErrTraining in chain, got %v", err)
	}

	var se *StageError
	if !errors.As(err, &se) {
		t.Fatal("expected StageError")
	}
	if se.Stage != StageTrain {
		t.Errorf("expected stage %s, got %s", StageTrain, se.Stage)
	}
}

func TestWrapKeepsInnerStage(t *testing.T) {
	inner := ConfigError("ratio_tT", "must lie in (0,1), got %v", 1.5)
	err := Wrap(StageBuild, inner)

	var se *StageError
	if !errors.As(err, &se) {
		t.Fatal("expected StageError")
	}
	if se.Stage != StageConfig || se.Param != "ratio_tT" {
		t.Errorf("unexpected stage error %+v", se)
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Error("expected ErrConfiguration in chain")
	}
	if Wrap(StageBuild, nil) != nil {
		t.Error("wrapping nil should stay nil")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"regression", Regression, false},
		{"discrimination", Discrimination, false},
		{"anomaly", Anomaly, false},
		{"clustering", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTrajectoryIncrements(t *testing.T) {
	traj := Trajectory{0, 1, 3, 2}
	inc := traj.Increments()
	want := []float64{1, 2, -1}
	if len(inc) != len(want) {
		t.Fatalf("expected %d increments, got %d", len(want), len(inc))
	}
	for i := range want {
		if inc[i] != want[i] {
			t.Errorf("increment %d: want %v, got %v", i, want[i], inc[i])
		}
	}
	if (Trajectory{0}).Increments() != nil {
		t.Error("single position has no increments")
	}
}
