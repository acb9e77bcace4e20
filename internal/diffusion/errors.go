package diffusion

import (
	"errors"
	"fmt"
)

// Domain errors for pipeline stages.
var (
	// ErrConfiguration indicates an invalid parameter combination, detected
	// before any trajectory is generated.
	ErrConfiguration = errors.New("diffusion: invalid configuration")

	// ErrInvalidTrajectory indicates an empty, too short or non-finite
	// trajectory reaching the feature extractor.
	ErrInvalidTrajectory = errors.New("diffusion: invalid trajectory")

	// ErrTraining indicates shape or label problems reaching the trainer.
	ErrTraining = errors.New("diffusion: training failure")

	// ErrEvaluation indicates a prediction or decoding failure at test time.
	ErrEvaluation = errors.New("diffusion: evaluation failure")
)

// Pipeline stage names used in StageError.
const (
	StageConfig   = "config"
	StageBuild    = "build"
	StageTrain    = "train"
	StageEvaluate = "evaluate"
	StageReport   = "report"
)

// StageError wraps an error with the stage and parameter it relates to.
type StageError struct {
	Stage   string
	Param   string
	Wrapped error
}

func (e *StageError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Wrapped)
	}
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Param, e.Wrapped)
}

func (e *StageError) Unwrap() error {
	return e.Wrapped
}

// Wrap annotates err with a stage. A nil err stays nil and an existing
// StageError is returned unchanged.
func Wrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Wrapped: err}
}

// ConfigError builds a configuration error naming the offending parameter.
func ConfigError(param, format string, args ...any) error {
	return &StageError{
		Stage:   StageConfig,
		Param:   param,
		Wrapped: fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...)),
	}
}
