// Package diffusion provides the core primitives shared by the benchmark
// pipeline.
//
// The package defines the fundamental types passed between stages:
//
//   - [Trajectory]: positions of one simulated particle
//   - [Generator]: simulator for one physical diffusion model
//   - [Mode]: the learning task of a run
//   - [StageError]: an error annotated with the pipeline stage that raised it
//
// # Error taxonomy
//
// Every error surfaced by the pipeline wraps exactly one of
// [ErrConfiguration], [ErrInvalidTrajectory], [ErrTraining] or
// [ErrEvaluation], so callers can dispatch with errors.Is.
package diffusion
