// Package backend defines the contract between the training loop and a
// compute backend.
//
// A backend owns a prebuilt computation graph, builds batch tensors from raw
// values and creates trainers: one per (graph, output, optimizer) binding.
// Trainers execute single optimization steps and keep rolling loss and
// evaluation averages that the training loop reads at epoch boundaries.
//
// Gradient computation, tensor layout and device placement are entirely the
// backend's business.
package backend

import (
	"github.com/born-ml/batchfit/internal/tensor"
)

// InputHandle identifies a named graph input.
type InputHandle interface {
	Name() string
}

// OutputHandle identifies a graph output (one per model head).
type OutputHandle interface {
	Name() string
}

// Graph is a prebuilt computation graph.
type Graph interface {
	// Input resolves a named input. It fails with ErrInputNotFound when no
	// input has that name and ErrAmbiguousInput when several do.
	Input(name string) (InputHandle, error)

	// Output resolves the single graph output. It fails with
	// ErrOutputNotFound when there is none and ErrAmbiguousOutput when the
	// graph has several heads.
	Output() (OutputHandle, error)

	// Outputs returns every head, in head order.
	Outputs() []OutputHandle
}

// TrainerConfig binds one trainer to a graph input/output pair.
type TrainerConfig struct {
	Graph     Graph
	Input     InputHandle
	Output    OutputHandle
	Loss      Loss
	Eval      Metric
	Optimizer OptimizerConfig
}

// Backend creates tensors and trainers.
type Backend interface {
	tensor.Factory

	// NewTrainer creates a trainer for the given binding.
	NewTrainer(cfg TrainerConfig) (Trainer, error)
}

// Trainer runs optimization steps for one output head.
type Trainer interface {
	// TrainStep executes one optimization step over a batch and folds the
	// batch loss and evaluation into the rolling averages.
	TrainStep(features, labels tensor.Tensor) error

	// EvalStep folds the loss and evaluation of a batch into the rolling
	// averages without updating parameters.
	EvalStep(features, labels tensor.Tensor) error

	// ResetAverages clears the rolling averages.
	ResetAverages()

	// LossAverage returns the loss averaged over the examples seen since
	// the last reset.
	LossAverage() float64

	// EvalAverage returns the evaluation metric averaged over the examples
	// seen since the last reset.
	EvalAverage() float64

	// LearningRate returns the current constant learning rate.
	LearningRate() float64

	// SetLearningRate replaces the learning-rate schedule with a constant
	// rate.
	SetLearningRate(rate float64) error
}
