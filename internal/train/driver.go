// Package train drives multi-epoch training of a compute backend over a
// sequence of minibatches.
//
// Driver trains a single-output model; MultiHeadDriver coordinates one
// independent trainer per output head under a shared epoch counter. Both
// accept a pipeline.Selector, so the same loop serves fixed batch sets and
// per-epoch reshuffled ones.
//
// Example:
//
//	drv, err := train.NewDriver(train.Config{
//	    Backend:   b,
//	    Graph:     g,
//	    Input:     "features",
//	    Loss:      backend.MSE,
//	    Eval:      backend.MeanAbsoluteError,
//	    Optimizer: backend.OptimizerConfig{Algorithm: backend.Adam, LearningRate: 0.01},
//	})
//	sel, err := pipeline.Regenerate(examples, 32, data.NewFlatBuilder[float32](b), pipeline.SeedOf(1))
//	res, err := drv.Fit(sel, train.FitOptions{Epochs: 20})
package train

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/pipeline"
)

// Config configures a single-output Driver.
type Config struct {
	Backend   backend.Backend
	Graph     backend.Graph
	Input     string // Name of the graph input fed with batch features
	Loss      backend.Loss
	Eval      backend.Metric
	Optimizer backend.OptimizerConfig
	Logger    *slog.Logger // Optional; nil discards logs
}

// FitOptions controls one Fit call.
type FitOptions struct {
	// Epochs is the number of epochs to run. Must be > 0.
	Epochs int

	// ActionPerEpoch is called after every completed epoch. Returning true
	// stops training after that epoch.
	ActionPerEpoch func(epoch int, loss, eval float64) bool

	// LearningRateRule, when set, computes the rate of the next epoch.
	LearningRateRule Rule
}

// Driver runs the training loop for a single-output model.
type Driver struct {
	loop *loop
}

// NewDriver binds the configured input and the graph's single output and
// creates the trainer.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.Backend == nil || cfg.Graph == nil {
		return nil, ErrMissingBackend
	}

	input, err := cfg.Graph.Input(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("bind input: %w", err)
	}
	output, err := cfg.Graph.Output()
	if err != nil {
		return nil, fmt.Errorf("bind output: %w", err)
	}

	trainer, err := cfg.Backend.NewTrainer(backend.TrainerConfig{
		Graph:     cfg.Graph,
		Input:     input,
		Output:    output,
		Loss:      cfg.Loss,
		Eval:      cfg.Eval,
		Optimizer: cfg.Optimizer,
	})
	if err != nil {
		return nil, fmt.Errorf("create trainer: %w", err)
	}

	return &Driver{
		loop: newLoop([]backend.Trainer{trainer}, []backend.OutputHandle{output}, cfg.Logger),
	}, nil
}

// Fit trains for opts.Epochs epochs over the batches handed out by
// selector, or fewer if ActionPerEpoch asks to stop.
//
// The first error from the selector, a batch or the backend aborts Fit;
// statistics of the aborted epoch are discarded.
func (d *Driver) Fit(selector pipeline.Selector, opts FitOptions) (*FitResult, error) {
	var action vectorAction
	if opts.ActionPerEpoch != nil {
		action = func(epoch int, loss, eval []float64) bool {
			return opts.ActionPerEpoch(epoch, loss[0], eval[0])
		}
	}

	var rule vectorRule
	if opts.LearningRateRule != nil {
		rule = func(epoch int, rates []float64) ([]float64, error) {
			return []float64{opts.LearningRateRule(epoch, rates[0])}, nil
		}
	}

	results, err := d.loop.fit(selector, opts.Epochs, action, rule)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// Evaluate computes the loss and evaluation averages over seq without
// updating the model.
func (d *Driver) Evaluate(seq pipeline.Sequence) (*EvalResult, error) {
	results, err := d.loop.evaluate(seq)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// LearningRate returns the rate the driver currently tracks.
func (d *Driver) LearningRate() float64 {
	return d.loop.rates[0]
}

// Trainer returns the underlying backend trainer.
func (d *Driver) Trainer() backend.Trainer {
	return d.loop.trainers[0]
}
