package train

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/pipeline"
)

// MultiHeadConfig configures a MultiHeadDriver. Losses, Evals and
// Optimizers hold one entry per graph output, in head order.
type MultiHeadConfig struct {
	Backend    backend.Backend
	Graph      backend.Graph
	Input      string
	Losses     []backend.Loss
	Evals      []backend.Metric
	Optimizers []backend.OptimizerConfig
	Logger     *slog.Logger
}

// MultiHeadFitOptions controls one MultiHeadDriver.Fit call. Vectors passed
// to and returned from the callbacks have exactly one entry per head.
type MultiHeadFitOptions struct {
	Epochs           int
	ActionPerEpoch   func(epoch int, loss, eval []float64) bool
	LearningRateRule VectorRule
}

// MultiHeadDriver trains N independent trainers, one per output head, that
// share the input feed and the epoch counter.
//
// For every batch head 0 steps first, then head 1, and so on.
type MultiHeadDriver struct {
	loop *loop
}

// NewMultiHeadDriver validates that the per-head definitions match the
// graph's head count and creates one trainer per head.
func NewMultiHeadDriver(cfg MultiHeadConfig) (*MultiHeadDriver, error) {
	if cfg.Backend == nil || cfg.Graph == nil {
		return nil, ErrMissingBackend
	}

	outputs := cfg.Graph.Outputs()
	heads := len(outputs)
	if heads == 0 {
		return nil, fmt.Errorf("bind outputs: %w", backend.ErrOutputNotFound)
	}
	if len(cfg.Losses) != heads || len(cfg.Evals) != heads || len(cfg.Optimizers) != heads {
		return nil, fmt.Errorf("%w: graph has %d outputs, got %d losses, %d evals, %d optimizers",
			ErrHeadMismatch, heads, len(cfg.Losses), len(cfg.Evals), len(cfg.Optimizers))
	}

	input, err := cfg.Graph.Input(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("bind input: %w", err)
	}

	trainers := make([]backend.Trainer, heads)
	for h, output := range outputs {
		trainer, err := cfg.Backend.NewTrainer(backend.TrainerConfig{
			Graph:     cfg.Graph,
			Input:     input,
			Output:    output,
			Loss:      cfg.Losses[h],
			Eval:      cfg.Evals[h],
			Optimizer: cfg.Optimizers[h],
		})
		if err != nil {
			return nil, fmt.Errorf("create trainer for head %d (%s): %w", h, output.Name(), err)
		}
		trainers[h] = trainer
	}

	return &MultiHeadDriver{loop: newLoop(trainers, outputs, cfg.Logger)}, nil
}

// Heads returns the number of output heads.
func (d *MultiHeadDriver) Heads() int {
	return len(d.loop.trainers)
}

// Fit trains every head over the batches handed out by selector and returns
// one FitResult per head. All heads share the epoch count and the stop
// decision.
func (d *MultiHeadDriver) Fit(selector pipeline.Selector, opts MultiHeadFitOptions) ([]FitResult, error) {
	var rule vectorRule
	if opts.LearningRateRule != nil {
		rule = func(epoch int, rates []float64) ([]float64, error) {
			return opts.LearningRateRule(epoch, rates), nil
		}
	}
	return d.loop.fit(selector, opts.Epochs, opts.ActionPerEpoch, rule)
}

// Evaluate computes per-head averages over seq without updating any head.
func (d *MultiHeadDriver) Evaluate(seq pipeline.Sequence) ([]EvalResult, error) {
	return d.loop.evaluate(seq)
}

// LearningRates returns a copy of the per-head rates.
func (d *MultiHeadDriver) LearningRates() []float64 {
	return append([]float64(nil), d.loop.rates...)
}
