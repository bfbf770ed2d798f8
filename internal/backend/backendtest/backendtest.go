// Package backendtest provides a recording in-memory backend for tests of
// the training loop.
package backendtest

import (
	"fmt"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/tensor"
)

type handle string

func (h handle) Name() string { return string(h) }

// Graph is a graph made of named inputs and outputs only.
type Graph struct {
	inputs  []string
	outputs []string
}

// NewGraph creates a graph. Input names may repeat to model ambiguity.
func NewGraph(inputs []string, outputs ...string) *Graph {
	return &Graph{inputs: inputs, outputs: outputs}
}

// Input implements backend.Graph.
func (g *Graph) Input(name string) (backend.InputHandle, error) {
	count := 0
	for _, in := range g.inputs {
		if in == name {
			count++
		}
	}
	switch count {
	case 0:
		return nil, &backend.BindingError{Name: name, Err: backend.ErrInputNotFound}
	case 1:
		return handle(name), nil
	default:
		return nil, &backend.BindingError{Name: name, Count: count, Err: backend.ErrAmbiguousInput}
	}
}

// Output implements backend.Graph.
func (g *Graph) Output() (backend.OutputHandle, error) {
	switch len(g.outputs) {
	case 0:
		return nil, backend.ErrOutputNotFound
	case 1:
		return handle(g.outputs[0]), nil
	default:
		return nil, backend.ErrAmbiguousOutput
	}
}

// Outputs implements backend.Graph.
func (g *Graph) Outputs() []backend.OutputHandle {
	out := make([]backend.OutputHandle, len(g.outputs))
	for i, name := range g.outputs {
		out[i] = handle(name)
	}
	return out
}

// Step records one TrainStep or EvalStep call.
type Step struct {
	Output   string
	Features tensor.Tensor
	Labels   tensor.Tensor
	Train    bool
}

// Backend records every trainer it creates and every step they run, in
// global call order.
type Backend struct {
	tensor.Host

	Trainers []*Trainer
	Steps    []Step

	// LossFn returns the loss reported for the n-th (1-based) step of a
	// trainer. Defaults to 1/n.
	LossFn func(t *Trainer, n int) float64

	// FailAt makes the n-th (1-based) step across all trainers fail with
	// Err. Zero disables it.
	FailAt int
	Err    error

	// NewTrainerErr is returned from NewTrainer when set.
	NewTrainerErr error
}

// New creates a recording backend.
func New() *Backend {
	return &Backend{}
}

// NewTrainer implements backend.Backend.
func (b *Backend) NewTrainer(cfg backend.TrainerConfig) (backend.Trainer, error) {
	if b.NewTrainerErr != nil {
		return nil, b.NewTrainerErr
	}
	t := &Trainer{
		Config:  cfg,
		Index:   len(b.Trainers),
		backend: b,
		rate:    cfg.Optimizer.LearningRate,
	}
	b.Trainers = append(b.Trainers, t)
	return t, nil
}

// TrainSteps returns the number of recorded training steps.
func (b *Backend) TrainSteps() int {
	n := 0
	for _, s := range b.Steps {
		if s.Train {
			n++
		}
	}
	return n
}

// Trainer records steps and learning-rate changes.
type Trainer struct {
	Config backend.TrainerConfig
	Index  int

	// Rates lists every value passed to SetLearningRate.
	Rates []float64

	// Resets counts ResetAverages calls.
	Resets int

	// Seen counts steps run by this trainer.
	Seen int

	backend  *Backend
	rate     float64
	lossSum  float64
	evalSum  float64
	examples int
}

// TrainStep implements backend.Trainer.
func (t *Trainer) TrainStep(features, labels tensor.Tensor) error {
	return t.step(features, labels, true)
}

// EvalStep implements backend.Trainer.
func (t *Trainer) EvalStep(features, labels tensor.Tensor) error {
	return t.step(features, labels, false)
}

func (t *Trainer) step(features, labels tensor.Tensor, train bool) error {
	b := t.backend
	if b.FailAt > 0 && len(b.Steps)+1 == b.FailAt {
		return b.Err
	}
	if features.Len() != labels.Len() {
		return fmt.Errorf("%w: %d features, %d labels", tensor.ErrShapeMismatch, features.Len(), labels.Len())
	}

	b.Steps = append(b.Steps, Step{
		Output:   t.Config.Output.Name(),
		Features: features,
		Labels:   labels,
		Train:    train,
	})
	t.Seen++

	loss := 1 / float64(t.Seen)
	if b.LossFn != nil {
		loss = b.LossFn(t, t.Seen)
	}
	n := labels.Len()
	t.lossSum += loss * float64(n)
	t.evalSum += loss / 2 * float64(n)
	t.examples += n
	return nil
}

// ResetAverages implements backend.Trainer.
func (t *Trainer) ResetAverages() {
	t.Resets++
	t.lossSum, t.evalSum, t.examples = 0, 0, 0
}

// LossAverage implements backend.Trainer.
func (t *Trainer) LossAverage() float64 {
	if t.examples == 0 {
		return 0
	}
	return t.lossSum / float64(t.examples)
}

// EvalAverage implements backend.Trainer. The fake reports half the loss.
func (t *Trainer) EvalAverage() float64 {
	if t.examples == 0 {
		return 0
	}
	return t.evalSum / float64(t.examples)
}

// LearningRate implements backend.Trainer.
func (t *Trainer) LearningRate() float64 {
	return t.rate
}

// SetLearningRate implements backend.Trainer.
func (t *Trainer) SetLearningRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: %v", backend.ErrInvalidRate, rate)
	}
	t.Rates = append(t.Rates, rate)
	t.rate = rate
	return nil
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Trainer = (*Trainer)(nil)
	_ backend.Graph   = (*Graph)(nil)
)
