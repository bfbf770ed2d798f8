// Package cpu implements the reference CPU backend.
//
// Each graph head is an affine map over the shared input, stored as a gonum
// matrix and trained with the optimizers of internal/optim. Sequence inputs
// are mean-pooled across steps. The backend is small on purpose: it exists
// so the training loop can be run end to end without an external engine.
package cpu

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/parallel"
	"github.com/born-ml/batchfit/internal/tensor"
)

// Config configures a CPU backend.
type Config struct {
	Seed     uint64          // Weight initialization seed
	Parallel parallel.Config // Row-level parallelism
}

// DefaultConfig returns a config with seed 0 and hardware-sized parallelism.
func DefaultConfig() Config {
	return Config{Parallel: parallel.DefaultConfig()}
}

// Backend creates host tensors and affine-head trainers.
type Backend struct {
	tensor.Host

	cfg Config

	mu       sync.Mutex
	trainers uint64
}

// New creates a CPU backend with DefaultConfig.
func New() *Backend {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a CPU backend.
func NewWithConfig(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU"
}

// NewTrainer implements backend.Backend.
//
// Trainers created by one backend draw their initial weights from
// independent streams of the same seed, in creation order.
func (b *Backend) NewTrainer(cfg backend.TrainerConfig) (backend.Trainer, error) {
	g, ok := cfg.Graph.(*Graph)
	if !ok || g == nil {
		return nil, fmt.Errorf("cpu: unsupported graph %T", cfg.Graph)
	}
	in, out, err := g.resolve(cfg.Input, cfg.Output)
	if err != nil {
		return nil, err
	}
	if lr := cfg.Optimizer.LearningRate; lr < 0 || math.IsNaN(lr) || math.IsInf(lr, 0) {
		return nil, fmt.Errorf("%w: %v", backend.ErrInvalidRate, lr)
	}

	b.mu.Lock()
	stream := b.trainers
	b.trainers++
	b.mu.Unlock()

	rng := rand.New(rand.NewPCG(b.cfg.Seed, stream))
	t, err := newTrainer(in, out, cfg, rng, b.cfg.Parallel)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Compile-time interface checks.
var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Trainer = (*Trainer)(nil)
	_ backend.Graph   = (*Graph)(nil)
)
