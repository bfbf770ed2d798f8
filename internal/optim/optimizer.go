// Package optim implements the parameter update rules used by the reference
// CPU backend.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Parameters are flat float64 slices paired with gradients of the same
// length, so any dense storage (e.g. gonum matrices) can be optimized in
// place.
//
// Example usage:
//
//	optimizer := optim.NewAdam(params, optim.AdamConfig{LR: 0.001})
//
//	for _, batch := range batches {
//	    computeGradients(params, batch)
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import "fmt"

// Param is one trainable parameter buffer and its gradient.
type Param struct {
	Name  string    // Parameter name (e.g., "head.weight")
	Value []float64 // Updated in place by Step
	Grad  []float64 // Same length as Value
}

// NewParam creates a parameter over value with a zeroed gradient buffer.
func NewParam(name string, value []float64) *Param {
	return &Param{Name: name, Value: value, Grad: make([]float64, len(value))}
}

// ZeroGrad clears the gradient buffer.
func (p *Param) ZeroGrad() {
	clear(p.Grad)
}

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR/SetLR: Read and replace the learning rate between steps
type Optimizer interface {
	// Step applies the current gradients to all parameters.
	Step()

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR replaces the learning rate.
	SetLR(lr float64)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// validate checks that every parameter has a gradient of matching length.
func validate(params []*Param) error {
	for i, p := range params {
		if p == nil {
			return fmt.Errorf("optim: parameter %d is nil", i)
		}
		if len(p.Grad) != len(p.Value) {
			return fmt.Errorf("optim: parameter %q has %d values but %d gradients", p.Name, len(p.Value), len(p.Grad))
		}
	}
	return nil
}
