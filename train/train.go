// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train drives multi-epoch training of a backend over minibatches.
//
// Example:
//
//	drv, err := train.NewDriver(train.Config{
//	    Backend:   b,
//	    Graph:     g,
//	    Input:     "features",
//	    Loss:      backend.MSE,
//	    Eval:      backend.MeanAbsoluteError,
//	    Optimizer: backend.OptimizerConfig{Algorithm: backend.SGD, LearningRate: 0.01},
//	})
//	res, err := drv.Fit(selector, train.FitOptions{
//	    Epochs:           100,
//	    LearningRateRule: train.StepDecay(30, 0.1),
//	    ActionPerEpoch: func(epoch int, loss, eval float64) bool {
//	        return loss < 1e-3
//	    },
//	})
package train

import (
	"github.com/born-ml/batchfit/internal/train"
)

// Driver runs the training loop for a single-output model.
type Driver = train.Driver

// Config configures a Driver.
type Config = train.Config

// FitOptions controls one Driver.Fit call.
type FitOptions = train.FitOptions

// MultiHeadDriver trains one trainer per output head over shared batches.
type MultiHeadDriver = train.MultiHeadDriver

// MultiHeadConfig configures a MultiHeadDriver.
type MultiHeadConfig = train.MultiHeadConfig

// MultiHeadFitOptions controls one MultiHeadDriver.Fit call.
type MultiHeadFitOptions = train.MultiHeadFitOptions

// FitResult is the outcome of one training session.
type FitResult = train.FitResult

// EpochStats holds the averages of one completed epoch.
type EpochStats = train.EpochStats

// HeadStats holds one epoch of a multi-head fit.
type HeadStats = train.HeadStats

// EvalResult is the outcome of an Evaluate call.
type EvalResult = train.EvalResult

// Rule computes the learning rate of the next epoch.
type Rule = train.Rule

// VectorRule computes the learning rates of every head for the next epoch.
type VectorRule = train.VectorRule

// Errors.
var (
	ErrMissingBackend = train.ErrMissingBackend
	ErrNilSelector    = train.ErrNilSelector
	ErrInvalidEpochs  = train.ErrInvalidEpochs
	ErrHeadMismatch   = train.ErrHeadMismatch
	ErrRuleLength     = train.ErrRuleLength
)

// NewDriver binds the configured input and the graph's single output.
func NewDriver(cfg Config) (*Driver, error) {
	return train.NewDriver(cfg)
}

// NewMultiHeadDriver creates one trainer per graph output.
func NewMultiHeadDriver(cfg MultiHeadConfig) (*MultiHeadDriver, error) {
	return train.NewMultiHeadDriver(cfg)
}

// MultiHeadStats transposes per-head results into per-epoch statistics.
func MultiHeadStats(results []FitResult) []HeadStats {
	return train.MultiHeadStats(results)
}

// Learning-rate rules

// Scale multiplies the rate by factor after every epoch.
func Scale(factor float64) Rule {
	return train.Scale(factor)
}

// StepDecay multiplies the rate by factor every few epochs.
func StepDecay(every int, factor float64) Rule {
	return train.StepDecay(every, factor)
}

// ExponentialDecay sets the rate to initial·gamma^epoch.
func ExponentialDecay(initial, gamma float64) Rule {
	return train.ExponentialDecay(initial, gamma)
}

// Floor clamps rule to at least minRate.
func Floor(rule Rule, minRate float64) Rule {
	return train.Floor(rule, minRate)
}

// PerHead applies rule to every head independently.
func PerHead(rule Rule) VectorRule {
	return train.PerHead(rule)
}
