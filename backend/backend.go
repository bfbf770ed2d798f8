// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend defines the contract a compute backend implements to be
// driven by the training loop.
//
// The reference implementation lives in backend/cpu.
package backend

import (
	"github.com/born-ml/batchfit/internal/backend"
)

// Graph is a prebuilt computation graph with named inputs and one or more
// output heads.
type Graph = backend.Graph

// InputHandle identifies a named graph input.
type InputHandle = backend.InputHandle

// OutputHandle identifies a graph output.
type OutputHandle = backend.OutputHandle

// Backend creates batch tensors and trainers.
type Backend = backend.Backend

// Trainer runs optimization steps for one output head.
type Trainer = backend.Trainer

// TrainerConfig binds one trainer to a graph input/output pair.
type TrainerConfig = backend.TrainerConfig

// BindingError reports a failure to resolve a named graph input.
type BindingError = backend.BindingError

// Loss selects the training objective.
type Loss = backend.Loss

// Metric selects the evaluation reported next to the loss.
type Metric = backend.Metric

// Algorithm selects the optimizer update rule.
type Algorithm = backend.Algorithm

// OptimizerConfig describes the optimizer of one trainer.
type OptimizerConfig = backend.OptimizerConfig

// Losses.
const (
	MSE          = backend.MSE
	CrossEntropy = backend.CrossEntropy
)

// Metrics.
const (
	MeanSquaredError    = backend.MeanSquaredError
	MeanAbsoluteError   = backend.MeanAbsoluteError
	ClassificationError = backend.ClassificationError
)

// Optimizers.
const (
	SGD  = backend.SGD
	Adam = backend.Adam
)

// Errors.
var (
	ErrInputNotFound   = backend.ErrInputNotFound
	ErrAmbiguousInput  = backend.ErrAmbiguousInput
	ErrOutputNotFound  = backend.ErrOutputNotFound
	ErrAmbiguousOutput = backend.ErrAmbiguousOutput
	ErrUnboundHandle   = backend.ErrUnboundHandle
	ErrInvalidRate     = backend.ErrInvalidRate
)

// ParseLoss converts a loss name into a Loss.
func ParseLoss(name string) (Loss, error) {
	return backend.ParseLoss(name)
}

// ParseMetric converts a metric name into a Metric.
func ParseMetric(name string) (Metric, error) {
	return backend.ParseMetric(name)
}

// ParseAlgorithm converts an optimizer name into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	return backend.ParseAlgorithm(name)
}
