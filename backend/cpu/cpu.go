// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/born-ml/batchfit/backend"
	internalcpu "github.com/born-ml/batchfit/internal/backend/cpu"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.Backend

// Config configures a CPU backend.
type Config = internalcpu.Config

// Trainer optimizes one affine head.
type Trainer = internalcpu.Trainer

// Graph is a set of affine heads over one shared input.
type Graph = internalcpu.Graph

// GraphConfig lists the inputs and heads of a graph.
type GraphConfig = internalcpu.GraphConfig

// InputSpec declares a named graph input.
type InputSpec = internalcpu.InputSpec

// OutputSpec declares one model head.
type OutputSpec = internalcpu.OutputSpec

// ErrWidthMismatch is returned when a batch does not fit the bound head.
var ErrWidthMismatch = internalcpu.ErrWidthMismatch

// Compile-time checks.
var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Graph   = (*Graph)(nil)
)

// New creates a CPU backend with default parallelism and seed 0.
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultConfig returns hardware-sized defaults.
func DefaultConfig() Config {
	return internalcpu.DefaultConfig()
}

// NewGraph validates cfg and builds a graph.
func NewGraph(cfg GraphConfig) (*Graph, error) {
	return internalcpu.NewGraph(cfg)
}
