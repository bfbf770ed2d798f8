// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/batchfit/internal/tensor"
)

// Shape is the per-example shape of a batch.
type Shape = tensor.Shape

// Numeric is the constraint for example element types.
type Numeric = tensor.Numeric

// Tensor is a batch of examples handed to a backend.
type Tensor = tensor.Tensor

// Factory builds backend tensors from raw values.
type Factory = tensor.Factory

// Dense is a row-major batch of equally shaped examples.
type Dense = tensor.Dense

// Ragged is a batch of variable-length sequences.
type Ragged = tensor.Ragged

// Host is a Factory producing Dense and Ragged tensors in Go memory.
type Host = tensor.Host

// ErrShapeMismatch is returned when raw values do not fit the requested shape.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// Compile-time check that Host implements Factory.
var _ Factory = Host{}

// NewDense wraps values as a batch of examples of the given shape.
func NewDense(shape Shape, values []float32) (*Dense, error) {
	return tensor.NewDense(shape, values)
}

// NewRagged wraps sequences of steps of the given shape as a batch.
func NewRagged(step Shape, sequences [][]float32) (*Ragged, error) {
	return tensor.NewRagged(step, sequences)
}
