// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the batch tensor values exchanged between batch
// builders and compute backends.
//
// # Overview
//
// A batch is always described by its per-example shape; the leading batch
// dimension is inferred from the data. This package provides:
//   - Shape: per-example dimensions
//   - Dense: equally shaped examples in one row-major buffer
//   - Ragged: variable-length sequences of fixed-width steps
//   - Factory: the interface backends implement to build batch tensors
//   - Host: a Factory keeping tensors in Go memory
//
// # Basic Usage
//
//	import "github.com/born-ml/batchfit/tensor"
//
//	func main() {
//	    var f tensor.Host
//
//	    // Two examples of width 3.
//	    x, err := f.BatchTensor(tensor.Shape{3}, []float32{1, 2, 3, 4, 5, 6})
//	    // x.Shape() == tensor.Shape{2, 3}
//
//	    // Two sequences of width-2 steps, three and one steps long.
//	    s, err := f.SequenceBatchTensor(tensor.Shape{2}, [][]float32{
//	        {1, 2, 3, 4, 5, 6},
//	        {7, 8},
//	    })
//	}
//
// # Supported Data Types
//
// Examples may hold any Numeric element type; builders convert values to
// float32, the element type of every batch tensor:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for images)
package tensor
