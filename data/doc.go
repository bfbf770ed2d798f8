// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data turns in-memory training examples into minibatches.
//
// # Overview
//
// Examples are grouped into segments of the batch size (the last segment
// holds the remainder) and each segment is converted by a Builder into one
// Batch of backend tensors:
//   - Flat: fixed-width features and labels
//   - Sequence: variable-length series of fixed-width steps
//   - Matrix: 2-D features with one implicit channel
//   - MultiHead: one label vector per model output head
//
// Batches are produced in two modes:
//   - Stream: lazily, one segment at a time, in dataset order
//   - Regenerate: the dataset is reshuffled in place at every epoch and the
//     whole epoch is built eagerly
//
// # Basic Usage
//
//	examples := []data.Flat[float32]{
//	    {Features: []float32{0.1, 0.2}, Labels: []float32{1}},
//	    {Features: []float32{0.3, 0.4}, Labels: []float32{0}},
//	}
//	seq, err := data.Stream(examples, 32, data.NewFlatBuilder[float32](backend))
//	for batch, err := range seq {
//	    // batch.Features, batch.Label()
//	}
package data
