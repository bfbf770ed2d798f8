// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"iter"

	"github.com/born-ml/batchfit/internal/data"
	"github.com/born-ml/batchfit/internal/pipeline"
	"github.com/born-ml/batchfit/internal/segment"
	"github.com/born-ml/batchfit/tensor"
	"github.com/born-ml/batchfit/tokenizer"
)

// Examples

// Flat is a fixed-width feature vector paired with a fixed-width label vector.
type Flat[T tensor.Numeric] = data.Flat[T]

// Sequence is one variable-length time series of fixed-width steps.
type Sequence[T tensor.Numeric] = data.Sequence[T]

// Matrix is a 2-D feature sample.
type Matrix[T tensor.Numeric] = data.Matrix[T]

// MultiHead pairs one feature input with a label vector per output head.
type MultiHead[T tensor.Numeric] = data.MultiHead[T]

// SplitRow splits a [features..., labels...] row into a Flat example.
func SplitRow[T tensor.Numeric](row []T, featureWidth int) (Flat[T], error) {
	return data.SplitRow(row, featureWidth)
}

// SplitRows applies SplitRow to every row.
func SplitRows[T tensor.Numeric](rows [][]T, featureWidth int) ([]Flat[T], error) {
	return data.SplitRows(rows, featureWidth)
}

// TextSequence tokenizes text into a Sequence of width-1 steps.
func TextSequence(tok tokenizer.Tokenizer, text string, labels []float32) (Sequence[float32], error) {
	return data.TextSequence(tok, text, labels)
}

// Batches

// Batch is one minibatch: a feature tensor and one label tensor per head.
type Batch = data.Batch

// Builder converts one segment of examples into a Batch.
type Builder[E any] = data.Builder[E]

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc[E any] = data.BuilderFunc[E]

// WidthError describes an example whose width disagrees with its segment.
type WidthError = data.WidthError

// Errors.
var (
	ErrWidthMismatch = data.ErrWidthMismatch
	ErrEmptySegment  = data.ErrEmptySegment
	ErrEmptySequence = data.ErrEmptySequence
	ErrEmptyDataset  = pipeline.ErrEmptyDataset
	ErrInvalidSize   = segment.ErrInvalidSize
)

// NewFlatBuilder creates a builder for flat examples.
func NewFlatBuilder[T tensor.Numeric](factory tensor.Factory) *data.FlatBuilder[T] {
	return data.NewFlatBuilder[T](factory)
}

// NewSequenceBuilder creates a builder for sequence examples.
func NewSequenceBuilder[T tensor.Numeric](factory tensor.Factory) *data.SequenceBuilder[T] {
	return data.NewSequenceBuilder[T](factory)
}

// NewMatrixBuilder creates a builder for 2-D examples.
func NewMatrixBuilder[T tensor.Numeric](factory tensor.Factory) *data.MatrixBuilder[T] {
	return data.NewMatrixBuilder[T](factory)
}

// NewMultiHeadBuilder creates a builder for multi-head examples. sequential
// selects MultiHead.Steps over MultiHead.Features.
func NewMultiHeadBuilder[T tensor.Numeric](factory tensor.Factory, sequential bool) *data.MultiHeadBuilder[T] {
	return data.NewMultiHeadBuilder[T](factory, sequential)
}

// Segmenting

// Segments lazily groups src into slices of size items; the last one holds
// the remainder.
func Segments[T any](src iter.Seq[T], size int) (iter.Seq[[]T], error) {
	return segment.Split(src, size)
}

// Pipelines

// BatchSeq is a single pass over the batches of one epoch.
type BatchSeq = pipeline.Sequence

// Selector hands out the batch sequence of each epoch.
type Selector = pipeline.Selector

// Seed selects the reshuffle random source. The zero value seeds from the
// clock.
type Seed = pipeline.Seed

// SeedOf returns a fixed seed. Zero is a valid seed.
func SeedOf(v uint64) Seed {
	return pipeline.SeedOf(v)
}

// ClockSeed returns a seed taken from the wall clock.
func ClockSeed() Seed {
	return pipeline.ClockSeed()
}

// Stream returns a lazy batch sequence over dataset in order.
func Stream[E any](dataset []E, size int, builder Builder[E]) (BatchSeq, error) {
	return pipeline.Stream(dataset, size, builder)
}

// Streaming returns a Selector serving the same lazy sequence every epoch.
func Streaming[E any](dataset []E, size int, builder Builder[E]) (Selector, error) {
	return pipeline.Streaming(dataset, size, builder)
}

// Regenerate returns a Selector that reshuffles dataset in place and
// rebuilds every batch at each epoch.
func Regenerate[E any](dataset []E, size int, builder Builder[E], seed Seed) (Selector, error) {
	return pipeline.Regenerate(dataset, size, builder, seed)
}

// Batches builds every batch of dataset eagerly, in order.
func Batches[E any](dataset []E, size int, builder Builder[E]) ([]*Batch, error) {
	return pipeline.Batches(dataset, size, builder)
}

// Materialize drains seq into a slice.
func Materialize(seq BatchSeq) ([]*Batch, error) {
	return pipeline.Materialize(seq)
}

// FromBatches serves prebuilt batches as a sequence.
func FromBatches(batches []*Batch) BatchSeq {
	return pipeline.FromBatches(batches)
}

// Fixed returns a Selector serving seq at every epoch.
func Fixed(seq BatchSeq) Selector {
	return pipeline.Fixed(seq)
}
