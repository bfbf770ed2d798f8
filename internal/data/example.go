// Package data defines training examples, minibatches and the builders that
// turn a segment of examples into one backend-ready batch.
//
// Four example shapes are supported:
//   - Flat: fixed-width feature and label vectors
//   - Sequence: variable-length series of fixed-width steps, one label vector
//   - Matrix: 2-D feature matrix, one label vector
//   - MultiHead: flat or sequential features with one label vector per head
//
// Within one dataset every example shares the same feature (step, row)
// width and every head keeps a fixed label width. Builders detect
// violations while concatenating and fail with ErrWidthMismatch.
package data

import (
	"fmt"

	"github.com/born-ml/batchfit/internal/tensor"
)

// Flat is a fixed-width feature vector paired with a fixed-width label vector.
type Flat[T tensor.Numeric] struct {
	Features []T
	Labels   []T
}

// SplitRow splits a row laid out as [features..., labels...] into a Flat
// example. The returned slices alias row.
func SplitRow[T tensor.Numeric](row []T, featureWidth int) (Flat[T], error) {
	if featureWidth <= 0 || featureWidth >= len(row) {
		return Flat[T]{}, fmt.Errorf("data: feature width %d out of range for row of %d values", featureWidth, len(row))
	}
	return Flat[T]{
		Features: row[:featureWidth],
		Labels:   row[featureWidth:],
	}, nil
}

// SplitRows applies SplitRow to every row.
func SplitRows[T tensor.Numeric](rows [][]T, featureWidth int) ([]Flat[T], error) {
	out := make([]Flat[T], len(rows))
	for i, row := range rows {
		ex, err := SplitRow(row, featureWidth)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = ex
	}
	return out, nil
}

// Sequence is one variable-length time series. Every step has the same width;
// labels describe the whole sequence, not individual steps.
type Sequence[T tensor.Numeric] struct {
	Steps  [][]T
	Labels []T
}

// Matrix is a 2-D feature sample (rows × columns, one implicit channel).
type Matrix[T tensor.Numeric] struct {
	Rows   [][]T
	Labels []T
}

// MultiHead pairs one feature input with an independent label vector per
// model output head.
//
// Features is used by flat multi-head builders and Steps by sequential ones.
type MultiHead[T tensor.Numeric] struct {
	Features []T
	Steps    [][]T
	Labels   [][]T
}
