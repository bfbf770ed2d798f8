// Package pipeline turns a dataset into the per-epoch batch sequences
// consumed by the training loop.
//
// Two modes are provided:
//   - Stream: lazy, one Segmenter pass per iteration, no reordering
//   - Regenerate: reshuffle the dataset every epoch and materialize the
//     whole epoch before training on it
//
// Both are exposed to the training loop through a Selector, which abstracts
// whether the batches are fixed or rebuilt per epoch.
package pipeline

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/born-ml/batchfit/internal/data"
	"github.com/born-ml/batchfit/internal/segment"
)

// ErrEmptyDataset is returned when a dataset holds no examples.
var ErrEmptyDataset = errors.New("pipeline: dataset is empty")

// Sequence is a lazily evaluated sequence of batches. A non-nil error ends
// the sequence.
type Sequence = iter.Seq2[*data.Batch, error]

// Selector returns the batch sequence for a 1-based epoch number.
type Selector func(epoch int) (Sequence, error)

// Stream returns a lazy sequence of batches over dataset, built segment by
// segment as the consumer pulls. Iterating twice over an unchanged dataset
// yields identical batches in identical order.
func Stream[E any](dataset []E, size int, builder data.Builder[E]) (Sequence, error) {
	if len(dataset) == 0 {
		return nil, ErrEmptyDataset
	}
	// Validate the size once up front so the returned sequence cannot fail
	// on configuration.
	if _, err := segment.Split(slices.Values(dataset), size); err != nil {
		return nil, err
	}

	return func(yield func(*data.Batch, error) bool) {
		groups, _ := segment.Split(slices.Values(dataset), size)
		index := 0
		for group := range groups {
			batch, err := builder.Build(group)
			if err != nil {
				yield(nil, fmt.Errorf("batch %d: %w", index, err))
				return
			}
			if !yield(batch, nil) {
				return
			}
			index++
		}
	}, nil
}

// Materialize drains seq into a slice, stopping at the first error.
func Materialize(seq Sequence) ([]*data.Batch, error) {
	var batches []*data.Batch
	for batch, err := range seq {
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// FromBatches exposes prebuilt batches as a Sequence that can be iterated
// any number of times.
func FromBatches(batches []*data.Batch) Sequence {
	return func(yield func(*data.Batch, error) bool) {
		for _, batch := range batches {
			if !yield(batch, nil) {
				return
			}
		}
	}
}

// Fixed returns a Selector that hands out seq for every epoch.
func Fixed(seq Sequence) Selector {
	return func(int) (Sequence, error) {
		return seq, nil
	}
}
