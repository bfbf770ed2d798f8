package pipeline

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/born-ml/batchfit/internal/data"
	"github.com/born-ml/batchfit/internal/segment"
)

// Seed selects the random source used to reshuffle examples.
//
// The zero value means "seed from the clock"; SeedOf fixes it, and zero is a
// valid fixed seed.
type Seed struct {
	value uint64
	fixed bool
}

// SeedOf returns a fixed seed.
func SeedOf(v uint64) Seed {
	return Seed{value: v, fixed: true}
}

// ClockSeed returns a seed derived from the wall clock at first use.
func ClockSeed() Seed {
	return Seed{}
}

// Value returns the seed value and whether it was fixed by the caller.
func (s Seed) Value() (uint64, bool) {
	return s.value, s.fixed
}

// String implements fmt.Stringer.
func (s Seed) String() string {
	if !s.fixed {
		return "clock"
	}
	return fmt.Sprint(s.value)
}

// Rand creates a PCG random source for s. Clock seeds read the clock on
// every call.
func (s Seed) Rand() *rand.Rand {
	v := s.value
	if !s.fixed {
		v = uint64(time.Now().UnixNano()) //nolint:gosec // G115: bit pattern reuse is fine for a seed.
	}
	return rand.New(rand.NewPCG(v, v^0x9e3779b97f4a7c15))
}

// Shuffle permutes items in place with the Fisher-Yates algorithm.
func Shuffle[E any](items []E, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Regenerate returns a Selector that, at every epoch boundary, shuffles
// dataset in place and rebuilds the entire epoch into memory before
// returning it. The returned Sequence is stable: iterating it more than once
// yields the same batches.
//
// The random source is created once per Regenerate call, so two selectors
// built with the same fixed seed over datasets in the same initial order
// produce the same batches epoch by epoch.
//
// dataset is mutated; callers must not read or modify it concurrently while
// the selector is in use.
func Regenerate[E any](dataset []E, size int, builder data.Builder[E], seed Seed) (Selector, error) {
	if len(dataset) == 0 {
		return nil, ErrEmptyDataset
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", segment.ErrInvalidSize, size)
	}

	rng := seed.Rand()
	return func(epoch int) (Sequence, error) {
		Shuffle(dataset, rng)

		seq, err := Stream(dataset, size, builder)
		if err != nil {
			return nil, err
		}
		batches, err := Materialize(seq)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		return FromBatches(batches), nil
	}, nil
}

// Streaming returns a Selector over a fixed, non-reshuffled dataset.
func Streaming[E any](dataset []E, size int, builder data.Builder[E]) (Selector, error) {
	seq, err := Stream(dataset, size, builder)
	if err != nil {
		return nil, err
	}
	return Fixed(seq), nil
}

// Batches is a convenience returning the materialized batches of dataset.
func Batches[E any](dataset []E, size int, builder data.Builder[E]) ([]*data.Batch, error) {
	seq, err := Stream(dataset, size, builder)
	if err != nil {
		return nil, err
	}
	return Materialize(seq)
}
