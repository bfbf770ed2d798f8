package dataset

import (
	"fmt"
	"slices"

	"github.com/born-ml/batchfit/internal/pipeline"
)

// Split shuffles a copy of items and cuts it into a training and a
// validation part. The validation part holds round(len·ratio) items, at
// least one when ratio > 0, and the training part is never empty.
//
// items itself is left untouched.
func Split[E any](items []E, ratio float64, seed pipeline.Seed) (train, validation []E, err error) {
	if ratio < 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("dataset: validation ratio %v not in [0, 1)", ratio)
	}
	if len(items) == 0 {
		return nil, nil, ErrNoRecords
	}

	shuffled := slices.Clone(items)
	pipeline.Shuffle(shuffled, seed.Rand())

	n := int(float64(len(items))*ratio + 0.5)
	if ratio > 0 {
		n = max(n, 1)
	}
	if n >= len(items) {
		return nil, nil, fmt.Errorf("dataset: %d items are too few for validation ratio %v", len(items), ratio)
	}
	return shuffled[n:], shuffled[:n], nil
}
