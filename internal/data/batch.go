package data

import "github.com/born-ml/batchfit/internal/tensor"

// Batch is an aligned feature/label tensor set built from one segment.
//
// Entry i of Features corresponds to entry i of every label tensor. Batches
// are immutable once built: reordering any tensor would desynchronize
// features from labels.
type Batch struct {
	Features tensor.Tensor
	Labels   []tensor.Tensor // One tensor per head
	Size     int             // Number of examples folded into the batch
}

// Label returns the label tensor of a single-head batch.
func (b *Batch) Label() tensor.Tensor {
	return b.Labels[0]
}

// Heads returns the number of label tensors.
func (b *Batch) Heads() int {
	return len(b.Labels)
}

// Builder turns one non-empty segment of examples into one Batch.
type Builder[E any] interface {
	Build(segment []E) (*Batch, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc[E any] func(segment []E) (*Batch, error)

// Build calls f(segment).
func (f BuilderFunc[E]) Build(segment []E) (*Batch, error) {
	return f(segment)
}
