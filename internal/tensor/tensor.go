package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when raw values do not fit the requested shape.
var ErrShapeMismatch = errors.New("tensor: shape mismatch")

// Tensor is a batch of examples handed to a backend.
//
// The leading dimension of Shape is always the batch dimension.
type Tensor interface {
	// Shape returns the batch shape. For ragged tensors the second
	// dimension is the per-step width.
	Shape() Shape

	// Len returns the number of examples in the batch.
	Len() int

	// NumElements returns the number of stored values.
	NumElements() int
}

// Factory builds backend tensors from raw values.
//
// Implementations must reject values that do not fit the shape with an
// error wrapping ErrShapeMismatch.
type Factory interface {
	// BatchTensor builds a dense batch from the concatenation of examples
	// of the given per-example shape.
	BatchTensor(shape Shape, values []float32) (Tensor, error)

	// SequenceBatchTensor builds a batch of variable-length sequences, each
	// the concatenation of steps of the given per-step shape.
	SequenceBatchTensor(shape Shape, sequences [][]float32) (Tensor, error)
}

// Dense is a row-major batch of equally shaped examples.
type Dense struct {
	shape Shape
	data  []float32
}

// NewDense wraps values as a batch of examples with the given per-example
// shape. The batch size is inferred from len(values).
//
// The slice is not copied.
func NewDense(shape Shape, values []float32) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	width := shape.NumElements()
	if len(values) == 0 || len(values)%width != 0 {
		return nil, fmt.Errorf("%w: %d values do not form examples of shape %v", ErrShapeMismatch, len(values), shape)
	}
	return &Dense{
		shape: shape.Prepend(len(values) / width),
		data:  values,
	}, nil
}

// Shape returns (batch, example dims...).
func (d *Dense) Shape() Shape { return d.shape }

// Len returns the batch size.
func (d *Dense) Len() int { return d.shape[0] }

// NumElements returns the number of stored values.
func (d *Dense) NumElements() int { return len(d.data) }

// Data returns the underlying row-major buffer.
func (d *Dense) Data() []float32 { return d.data }

// Width returns the number of values per example.
func (d *Dense) Width() int { return d.shape[1:].NumElements() }

// Row returns the values of example i.
func (d *Dense) Row(i int) []float32 {
	w := d.Width()
	return d.data[i*w : (i+1)*w]
}

// Ragged is a batch of sequences whose lengths differ.
type Ragged struct {
	step      Shape
	sequences [][]float32
	total     int
}

// NewRagged wraps sequences as a batch. Every sequence must hold a positive
// whole number of steps of the given shape.
//
// The slices are not copied.
func NewRagged(step Shape, sequences [][]float32) (*Ragged, error) {
	if err := step.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	if len(sequences) == 0 {
		return nil, fmt.Errorf("%w: empty sequence batch", ErrShapeMismatch)
	}
	width := step.NumElements()
	total := 0
	for i, seq := range sequences {
		if len(seq) == 0 || len(seq)%width != 0 {
			return nil, fmt.Errorf("%w: sequence %d has %d values, not a multiple of step shape %v",
				ErrShapeMismatch, i, len(seq), step)
		}
		total += len(seq)
	}
	return &Ragged{step: step, sequences: sequences, total: total}, nil
}

// Shape returns (batch, step dims...).
func (r *Ragged) Shape() Shape { return r.step.Prepend(len(r.sequences)) }

// Len returns the number of sequences.
func (r *Ragged) Len() int { return len(r.sequences) }

// NumElements returns the number of stored values across all sequences.
func (r *Ragged) NumElements() int { return r.total }

// StepWidth returns the number of values per step.
func (r *Ragged) StepWidth() int { return r.step.NumElements() }

// Sequence returns the flattened steps of sequence i.
func (r *Ragged) Sequence(i int) []float32 { return r.sequences[i] }

// Steps returns the number of steps in sequence i.
func (r *Ragged) Steps(i int) int { return len(r.sequences[i]) / r.StepWidth() }
