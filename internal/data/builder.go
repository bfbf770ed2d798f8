package data

import (
	"fmt"

	"github.com/born-ml/batchfit/internal/tensor"
)

var (
	_ Builder[Flat[float32]]      = (*FlatBuilder[float32])(nil)
	_ Builder[Sequence[float32]]  = (*SequenceBuilder[float32])(nil)
	_ Builder[Matrix[float32]]    = (*MatrixBuilder[float32])(nil)
	_ Builder[MultiHead[float32]] = (*MultiHeadBuilder[float32])(nil)
)

// FlatBuilder concatenates flat examples into one feature and one label tensor.
type FlatBuilder[T tensor.Numeric] struct {
	factory tensor.Factory
}

// NewFlatBuilder creates a builder for Flat examples.
func NewFlatBuilder[T tensor.Numeric](factory tensor.Factory) *FlatBuilder[T] {
	return &FlatBuilder[T]{factory: factory}
}

// Build concatenates features and labels end to end. The feature tensor is
// tagged (feature_width) and the label tensor (label_width).
func (b *FlatBuilder[T]) Build(segment []Flat[T]) (*Batch, error) {
	if len(segment) == 0 {
		return nil, ErrEmptySegment
	}

	featureWidth := len(segment[0].Features)
	labelWidth := len(segment[0].Labels)
	features := make([]float32, 0, featureWidth*len(segment))
	labels := make([]float32, 0, labelWidth*len(segment))

	for i, ex := range segment {
		if err := checkWidth("features", i, featureWidth, len(ex.Features)); err != nil {
			return nil, err
		}
		if err := checkWidth("labels", i, labelWidth, len(ex.Labels)); err != nil {
			return nil, err
		}
		features = tensor.AppendFloat32(features, ex.Features)
		labels = tensor.AppendFloat32(labels, ex.Labels)
	}

	return assemble(b.factory, len(segment),
		func() (tensor.Tensor, error) { return b.factory.BatchTensor(tensor.Shape{featureWidth}, features) },
		[][]float32{labels}, []int{labelWidth})
}

// SequenceBuilder batches variable-length sequences.
//
// Each sequence's steps are concatenated into one buffer and the backend
// receives the list of buffers, since lengths differ between examples.
type SequenceBuilder[T tensor.Numeric] struct {
	factory tensor.Factory
}

// NewSequenceBuilder creates a builder for Sequence examples.
func NewSequenceBuilder[T tensor.Numeric](factory tensor.Factory) *SequenceBuilder[T] {
	return &SequenceBuilder[T]{factory: factory}
}

// Build creates a ragged feature tensor tagged (step_width) and a flat label
// tensor with one label vector per sequence.
func (b *SequenceBuilder[T]) Build(segment []Sequence[T]) (*Batch, error) {
	if len(segment) == 0 {
		return nil, ErrEmptySegment
	}

	stepWidth, err := firstStepWidth(segment[0].Steps)
	if err != nil {
		return nil, fmt.Errorf("example 0: %w", err)
	}
	labelWidth := len(segment[0].Labels)

	sequences := make([][]float32, len(segment))
	labels := make([]float32, 0, labelWidth*len(segment))
	for i, ex := range segment {
		seq, err := flattenSteps(ex.Steps, stepWidth, i)
		if err != nil {
			return nil, err
		}
		sequences[i] = seq
		if err := checkWidth("labels", i, labelWidth, len(ex.Labels)); err != nil {
			return nil, err
		}
		labels = tensor.AppendFloat32(labels, ex.Labels)
	}

	return assemble(b.factory, len(segment),
		func() (tensor.Tensor, error) { return b.factory.SequenceBatchTensor(tensor.Shape{stepWidth}, sequences) },
		[][]float32{labels}, []int{labelWidth})
}

// MatrixBuilder flattens 2-D samples row-major and batches them as dense
// (rows, columns, 1) examples.
type MatrixBuilder[T tensor.Numeric] struct {
	factory tensor.Factory
}

// NewMatrixBuilder creates a builder for Matrix examples.
func NewMatrixBuilder[T tensor.Numeric](factory tensor.Factory) *MatrixBuilder[T] {
	return &MatrixBuilder[T]{factory: factory}
}

// Build flattens every matrix and proceeds as the flat path.
func (b *MatrixBuilder[T]) Build(segment []Matrix[T]) (*Batch, error) {
	if len(segment) == 0 {
		return nil, ErrEmptySegment
	}

	rows := len(segment[0].Rows)
	if rows == 0 {
		return nil, fmt.Errorf("example 0: %w", ErrEmptySequence)
	}
	cols := len(segment[0].Rows[0])
	labelWidth := len(segment[0].Labels)

	features := make([]float32, 0, rows*cols*len(segment))
	labels := make([]float32, 0, labelWidth*len(segment))
	for i, ex := range segment {
		if err := checkWidth("rows", i, rows, len(ex.Rows)); err != nil {
			return nil, err
		}
		for _, row := range ex.Rows {
			if err := checkWidth("columns", i, cols, len(row)); err != nil {
				return nil, err
			}
			features = tensor.AppendFloat32(features, row)
		}
		if err := checkWidth("labels", i, labelWidth, len(ex.Labels)); err != nil {
			return nil, err
		}
		labels = tensor.AppendFloat32(labels, ex.Labels)
	}

	return assemble(b.factory, len(segment),
		func() (tensor.Tensor, error) { return b.factory.BatchTensor(tensor.Shape{rows, cols, 1}, features) },
		[][]float32{labels}, []int{labelWidth})
}

// MultiHeadBuilder builds one shared feature tensor and one label tensor per
// head.
type MultiHeadBuilder[T tensor.Numeric] struct {
	factory    tensor.Factory
	sequential bool
}

// NewMultiHeadBuilder creates a builder for MultiHead examples. When
// sequential is true features are read from Steps, otherwise from Features.
func NewMultiHeadBuilder[T tensor.Numeric](factory tensor.Factory, sequential bool) *MultiHeadBuilder[T] {
	return &MultiHeadBuilder[T]{factory: factory, sequential: sequential}
}

// Build assembles features once, then concatenates each head's labels
// across the segment into its own tensor tagged (label_width[h]).
func (b *MultiHeadBuilder[T]) Build(segment []MultiHead[T]) (*Batch, error) {
	if len(segment) == 0 {
		return nil, ErrEmptySegment
	}

	heads := len(segment[0].Labels)
	widths := make([]int, heads)
	labels := make([][]float32, heads)
	for h, l := range segment[0].Labels {
		widths[h] = len(l)
		labels[h] = make([]float32, 0, len(l)*len(segment))
	}

	for i, ex := range segment {
		if err := checkWidth("heads", i, heads, len(ex.Labels)); err != nil {
			return nil, err
		}
		for h, l := range ex.Labels {
			if err := checkWidth(fmt.Sprintf("labels[%d]", h), i, widths[h], len(l)); err != nil {
				return nil, err
			}
			labels[h] = tensor.AppendFloat32(labels[h], l)
		}
	}

	var features func() (tensor.Tensor, error)
	if b.sequential {
		stepWidth, err := firstStepWidth(segment[0].Steps)
		if err != nil {
			return nil, fmt.Errorf("example 0: %w", err)
		}
		sequences := make([][]float32, len(segment))
		for i, ex := range segment {
			seq, err := flattenSteps(ex.Steps, stepWidth, i)
			if err != nil {
				return nil, err
			}
			sequences[i] = seq
		}
		features = func() (tensor.Tensor, error) {
			return b.factory.SequenceBatchTensor(tensor.Shape{stepWidth}, sequences)
		}
	} else {
		featureWidth := len(segment[0].Features)
		flat := make([]float32, 0, featureWidth*len(segment))
		for i, ex := range segment {
			if err := checkWidth("features", i, featureWidth, len(ex.Features)); err != nil {
				return nil, err
			}
			flat = tensor.AppendFloat32(flat, ex.Features)
		}
		features = func() (tensor.Tensor, error) {
			return b.factory.BatchTensor(tensor.Shape{featureWidth}, flat)
		}
	}

	return assemble(b.factory, len(segment), features, labels, widths)
}

// firstStepWidth returns the step width established by the first example.
func firstStepWidth[T tensor.Numeric](steps [][]T) (int, error) {
	if len(steps) == 0 {
		return 0, ErrEmptySequence
	}
	return len(steps[0]), nil
}

// flattenSteps concatenates the steps of one sequence, preserving order.
func flattenSteps[T tensor.Numeric](steps [][]T, width, index int) ([]float32, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("example %d: %w", index, ErrEmptySequence)
	}
	seq := make([]float32, 0, width*len(steps))
	for _, step := range steps {
		if err := checkWidth("step", index, width, len(step)); err != nil {
			return nil, err
		}
		seq = tensor.AppendFloat32(seq, step)
	}
	return seq, nil
}

// assemble asks the factory for the feature tensor and one label tensor per
// head and checks that all of them hold size examples.
func assemble(
	factory tensor.Factory,
	size int,
	features func() (tensor.Tensor, error),
	labels [][]float32,
	widths []int,
) (*Batch, error) {
	x, err := features()
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}
	if x.Len() != size {
		return nil, fmt.Errorf("%w: feature tensor holds %d examples, segment has %d", tensor.ErrShapeMismatch, x.Len(), size)
	}

	ys := make([]tensor.Tensor, len(labels))
	for h, values := range labels {
		y, err := factory.BatchTensor(tensor.Shape{widths[h]}, values)
		if err != nil {
			return nil, fmt.Errorf("build labels[%d]: %w", h, err)
		}
		if y.Len() != size {
			return nil, fmt.Errorf("%w: label tensor %d holds %d examples, segment has %d", tensor.ErrShapeMismatch, h, y.Len(), size)
		}
		ys[h] = y
	}

	return &Batch{Features: x, Labels: ys, Size: size}, nil
}
