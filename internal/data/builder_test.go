package data

import (
	"errors"
	"testing"

	"github.com/born-ml/batchfit/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dense(t *testing.T, x tensor.Tensor) *tensor.Dense {
	t.Helper()
	d, ok := x.(*tensor.Dense)
	require.True(t, ok, "expected *tensor.Dense, got %T", x)
	return d
}

func TestFlatBuilder_Alignment(t *testing.T) {
	segment := []Flat[float64]{
		{Features: []float64{1, 2, 3}, Labels: []float64{10}},
		{Features: []float64{4, 5, 6}, Labels: []float64{20}},
		{Features: []float64{7, 8, 9}, Labels: []float64{30}},
	}

	batch, err := NewFlatBuilder[float64](tensor.Host{}).Build(segment)
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Size)
	assert.Equal(t, 1, batch.Heads())
	x := dense(t, batch.Features)
	y := dense(t, batch.Label())
	assert.Equal(t, tensor.Shape{3, 3}, x.Shape())
	assert.Equal(t, tensor.Shape{3, 1}, y.Shape())
	for i := range segment {
		assert.Equal(t, tensor.ToFloat32(segment[i].Features), x.Row(i))
		assert.Equal(t, tensor.ToFloat32(segment[i].Labels), y.Row(i))
	}
}

func TestFlatBuilder_WidthMismatch(t *testing.T) {
	tests := []struct {
		name    string
		segment []Flat[float32]
		field   string
	}{
		{
			name: "features",
			segment: []Flat[float32]{
				{Features: []float32{1, 2}, Labels: []float32{1}},
				{Features: []float32{1, 2, 3}, Labels: []float32{1}},
			},
			field: "features",
		},
		{
			name: "labels",
			segment: []Flat[float32]{
				{Features: []float32{1, 2}, Labels: []float32{1}},
				{Features: []float32{1, 2}, Labels: []float32{1, 2}},
			},
			field: "labels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFlatBuilder[float32](tensor.Host{}).Build(tt.segment)
			require.ErrorIs(t, err, ErrWidthMismatch)

			var werr *WidthError
			require.True(t, errors.As(err, &werr))
			assert.Equal(t, tt.field, werr.Field)
			assert.Equal(t, 1, werr.Index)
		})
	}
}

func TestFlatBuilder_EmptySegment(t *testing.T) {
	_, err := NewFlatBuilder[float32](tensor.Host{}).Build(nil)
	assert.ErrorIs(t, err, ErrEmptySegment)
}

func TestSequenceBuilder_Ragged(t *testing.T) {
	segment := []Sequence[int32]{
		{Steps: [][]int32{{1, 2}, {3, 4}, {5, 6}}, Labels: []int32{1, 0}},
		{Steps: [][]int32{{7, 8}}, Labels: []int32{0, 1}},
	}

	batch, err := NewSequenceBuilder[int32](tensor.Host{}).Build(segment)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Size)

	x, ok := batch.Features.(*tensor.Ragged)
	require.True(t, ok)
	assert.Equal(t, tensor.Shape{2, 2}, x.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.Sequence(0))
	assert.Equal(t, []float32{7, 8}, x.Sequence(1))
	assert.Equal(t, 3, x.Steps(0))

	y := dense(t, batch.Label())
	assert.Equal(t, []float32{1, 0, 0, 1}, y.Data())
}

func TestSequenceBuilder_StepWidthMismatch(t *testing.T) {
	segment := []Sequence[float32]{
		{Steps: [][]float32{{1, 2}}, Labels: []float32{1}},
		{Steps: [][]float32{{1, 2}, {3}}, Labels: []float32{1}},
	}
	_, err := NewSequenceBuilder[float32](tensor.Host{}).Build(segment)
	require.ErrorIs(t, err, ErrWidthMismatch)
}

func TestSequenceBuilder_EmptySequence(t *testing.T) {
	segment := []Sequence[float32]{
		{Steps: [][]float32{{1}}, Labels: []float32{1}},
		{Steps: nil, Labels: []float32{1}},
	}
	_, err := NewSequenceBuilder[float32](tensor.Host{}).Build(segment)
	require.ErrorIs(t, err, ErrEmptySequence)
}

func TestMatrixBuilder(t *testing.T) {
	segment := []Matrix[uint8]{
		{Rows: [][]uint8{{1, 2, 3}, {4, 5, 6}}, Labels: []uint8{1}},
		{Rows: [][]uint8{{7, 8, 9}, {10, 11, 12}}, Labels: []uint8{0}},
	}

	batch, err := NewMatrixBuilder[uint8](tensor.Host{}).Build(segment)
	require.NoError(t, err)

	x := dense(t, batch.Features)
	assert.Equal(t, tensor.Shape{2, 2, 3, 1}, x.Shape())
	assert.Equal(t, 6, x.Width())
	assert.Equal(t, []float32{7, 8, 9, 10, 11, 12}, x.Row(1))
}

func TestMatrixBuilder_RaggedRows(t *testing.T) {
	segment := []Matrix[float32]{
		{Rows: [][]float32{{1, 2}, {3, 4}}, Labels: []float32{1}},
		{Rows: [][]float32{{1, 2}, {3}}, Labels: []float32{1}},
	}
	_, err := NewMatrixBuilder[float32](tensor.Host{}).Build(segment)

	var werr *WidthError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "columns", werr.Field)
}

func TestMultiHeadBuilder_Flat(t *testing.T) {
	segment := []MultiHead[float32]{
		{Features: []float32{1, 1}, Labels: [][]float32{{1}, {1, 0, 0}}},
		{Features: []float32{2, 2}, Labels: [][]float32{{2}, {0, 1, 0}}},
		{Features: []float32{3, 3}, Labels: [][]float32{{3}, {0, 0, 1}}},
	}

	batch, err := NewMultiHeadBuilder[float32](tensor.Host{}, false).Build(segment)
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Size)
	require.Equal(t, 2, batch.Heads())
	assert.Equal(t, []float32{1, 1, 2, 2, 3, 3}, dense(t, batch.Features).Data())
	assert.Equal(t, []float32{1, 2, 3}, dense(t, batch.Labels[0]).Data())
	head1 := dense(t, batch.Labels[1])
	assert.Equal(t, tensor.Shape{3, 3}, head1.Shape())
	assert.Equal(t, []float32{0, 1, 0}, head1.Row(1))
}

func TestMultiHeadBuilder_Sequential(t *testing.T) {
	segment := []MultiHead[float32]{
		{Steps: [][]float32{{1}, {2}}, Labels: [][]float32{{1}, {0}}},
		{Steps: [][]float32{{3}}, Labels: [][]float32{{0}, {1}}},
	}

	batch, err := NewMultiHeadBuilder[float32](tensor.Host{}, true).Build(segment)
	require.NoError(t, err)

	x, ok := batch.Features.(*tensor.Ragged)
	require.True(t, ok)
	assert.Equal(t, 2, x.Len())
	assert.Equal(t, 2, batch.Heads())
}

func TestMultiHeadBuilder_HeadCountMismatch(t *testing.T) {
	segment := []MultiHead[float32]{
		{Features: []float32{1}, Labels: [][]float32{{1}, {1}}},
		{Features: []float32{1}, Labels: [][]float32{{1}}},
	}
	_, err := NewMultiHeadBuilder[float32](tensor.Host{}, false).Build(segment)

	var werr *WidthError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "heads", werr.Field)
}

func TestMultiHeadBuilder_HeadLabelWidthMismatch(t *testing.T) {
	segment := []MultiHead[float32]{
		{Features: []float32{1}, Labels: [][]float32{{1}, {1, 0}}},
		{Features: []float32{1}, Labels: [][]float32{{1}, {1}}},
	}
	_, err := NewMultiHeadBuilder[float32](tensor.Host{}, false).Build(segment)

	var werr *WidthError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "labels[1]", werr.Field)
	assert.Equal(t, 2, werr.Want)
	assert.Equal(t, 1, werr.Got)
}

// failingFactory rejects every tensor.
type failingFactory struct{ err error }

func (f failingFactory) BatchTensor(tensor.Shape, []float32) (tensor.Tensor, error) {
	return nil, f.err
}

func (f failingFactory) SequenceBatchTensor(tensor.Shape, [][]float32) (tensor.Tensor, error) {
	return nil, f.err
}

func TestBuilder_FactoryErrorPropagates(t *testing.T) {
	boom := errors.New("device lost")
	_, err := NewFlatBuilder[float32](failingFactory{err: boom}).Build([]Flat[float32]{
		{Features: []float32{1}, Labels: []float32{1}},
	})
	assert.ErrorIs(t, err, boom)
}

func TestSplitRows(t *testing.T) {
	rows := [][]float64{{1, 2, 3, 9}, {4, 5, 6, 8}}
	examples, err := SplitRows(rows, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, examples[1].Features)
	assert.Equal(t, []float64{8}, examples[1].Labels)

	_, err = SplitRows(rows, 4)
	assert.Error(t, err)
}

func TestBuilderFunc(t *testing.T) {
	var b Builder[int] = BuilderFunc[int](func(segment []int) (*Batch, error) {
		return &Batch{Size: len(segment)}, nil
	})
	batch, err := b.Build([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Size)
}
