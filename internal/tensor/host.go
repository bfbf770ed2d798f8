package tensor

// Host is a Factory producing Dense and Ragged tensors in Go memory.
type Host struct{}

// BatchTensor implements Factory.
func (Host) BatchTensor(shape Shape, values []float32) (Tensor, error) {
	d, err := NewDense(shape.Clone(), values)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SequenceBatchTensor implements Factory.
func (Host) SequenceBatchTensor(shape Shape, sequences [][]float32) (Tensor, error) {
	r, err := NewRagged(shape.Clone(), sequences)
	if err != nil {
		return nil, err
	}
	return r, nil
}
