// Package tensor provides the batch tensor values exchanged between the
// batching pipeline and a compute backend.
package tensor

// Numeric is a constraint for element types accepted in examples.
//
// Values are converted to float32, the element type every backend consumes.
type Numeric interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// AppendFloat32 converts src to float32 and appends it to dst.
func AppendFloat32[T Numeric](dst []float32, src []T) []float32 {
	for _, v := range src {
		dst = append(dst, float32(v))
	}
	return dst
}

// ToFloat32 returns a float32 copy of src.
func ToFloat32[T Numeric](src []T) []float32 {
	return AppendFloat32(make([]float32, 0, len(src)), src)
}
