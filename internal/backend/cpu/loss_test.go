package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanSquared(t *testing.T) {
	z := []float64{1, 3}
	y := []float64{0, 1}
	pred := make([]float64, 2)
	grad := make([]float64, 2)

	loss := meanSquared(z, y, pred, grad)

	assert.InDelta(t, (1.0+4.0)/2, loss, 1e-12)
	assert.Equal(t, z, pred)
	assert.InDeltaSlice(t, []float64{1, 2}, grad, 1e-12)
}

func TestCrossEntropy_OneHot(t *testing.T) {
	z := []float64{2, 1, 0}
	y := []float64{1, 0, 0}
	pred := make([]float64, 3)
	grad := make([]float64, 3)

	loss := crossEntropy(z, y, pred, grad)

	sum := math.Exp(2) + math.Exp(1) + 1
	assert.InDelta(t, -math.Log(math.Exp(2)/sum), loss, 1e-12)
	assert.InDelta(t, 1.0, pred[0]+pred[1]+pred[2], 1e-12)
	assert.InDelta(t, pred[0]-1, grad[0], 1e-12)
	assert.InDelta(t, pred[1], grad[1], 1e-12)
}

func TestCrossEntropy_LargeLogits(t *testing.T) {
	// Without the max shift exp(1000) overflows.
	z := []float64{1000, 0}
	y := []float64{1, 0}
	pred := make([]float64, 2)
	grad := make([]float64, 2)

	loss := crossEntropy(z, y, pred, grad)

	assert.False(t, math.IsNaN(loss))
	assert.InDelta(t, 0, loss, 1e-9)
	assert.InDelta(t, 1, pred[0], 1e-9)
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		name   string
		fn     metric
		pred   []float64
		y      []float64
		expect float64
	}{
		{"mse", meanSquaredError, []float64{1, 2}, []float64{0, 0}, 2.5},
		{"mae", meanAbsolute, []float64{1, -3}, []float64{0, 0}, 2},
		{"argmax hit", classificationError, []float64{0.1, 0.7, 0.2}, []float64{0, 1, 0}, 0},
		{"argmax miss", classificationError, []float64{0.8, 0.1, 0.1}, []float64{0, 1, 0}, 1},
		{"threshold hit", classificationError, []float64{0.7}, []float64{1}, 0},
		{"threshold miss", classificationError, []float64{0.2}, []float64{1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expect, tt.fn(tt.pred, tt.y), 1e-12)
		})
	}
}
