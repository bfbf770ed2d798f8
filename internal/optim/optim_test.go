package optim_test

import (
	"math"
	"testing"

	"github.com/born-ml/batchfit/internal/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	param := optim.NewParam("x", []float64{2.0})
	optimizer, err := optim.NewSGD([]*optim.Param{param}, optim.SGDConfig{LR: 0.1})
	require.NoError(t, err)

	param.Grad[0] = 1.0
	optimizer.Step()

	// x_new = 2.0 - 0.1 * 1.0 = 1.9
	assert.InDelta(t, 1.9, param.Value[0], 1e-12)
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	param := optim.NewParam("x", []float64{1.0})
	optimizer, err := optim.NewSGD([]*optim.Param{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	require.NoError(t, err)

	param.Grad[0] = 1.0
	optimizer.Step()
	// v_1 = 1.0, x_1 = 1.0 - 0.1 * 1.0 = 0.9
	assert.InDelta(t, 0.9, param.Value[0], 1e-12)

	optimizer.Step()
	// v_2 = 0.9 * 1.0 + 1.0 = 1.9, x_2 = 0.9 - 0.19 = 0.71
	assert.InDelta(t, 0.71, param.Value[0], 1e-12)
}

func TestSGD_ZeroGradAndLR(t *testing.T) {
	param := optim.NewParam("x", []float64{1.0, 2.0})
	optimizer, err := optim.NewSGD([]*optim.Param{param}, optim.SGDConfig{})
	require.NoError(t, err)
	assert.InDelta(t, 0.01, optimizer.GetLR(), 1e-12, "default learning rate")

	param.Grad[0], param.Grad[1] = 3, 4
	optimizer.ZeroGrad()
	assert.Equal(t, []float64{0, 0}, param.Grad)

	optimizer.SetLR(0.5)
	assert.InDelta(t, 0.5, optimizer.GetLR(), 1e-12)
}

// TestAdam_FirstStep checks the bias-corrected first step moves each
// parameter by ~lr against the gradient sign.
func TestAdam_FirstStep(t *testing.T) {
	param := optim.NewParam("x", []float64{1.0, -1.0})
	optimizer, err := optim.NewAdam([]*optim.Param{param}, optim.AdamConfig{LR: 0.1})
	require.NoError(t, err)

	param.Grad[0], param.Grad[1] = 0.5, -2.0
	optimizer.Step()

	assert.InDelta(t, 0.9, param.Value[0], 1e-6)
	assert.InDelta(t, -0.9, param.Value[1], 1e-6)
	assert.Equal(t, 1, optimizer.GetTimestep())
}

// TestConvergence_SimpleQuadratic minimizes f(x) = (x - 3)².
func TestConvergence_SimpleQuadratic(t *testing.T) {
	tests := []struct {
		name string
		make func(p *optim.Param) (optim.Optimizer, error)
	}{
		{"sgd", func(p *optim.Param) (optim.Optimizer, error) {
			return optim.NewSGD([]*optim.Param{p}, optim.SGDConfig{LR: 0.1})
		}},
		{"sgd momentum", func(p *optim.Param) (optim.Optimizer, error) {
			return optim.NewSGD([]*optim.Param{p}, optim.SGDConfig{LR: 0.05, Momentum: 0.5})
		}},
		{"adam", func(p *optim.Param) (optim.Optimizer, error) {
			return optim.NewAdam([]*optim.Param{p}, optim.AdamConfig{LR: 0.1})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			param := optim.NewParam("x", []float64{0})
			optimizer, err := tt.make(param)
			require.NoError(t, err)

			for range 500 {
				optimizer.ZeroGrad()
				param.Grad[0] = 2 * (param.Value[0] - 3)
				optimizer.Step()
			}
			assert.Less(t, math.Abs(param.Value[0]-3), 1e-2)
		})
	}
}

func TestNew_GradLengthMismatch(t *testing.T) {
	bad := &optim.Param{Name: "w", Value: []float64{1, 2}, Grad: []float64{1}}

	_, err := optim.NewSGD([]*optim.Param{bad}, optim.SGDConfig{})
	assert.Error(t, err)
	_, err = optim.NewAdam([]*optim.Param{bad}, optim.AdamConfig{})
	assert.Error(t, err)
}
