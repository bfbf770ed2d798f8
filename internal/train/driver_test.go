package train

import (
	"errors"
	"testing"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/backend/backendtest"
	"github.com/born-ml/batchfit/internal/data"
	"github.com/born-ml/batchfit/internal/pipeline"
	"github.com/born-ml/batchfit/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatExamples(n int) []data.Flat[float32] {
	out := make([]data.Flat[float32], n)
	for i := range out {
		v := float32(i)
		out[i] = data.Flat[float32]{Features: []float32{v, -v}, Labels: []float32{v}}
	}
	return out
}

func newDriver(t *testing.T, b *backendtest.Backend, lr float64) *Driver {
	t.Helper()
	drv, err := NewDriver(Config{
		Backend:   b,
		Graph:     backendtest.NewGraph([]string{"features"}, "y"),
		Input:     "features",
		Loss:      backend.MSE,
		Eval:      backend.MeanAbsoluteError,
		Optimizer: backend.OptimizerConfig{Algorithm: backend.SGD, LearningRate: lr},
	})
	require.NoError(t, err)
	return drv
}

func streaming(t *testing.T, b *backendtest.Backend, n, size int) pipeline.Selector {
	t.Helper()
	sel, err := pipeline.Streaming(flatExamples(n), size, data.NewFlatBuilder[float32](b))
	require.NoError(t, err)
	return sel
}

func TestFit_CurveLengths(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.1)

	res, err := drv.Fit(streaming(t, b, 5, 2), FitOptions{Epochs: 4})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Epochs)
	assert.Len(t, res.LossCurve, 4)
	assert.Len(t, res.EvalCurve, 4)
	assert.Equal(t, res.LossCurve[3], res.Loss)
	assert.Equal(t, res.EvalCurve[3], res.Eval)
	assert.NotEmpty(t, res.RunID)
	assert.Positive(t, res.Duration)
	assert.Equal(t, 12, b.TrainSteps(), "3 batches x 4 epochs")
	assert.Equal(t, 4, b.Trainers[0].Resets)
	assert.Len(t, res.Stats(), 4)
	assert.Equal(t, 2, res.Stats()[1].Epoch)
}

func TestFit_EpochAveragesAreWeighted(t *testing.T) {
	b := backendtest.New()
	b.LossFn = func(_ *backendtest.Trainer, n int) float64 { return float64(n) }
	drv := newDriver(t, b, 0.1)

	// Batches of 2, 2, 1 examples with losses 1, 2, 3 in epoch one.
	res, err := drv.Fit(streaming(t, b, 5, 2), FitOptions{Epochs: 1})
	require.NoError(t, err)
	assert.InDelta(t, (1*2+2*2+3*1)/5.0, res.Loss, 1e-12)
	assert.InDelta(t, res.Loss/2, res.Eval, 1e-12)
}

// TestFit_EarlyStop stops at epoch 4 out of 10.
func TestFit_EarlyStop(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.1)

	var seen []int
	res, err := drv.Fit(streaming(t, b, 5, 2), FitOptions{
		Epochs: 10,
		ActionPerEpoch: func(epoch int, loss, eval float64) bool {
			seen = append(seen, epoch)
			return epoch == 4
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Epochs)
	assert.Len(t, res.LossCurve, 4)
	assert.Len(t, res.EvalCurve, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, seen)
	assert.Equal(t, 4*3, b.TrainSteps(), "no batch work after the stop")
}

func TestFit_ActionReceivesEpochAverages(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.1)

	var losses []float64
	res, err := drv.Fit(streaming(t, b, 4, 2), FitOptions{
		Epochs: 3,
		ActionPerEpoch: func(_ int, loss, _ float64) bool {
			losses = append(losses, loss)
			return false
		},
	})
	require.NoError(t, err)
	assert.Equal(t, res.LossCurve, losses)
}

// TestFit_DoublingRule checks the learning rate is pushed between epochs
// only: three epochs give two updates.
func TestFit_DoublingRule(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.01)

	_, err := drv.Fit(streaming(t, b, 5, 2), FitOptions{
		Epochs:           3,
		LearningRateRule: Scale(2),
	})
	require.NoError(t, err)

	rates := b.Trainers[0].Rates
	require.Len(t, rates, 2)
	assert.InDelta(t, 0.02, rates[0], 1e-15)
	assert.InDelta(t, 0.04, rates[1], 1e-15)
	assert.InDelta(t, 0.04, drv.LearningRate(), 1e-15)
}

func TestFit_UnchangedRateIsNotPushed(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.01)

	_, err := drv.Fit(streaming(t, b, 5, 2), FitOptions{
		Epochs:           5,
		LearningRateRule: StepDecay(2, 0.5),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.005, 0.0025}, b.Trainers[0].Rates)
}

func TestFit_NoRuleUpdateAfterEarlyStop(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.01)

	_, err := drv.Fit(streaming(t, b, 5, 2), FitOptions{
		Epochs:           5,
		ActionPerEpoch:   func(epoch int, _, _ float64) bool { return epoch == 2 },
		LearningRateRule: Scale(2),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.02}, b.Trainers[0].Rates)
}

func TestFit_RejectedRateAborts(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.01)

	_, err := drv.Fit(streaming(t, b, 5, 2), FitOptions{
		Epochs:           3,
		LearningRateRule: func(int, float64) float64 { return -1 },
	})
	assert.ErrorIs(t, err, backend.ErrInvalidRate)
}

// TestFit_ReshuffleDeterminism runs separate Fit calls over fresh copies of
// the same dataset.
func TestFit_ReshuffleDeterminism(t *testing.T) {
	run := func(seed uint64) [][]float32 {
		b := backendtest.New()
		drv := newDriver(t, b, 0.1)
		sel, err := pipeline.Regenerate(flatExamples(12), 4, data.NewFlatBuilder[float32](b), pipeline.SeedOf(seed))
		require.NoError(t, err)

		_, err = drv.Fit(sel, FitOptions{Epochs: 3})
		require.NoError(t, err)

		var labels [][]float32
		for _, s := range b.Steps {
			labels = append(labels, s.Labels.(*tensor.Dense).Data())
		}
		return labels
	}

	a, b := run(99), run(99)
	c := run(100)
	require.Len(t, a, 9)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFit_BackendErrorAborts(t *testing.T) {
	boom := errors.New("device lost")
	b := backendtest.New()
	b.FailAt = 5 // second batch of epoch two
	b.Err = boom
	drv := newDriver(t, b, 0.1)

	var epochs []int
	res, err := drv.Fit(streaming(t, b, 5, 2), FitOptions{
		Epochs: 4,
		ActionPerEpoch: func(epoch int, _, _ float64) bool {
			epochs = append(epochs, epoch)
			return false
		},
	})
	assert.ErrorIs(t, err, boom)
	assert.Same(t, boom, err, "backend errors are not wrapped")
	assert.Nil(t, res)
	assert.Equal(t, []int{1}, epochs)
	assert.Equal(t, 4, b.TrainSteps())
}

func TestFit_PipelineErrorAborts(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.1)

	examples := flatExamples(4)
	examples[3].Labels = []float32{1, 2}
	sel, err := pipeline.Streaming(examples, 2, data.NewFlatBuilder[float32](b))
	require.NoError(t, err)

	_, err = drv.Fit(sel, FitOptions{Epochs: 2})
	assert.ErrorIs(t, err, data.ErrWidthMismatch)
	assert.Equal(t, 1, b.TrainSteps())
}

func TestFit_SelectorErrorAborts(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.1)
	boom := errors.New("no data")

	_, err := drv.Fit(func(int) (pipeline.Sequence, error) { return nil, boom }, FitOptions{Epochs: 2})
	assert.ErrorIs(t, err, boom)
}

func TestFit_ConfigurationErrors(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.1)

	_, err := drv.Fit(streaming(t, b, 3, 2), FitOptions{Epochs: 0})
	assert.ErrorIs(t, err, ErrInvalidEpochs)

	_, err = drv.Fit(nil, FitOptions{Epochs: 1})
	assert.ErrorIs(t, err, ErrNilSelector)

	// Two label tensors reaching a single-head driver.
	multi := []*data.Batch{{
		Features: mustDense(t, []float32{1}),
		Labels:   []tensor.Tensor{mustDense(t, []float32{1}), mustDense(t, []float32{1})},
		Size:     1,
	}}
	_, err = drv.Fit(pipeline.Fixed(pipeline.FromBatches(multi)), FitOptions{Epochs: 1})
	assert.ErrorIs(t, err, ErrHeadMismatch)
}

func mustDense(t *testing.T, values []float32) *tensor.Dense {
	t.Helper()
	d, err := tensor.NewDense(tensor.Shape{1}, values)
	require.NoError(t, err)
	return d
}

func TestNewDriver_BindingErrors(t *testing.T) {
	tests := []struct {
		name  string
		graph backend.Graph
		input string
		want  error
	}{
		{"missing input", backendtest.NewGraph([]string{"x"}, "y"), "features", backend.ErrInputNotFound},
		{"ambiguous input", backendtest.NewGraph([]string{"x", "x"}, "y"), "x", backend.ErrAmbiguousInput},
		{"no output", backendtest.NewGraph([]string{"x"}), "x", backend.ErrOutputNotFound},
		{"many outputs", backendtest.NewGraph([]string{"x"}, "a", "b"), "x", backend.ErrAmbiguousOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDriver(Config{Backend: backendtest.New(), Graph: tt.graph, Input: tt.input})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewDriver(Config{})
	assert.ErrorIs(t, err, ErrMissingBackend)

	failing := backendtest.New()
	failing.NewTrainerErr = errors.New("no device")
	_, err = NewDriver(Config{Backend: failing, Graph: backendtest.NewGraph([]string{"x"}, "y"), Input: "x"})
	assert.ErrorIs(t, err, failing.NewTrainerErr)
}

func TestEvaluate(t *testing.T) {
	b := backendtest.New()
	drv := newDriver(t, b, 0.1)

	seq, err := pipeline.Stream(flatExamples(5), 2, data.NewFlatBuilder[float32](b))
	require.NoError(t, err)

	res, err := drv.Evaluate(seq)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Batches)
	assert.Equal(t, 5, res.Samples)
	assert.Zero(t, b.TrainSteps())
	assert.Len(t, b.Steps, 3)
	assert.Positive(t, res.Loss)
}
