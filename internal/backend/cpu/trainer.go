package cpu

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/optim"
	"github.com/born-ml/batchfit/internal/parallel"
	"github.com/born-ml/batchfit/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// ErrWidthMismatch is returned when a batch does not fit the bound head.
var ErrWidthMismatch = errors.New("cpu: tensor width does not match graph")

// Trainer optimizes one affine head y = pool(x)·W + b.
//
// W is stored as an in×out gonum matrix whose backing slice is handed to
// the optimizer, so optimizer steps update the matrix in place.
type Trainer struct {
	in  *input
	out *output

	w *mat.Dense    // [in, out]
	b *mat.VecDense // [out]

	weight *optim.Param
	bias   *optim.Param
	opt    optim.Optimizer

	objective objective
	metric    metric
	loss      backend.Loss
	par       parallel.Config

	lossSum float64
	evalSum float64
	seen    int
}

func newTrainer(in *input, out *output, cfg backend.TrainerConfig, rng *rand.Rand, par parallel.Config) (*Trainer, error) {
	weights := make([]float64, in.width*out.width)
	xavier(weights, in.width, out.width, rng)
	biases := make([]float64, out.width)

	t := &Trainer{
		in:        in,
		out:       out,
		w:         mat.NewDense(in.width, out.width, weights),
		b:         mat.NewVecDense(out.width, biases),
		weight:    optim.NewParam(out.name+".weight", weights),
		bias:      optim.NewParam(out.name+".bias", biases),
		objective: objectiveFor(cfg.Loss),
		metric:    metricFor(cfg.Eval),
		loss:      cfg.Loss,
		par:       par,
	}

	params := []*optim.Param{t.weight, t.bias}
	var err error
	switch cfg.Optimizer.Algorithm {
	case backend.SGD:
		t.opt, err = optim.NewSGD(params, optim.SGDConfig{
			LR:       cfg.Optimizer.LearningRate,
			Momentum: cfg.Optimizer.Momentum,
		})
	case backend.Adam:
		t.opt, err = optim.NewAdam(params, optim.AdamConfig{
			LR:    cfg.Optimizer.LearningRate,
			Betas: cfg.Optimizer.Betas,
			Eps:   cfg.Optimizer.Eps,
		})
	default:
		err = fmt.Errorf("cpu: unsupported optimizer %v", cfg.Optimizer.Algorithm)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TrainStep implements backend.Trainer.
func (t *Trainer) TrainStep(features, labels tensor.Tensor) error {
	x, err := t.pool(features)
	if err != nil {
		return err
	}
	y, err := t.targets(labels, x.RawMatrix().Rows)
	if err != nil {
		return err
	}

	z := t.affine(x)
	n, _ := z.Dims()
	pred := mat.NewDense(n, t.out.width, nil)
	dz := mat.NewDense(n, t.out.width, nil)
	t.score(z, y, pred, dz)

	// Mean over the batch.
	dz.Scale(1/float64(n), dz)

	gw := mat.NewDense(t.in.width, t.out.width, t.weight.Grad)
	gw.Mul(x.T(), dz)
	parallel.For(t.out.width, func(j int) {
		sum := 0.0
		for i := range n {
			sum += dz.At(i, j)
		}
		t.bias.Grad[j] = sum
	}, t.par)

	t.opt.Step()
	t.opt.ZeroGrad()
	return nil
}

// EvalStep implements backend.Trainer.
func (t *Trainer) EvalStep(features, labels tensor.Tensor) error {
	x, err := t.pool(features)
	if err != nil {
		return err
	}
	y, err := t.targets(labels, x.RawMatrix().Rows)
	if err != nil {
		return err
	}

	z := t.affine(x)
	n, _ := z.Dims()
	pred := mat.NewDense(n, t.out.width, nil)
	dz := mat.NewDense(n, t.out.width, nil)
	t.score(z, y, pred, dz)
	return nil
}

// Predict returns the head predictions for a batch: raw outputs for MSE
// heads, class probabilities for cross-entropy heads.
func (t *Trainer) Predict(features tensor.Tensor) (*mat.Dense, error) {
	x, err := t.pool(features)
	if err != nil {
		return nil, err
	}
	z := t.affine(x)
	if t.loss != backend.CrossEntropy {
		return z, nil
	}
	n, _ := z.Dims()
	pred := mat.NewDense(n, t.out.width, nil)
	scratch := make([]float64, t.out.width)
	for i := range n {
		// Zero labels: only the softmax side effect is wanted.
		crossEntropy(z.RawRowView(i), make([]float64, t.out.width), pred.RawRowView(i), scratch)
	}
	return pred, nil
}

// ResetAverages implements backend.Trainer.
func (t *Trainer) ResetAverages() {
	t.lossSum, t.evalSum, t.seen = 0, 0, 0
}

// LossAverage implements backend.Trainer.
func (t *Trainer) LossAverage() float64 {
	if t.seen == 0 {
		return 0
	}
	return t.lossSum / float64(t.seen)
}

// EvalAverage implements backend.Trainer.
func (t *Trainer) EvalAverage() float64 {
	if t.seen == 0 {
		return 0
	}
	return t.evalSum / float64(t.seen)
}

// LearningRate implements backend.Trainer.
func (t *Trainer) LearningRate() float64 {
	return t.opt.GetLR()
}

// SetLearningRate implements backend.Trainer.
func (t *Trainer) SetLearningRate(rate float64) error {
	if !(rate > 0) || math.IsInf(rate, 1) {
		return fmt.Errorf("%w: %v", backend.ErrInvalidRate, rate)
	}
	t.opt.SetLR(rate)
	return nil
}

// Weights returns the head parameters. The matrices alias trainer state.
func (t *Trainer) Weights() (*mat.Dense, *mat.VecDense) {
	return t.w, t.b
}

// affine computes x·W + b.
func (t *Trainer) affine(x *mat.Dense) *mat.Dense {
	var z mat.Dense
	z.Mul(x, t.w)
	n, _ := z.Dims()
	bias := t.b.RawVector().Data
	parallel.For(n, func(i int) {
		row := z.RawRowView(i)
		for j := range row {
			row[j] += bias[j]
		}
	}, t.par)
	return &z
}

// score fills pred and dz row by row and folds the batch into the rolling
// averages.
func (t *Trainer) score(z, y, pred, dz *mat.Dense) {
	n, _ := z.Dims()
	losses := make([]float64, n)
	evals := make([]float64, n)
	parallel.For(n, func(i int) {
		p := pred.RawRowView(i)
		losses[i] = t.objective(z.RawRowView(i), y.RawRowView(i), p, dz.RawRowView(i))
		evals[i] = t.metric(p, y.RawRowView(i))
	}, t.par)

	for i := range n {
		t.lossSum += losses[i]
		t.evalSum += evals[i]
	}
	t.seen += n
}

// pool converts features into an [n, in] matrix. Sequences are averaged
// over their steps.
func (t *Trainer) pool(features tensor.Tensor) (*mat.Dense, error) {
	switch f := features.(type) {
	case *tensor.Dense:
		if f.Width() != t.in.width {
			return nil, fmt.Errorf("%w: input %q wants width %d, got %d", ErrWidthMismatch, t.in.name, t.in.width, f.Width())
		}
		x := mat.NewDense(f.Len(), t.in.width, nil)
		parallel.For(f.Len(), func(i int) {
			row := x.RawRowView(i)
			for j, v := range f.Row(i) {
				row[j] = float64(v)
			}
		}, t.par)
		return x, nil
	case *tensor.Ragged:
		if f.StepWidth() != t.in.width {
			return nil, fmt.Errorf("%w: input %q wants step width %d, got %d", ErrWidthMismatch, t.in.name, t.in.width, f.StepWidth())
		}
		x := mat.NewDense(f.Len(), t.in.width, nil)
		parallel.For(f.Len(), func(i int) {
			row := x.RawRowView(i)
			seq := f.Sequence(i)
			for k, v := range seq {
				row[k%t.in.width] += float64(v)
			}
			steps := float64(f.Steps(i))
			for j := range row {
				row[j] /= steps
			}
		}, t.par)
		return x, nil
	default:
		return nil, fmt.Errorf("cpu: unsupported feature tensor %T", features)
	}
}

// targets converts labels into an [n, out] matrix.
func (t *Trainer) targets(labels tensor.Tensor, n int) (*mat.Dense, error) {
	l, ok := labels.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("cpu: unsupported label tensor %T", labels)
	}
	if l.Width() != t.out.width {
		return nil, fmt.Errorf("%w: output %q wants width %d, got %d", ErrWidthMismatch, t.out.name, t.out.width, l.Width())
	}
	if l.Len() != n {
		return nil, fmt.Errorf("%w: %d labels for %d examples", tensor.ErrShapeMismatch, l.Len(), n)
	}
	y := mat.NewDense(n, t.out.width, nil)
	for i := range n {
		row := y.RawRowView(i)
		for j, v := range l.Row(i) {
			row[j] = float64(v)
		}
	}
	return y, nil
}
