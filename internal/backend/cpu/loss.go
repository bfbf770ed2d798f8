package cpu

import (
	"math"

	"github.com/born-ml/batchfit/internal/backend"
)

// objective computes the per-example loss and writes ∂L/∂z into grad.
//
// pred receives the model prediction derived from the logits z: z itself
// for MSE, Softmax(z) for cross-entropy.
type objective func(z, y, pred, grad []float64) float64

func objectiveFor(l backend.Loss) objective {
	if l == backend.CrossEntropy {
		return crossEntropy
	}
	return meanSquared
}

// meanSquared computes mean((z - y)²) with gradient 2(z - y)/width.
func meanSquared(z, y, pred, grad []float64) float64 {
	n := float64(len(z))
	sum := 0.0
	for j := range z {
		d := z[j] - y[j]
		sum += d * d
		pred[j] = z[j]
		grad[j] = 2 * d / n
	}
	return sum / n
}

// crossEntropy computes -Σ y·LogSoftmax(z).
//
// Labels may be one-hot or any non-negative distribution; the gradient is
// Softmax(z)·Σy - y, which reduces to Softmax(z) - y for one-hot labels.
func crossEntropy(z, y, pred, grad []float64) float64 {
	// Log-sum-exp trick: shift by max for numerical stability.
	maxZ := math.Inf(-1)
	for _, v := range z {
		maxZ = max(maxZ, v)
	}
	sumExp := 0.0
	for j, v := range z {
		pred[j] = math.Exp(v - maxZ)
		sumExp += pred[j]
	}
	logSum := maxZ + math.Log(sumExp)

	mass, loss := 0.0, 0.0
	for j := range z {
		pred[j] /= sumExp
		mass += y[j]
		loss -= y[j] * (z[j] - logSum)
	}
	for j := range z {
		grad[j] = pred[j]*mass - y[j]
	}
	return loss
}

// metric scores one prediction against its label.
type metric func(pred, y []float64) float64

func metricFor(m backend.Metric) metric {
	switch m {
	case backend.MeanAbsoluteError:
		return meanAbsolute
	case backend.ClassificationError:
		return classificationError
	default:
		return meanSquaredError
	}
}

func meanSquaredError(pred, y []float64) float64 {
	sum := 0.0
	for j := range pred {
		d := pred[j] - y[j]
		sum += d * d
	}
	return sum / float64(len(pred))
}

func meanAbsolute(pred, y []float64) float64 {
	sum := 0.0
	for j := range pred {
		sum += math.Abs(pred[j] - y[j])
	}
	return sum / float64(len(pred))
}

// classificationError is 1 when the predicted class differs from the label
// class. Single-output heads are thresholded at 0.5.
func classificationError(pred, y []float64) float64 {
	if len(pred) == 1 {
		if (pred[0] >= 0.5) != (y[0] >= 0.5) {
			return 1
		}
		return 0
	}
	if argmax(pred) != argmax(y) {
		return 1
	}
	return 0
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
