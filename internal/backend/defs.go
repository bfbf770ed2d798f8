package backend

import "fmt"

// Loss selects the training objective of a trainer.
type Loss int

// Supported losses.
const (
	MSE Loss = iota
	CrossEntropy
)

// String returns the loss name.
func (l Loss) String() string {
	switch l {
	case MSE:
		return "mse"
	case CrossEntropy:
		return "cross_entropy"
	default:
		return "unknown"
	}
}

// ParseLoss converts a loss name into a Loss.
func ParseLoss(name string) (Loss, error) {
	switch name {
	case "mse":
		return MSE, nil
	case "cross_entropy", "crossentropy":
		return CrossEntropy, nil
	default:
		return 0, fmt.Errorf("backend: unknown loss %q", name)
	}
}

// Metric selects the evaluation reported next to the loss.
type Metric int

// Supported metrics.
const (
	MeanSquaredError Metric = iota
	MeanAbsoluteError
	ClassificationError
)

// String returns the metric name.
func (m Metric) String() string {
	switch m {
	case MeanSquaredError:
		return "mse"
	case MeanAbsoluteError:
		return "mae"
	case ClassificationError:
		return "classification_error"
	default:
		return "unknown"
	}
}

// ParseMetric converts a metric name into a Metric.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "mse":
		return MeanSquaredError, nil
	case "mae":
		return MeanAbsoluteError, nil
	case "classification_error", "error":
		return ClassificationError, nil
	default:
		return 0, fmt.Errorf("backend: unknown metric %q", name)
	}
}

// Algorithm selects the optimizer update rule.
type Algorithm int

// Supported optimizers.
const (
	SGD Algorithm = iota
	Adam
)

// String returns the optimizer name.
func (a Algorithm) String() string {
	switch a {
	case SGD:
		return "sgd"
	case Adam:
		return "adam"
	default:
		return "unknown"
	}
}

// ParseAlgorithm converts an optimizer name into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "sgd":
		return SGD, nil
	case "adam":
		return Adam, nil
	default:
		return 0, fmt.Errorf("backend: unknown optimizer %q", name)
	}
}

// OptimizerConfig describes the optimizer of one trainer.
type OptimizerConfig struct {
	Algorithm    Algorithm
	LearningRate float64    // Initial constant learning rate
	Momentum     float64    // SGD momentum factor (default: 0.0)
	Betas        [2]float64 // Adam moment coefficients (default: [0.9, 0.999])
	Eps          float64    // Adam numerical stability term (default: 1e-8)
}
