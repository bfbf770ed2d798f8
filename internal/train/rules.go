package train

import "math"

// Rule computes the learning rate for the epoch after epoch, given the rate
// used during it. It runs only between epochs.
type Rule func(epoch int, rate float64) float64

// VectorRule is the multi-head form of Rule: one rate per head in, exactly
// one rate per head out.
type VectorRule func(epoch int, rates []float64) []float64

// Scale multiplies the rate by factor after every epoch.
//
// Scale(2) doubles the rate; Scale(0.95) is an exponential decay.
func Scale(factor float64) Rule {
	return func(_ int, rate float64) float64 {
		return rate * factor
	}
}

// StepDecay multiplies the rate by factor after every epoch that is a
// multiple of every.
func StepDecay(every int, factor float64) Rule {
	return func(epoch int, rate float64) float64 {
		if every > 0 && epoch%every == 0 {
			return rate * factor
		}
		return rate
	}
}

// ExponentialDecay sets the rate to initial·gamma^epoch, independent of the
// current rate.
func ExponentialDecay(initial, gamma float64) Rule {
	return func(epoch int, _ float64) float64 {
		return initial * math.Pow(gamma, float64(epoch))
	}
}

// Floor clamps the rate produced by rule to at least minRate.
func Floor(rule Rule, minRate float64) Rule {
	return func(epoch int, rate float64) float64 {
		return math.Max(rule(epoch, rate), minRate)
	}
}

// PerHead applies rule to every head independently.
func PerHead(rule Rule) VectorRule {
	return func(epoch int, rates []float64) []float64 {
		out := make([]float64, len(rates))
		for i, r := range rates {
			out[i] = rule(epoch, r)
		}
		return out
	}
}
