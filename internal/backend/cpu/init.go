package cpu

import (
	"math"
	"math/rand/v2"
)

// xavier fills w with values drawn from
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
func xavier(w []float64, fanIn, fanOut int, rng *rand.Rand) {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	for i := range w {
		w[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
}
