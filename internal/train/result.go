package train

import "time"

// FitResult is the outcome of one training session. It is created once at
// the end of Fit and never mutated afterwards.
type FitResult struct {
	RunID     string        // Identifier shared by every head of one Fit call
	Loss      float64       // Last entry of LossCurve
	Eval      float64       // Last entry of EvalCurve
	LossCurve []float64     // One entry per completed epoch
	EvalCurve []float64     // One entry per completed epoch
	Duration  time.Duration // Wall-clock time of the whole Fit call
	Epochs    int           // Epochs actually run (less than requested on early stop)
}

// EpochStats holds the averages of one completed epoch.
type EpochStats struct {
	Epoch int
	Loss  float64
	Eval  float64
}

// Stats returns the per-epoch statistics recorded in r.
func (r *FitResult) Stats() []EpochStats {
	stats := make([]EpochStats, len(r.LossCurve))
	for i := range stats {
		stats[i] = EpochStats{Epoch: i + 1, Loss: r.LossCurve[i], Eval: r.EvalCurve[i]}
	}
	return stats
}

// EvalResult is the outcome of an Evaluate call.
type EvalResult struct {
	Loss    float64
	Eval    float64
	Batches int
	Samples int
}

// HeadStats holds the averages of one completed epoch of a multi-head fit,
// one entry per head.
type HeadStats struct {
	Epoch int
	Loss  []float64
	Eval  []float64
}

// MultiHeadStats transposes per-head results into per-epoch statistics.
// Every result must come from the same Fit call.
func MultiHeadStats(results []FitResult) []HeadStats {
	if len(results) == 0 {
		return nil
	}
	stats := make([]HeadStats, results[0].Epochs)
	for e := range stats {
		stats[e] = HeadStats{
			Epoch: e + 1,
			Loss:  make([]float64, len(results)),
			Eval:  make([]float64, len(results)),
		}
		for h, r := range results {
			stats[e].Loss[h] = r.LossCurve[e]
			stats[e].Eval[h] = r.EvalCurve[e]
		}
	}
	return stats
}
