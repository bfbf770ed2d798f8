package train

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/pipeline"
	"github.com/google/uuid"
)

// loop is the epoch/step state machine shared by Driver and
// MultiHeadDriver. A single-head driver is a loop with one trainer.
//
// All batches of an epoch, and all heads of a batch, are processed
// sequentially on the calling goroutine.
type loop struct {
	trainers []backend.Trainer
	outputs  []backend.OutputHandle
	rates    []float64
	logger   *slog.Logger
}

// session holds the state owned by one fit call.
type session struct {
	runID      string
	start      time.Time
	lossCurves [][]float64 // [head][epoch]
	evalCurves [][]float64
}

// vectorAction and vectorRule are the multi-head callback forms every
// driver is adapted to.
type (
	vectorAction func(epoch int, loss, eval []float64) bool
	vectorRule   func(epoch int, rates []float64) ([]float64, error)
)

func newLoop(trainers []backend.Trainer, outputs []backend.OutputHandle, logger *slog.Logger) *loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rates := make([]float64, len(trainers))
	for i, t := range trainers {
		rates[i] = t.LearningRate()
	}
	return &loop{
		trainers: trainers,
		outputs:  outputs,
		rates:    rates,
		logger:   logger,
	}
}

// fit runs up to epochs epochs and returns one FitResult per head.
func (l *loop) fit(selector pipeline.Selector, epochs int, action vectorAction, rule vectorRule) ([]FitResult, error) {
	if selector == nil {
		return nil, ErrNilSelector
	}
	if epochs <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidEpochs, epochs)
	}

	heads := len(l.trainers)
	s := &session{
		runID:      uuid.NewString(),
		start:      time.Now(),
		lossCurves: make([][]float64, heads),
		evalCurves: make([][]float64, heads),
	}
	for h := range heads {
		s.lossCurves[h] = make([]float64, 0, epochs)
		s.evalCurves[h] = make([]float64, 0, epochs)
	}

	l.logger.Info("fit started",
		slog.String("run", s.runID),
		slog.Int("epochs", epochs),
		slog.Any("outputs", l.outputNames()),
		slog.Any("lr", l.rates))

	completed := 0
	for epoch := 1; epoch <= epochs; epoch++ {
		loss, eval, err := l.runEpoch(s, selector, epoch)
		if err != nil {
			l.logger.Error("fit aborted",
				slog.String("run", s.runID),
				slog.Int("epoch", epoch),
				slog.Any("error", err))
			return nil, err
		}

		for h := range heads {
			s.lossCurves[h] = append(s.lossCurves[h], loss[h])
			s.evalCurves[h] = append(s.evalCurves[h], eval[h])
		}
		completed = epoch

		if action != nil && action(epoch, slices.Clone(loss), slices.Clone(eval)) {
			l.logger.Info("early stop requested",
				slog.String("run", s.runID),
				slog.Int("epoch", epoch),
				slog.Int("requested", epochs))
			break
		}

		if rule != nil && epoch < epochs {
			if err := l.updateRates(epoch, rule); err != nil {
				return nil, err
			}
		}
	}

	elapsed := time.Since(s.start)
	results := make([]FitResult, heads)
	for h := range heads {
		results[h] = FitResult{
			RunID:     s.runID,
			Loss:      s.lossCurves[h][completed-1],
			Eval:      s.evalCurves[h][completed-1],
			LossCurve: s.lossCurves[h],
			EvalCurve: s.evalCurves[h],
			Duration:  elapsed,
			Epochs:    completed,
		}
	}

	l.logger.Info("fit finished",
		slog.String("run", s.runID),
		slog.Int("epochs", completed),
		slog.Duration("duration", elapsed))

	return results, nil
}

// runEpoch feeds every batch of the epoch to every head and returns the
// per-head averages. On error nothing of the epoch is kept.
func (l *loop) runEpoch(s *session, selector pipeline.Selector, epoch int) (loss, eval []float64, err error) {
	seq, err := selector(epoch)
	if err != nil {
		return nil, nil, fmt.Errorf("select batches for epoch %d: %w", epoch, err)
	}

	for _, t := range l.trainers {
		t.ResetAverages()
	}

	started := time.Now()
	batches, samples := 0, 0
	for batch, err := range seq {
		if err != nil {
			return nil, nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if batch.Heads() != len(l.trainers) {
			return nil, nil, fmt.Errorf("%w: epoch %d batch %d has %d label tensors, model has %d heads",
				ErrHeadMismatch, epoch, batches, batch.Heads(), len(l.trainers))
		}
		for h, t := range l.trainers {
			// Backend errors are returned untouched.
			if err := t.TrainStep(batch.Features, batch.Labels[h]); err != nil {
				return nil, nil, err
			}
		}
		batches++
		samples += batch.Size
	}

	loss = make([]float64, len(l.trainers))
	eval = make([]float64, len(l.trainers))
	for h, t := range l.trainers {
		loss[h] = t.LossAverage()
		eval[h] = t.EvalAverage()
	}

	elapsed := time.Since(started)
	throughput := 0.0
	if elapsed > 0 {
		throughput = float64(samples) / elapsed.Seconds()
	}
	l.logger.Info("epoch complete",
		slog.String("run", s.runID),
		slog.Int("epoch", epoch),
		slog.Any("loss", loss),
		slog.Any("eval", eval),
		slog.Any("lr", l.rates),
		slog.Int("batches", batches),
		slog.Int("samples", samples),
		slog.Float64("samples_per_sec", throughput))

	return loss, eval, nil
}

// updateRates applies rule and pushes every changed rate to its trainer.
func (l *loop) updateRates(epoch int, rule vectorRule) error {
	next, err := rule(epoch, slices.Clone(l.rates))
	if err != nil {
		return err
	}
	if len(next) != len(l.rates) {
		return fmt.Errorf("%w: epoch %d: got %d, want %d", ErrRuleLength, epoch, len(next), len(l.rates))
	}
	for h, rate := range next {
		if rate == l.rates[h] {
			continue
		}
		if err := l.trainers[h].SetLearningRate(rate); err != nil {
			return fmt.Errorf("set learning rate of head %d: %w", h, err)
		}
		l.logger.Debug("learning rate changed",
			slog.Int("epoch", epoch),
			slog.Int("head", h),
			slog.Float64("from", l.rates[h]),
			slog.Float64("to", rate))
		l.rates[h] = rate
	}
	return nil
}

// evaluate runs EvalStep over seq for every head.
func (l *loop) evaluate(seq pipeline.Sequence) ([]EvalResult, error) {
	if seq == nil {
		return nil, ErrNilSelector
	}
	for _, t := range l.trainers {
		t.ResetAverages()
	}

	batches, samples := 0, 0
	for batch, err := range seq {
		if err != nil {
			return nil, err
		}
		if batch.Heads() != len(l.trainers) {
			return nil, fmt.Errorf("%w: batch %d has %d label tensors, model has %d heads",
				ErrHeadMismatch, batches, batch.Heads(), len(l.trainers))
		}
		for h, t := range l.trainers {
			if err := t.EvalStep(batch.Features, batch.Labels[h]); err != nil {
				return nil, err
			}
		}
		batches++
		samples += batch.Size
	}

	results := make([]EvalResult, len(l.trainers))
	for h, t := range l.trainers {
		results[h] = EvalResult{
			Loss:    t.LossAverage(),
			Eval:    t.EvalAverage(),
			Batches: batches,
			Samples: samples,
		}
	}
	return results, nil
}

func (l *loop) outputNames() []string {
	names := make([]string, len(l.outputs))
	for i, out := range l.outputs {
		names[i] = out.Name()
	}
	return names
}
