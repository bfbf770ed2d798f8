package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/born-ml/batchfit/internal/backend/cpu"
	"github.com/born-ml/batchfit/internal/config"
	"github.com/born-ml/batchfit/internal/data"
	"github.com/born-ml/batchfit/internal/dataset"
	"github.com/born-ml/batchfit/internal/parallel"
	"github.com/born-ml/batchfit/internal/pipeline"
	"github.com/born-ml/batchfit/internal/tokenizer"
	"github.com/born-ml/batchfit/internal/train"
)

// fitText trains a single head over tokenized text sequences. Each token is
// one width-1 step; the CPU backend mean-pools the steps.
func fitText(cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	tok, err := tokenizer.NewTikToken(cfg.Data.Encoding)
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.Data.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	schema := dataset.TextSchema{
		Header: cfg.Data.Header,
		Text:   *cfg.Data.TextColumn,
		Labels: cfg.Data.Labels[0],
	}
	if len(cfg.Data.Classes) > 0 {
		schema.Classes = cfg.Data.Classes[0]
	}
	sequences, err := dataset.ReadText(f, schema, tok)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Data.Path, err)
	}

	seed, initSeed := seeds(cfg)
	trainSet, validSet, err := dataset.Split(sequences, cfg.Data.ValidationRatio, seed)
	if err != nil {
		return err
	}

	graph, err := cpu.NewGraph(cpu.GraphConfig{
		Inputs:  []cpu.InputSpec{{Name: "features", Width: 1}},
		Outputs: []cpu.OutputSpec{{Name: "head0", Width: len(sequences[0].Labels)}},
	})
	if err != nil {
		return err
	}

	logger.Info("text dataset loaded",
		slog.String("path", cfg.Data.Path),
		slog.String("encoding", tok.Name()),
		slog.Int("train", len(trainSet)),
		slog.Int("validation", len(validSet)),
		slog.String("seed", seed.String()))

	s := &session{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		seed:    seed,
		backend: cpu.NewWithConfig(cpu.Config{Seed: initSeed, Parallel: parallel.DefaultConfig()}),
		graph:   graph,
	}
	loss, metric, opt, err := s.objectives()
	if err != nil {
		return err
	}
	drv, err := train.NewDriver(train.Config{
		Backend:   s.backend,
		Graph:     graph,
		Input:     "features",
		Loss:      loss,
		Eval:      metric,
		Optimizer: opt,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	builder := data.NewSequenceBuilder[float32](s.backend)
	selector, err := selectorFor(cfg, trainSet, builder, seed)
	if err != nil {
		return err
	}
	stop := newPatience(cfg.Train.Patience)
	res, err := drv.Fit(selector, train.FitOptions{
		Epochs: cfg.Train.Epochs,
		ActionPerEpoch: func(_ int, loss, _ float64) bool {
			return stop.observe(loss)
		},
		LearningRateRule: cfg.Train.Schedule.Rule(opt.LearningRate),
	})
	if err != nil {
		return err
	}
	if err := s.printCurves([]train.FitResult{*res}); err != nil {
		return err
	}

	if len(validSet) == 0 {
		return nil
	}
	seq, err := pipeline.Stream(validSet, cfg.Train.BatchSize, builder)
	if err != nil {
		return err
	}
	eval, err := drv.Evaluate(seq)
	if err != nil {
		return err
	}
	return s.printValidation([]train.EvalResult{*eval})
}
