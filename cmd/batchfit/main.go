// Package main provides the batchfit CLI: it loads a CSV dataset, trains the
// reference CPU backend on it and reports per-epoch statistics.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/backend/cpu"
	"github.com/born-ml/batchfit/internal/config"
	"github.com/born-ml/batchfit/internal/data"
	"github.com/born-ml/batchfit/internal/dataset"
	"github.com/born-ml/batchfit/internal/parallel"
	"github.com/born-ml/batchfit/internal/pipeline"
	"github.com/born-ml/batchfit/internal/train"
)

const version = "v0.1.0"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "batchfit: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "version" {
		fmt.Fprintf(stdout, "batchfit %s\n", version)
		return nil
	}

	fs := flag.NewFlagSet("batchfit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "Path to YAML config")
	dataPath := fs.String("data", "", "Override data.path")
	labels := fs.String("labels", "", "Override data.labels: comma-separated columns, heads separated by ';'")
	epochs := fs.Int("epochs", 0, "Override train.epochs")
	batchSize := fs.Int("batch", 0, "Override train.batch_size")
	seed := fs.String("seed", "", "Override train.seed (unsigned integer)")
	lr := fs.Float64("lr", 0, "Override train.learning_rate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	overrides := config.Overrides{
		DataPath:     *dataPath,
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		LearningRate: *lr,
	}
	if *seed != "" {
		v, err := strconv.ParseUint(*seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid -seed: %w", err)
		}
		overrides.Seed = &v
	}
	if *labels != "" {
		heads, err := parseLabels(*labels)
		if err != nil {
			return fmt.Errorf("invalid -labels: %w", err)
		}
		overrides.Labels = heads
	}
	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return fit(cfg, logger, stdout)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// session carries everything fit needs after the data is loaded.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	out     io.Writer
	seed    pipeline.Seed
	backend *cpu.Backend
	graph   *cpu.Graph
	train   []dataset.Record
	valid   []dataset.Record
}

func fit(cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	if cfg.Data.TextColumn != nil {
		return fitText(cfg, logger, out)
	}

	records, err := dataset.Load(cfg.Data.Path, dataset.Schema{
		Header:  cfg.Data.Header,
		Labels:  cfg.Data.Labels,
		Classes: cfg.Data.Classes,
	})
	if err != nil {
		return err
	}

	seed, initSeed := seeds(cfg)

	trainSet, validSet, err := dataset.Split(records, cfg.Data.ValidationRatio, seed)
	if err != nil {
		return err
	}

	outputs := make([]cpu.OutputSpec, 0, len(cfg.Data.Labels))
	for h, width := range dataset.LabelWidths(records) {
		outputs = append(outputs, cpu.OutputSpec{Name: fmt.Sprintf("head%d", h), Width: width})
	}
	graph, err := cpu.NewGraph(cpu.GraphConfig{
		Inputs:  []cpu.InputSpec{{Name: "features", Width: len(records[0].Features)}},
		Outputs: outputs,
	})
	if err != nil {
		return err
	}

	logger.Info("dataset loaded",
		slog.String("path", cfg.Data.Path),
		slog.Int("train", len(trainSet)),
		slog.Int("validation", len(validSet)),
		slog.Int("features", len(records[0].Features)),
		slog.Int("heads", len(outputs)),
		slog.String("seed", seed.String()))

	s := &session{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		seed:    seed,
		backend: cpu.NewWithConfig(cpu.Config{Seed: initSeed, Parallel: parallel.DefaultConfig()}),
		graph:   graph,
		train:   trainSet,
		valid:   validSet,
	}
	if len(outputs) == 1 {
		return s.fitSingle()
	}
	return s.fitMultiHead()
}

// seeds returns the shuffle seed and the weight initialization seed.
func seeds(cfg *config.Config) (pipeline.Seed, uint64) {
	if cfg.Train.Seed == nil {
		return pipeline.ClockSeed(), 0
	}
	return pipeline.SeedOf(*cfg.Train.Seed), *cfg.Train.Seed
}

func (s *session) objectives() (backend.Loss, backend.Metric, backend.OptimizerConfig, error) {
	loss, err := backend.ParseLoss(s.cfg.Model.Loss)
	if err != nil {
		return 0, 0, backend.OptimizerConfig{}, err
	}
	metric, err := backend.ParseMetric(s.cfg.Model.Metric)
	if err != nil {
		return 0, 0, backend.OptimizerConfig{}, err
	}
	opt, err := s.cfg.Optimizer()
	if err != nil {
		return 0, 0, backend.OptimizerConfig{}, err
	}
	return loss, metric, opt, nil
}

func (s *session) fitSingle() error {
	loss, metric, opt, err := s.objectives()
	if err != nil {
		return err
	}
	drv, err := train.NewDriver(train.Config{
		Backend:   s.backend,
		Graph:     s.graph,
		Input:     "features",
		Loss:      loss,
		Eval:      metric,
		Optimizer: opt,
		Logger:    s.logger,
	})
	if err != nil {
		return err
	}

	examples, err := dataset.Flat(s.train)
	if err != nil {
		return err
	}
	builder := data.NewFlatBuilder[float32](s.backend)
	selector, err := selectorFor(s.cfg, examples, builder, s.seed)
	if err != nil {
		return err
	}

	stop := newPatience(s.cfg.Train.Patience)
	res, err := drv.Fit(selector, train.FitOptions{
		Epochs: s.cfg.Train.Epochs,
		ActionPerEpoch: func(_ int, loss, _ float64) bool {
			return stop.observe(loss)
		},
		LearningRateRule: s.cfg.Train.Schedule.Rule(opt.LearningRate),
	})
	if err != nil {
		return err
	}
	if err := s.printCurves([]train.FitResult{*res}); err != nil {
		return err
	}

	if len(s.valid) == 0 {
		return nil
	}
	validation, err := dataset.Flat(s.valid)
	if err != nil {
		return err
	}
	seq, err := pipeline.Stream(validation, s.cfg.Train.BatchSize, builder)
	if err != nil {
		return err
	}
	eval, err := drv.Evaluate(seq)
	if err != nil {
		return err
	}
	return s.printValidation([]train.EvalResult{*eval})
}

func (s *session) fitMultiHead() error {
	loss, metric, opt, err := s.objectives()
	if err != nil {
		return err
	}
	heads := len(s.cfg.Data.Labels)
	cfg := train.MultiHeadConfig{
		Backend: s.backend,
		Graph:   s.graph,
		Input:   "features",
		Logger:  s.logger,
	}
	for range heads {
		cfg.Losses = append(cfg.Losses, loss)
		cfg.Evals = append(cfg.Evals, metric)
		cfg.Optimizers = append(cfg.Optimizers, opt)
	}
	drv, err := train.NewMultiHeadDriver(cfg)
	if err != nil {
		return err
	}

	builder := data.NewMultiHeadBuilder[float32](s.backend, false)
	selector, err := selectorFor(s.cfg, dataset.MultiHead(s.train), builder, s.seed)
	if err != nil {
		return err
	}

	var rule train.VectorRule
	if r := s.cfg.Train.Schedule.Rule(opt.LearningRate); r != nil {
		rule = train.PerHead(r)
	}
	stop := newPatience(s.cfg.Train.Patience)
	results, err := drv.Fit(selector, train.MultiHeadFitOptions{
		Epochs: s.cfg.Train.Epochs,
		ActionPerEpoch: func(_ int, loss, _ []float64) bool {
			total := 0.0
			for _, l := range loss {
				total += l
			}
			return stop.observe(total)
		},
		LearningRateRule: rule,
	})
	if err != nil {
		return err
	}
	if err := s.printCurves(results); err != nil {
		return err
	}

	if len(s.valid) == 0 {
		return nil
	}
	seq, err := pipeline.Stream(dataset.MultiHead(s.valid), s.cfg.Train.BatchSize, builder)
	if err != nil {
		return err
	}
	evals, err := drv.Evaluate(seq)
	if err != nil {
		return err
	}
	return s.printValidation(evals)
}

// parseLabels turns "2;3,4" into one label group per head.
func parseLabels(list string) ([][]int, error) {
	var heads [][]int
	for group := range strings.SplitSeq(list, ";") {
		cols, err := dataset.ColumnsOf(group)
		if err != nil {
			return nil, err
		}
		heads = append(heads, cols)
	}
	return heads, nil
}

func selectorFor[E any](cfg *config.Config, examples []E, builder data.Builder[E], seed pipeline.Seed) (pipeline.Selector, error) {
	if cfg.Train.Shuffle {
		return pipeline.Regenerate(examples, cfg.Train.BatchSize, builder, seed)
	}
	return pipeline.Streaming(examples, cfg.Train.BatchSize, builder)
}

func (s *session) printCurves(results []train.FitResult) error {
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "epoch")
	for h := range results {
		fmt.Fprintf(w, "\tloss[%d]\t%s[%d]", h, s.cfg.Model.Metric, h)
	}
	fmt.Fprintln(w)
	for _, st := range train.MultiHeadStats(results) {
		fmt.Fprintf(w, "%d", st.Epoch)
		for h := range results {
			fmt.Fprintf(w, "\t%.6f\t%.6f", st.Loss[h], st.Eval[h])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "run %s: %d epochs in %s\n", results[0].RunID, results[0].Epochs, results[0].Duration)
	return nil
}

func (s *session) printValidation(results []train.EvalResult) error {
	if len(results) == 0 {
		return errors.New("no validation results")
	}
	for h, r := range results {
		fmt.Fprintf(s.out, "validation head %d: loss=%.6f %s=%.6f (%d samples)\n",
			h, r.Loss, s.cfg.Model.Metric, r.Eval, r.Samples)
	}
	return nil
}

// patience requests a stop once the loss has not improved for a number of
// consecutive epochs. Zero disables it.
type patience struct {
	limit int
	best  float64
	stale int
	seen  bool
}

func newPatience(limit int) *patience {
	return &patience{limit: limit}
}

func (p *patience) observe(loss float64) bool {
	if p.limit <= 0 {
		return false
	}
	if !p.seen || loss < p.best {
		p.best, p.stale, p.seen = loss, 0, true
		return false
	}
	p.stale++
	return p.stale >= p.limit
}
