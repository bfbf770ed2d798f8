// Package config loads the YAML run configuration of the batchfit CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/born-ml/batchfit/internal/backend"
	"github.com/born-ml/batchfit/internal/train"
	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Data  DataConfig  `yaml:"data"`
	Train TrainConfig `yaml:"train"`
	Model ModelConfig `yaml:"model"`

	LogLevel string `yaml:"log_level"`
}

// DataConfig describes the CSV dataset.
type DataConfig struct {
	Path            string  `yaml:"path"`
	Header          bool    `yaml:"header"`
	Labels          [][]int `yaml:"labels"`  // Label columns per head
	Classes         []int   `yaml:"classes"` // Optional one-hot class count per head
	ValidationRatio float64 `yaml:"validation_ratio"`

	// TextColumn switches to text mode: the column is tokenized with
	// Encoding into a sequence example and Labels must hold a single head.
	TextColumn *int   `yaml:"text_column"`
	Encoding   string `yaml:"encoding"`
}

// TrainConfig controls the training loop.
type TrainConfig struct {
	Epochs    int     `yaml:"epochs"`
	BatchSize int     `yaml:"batch_size"`
	Shuffle   bool    `yaml:"shuffle"`
	Seed      *uint64 `yaml:"seed"` // nil seeds from the clock
	Patience  int     `yaml:"patience"`

	Optimizer    string     `yaml:"optimizer"`
	LearningRate float64    `yaml:"learning_rate"`
	Momentum     float64    `yaml:"momentum"`
	Betas        [2]float64 `yaml:"betas"`

	Schedule ScheduleConfig `yaml:"schedule"`
}

// ScheduleConfig selects a learning-rate rule applied between epochs.
type ScheduleConfig struct {
	Kind   string  `yaml:"kind"`   // "", "none", "step", "exponential", "scale"
	Every  int     `yaml:"every"`  // step: epochs between decays
	Factor float64 `yaml:"factor"` // step/scale: multiplier; exponential: gamma
	Min    float64 `yaml:"min"`    // lower bound, 0 disables
}

// ModelConfig selects the per-head loss and metric.
type ModelConfig struct {
	Loss   string `yaml:"loss"`
	Metric string `yaml:"metric"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataPath     string
	Labels       [][]int
	Epochs       int
	BatchSize    int
	Seed         *uint64
	LearningRate float64
}

// Default returns a runnable configuration apart from the data path and
// label columns.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Header:          true,
			ValidationRatio: 0.2,
			Encoding:        "cl100k_base",
		},
		Train: TrainConfig{
			Epochs:       20,
			BatchSize:    32,
			Shuffle:      true,
			Optimizer:    "adam",
			LearningRate: 0.01,
		},
		Model: ModelConfig{
			Loss:   "mse",
			Metric: "mse",
		},
		LogLevel: "info",
	}
}

// Load reads a Config from YAML on top of Default and validates it.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default. Unknown keys are rejected.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataPath != "" {
		c.Data.Path = o.DataPath
	}
	if len(o.Labels) > 0 {
		c.Data.Labels = o.Labels
	}
	if o.Epochs > 0 {
		c.Train.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.Train.BatchSize = o.BatchSize
	}
	if o.Seed != nil {
		seed := *o.Seed
		c.Train.Seed = &seed
	}
	if o.LearningRate > 0 {
		c.Train.LearningRate = o.LearningRate
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Data.Path == "" {
		return errors.New("data.path must be set")
	}
	if len(c.Data.Labels) == 0 {
		return errors.New("data.labels must list at least one head")
	}
	if len(c.Data.Classes) != 0 && len(c.Data.Classes) != len(c.Data.Labels) {
		return fmt.Errorf("data.classes has %d entries for %d heads", len(c.Data.Classes), len(c.Data.Labels))
	}
	if c.Data.TextColumn != nil && len(c.Data.Labels) != 1 {
		return fmt.Errorf("text mode supports a single head (got %d)", len(c.Data.Labels))
	}
	if c.Data.ValidationRatio < 0 || c.Data.ValidationRatio >= 1 {
		return fmt.Errorf("data.validation_ratio must be in [0, 1) (got %v)", c.Data.ValidationRatio)
	}
	if c.Train.Epochs <= 0 {
		return fmt.Errorf("train.epochs must be > 0 (got %d)", c.Train.Epochs)
	}
	if c.Train.BatchSize <= 0 {
		return fmt.Errorf("train.batch_size must be > 0 (got %d)", c.Train.BatchSize)
	}
	if c.Train.LearningRate <= 0 {
		return fmt.Errorf("train.learning_rate must be > 0 (got %v)", c.Train.LearningRate)
	}
	if c.Train.Patience < 0 {
		return fmt.Errorf("train.patience must be >= 0 (got %d)", c.Train.Patience)
	}
	if _, err := backend.ParseAlgorithm(c.Train.Optimizer); err != nil {
		return err
	}
	if _, err := backend.ParseLoss(c.Model.Loss); err != nil {
		return err
	}
	if _, err := backend.ParseMetric(c.Model.Metric); err != nil {
		return err
	}
	if err := c.Train.Schedule.validate(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (s ScheduleConfig) validate() error {
	switch s.Kind {
	case "", "none":
		return nil
	case "step":
		if s.Every <= 0 {
			return fmt.Errorf("train.schedule.every must be > 0 (got %d)", s.Every)
		}
	case "exponential", "scale":
	default:
		return fmt.Errorf("train.schedule.kind %q is not one of none, step, exponential, scale", s.Kind)
	}
	if s.Factor <= 0 {
		return fmt.Errorf("train.schedule.factor must be > 0 (got %v)", s.Factor)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Optimizer converts the train section into a backend optimizer config.
func (c *Config) Optimizer() (backend.OptimizerConfig, error) {
	algo, err := backend.ParseAlgorithm(c.Train.Optimizer)
	if err != nil {
		return backend.OptimizerConfig{}, err
	}
	return backend.OptimizerConfig{
		Algorithm:    algo,
		LearningRate: c.Train.LearningRate,
		Momentum:     c.Train.Momentum,
		Betas:        c.Train.Betas,
	}, nil
}

// Rule builds the learning-rate rule, or nil when no schedule is set.
func (s ScheduleConfig) Rule(initial float64) train.Rule {
	var rule train.Rule
	switch s.Kind {
	case "step":
		rule = train.StepDecay(s.Every, s.Factor)
	case "exponential":
		rule = train.ExponentialDecay(initial, s.Factor)
	case "scale":
		rule = train.Scale(s.Factor)
	default:
		return nil
	}
	if s.Min > 0 {
		rule = train.Floor(rule, s.Min)
	}
	return rule
}
