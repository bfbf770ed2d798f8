package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// regressionCSV writes y = x0 - 2·x1 and z = x0 + x1 as two label columns.
func regressionCSV(n int) string {
	var b strings.Builder
	b.WriteString("x0,x1,y,z\n")
	for i := range n {
		x0 := float64(i%7) / 7
		x1 := float64(i%5) / 5
		fmt.Fprintf(&b, "%g,%g,%g,%g\n", x0, x1, x0-2*x1, x0+x1)
	}
	return b.String()
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out, &bytes.Buffer{}))
	assert.Equal(t, "batchfit "+version+"\n", out.String())
}

func TestRun_SingleHead(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "data.csv", regressionCSV(40))
	cfgPath := writeFile(t, dir, "config.yaml", `
data:
  labels: [[2]]
  validation_ratio: 0.25
train:
  epochs: 4
  batch_size: 8
  optimizer: sgd
  learning_rate: 0.1
  schedule:
    kind: step
    every: 2
    factor: 0.5
model:
  loss: mse
  metric: mae
log_level: error
`)
	// Column 3 is an extra feature for the single-head run.
	var out, errOut bytes.Buffer
	err := run([]string{"-config", cfgPath, "-data", csvPath, "-seed", "0"}, &out, &errOut)
	require.NoError(t, err, errOut.String())

	text := out.String()
	assert.Contains(t, text, "loss[0]")
	assert.Contains(t, text, "mae[0]")
	assert.Contains(t, text, "4 epochs")
	assert.Contains(t, text, "validation head 0")
	assert.Contains(t, text, "(10 samples)")
}

func TestRun_MultiHead(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "data.csv", regressionCSV(30))
	cfgPath := writeFile(t, dir, "config.yaml", fmt.Sprintf(`
data:
  path: %s
  labels: [[2], [3]]
  validation_ratio: 0
train:
  epochs: 3
  batch_size: 7
  shuffle: false
log_level: error
`, csvPath))

	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"-config", cfgPath, "-epochs", "2"}, &out, &errOut), errOut.String())

	text := out.String()
	assert.Contains(t, text, "loss[1]")
	assert.Contains(t, text, "2 epochs")
	assert.NotContains(t, text, "validation")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "data.csv", regressionCSV(10))

	tests := []struct {
		name string
		args []string
	}{
		{"bad flag", []string{"-nope"}},
		{"bad seed", []string{"-data", csvPath, "-seed", "-1"}},
		{"missing labels", []string{"-data", csvPath}},
		{"bad labels", []string{"-data", csvPath, "-labels", "2;x"}},
		{"missing config", []string{"-config", filepath.Join(dir, "none.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(tt.args, &bytes.Buffer{}, &bytes.Buffer{}))
		})
	}
}

func TestRun_LabelsFlag(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "data.csv", regressionCSV(30))

	var out, errOut bytes.Buffer
	err := run([]string{"-data", csvPath, "-labels", "2;3", "-epochs", "2", "-seed", "5"}, &out, &errOut)
	require.NoError(t, err, errOut.String())
	assert.Contains(t, out.String(), "loss[1]")
	assert.Contains(t, out.String(), "validation head 1")
}

func TestParseLabels(t *testing.T) {
	heads, err := parseLabels("2; 3,4")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2}, {3, 4}}, heads)

	_, err = parseLabels("2;")
	assert.Error(t, err)
}

func TestPatience(t *testing.T) {
	p := newPatience(2)
	assert.False(t, p.observe(1.0))
	assert.False(t, p.observe(0.5))
	assert.False(t, p.observe(0.6))
	assert.True(t, p.observe(0.7))

	disabled := newPatience(0)
	for range 5 {
		assert.False(t, disabled.observe(1))
	}
}
