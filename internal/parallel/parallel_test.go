package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.GreaterOrEqual(t, cfg.NumWorkers, 1)
	assert.Equal(t, cfg.NumWorkers > 1, cfg.Enabled)
	assert.Equal(t, 64, cfg.MinChunkSize)
}

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}

	var counter int64
	n := 1000
	seen := make([]int32, n)

	For(n, func(i int) {
		atomic.AddInt64(&counter, 1)
		atomic.AddInt32(&seen[i], 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
	for i, v := range seen {
		assert.Equalf(t, int32(1), v, "index %d visited %d times", i, v)
	}
}

func TestForRows(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 2}

	rows, cols := 4, 8
	results := make([][]bool, rows)
	for r := range results {
		results[r] = make([]bool, cols)
	}

	ForRows(rows, cols, func(r, c int) {
		results[r][c] = true
	}, cfg)

	for r := range rows {
		for c := range cols {
			assert.Truef(t, results[r][c], "missing result at [%d][%d]", r, c)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	For(100, func(i int) {
		order = append(order, i)
	}, Sequential())

	assert.Len(t, order, 100)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}

	var counter int64
	For(10, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(10), counter)
}

func TestFor_Empty(t *testing.T) {
	called := false
	For(0, func(_ int) { called = true }, DefaultConfig())
	ForRows(3, 0, func(_, _ int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	data := make([]float64, 1<<16)
	for b.Loop() {
		For(len(data), func(i int) {
			data[i] = float64(i) * 0.5
		}, cfg)
	}
}
