// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go reference backend.
//
// # Overview
//
// Every graph head is an affine map y = pool(x)·W + b over one shared
// input:
//   - Pure Go implementation (no CGO), matrices backed by gonum
//   - Sequence inputs mean-pooled across steps
//   - MSE and softmax cross-entropy losses
//   - SGD (with momentum) and Adam optimizers
//   - Row work spread over physical cores
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/batchfit/backend"
//	    "github.com/born-ml/batchfit/backend/cpu"
//	    "github.com/born-ml/batchfit/data"
//	    "github.com/born-ml/batchfit/train"
//	)
//
//	func main() {
//	    b := cpu.New()
//	    g, _ := cpu.NewGraph(cpu.GraphConfig{
//	        Inputs:  []cpu.InputSpec{{Name: "features", Width: 4}},
//	        Outputs: []cpu.OutputSpec{{Name: "species", Width: 3}},
//	    })
//	    drv, _ := train.NewDriver(train.Config{
//	        Backend:   b,
//	        Graph:     g,
//	        Input:     "features",
//	        Loss:      backend.CrossEntropy,
//	        Eval:      backend.ClassificationError,
//	        Optimizer: backend.OptimizerConfig{Algorithm: backend.Adam, LearningRate: 0.01},
//	    })
//	    sel, _ := data.Regenerate(examples, 16, data.NewFlatBuilder[float32](b), data.SeedOf(1))
//	    res, _ := drv.Fit(sel, train.FitOptions{Epochs: 50})
//	}
package cpu
