// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimization algorithms of the reference CPU
// backend, for backends that keep parameters in flat float64 buffers.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import "github.com/born-ml/batchfit/optim"
//
//	func main() {
//	    weights := make([]float64, 784*10)
//	    w := optim.NewParam("head.weight", weights)
//
//	    optimizer, err := optim.NewAdam(
//	        []*optim.Param{w},
//	        optim.AdamConfig{LR: 0.001},
//	    )
//
//	    for _, batch := range batches {
//	        computeGradients(w.Grad, batch)
//	        optimizer.Step()
//	        optimizer.ZeroGrad()
//	    }
//	}
//
// Learning rates can be replaced between steps with SetLR; the training
// loop does so only at epoch boundaries.
package optim
