package optim

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*Param
	lr         float64
	momentum   float64
	velocities [][]float64 // Allocated on first step when momentum > 0
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
//
// Returns an error if a parameter's gradient length differs from its value
// length.
func NewSGD(params []*Param, config SGDConfig) (*SGD, error) {
	if err := validate(params); err != nil {
		return nil, err
	}
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:   params,
		lr:       config.LR,
		momentum: config.Momentum,
	}, nil
}

// Step performs a single optimization step.
func (s *SGD) Step() {
	if s.momentum == 0 {
		for _, p := range s.params {
			for i, g := range p.Grad {
				p.Value[i] -= s.lr * g
			}
		}
		return
	}

	if s.velocities == nil {
		s.velocities = make([][]float64, len(s.params))
		for i, p := range s.params {
			s.velocities[i] = make([]float64, len(p.Value))
		}
	}
	for k, p := range s.params {
		v := s.velocities[k]
		for i, g := range p.Grad {
			v[i] = s.momentum*v[i] + g
			p.Value[i] -= s.lr * v[i]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
