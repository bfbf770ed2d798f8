package train

import "errors"

// Configuration errors. They are returned from constructors or from the
// first use of a Fit call and are never retried.
var (
	ErrMissingBackend = errors.New("train: backend and graph are required")
	ErrNilSelector    = errors.New("train: batch selector is nil")
	ErrInvalidEpochs  = errors.New("train: epoch count must be > 0")
	ErrHeadMismatch   = errors.New("train: head count mismatch")
	ErrRuleLength     = errors.New("train: learning-rate rule returned wrong number of rates")
)
