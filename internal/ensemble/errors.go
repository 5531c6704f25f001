package ensemble

import "github.com/pkg/errors"

// Failures of the base learner itself are not wrapped: Trainer.Fit returns the
// learner's error value unchanged.
var (
    ErrInvalidConfig       = errors.New("invalid ensemble config")
    ErrInvalidSamplingSpec = errors.New("invalid sampling spec")
    ErrSchemaMismatch      = errors.New("schema mismatch")
    ErrEmptyEnsemble       = errors.New("ensemble has no models")
)
