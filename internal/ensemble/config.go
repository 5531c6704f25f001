package ensemble

import (
    "github.com/go-playground/validator/v10"
    "github.com/pkg/errors"
    "go.uber.org/multierr"

    "bagging/internal/data"
    "bagging/internal/models"
)

var validate = validator.New()

// Config holds the ensemble settings. It is a value: every With method returns
// a modified copy and leaves the receiver alone, so a Config can be shared.
type Config struct {
    numModels     int
    isClassifier  bool
    threshold     int
    seed          int64
    featuresCol   string
    labelCol      string
    predictionCol string
    base          models.Estimator
    sampling      SamplingSpec
    parallelism   int
}

func DefaultConfig() Config {
    return Config{
        numModels:     3,
        isClassifier:  true,
        threshold:     2,
        featuresCol:   "features",
        labelCol:      "label",
        predictionCol: "prediction",
        sampling:      DefaultSamplingSpec(),
        parallelism:   1,
    }
}

func (c Config) NumModels() int                   { return c.numModels }
func (c Config) IsClassifier() bool               { return c.isClassifier }
func (c Config) Threshold() int                   { return c.threshold }
func (c Config) Seed() int64                      { return c.seed }
func (c Config) FeaturesCol() string              { return c.featuresCol }
func (c Config) LabelCol() string                 { return c.labelCol }
func (c Config) PredictionCol() string            { return c.predictionCol }
func (c Config) BaseEstimator() models.Estimator { return c.base }
func (c Config) Sampling() SamplingSpec           { return c.sampling.Copy() }
func (c Config) Parallelism() int                 { return c.parallelism }

func (c Config) WithNumModels(n int) Config          { c.numModels = n; return c }
func (c Config) WithClassifier(b bool) Config        { c.isClassifier = b; return c }
func (c Config) WithThreshold(t int) Config          { c.threshold = t; return c }
func (c Config) WithSeed(s int64) Config             { c.seed = s; return c }
func (c Config) WithFeaturesCol(name string) Config  { c.featuresCol = name; return c }
func (c Config) WithLabelCol(name string) Config     { c.labelCol = name; return c }
func (c Config) WithPredictionCol(name string) Config { c.predictionCol = name; return c }
func (c Config) WithParallelism(n int) Config        { c.parallelism = n; return c }

// WithBaseEstimator stores a private clone of e so later changes to e cannot
// reach the config.
func (c Config) WithBaseEstimator(e models.Estimator) (Config, error) {
    if e == nil { c.base = nil; return c, nil }
    clone, err := e.Clone(models.Params{})
    if err != nil { return c, errors.Wrap(err, "clone base estimator") }
    c.base = clone
    return c, nil
}

// WithSampling replaces the per-class rates. The default is the plain
// bootstrap over classes 0 and 1.
func (c Config) WithSampling(s SamplingSpec) Config { c.sampling = s.Copy(); return c }

// Validate reports every violated setting at once.
func (c Config) Validate() error {
    var errs error
    check := func(field string, v any, tag string) {
        if err := validate.Var(v, tag); err != nil {
            errs = multierr.Append(errs, errors.Wrapf(ErrInvalidConfig, "%s=%v must satisfy %q", field, v, tag))
        }
    }
    check("numModels", c.numModels, "min=1")
    check("threshold", c.threshold, "min=1")
    check("parallelism", c.parallelism, "min=1")
    check("featuresCol", c.featuresCol, "required")
    check("predictionCol", c.predictionCol, "required")
    if c.base == nil {
        errs = multierr.Append(errs, errors.Wrap(ErrInvalidConfig, "base estimator is not set"))
    }
    for _, class := range c.sampling.Classes() {
        errs = multierr.Append(errs, checkRate(class, c.sampling[class]))
    }
    return errs
}

// OutputSchema is the schema Ensemble.Predict produces for input in.
func (c Config) OutputSchema(in data.Schema) (data.Schema, error) {
    if in.Features != c.featuresCol {
        return data.Schema{}, errors.Wrapf(ErrSchemaMismatch, "features column is %q, want %q", in.Features, c.featuresCol)
    }
    if in.Has(c.predictionCol) {
        return data.Schema{}, errors.Wrapf(ErrSchemaMismatch, "prediction column %q already exists", c.predictionCol)
    }
    return in.With(c.predictionCol), nil
}
