package models

import (
    "context"
    "encoding/gob"
    "sort"

    "github.com/pkg/errors"

    "bagging/internal/data"
)

//go:generate mockgen -source=model.go -destination=mocks/mock_model.go -package=mocks

// Estimator is an unfitted learning algorithm with its hyperparameters.
type Estimator interface {
    Name() string
    // Clone returns an independent copy with overrides applied. The receiver
    // is left untouched.
    Clone(overrides Params) (Estimator, error)
    // Fit trains on ds and returns the fitted model. The receiver is left
    // untouched so one estimator can be fitted many times.
    Fit(ctx context.Context, ds *data.Dataset) (Model, error)
}

// Model is a fitted learner. Predict returns one value per row of ds, in row
// order.
type Model interface {
    Name() string
    Predict(ctx context.Context, ds *data.Dataset) ([]float64, error)
}

// Prober is implemented by models that expose a positive-class probability.
type Prober interface {
    PredictProba(ctx context.Context, ds *data.Dataset) ([]float64, error)
}

var ErrNotFitted = errors.New("model is not fitted")

var constructors = map[string]func() Estimator{
    "dt":   func() Estimator { return NewDecisionTree() },
    "rf":   func() Estimator { return NewRandomForest() },
    "gb":   func() Estimator { return NewGradientBoosting() },
    "lgbm": func() Estimator { return NewLightGBMCLI() },
}

func init() {
    gob.Register(&DecisionTree{})
    gob.Register(&RandomForest{})
    gob.Register(&GradientBoosting{})
    gob.Register(&LightGBMCLI{})
}

// New builds the estimator registered under algo (dt|rf|gb|lgbm) with params
// applied over its defaults.
func New(algo string, params Params) (Estimator, error) {
    if algo == "" { algo = "dt" }
    mk, ok := constructors[algo]
    if !ok { return nil, errors.Errorf("unknown algorithm %q (want one of %v)", algo, Algorithms()) }
    return mk().Clone(params)
}

// TuningParams maps the common command-line knobs onto the parameter names
// algo understands.
func TuningParams(algo string, estimators, maxDepth, minSamples int, lr float64) Params {
    switch algo {
    case "rf":
        return Params{"estimators": estimators, "max_depth": maxDepth, "min_samples": minSamples}
    case "gb":
        return Params{"estimators": estimators, "lr": lr, "min_samples": minSamples}
    case "lgbm":
        p := Params{"estimators": estimators, "lr": lr, "max_depth": maxDepth, "min_data_in_leaf": minSamples}
        if maxDepth > 0 { p["num_leaves"] = 1 << maxDepth }
        return p
    default:
        return Params{"max_depth": maxDepth, "min_samples_split": minSamples}
    }
}

func Algorithms() []string {
    out := make([]string, 0, len(constructors))
    for k := range constructors { out = append(out, k) }
    sort.Strings(out)
    return out
}

// binaryLabels returns the labels of ds, failing unless every label is 0 or 1.
func binaryLabels(ds *data.Dataset) ([]int, error) {
    if ds.Len() == 0 { return nil, errors.New("empty training set") }
    y := ds.Labels()
    if y == nil { return nil, errors.New("training set has no labels") }
    for i, c := range y {
        if c != 0 && c != 1 { return nil, errors.Errorf("row %d: class %d is not binary", i, c) }
    }
    return y, nil
}

func checkWidth(ds *data.Dataset, want int) error {
    for i, row := range ds.Features() {
        if len(row) != want { return errors.Errorf("row %d has %d features, model expects %d", i, len(row), want) }
    }
    return nil
}

func probaToPred(ps []float64) []float64 {
    out := make([]float64, len(ps))
    for i := range ps { if ps[i] >= 0.5 { out[i] = 1 } }
    return out
}
