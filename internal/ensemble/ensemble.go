package ensemble

import (
    "context"

    "github.com/pkg/errors"
    "golang.org/x/sync/errgroup"

    "bagging/internal/data"
    "bagging/internal/models"
)

// Ensemble is a fitted, immutable set of models together with the Config it
// was fitted with. It is safe for concurrent use as long as its members are.
type Ensemble struct {
    models []models.Model
    cfg    Config
}

// New wraps fitted models in draw order. At least one model is required.
func New(ms []models.Model, cfg Config) (*Ensemble, error) {
    if len(ms) == 0 { return nil, ErrEmptyEnsemble }
    for i, m := range ms {
        if m == nil { return nil, errors.Wrapf(ErrEmptyEnsemble, "model %d is nil", i) }
    }
    if err := checkThreshold(cfg.threshold); err != nil { return nil, err }
    if err := checkPredictionCol(cfg.predictionCol); err != nil { return nil, err }
    cfg.numModels = len(ms)
    return &Ensemble{models: append([]models.Model(nil), ms...), cfg: cfg}, nil
}

func (e *Ensemble) NumModels() int { return len(e.models) }

func (e *Ensemble) Config() Config { return e.cfg }

// Models returns the members in draw order.
func (e *Ensemble) Models() []models.Model { return append([]models.Model(nil), e.models...) }

// WithThreshold returns a copy deciding with threshold t.
func (e *Ensemble) WithThreshold(t int) (*Ensemble, error) {
    if err := checkThreshold(t); err != nil { return nil, err }
    return &Ensemble{models: e.models, cfg: e.cfg.WithThreshold(t)}, nil
}

// WithPredictionCol returns a copy writing its decisions to column name.
func (e *Ensemble) WithPredictionCol(name string) (*Ensemble, error) {
    if err := checkPredictionCol(name); err != nil { return nil, err }
    return &Ensemble{models: e.models, cfg: e.cfg.WithPredictionCol(name)}, nil
}

func checkThreshold(t int) error {
    if err := validate.Var(t, "min=1"); err != nil {
        return errors.Wrapf(ErrInvalidConfig, "threshold=%d must be at least 1", t)
    }
    return nil
}

func checkPredictionCol(name string) error {
    if name == "" { return errors.Wrap(ErrInvalidConfig, "prediction column name is empty") }
    return nil
}

func (e *Ensemble) OutputSchema(in data.Schema) (data.Schema, error) { return e.cfg.OutputSchema(in) }

// MemberPredictions runs every member over ds concurrently and returns their
// outputs in member order. Each output must have one value per row of ds.
func (e *Ensemble) MemberPredictions(ctx context.Context, ds *data.Dataset) ([][]float64, error) {
    out := make([][]float64, len(e.models))
    g, gctx := errgroup.WithContext(ctx)
    if e.cfg.parallelism > 0 { g.SetLimit(e.cfg.parallelism) }
    for i, m := range e.models {
        i, m := i, m
        g.Go(func() error {
            if err := gctx.Err(); err != nil { return err }
            p, err := m.Predict(gctx, ds)
            if err != nil { return errors.Wrapf(err, "model %d (%s) predict", i, m.Name()) }
            if len(p) != ds.Len() {
                return errors.Wrapf(ErrSchemaMismatch, "model %d (%s) produced %d predictions for %d rows", i, m.Name(), len(p), ds.Len())
            }
            out[i] = p
            return nil
        })
    }
    if err := g.Wait(); err != nil { return nil, err }
    return out, nil
}

// Votes returns the per-row sum of member predictions.
func (e *Ensemble) Votes(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    preds, err := e.MemberPredictions(ctx, ds)
    if err != nil { return nil, err }
    return Sum(preds)
}

// Predict returns ds with one more column, PredictionCol, holding the ensemble
// decision for each row.
//
// TODO: honor IsClassifier (majority vote for classifiers, mean for
// regressors) once the inverted 0/1 decision is no longer consumed downstream.
func (e *Ensemble) Predict(ctx context.Context, ds *data.Dataset) (*data.Dataset, error) {
    if _, err := e.OutputSchema(ds.Schema()); err != nil { return nil, err }
    preds, err := e.MemberPredictions(ctx, ds)
    if err != nil { return nil, err }
    decisions, err := Aggregate(preds, float64(e.cfg.threshold))
    if err != nil { return nil, err }
    return ds.WithColumn(e.cfg.predictionCol, decisions)
}
