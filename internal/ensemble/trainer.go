package ensemble

import (
    "context"
    "math/rand"
    "time"

    "github.com/pkg/errors"
    "go.uber.org/zap"
    "golang.org/x/sync/errgroup"

    "bagging/internal/data"
    "bagging/internal/models"
)

type Trainer struct {
    cfg    Config
    logger *zap.Logger
}

type Option func(*Trainer)

func WithLogger(l *zap.Logger) Option { return func(t *Trainer) { t.logger = l } }

func NewTrainer(cfg Config, opts ...Option) *Trainer {
    t := &Trainer{cfg: cfg, logger: zap.NewNop()}
    for _, o := range opts { o(t) }
    return t
}

func (t *Trainer) Config() Config { return t.cfg }

// Fit trains NumModels clones of the base estimator, each on its own
// stratified bootstrap of ds, and wraps them in an Ensemble.
//
// All bootstrap index sets are drawn first, in model order, from one generator
// seeded with Seed. Only then are the fits dispatched, at most Parallelism at a
// time. The samples are therefore a function of Seed, NumModels and ds alone,
// whatever the scheduling. The first failing fit cancels the others and its
// error is returned as is.
func (t *Trainer) Fit(ctx context.Context, ds *data.Dataset) (*Ensemble, error) {
    cfg := t.cfg
    if err := cfg.Validate(); err != nil { return nil, err }
    if ds.FeaturesCol() != cfg.featuresCol {
        return nil, errors.Wrapf(ErrSchemaMismatch, "features column is %q, want %q", ds.FeaturesCol(), cfg.featuresCol)
    }

    start := time.Now()
    rng := rand.New(rand.NewSource(cfg.seed))
    samples := make([][]int, cfg.numModels)
    for i := range samples {
        idx, err := SampleIndices(ds.Labels(), cfg.sampling, rng)
        if err != nil { return nil, err }
        samples[i] = idx
    }

    fitted := make([]models.Model, cfg.numModels)
    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(cfg.parallelism)
    for i, idx := range samples {
        i, idx := i, idx
        g.Go(func() error {
            if err := gctx.Err(); err != nil { return err }
            est, err := cfg.base.Clone(models.Params{})
            if err != nil { return errors.Wrapf(err, "clone base estimator for model %d", i) }
            t.logger.Debug("fitting ensemble member",
                zap.Int("model", i), zap.String("estimator", est.Name()), zap.Int("rows", len(idx)))
            m, err := est.Fit(gctx, ds.Rows(idx))
            if err != nil {
                t.logger.Warn("ensemble member fit failed", zap.Int("model", i), zap.Error(err))
                return err
            }
            fitted[i] = m
            return nil
        })
    }
    if err := g.Wait(); err != nil { return nil, err }

    e, err := New(fitted, cfg)
    if err != nil { return nil, err }
    t.logger.Info("ensemble fitted",
        zap.Int("models", e.NumModels()),
        zap.String("estimator", cfg.base.Name()),
        zap.Int64("seed", cfg.seed),
        zap.Int("rows", ds.Len()),
        zap.Duration("elapsed", time.Since(start)),
    )
    return e, nil
}
