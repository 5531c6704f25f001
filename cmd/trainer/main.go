package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"bagging/internal/config"
	"bagging/internal/data"
	"bagging/internal/ensemble"
	"bagging/internal/models"
	"bagging/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    regen := flag.Bool("regen", true, "Regenerate the synthetic dataset before training")
    n := flag.Int("n", 20000, "Number of synthetic rows")
    posRate := flag.Float64("pos_rate", 0.08, "Base positive rate of the synthetic dataset")
    dataPath := flag.String("data", "data/synthetic.csv", "Labeled CSV to train on")
    labelCol := flag.String("label", "label", "Label column of the CSV")
    algo := flag.String("algo", "dt", "Base learner: dt|rf|gb|lgbm")
    nModels := flag.Int("n_models", 3, "Number of ensemble members")
    threshold := flag.Int("threshold", 2, "Vote sum at which the decision becomes 0")
    seed := flag.Int64("seed", 42, "Seed for sampling and splitting")
    parallelism := flag.Int("parallelism", 1, "Concurrent member fits")
    cfgPath := flag.String("config", "", "Optional YAML/TOML config applied over the flags")
    out := flag.String("out", "models/ensemble.gob", "Where to save the fitted ensemble")
    estimators := flag.Int("estimators", 30, "Estimators inside rf/gb/lgbm learners")
    maxDepth := flag.Int("max_depth", 6, "Maximum tree depth")
    minSamples := flag.Int("min_samples", 100, "Minimum samples to split")
    lr := flag.Float64("lr", 0.1, "Learning rate for gb/lgbm")
    flag.Parse()

    if *regen {
        logger.Info("generating synthetic dataset", zap.Int("n", *n), zap.String("out", *dataPath))
        if err := data.GenerateSynthetic(*n, *posRate, *seed, *dataPath); err != nil {
            logger.Fatal("generate dataset", zap.Error(err))
        }
    }

    base, err := models.New(*algo, models.TuningParams(*algo, *estimators, *maxDepth, *minSamples, *lr))
    if err != nil { logger.Fatal("build base estimator", zap.Error(err)) }
    cfg, err := ensemble.DefaultConfig().
        WithNumModels(*nModels).
        WithThreshold(*threshold).
        WithSeed(*seed).
        WithLabelCol(*labelCol).
        WithParallelism(*parallelism).
        WithBaseEstimator(base)
    if err != nil { logger.Fatal("configure ensemble", zap.Error(err)) }
    if *cfgPath != "" {
        f, err := config.Load(*cfgPath)
        if err != nil { logger.Fatal("load config", zap.Error(err)) }
        if cfg, err = f.Apply(cfg); err != nil { logger.Fatal("apply config", zap.Error(err)) }
    }

    ds, err := data.ReadFile(*dataPath, data.ReadOptions{FeaturesCol: cfg.FeaturesCol(), Label: cfg.LabelCol()})
    if err != nil { logger.Fatal("read dataset", zap.Error(err)) }
    train, test, err := data.StratifiedSplit(ds, 0.8, cfg.Seed())
    if err != nil { logger.Fatal("split dataset", zap.Error(err)) }
    pos, neg := classCounts(ds.Labels())
    logger.Info("class distribution", zap.Int("positive", pos), zap.Int("negative", neg),
        zap.Int("train", train.Len()), zap.Int("test", test.Len()))

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
    defer stop()

    ens, err := ensemble.NewTrainer(cfg, ensemble.WithLogger(logger)).Fit(ctx, train)
    if err != nil { logger.Fatal("fit ensemble", zap.Error(err)) }

    rep, err := evaluate(ctx, ens, test)
    if err != nil { logger.Fatal("evaluate ensemble", zap.Error(err)) }
    logger.Info("holdout metrics",
        zap.String("estimator", cfg.BaseEstimator().Name()),
        zap.Int("models", ens.NumModels()),
        zap.Int("threshold", ens.Config().Threshold()),
        zap.Float64s("member_accuracy", rep.memberAcc),
        zap.Float64("member_accuracy_mean", rep.meanAcc),
        zap.Float64("member_accuracy_std", rep.stdAcc),
        zap.Int("decided_zero", rep.zeros),
        zap.Int("decided_one", rep.ones),
        zap.Float64("quorum_accuracy", rep.quorumAcc),
    )

    if err := ensemble.SaveFile(*out, ens); err != nil { logger.Fatal("save ensemble", zap.Error(err)) }
    logger.Info("ensemble saved", zap.String("path", *out))
    fmt.Println("Ensemble:", ens.NumModels(), "x", cfg.BaseEstimator().Name())
}

type report struct {
    memberAcc []float64
    meanAcc   float64
    stdAcc    float64
    zeros     int
    ones      int
    quorumAcc float64
}

// evaluate scores every member on ds and reads a 0 decision as "the positive
// vote quorum was reached".
func evaluate(ctx context.Context, ens *ensemble.Ensemble, ds *data.Dataset) (report, error) {
    var rep report
    preds, err := ens.MemberPredictions(ctx, ds)
    if err != nil { return rep, err }
    y := ds.Labels()
    for _, p := range preds { rep.memberAcc = append(rep.memberAcc, accuracy(y, p)) }
    rep.meanAcc, rep.stdAcc = stat.MeanStdDev(rep.memberAcc, nil)

    decisions, err := ensemble.Aggregate(preds, float64(ens.Config().Threshold()))
    if err != nil { return rep, err }
    if rep.quorumAcc, err = ensemble.QuorumAccuracy(y, decisions); err != nil { return rep, err }
    for _, d := range decisions { if d == 0 { rep.zeros++ } else { rep.ones++ } }
    return rep, nil
}

func classCounts(y []int) (pos, neg int) {
    for _, c := range y { if c == 1 { pos++ } else { neg++ } }
    return
}

func accuracy(y []int, p []float64) float64 {
    if len(y) == 0 { return 0 }
    c := 0
    for i := range y { if float64(y[i]) == p[i] { c++ } }
    return float64(c) / float64(len(y))
}
