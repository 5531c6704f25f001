package main

import (
    "context"
    "encoding/csv"
    "flag"
    "fmt"
    "os"
    "path/filepath"
    "strconv"

    "go.uber.org/zap"
    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "bagging/internal/data"
    "bagging/internal/ensemble"
    "bagging/internal/models"
    "bagging/pkg/utils"
)

// analyzer fits the largest ensemble once and scores every prefix of it. The
// members are drawn in order from one seed, so the first k members of the
// largest ensemble are exactly the ensemble a k-model fit would produce.
func main() {
    logger := utils.Logger()
    defer logger.Sync()

    algo := flag.String("algo", "dt", "Base learner: dt|rf|gb|lgbm")
    maxModels := flag.Int("max_models", 15, "Largest ensemble size in the sweep")
    threshold := flag.Int("threshold", 0, "Decision threshold; 0 uses a majority of the current size")
    seed := flag.Int64("seed", 42, "Seed for sampling and splitting")
    parallelism := flag.Int("parallelism", 4, "Concurrent member fits")
    estimators := flag.Int("estimators", 30, "Estimators inside rf/gb/lgbm learners")
    maxDepth := flag.Int("max_depth", 6, "Maximum tree depth")
    minSamples := flag.Int("min_samples", 100, "Minimum samples to split")
    lr := flag.Float64("lr", 0.1, "Learning rate for gb/lgbm")
    dataPath := flag.String("data", "data/synthetic.csv", "Labeled CSV")
    labelCol := flag.String("label", "label", "Label column of the CSV")
    outImg := flag.String("out_img", "data/ensemble_curve.png", "PNG output")
    outCsv := flag.String("out_csv", "data/ensemble_curve.csv", "CSV output")
    flag.Parse()

    ds, err := data.ReadFile(*dataPath, data.ReadOptions{Label: *labelCol})
    if err != nil { logger.Fatal("read dataset", zap.Error(err)) }
    train, test, err := data.StratifiedSplit(ds, 0.8, *seed)
    if err != nil { logger.Fatal("split dataset", zap.Error(err)) }

    base, err := models.New(*algo, models.TuningParams(*algo, *estimators, *maxDepth, *minSamples, *lr))
    if err != nil { logger.Fatal("build base estimator", zap.Error(err)) }
    cfg, err := ensemble.DefaultConfig().
        WithNumModels(*maxModels).
        WithSeed(*seed).
        WithLabelCol(*labelCol).
        WithParallelism(*parallelism).
        WithBaseEstimator(base)
    if err != nil { logger.Fatal("configure ensemble", zap.Error(err)) }

    ctx := context.Background()
    full, err := ensemble.NewTrainer(cfg, ensemble.WithLogger(logger)).Fit(ctx, train)
    if err != nil { logger.Fatal("fit ensemble", zap.Error(err)) }

    trainPreds, err := full.MemberPredictions(ctx, train)
    if err != nil { logger.Fatal("score train", zap.Error(err)) }
    testPreds, err := full.MemberPredictions(ctx, test)
    if err != nil { logger.Fatal("score test", zap.Error(err)) }

    sizes := make([]int, 0, *maxModels)
    trainAcc := make([]float64, 0, *maxModels)
    testAcc := make([]float64, 0, *maxModels)
    for k := 1; k <= full.NumModels(); k++ {
        thr := *threshold
        if thr <= 0 { thr = k/2 + 1 }
        tr, err := prefixAccuracy(trainPreds[:k], train.Labels(), thr)
        if err != nil { logger.Fatal("aggregate train", zap.Error(err)) }
        te, err := prefixAccuracy(testPreds[:k], test.Labels(), thr)
        if err != nil { logger.Fatal("aggregate test", zap.Error(err)) }
        sizes = append(sizes, k)
        trainAcc = append(trainAcc, tr)
        testAcc = append(testAcc, te)
        fmt.Printf("%s | models=%d | threshold=%d | train=%.3f | test=%.3f\n", base.Name(), k, thr, tr, te)
    }

    if err := writeCSV(*outCsv, sizes, trainAcc, testAcc); err != nil {
        logger.Warn("save curve csv", zap.Error(err))
    } else {
        logger.Info("curve csv saved", zap.String("path", *outCsv))
    }
    if err := plotCurve(*outImg, sizes, trainAcc, testAcc); err != nil {
        logger.Warn("save curve png", zap.Error(err))
    } else {
        logger.Info("curve png saved", zap.String("path", *outImg))
    }
}

// prefixAccuracy scores the quorum of the first len(preds) members.
func prefixAccuracy(preds [][]float64, y []int, threshold int) (float64, error) {
    decisions, err := ensemble.Aggregate(preds, float64(threshold))
    if err != nil { return 0, err }
    return ensemble.QuorumAccuracy(y, decisions)
}

func writeCSV(path string, sizes []int, trainAcc, testAcc []float64) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    if err := w.Write([]string{"models", "train_acc", "test_acc"}); err != nil { return err }
    for i := range sizes {
        rec := []string{strconv.Itoa(sizes[i]), fmt.Sprintf("%.6f", trainAcc[i]), fmt.Sprintf("%.6f", testAcc[i])}
        if err := w.Write(rec); err != nil { return err }
    }
    w.Flush()
    return w.Error()
}

func plotCurve(path string, sizes []int, trainAcc, testAcc []float64) error {
    p := plot.New()
    p.Title.Text = "Ensemble size curve"
    p.X.Label.Text = "Members"
    p.Y.Label.Text = "Quorum accuracy"
    p.Y.Min = 0
    p.Y.Max = 1

    toXY := func(xs []int, ys []float64) plotter.XYs {
        pts := make(plotter.XYs, len(xs))
        for i := range xs { pts[i].X = float64(xs[i]); pts[i].Y = ys[i] }
        return pts
    }
    if err := plotutil.AddLinePoints(p, "Train", toXY(sizes, trainAcc), "Test", toXY(sizes, testAcc)); err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
