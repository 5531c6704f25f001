package models

import (
    "context"
    "math"
    "math/rand"

    "bagging/internal/data"
)

// RandomForest bags decision trees restricted to a random feature subset.
// Tree k draws its bootstrap and its splits from Seed+k.
type RandomForest struct {
    NEstimators        int
    MaxDepth           int
    MinSamples         int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Seed               int64
    Trees              []*DecisionTree
}

func NewRandomForest() *RandomForest {
    return &RandomForest{NEstimators: 30, MaxDepth: 6, MinSamples: 100, MaxThresholdsPerFe: 32}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Clone(overrides Params) (Estimator, error) {
    c := *rf
    c.Trees = nil
    err := applyFields(overrides, map[string]func(any) error{
        "estimators":     setInt(&c.NEstimators),
        "max_depth":      setInt(&c.MaxDepth),
        "min_samples":    setInt(&c.MinSamples),
        "max_thresholds": setInt(&c.MaxThresholdsPerFe),
        "max_features":   setInt(&c.MaxFeatures),
        "seed":           setInt64(&c.Seed),
    })
    if err != nil { return nil, err }
    return &c, nil
}

func (rf *RandomForest) Fit(ctx context.Context, ds *data.Dataset) (Model, error) {
    if _, err := binaryLabels(ds); err != nil { return nil, err }
    fitted := *rf
    if fitted.NEstimators <= 0 { fitted.NEstimators = 30 }
    n := ds.Len()
    nFeats := len(ds.Features()[0])
    if fitted.MaxFeatures <= 0 {
        fitted.MaxFeatures = int(math.Max(1, math.Min(float64(nFeats), math.Sqrt(float64(nFeats)))))
    }
    fitted.Trees = make([]*DecisionTree, 0, fitted.NEstimators)
    for k := 0; k < fitted.NEstimators; k++ {
        rng := rand.New(rand.NewSource(rf.Seed + int64(k)))
        idx := make([]int, n)
        for i := range idx { idx[i] = rng.Intn(n) }
        dt := &DecisionTree{
            MaxDepth:           fitted.MaxDepth,
            MinSamplesSplit:    fitted.MinSamples,
            MaxThresholdsPerFe: fitted.MaxThresholdsPerFe,
            MaxFeatures:        fitted.MaxFeatures,
            Seed:               rf.Seed + int64(k),
        }
        m, err := dt.Fit(ctx, ds.Rows(idx))
        if err != nil { return nil, err }
        fitted.Trees = append(fitted.Trees, m.(*DecisionTree))
    }
    return &fitted, nil
}

func (rf *RandomForest) Predict(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    ps, err := rf.PredictProba(ctx, ds)
    if err != nil { return nil, err }
    return probaToPred(ps), nil
}

func (rf *RandomForest) PredictProba(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    if len(rf.Trees) == 0 { return nil, ErrNotFitted }
    n := ds.Len()
    out := make([]float64, n)
    for _, dt := range rf.Trees {
        p, err := dt.PredictProba(ctx, ds)
        if err != nil { return nil, err }
        for i := 0; i < n; i++ { out[i] += p[i] }
    }
    m := float64(len(rf.Trees))
    for i := 0; i < n; i++ { out[i] /= m }
    return out, nil
}
