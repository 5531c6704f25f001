package models

import (
    "context"
    "math"
    "sort"

    "bagging/internal/data"
)

// Stump is a one-split regression tree on the logistic gradient.
type Stump struct {
    Feature   int
    Threshold float64
    LeftVal   float64
    RightVal  float64
}

func (s Stump) eval(x []float64) float64 {
    if x[s.Feature] > s.Threshold { return s.RightVal }
    return s.LeftVal
}

type GradientBoosting struct {
    NEstimators        int
    LearningRate       float64
    MinSamples         int
    MaxThresholdsPerFe int
    NFeatures          int
    Init               float64
    Trees              []Stump
    Fitted             bool
}

func NewGradientBoosting() *GradientBoosting {
    return &GradientBoosting{NEstimators: 50, LearningRate: 0.1, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

func (gb *GradientBoosting) Clone(overrides Params) (Estimator, error) {
    c := *gb
    c.Trees = nil
    c.Init = 0
    c.NFeatures = 0
    c.Fitted = false
    err := applyFields(overrides, map[string]func(any) error{
        "estimators":     setInt(&c.NEstimators),
        "lr":             setFloat(&c.LearningRate),
        "min_samples":    setInt(&c.MinSamples),
        "max_thresholds": setInt(&c.MaxThresholdsPerFe),
    })
    if err != nil { return nil, err }
    return &c, nil
}

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (gb *GradientBoosting) Fit(ctx context.Context, ds *data.Dataset) (Model, error) {
    y, err := binaryLabels(ds)
    if err != nil { return nil, err }
    X := ds.Features()
    n := len(X)
    fitted := *gb
    fitted.Trees = nil
    fitted.Fitted = true
    fitted.NFeatures = len(X[0])
    if err := checkWidth(ds, fitted.NFeatures); err != nil { return nil, err }

    pos := 0
    for i := 0; i < n; i++ { pos += y[i] }
    base := math.Min(math.Max(float64(pos)/float64(n), 1e-3), 1-1e-3)
    fitted.Init = math.Log(base / (1.0 - base))
    F := make([]float64, n)
    for i := range F { F[i] = fitted.Init }

    cands := make([][]float64, fitted.NFeatures)
    for j := range cands { cands[j] = gbCandidateThresholds(X, j, gb.MaxThresholdsPerFe) }

    r := make([]float64, n)
    for m := 0; m < gb.NEstimators; m++ {
        if err := ctx.Err(); err != nil { return nil, err }
        for i := 0; i < n; i++ { r[i] = float64(y[i]) - sigmoid(F[i]) }
        best, ok := fitted.bestStump(X, r, cands)
        if !ok { break }
        fitted.Trees = append(fitted.Trees, best)
        for i := 0; i < n; i++ { F[i] += gb.LearningRate * best.eval(X[i]) }
    }
    return &fitted, nil
}

func (gb *GradientBoosting) bestStump(X [][]float64, r []float64, cands [][]float64) (Stump, bool) {
    best := Stump{Feature: -1}
    bestSSE := math.MaxFloat64
    for j, thrs := range cands {
        for _, thr := range thrs {
            leftSum, leftCount := 0.0, 0.0
            rightSum, rightCount := 0.0, 0.0
            for i := range X {
                if X[i][j] <= thr { leftSum += r[i]; leftCount++ } else { rightSum += r[i]; rightCount++ }
            }
            if leftCount == 0 || rightCount == 0 { continue }
            if int(leftCount) < gb.MinSamples || int(rightCount) < gb.MinSamples { continue }
            leftAvg := leftSum / leftCount
            rightAvg := rightSum / rightCount

            sse := 0.0
            for i := range X {
                d := r[i] - rightAvg
                if X[i][j] <= thr { d = r[i] - leftAvg }
                sse += d * d
            }
            if sse < bestSSE {
                bestSSE = sse
                best = Stump{Feature: j, Threshold: thr, LeftVal: leftAvg, RightVal: rightAvg}
            }
        }
    }
    return best, best.Feature >= 0
}

func (gb *GradientBoosting) PredictProba(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    if !gb.Fitted { return nil, ErrNotFitted }
    if err := checkWidth(ds, gb.NFeatures); err != nil { return nil, err }
    X := ds.Features()
    out := make([]float64, len(X))
    for i := range X {
        f := gb.Init
        for _, t := range gb.Trees { f += gb.LearningRate * t.eval(X[i]) }
        out[i] = sigmoid(f)
    }
    return out, nil
}

func (gb *GradientBoosting) Predict(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    ps, err := gb.PredictProba(ctx, ds)
    if err != nil { return nil, err }
    return probaToPred(ps), nil
}

func gbCandidateThresholds(X [][]float64, j int, nCand int) []float64 {
    if nCand <= 0 { nCand = 16 }
    n := len(X)
    vals := make([]float64, n)
    for i := 0; i < n; i++ { vals[i] = X[i][j] }
    sort.Float64s(vals)
    out := make([]float64, 0, nCand)
    for k := 1; k < nCand; k++ {
        idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
        if idx <= 0 || idx >= n { continue }
        thr := vals[idx]
        if len(out) == 0 || thr != out[len(out)-1] { out = append(out, thr) }
    }
    if len(out) == 0 {
        sum := 0.0
        for i := 0; i < n; i++ { sum += vals[i] }
        out = append(out, sum/float64(n))
    }
    return out
}
