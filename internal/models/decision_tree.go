package models

import (
    "context"
    "math"
    "math/rand"

    "bagging/internal/data"
)

type DTNode struct {
    Feature   int
    Threshold float64
    Left      *DTNode
    Right     *DTNode
    IsLeaf    bool
    ProbaLeaf float64
}

// DecisionTree is a binary gini tree. Candidate thresholds and feature subsets
// are drawn from a generator seeded with Seed, so a fit is a pure function of
// its hyperparameters and training set.
type DecisionTree struct {
    MaxDepth           int
    MinSamplesSplit    int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Seed               int64
    NFeatures          int
    Root               *DTNode
}

func NewDecisionTree() *DecisionTree {
    return &DecisionTree{MaxDepth: 6, MinSamplesSplit: 100, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Clone(overrides Params) (Estimator, error) {
    c := *dt
    c.Root = nil
    c.NFeatures = 0
    err := applyFields(overrides, map[string]func(any) error{
        "max_depth":         setInt(&c.MaxDepth),
        "min_samples_split": setInt(&c.MinSamplesSplit),
        "max_thresholds":    setInt(&c.MaxThresholdsPerFe),
        "max_features":      setInt(&c.MaxFeatures),
        "seed":              setInt64(&c.Seed),
    })
    if err != nil { return nil, err }
    return &c, nil
}

func (dt *DecisionTree) Fit(ctx context.Context, ds *data.Dataset) (Model, error) {
    y, err := binaryLabels(ds)
    if err != nil { return nil, err }
    X := ds.Features()
    fitted := *dt
    fitted.NFeatures = len(X[0])
    if err := checkWidth(ds, fitted.NFeatures); err != nil { return nil, err }

    b := &treeBuilder{ctx: ctx, tree: &fitted, rng: rand.New(rand.NewSource(dt.Seed)), X: X, y: y}
    idx := make([]int, len(X))
    for i := range idx { idx[i] = i }
    root, err := b.build(idx, 0)
    if err != nil { return nil, err }
    fitted.Root = root
    return &fitted, nil
}

func (dt *DecisionTree) Predict(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    ps, err := dt.PredictProba(ctx, ds)
    if err != nil { return nil, err }
    return probaToPred(ps), nil
}

func (dt *DecisionTree) PredictProba(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    if dt.Root == nil { return nil, ErrNotFitted }
    if err := checkWidth(ds, dt.NFeatures); err != nil { return nil, err }
    X := ds.Features()
    out := make([]float64, len(X))
    for i := range X { out[i] = dt.predictProbaOne(X[i]) }
    return out, nil
}

func (dt *DecisionTree) predictProbaOne(x []float64) float64 {
    n := dt.Root
    for !n.IsLeaf {
        if x[n.Feature] <= n.Threshold { n = n.Left } else { n = n.Right }
        if n == nil { return 0.5 }
    }
    return n.ProbaLeaf
}

type treeBuilder struct {
    ctx  context.Context
    tree *DecisionTree
    rng  *rand.Rand
    X    [][]float64
    y    []int
}

func (b *treeBuilder) build(idx []int, depth int) (*DTNode, error) {
    if err := b.ctx.Err(); err != nil { return nil, err }
    node := &DTNode{}
    p := classProba(b.y, idx)
    if len(idx) < b.tree.MinSamplesSplit || depth >= b.tree.MaxDepth || p == 0 || p == 1 {
        node.IsLeaf = true
        node.ProbaLeaf = p
        return node, nil
    }
    bestFeature := -1
    bestThr := 0.0
    bestImp := math.MaxFloat64
    var leftIdxBest, rightIdxBest []int

    for _, f := range pickFeatures(b.rng, len(b.X[0]), b.tree.MaxFeatures) {
        for _, thr := range candidateThresholds(b.rng, b.X, idx, f, b.tree.MaxThresholdsPerFe) {
            lIdx, rIdx := splitIdx(b.X, idx, f, thr)
            if len(lIdx) == 0 || len(rIdx) == 0 { continue }
            imp := giniImpurity(b.y, lIdx, rIdx)
            if imp < bestImp {
                bestImp = imp
                bestFeature = f
                bestThr = thr
                leftIdxBest = lIdx
                rightIdxBest = rIdx
            }
        }
    }

    if bestFeature == -1 {
        node.IsLeaf = true
        node.ProbaLeaf = p
        return node, nil
    }
    node.Feature = bestFeature
    node.Threshold = bestThr
    var err error
    if node.Left, err = b.build(leftIdxBest, depth+1); err != nil { return nil, err }
    if node.Right, err = b.build(rightIdxBest, depth+1); err != nil { return nil, err }
    return node, nil
}

func classProba(y []int, idx []int) float64 {
    sum := 0
    for _, i := range idx { sum += y[i] }
    return float64(sum) / float64(len(idx))
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
    l := make([]int, 0, len(idx))
    r := make([]int, 0, len(idx))
    for _, i := range idx {
        if X[i][f] <= thr { l = append(l, i) } else { r = append(r, i) }
    }
    return l, r
}

func giniImpurity(y []int, lIdx, rIdx []int) float64 {
    g := func(ids []int) float64 {
        if len(ids) == 0 { return 0 }
        p := classProba(y, ids)
        return p * (1 - p)
    }
    wl := float64(len(lIdx))
    wr := float64(len(rIdx))
    n := wl + wr
    return (wl/n)*g(lIdx) + (wr/n)*g(rIdx)
}

// candidateThresholds samples up to maxC observed values of feature f.
func candidateThresholds(rng *rand.Rand, X [][]float64, idx []int, f int, maxC int) []float64 {
    values := make([]float64, len(idx))
    for j, i := range idx { values[j] = X[i][f] }
    if maxC <= 0 || maxC > len(values) { maxC = len(values) }
    for i := 0; i < maxC; i++ {
        j := i + rng.Intn(len(values)-i)
        values[i], values[j] = values[j], values[i]
    }
    return values[:maxC]
}

func pickFeatures(rng *rand.Rand, nFeats int, maxFeats int) []int {
    idx := make([]int, nFeats)
    for i := range idx { idx[i] = i }
    if maxFeats <= 0 || maxFeats >= nFeats { return idx }
    for i := 0; i < maxFeats; i++ {
        j := i + rng.Intn(nFeats-i)
        idx[i], idx[j] = idx[j], idx[i]
    }
    return idx[:maxFeats]
}
