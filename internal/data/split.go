package data

import (
    "math/rand"
    "sort"

    "github.com/pkg/errors"
)

// StratifiedSplit shuffles each class with a generator seeded by seed and puts
// trainFrac of it in train and the rest in test. The class mix of both halves
// follows ds.
func StratifiedSplit(ds *Dataset, trainFrac float64, seed int64) (train, test *Dataset, err error) {
    if !ds.HasLabels() { return nil, nil, errors.New("stratified split needs labels") }
    if trainFrac <= 0 || trainFrac >= 1 { return nil, nil, errors.Errorf("train fraction %v outside (0, 1)", trainFrac) }

    byClass := map[int][]int{}
    for i, c := range ds.y { byClass[c] = append(byClass[c], i) }
    classes := make([]int, 0, len(byClass))
    for c := range byClass { classes = append(classes, c) }
    sort.Ints(classes)

    rng := rand.New(rand.NewSource(seed))
    var trainIdx, testIdx []int
    for _, c := range classes {
        rows := byClass[c]
        perm := rng.Perm(len(rows))
        cut := int(trainFrac * float64(len(rows)))
        for i, p := range perm {
            if i < cut { trainIdx = append(trainIdx, rows[p]) } else { testIdx = append(testIdx, rows[p]) }
        }
    }
    rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
    rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })
    return ds.Rows(trainIdx), ds.Rows(testIdx), nil
}
