package ensemble

import (
    "math"
    "math/rand"
    "sort"

    "github.com/pkg/errors"

    "bagging/internal/data"
)

// SamplingSpec maps a class label to its resampling rate. A rate of 1 draws as
// many rows as the class has; above 1 oversamples, below 1 subsamples.
type SamplingSpec map[int]float64

// DefaultSamplingSpec is the plain bootstrap over a binary label.
func DefaultSamplingSpec() SamplingSpec { return SamplingSpec{0: 1.0, 1: 1.0} }

func (s SamplingSpec) Copy() SamplingSpec {
    out := make(SamplingSpec, len(s))
    for k, v := range s { out[k] = v }
    return out
}

func (s SamplingSpec) Classes() []int {
    out := make([]int, 0, len(s))
    for c := range s { out = append(out, c) }
    sort.Ints(out)
    return out
}

func checkRate(class int, rate float64) error {
    if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
        return errors.Wrapf(ErrInvalidSamplingSpec, "class %d has rate %v", class, rate)
    }
    return nil
}

// SampleIndices draws a stratified bootstrap over labels and returns the row
// positions of the sample. Classes are visited in ascending order; class c with
// n rows contributes round(spec[c]*n) positions drawn with replacement. Only rng
// is consumed, and nothing is drawn when a rate is rejected.
func SampleIndices(labels []int, spec SamplingSpec, rng *rand.Rand) ([]int, error) {
    if labels == nil { return nil, errors.Wrap(ErrInvalidSamplingSpec, "dataset has no label column") }
    byClass := make(map[int][]int)
    for i, c := range labels { byClass[c] = append(byClass[c], i) }
    classes := make([]int, 0, len(byClass))
    for c := range byClass { classes = append(classes, c) }
    sort.Ints(classes)

    size := 0
    for _, c := range classes {
        rate, ok := spec[c]
        if !ok { return nil, errors.Wrapf(ErrInvalidSamplingSpec, "no rate for class %d", c) }
        if err := checkRate(c, rate); err != nil { return nil, err }
        size += int(math.Round(rate * float64(len(byClass[c]))))
    }

    out := make([]int, 0, size)
    for _, c := range classes {
        rows := byClass[c]
        k := int(math.Round(spec[c] * float64(len(rows))))
        for j := 0; j < k; j++ { out = append(out, rows[rng.Intn(len(rows))]) }
    }
    return out, nil
}

// Sample returns the stratified bootstrap of ds as a new dataset.
func Sample(ds *data.Dataset, spec SamplingSpec, rng *rand.Rand) (*data.Dataset, error) {
    idx, err := SampleIndices(ds.Labels(), spec, rng)
    if err != nil { return nil, err }
    return ds.Rows(idx), nil
}
