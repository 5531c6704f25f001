package ensemble

import (
    "github.com/pkg/errors"
    "gonum.org/v1/gonum/floats"
)

// Sum adds the member prediction sequences row by row, folding left over the
// member order. Floating addition is not associative, so another member order
// may differ in the last bits; that is accepted.
func Sum(predictions [][]float64) ([]float64, error) {
    if len(predictions) == 0 { return nil, ErrEmptyEnsemble }
    n := len(predictions[0])
    for i, p := range predictions[1:] {
        if len(p) != n {
            return nil, errors.Wrapf(ErrSchemaMismatch, "model %d produced %d predictions, model 0 produced %d", i+1, len(p), n)
        }
    }
    out := make([]float64, n)
    copy(out, predictions[0])
    for _, p := range predictions[1:] { floats.Add(out, p) }
    return out, nil
}

// Decide maps a summed vote to the ensemble decision: 0 once the sum reaches
// threshold, 1 below it.
func Decide(sum, threshold float64) float64 {
    if sum >= threshold { return 0.0 }
    return 1.0
}

// Aggregate reduces member predictions to one decision per row.
func Aggregate(predictions [][]float64, threshold float64) ([]float64, error) {
    sums, err := Sum(predictions)
    if err != nil { return nil, err }
    for i, s := range sums { sums[i] = Decide(s, threshold) }
    return sums, nil
}

// QuorumAccuracy scores decisions against binary labels, reading a 0 decision
// as a positive call.
func QuorumAccuracy(labels []int, decisions []float64) (float64, error) {
    if len(labels) != len(decisions) {
        return 0, errors.Wrapf(ErrSchemaMismatch, "%d labels, %d decisions", len(labels), len(decisions))
    }
    if len(labels) == 0 { return 0, nil }
    c := 0
    for i, y := range labels { if (decisions[i] == 0) == (y == 1) { c++ } }
    return float64(c) / float64(len(labels)), nil
}
