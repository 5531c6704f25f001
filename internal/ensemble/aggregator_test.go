package ensemble

import (
    "math/rand"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestAggregateTenRows(t *testing.T) {
    member := []float64{1, 1, 1, 1, 1, 0, 0, 0, 0, 0}
    preds := [][]float64{member, member, member}

    sums, err := Sum(preds)
    require.NoError(t, err)
    assert.Equal(t, []float64{3, 3, 3, 3, 3, 0, 0, 0, 0, 0}, sums)

    decisions, err := Aggregate(preds, 2)
    require.NoError(t, err)
    assert.Equal(t, []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, decisions)
    assert.Equal(t, []float64{1, 1, 1, 1, 1, 0, 0, 0, 0, 0}, member, "inputs must not be modified")
}

func TestAggregateSingleMember(t *testing.T) {
    decisions, err := Aggregate([][]float64{{1, 1, 1, 1}}, 1)
    require.NoError(t, err)
    assert.Equal(t, []float64{0, 0, 0, 0}, decisions)
}

func TestDecideBoundary(t *testing.T) {
    tests := []struct {
        sum, threshold, want float64
    }{
        {2, 2, 0},
        {1, 2, 1},
        {3, 2, 0},
        {1.999, 2, 1},
        {0, 1, 1},
        {5, 5, 0},
    }
    for _, tt := range tests {
        assert.Equal(t, tt.want, Decide(tt.sum, tt.threshold), "sum=%v threshold=%v", tt.sum, tt.threshold)
    }
}

func TestSumOrderIndependent(t *testing.T) {
    rng := rand.New(rand.NewSource(21))
    preds := make([][]float64, 6)
    for m := range preds {
        preds[m] = make([]float64, 25)
        for i := range preds[m] { preds[m][i] = rng.Float64() }
    }
    want, err := Sum(preds)
    require.NoError(t, err)

    for trial := 0; trial < 5; trial++ {
        perm := rng.Perm(len(preds))
        shuffled := make([][]float64, len(preds))
        for i, p := range perm { shuffled[i] = preds[p] }
        got, err := Sum(shuffled)
        require.NoError(t, err)
        assert.InDeltaSlice(t, want, got, 1e-12)
    }
}

func TestSumErrors(t *testing.T) {
    _, err := Sum(nil)
    assert.ErrorIs(t, err, ErrEmptyEnsemble)

    _, err = Sum([][]float64{{1, 0, 1}, {1, 0}})
    assert.ErrorIs(t, err, ErrSchemaMismatch)

    _, err = Aggregate([][]float64{{1}, {1, 1}}, 1)
    assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestSumEmptyRows(t *testing.T) {
    sums, err := Sum([][]float64{{}, {}})
    require.NoError(t, err)
    assert.Empty(t, sums)
}

func TestQuorumAccuracy(t *testing.T) {
    tests := []struct {
        name      string
        labels    []int
        decisions []float64
        want      float64
    }{
        {"all hits", []int{1, 0, 1}, []float64{0, 1, 0}, 1},
        {"all misses", []int{1, 0}, []float64{1, 0}, 0},
        {"half", []int{1, 1, 0, 0}, []float64{0, 1, 1, 0}, 0.5},
        {"empty", nil, nil, 0},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got, err := QuorumAccuracy(tt.labels, tt.decisions)
            require.NoError(t, err)
            assert.Equal(t, tt.want, got)
        })
    }

    _, err := QuorumAccuracy([]int{1}, []float64{0, 0})
    assert.ErrorIs(t, err, ErrSchemaMismatch)
}
