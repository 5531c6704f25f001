package ensemble

import (
    "context"
    "testing"

    "github.com/stretchr/testify/require"

    "bagging/internal/data"
    "bagging/internal/models"
)

// fixedModel returns the same prediction sequence for any input.
type fixedModel struct {
    name string
    vals []float64
}

func (m *fixedModel) Name() string { return m.name }

func (m *fixedModel) Predict(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    return append([]float64(nil), m.vals...), nil
}

// recordingEstimator fits a recordedModel holding the ids of the rows it was
// trained on, so tests can compare bootstrap samples across fits.
type recordingEstimator struct{}

func (r *recordingEstimator) Name() string { return "recorder" }

func (r *recordingEstimator) Clone(overrides models.Params) (models.Estimator, error) {
    return &recordingEstimator{}, nil
}

func (r *recordingEstimator) Fit(ctx context.Context, ds *data.Dataset) (models.Model, error) {
    m := &recordedModel{}
    for _, row := range ds.Features() { m.rows = append(m.rows, int(row[0])) }
    m.labels = append(m.labels, ds.Labels()...)
    return m, nil
}

type recordedModel struct {
    rows   []int
    labels []int
}

func (m *recordedModel) Name() string { return "recorded" }

func (m *recordedModel) Predict(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    return make([]float64, ds.Len()), nil
}

// idDataset has n rows whose single feature is the row id. Every posEvery-th
// row is class 1.
func idDataset(t *testing.T, n, posEvery int) *data.Dataset {
    t.Helper()
    x := make([][]float64, n)
    y := make([]int, n)
    for i := range x {
        x[i] = []float64{float64(i)}
        if i%posEvery == 0 { y[i] = 1 }
    }
    ds, err := data.New("features", "label", []string{"id"}, x, y)
    require.NoError(t, err)
    return ds
}

func trainedRows(t *testing.T, e *Ensemble) [][]int {
    t.Helper()
    var out [][]int
    for _, m := range e.Models() {
        rm, ok := m.(*recordedModel)
        require.True(t, ok)
        out = append(out, rm.rows)
    }
    return out
}

func recorderConfig(t *testing.T) Config {
    t.Helper()
    cfg, err := DefaultConfig().WithBaseEstimator(&recordingEstimator{})
    require.NoError(t, err)
    return cfg
}
