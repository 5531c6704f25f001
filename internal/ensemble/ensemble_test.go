package ensemble

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/mock/gomock"

    "bagging/internal/data"
    "bagging/internal/models"
    "bagging/internal/models/mocks"
)

func tenRows(t *testing.T) *data.Dataset {
    t.Helper()
    x := make([][]float64, 10)
    for i := range x { x[i] = []float64{float64(i)} }
    ds, err := data.New("features", "", nil, x, nil)
    require.NoError(t, err)
    return ds
}

func TestNewRejectsEmpty(t *testing.T) {
    _, err := New(nil, DefaultConfig())
    assert.ErrorIs(t, err, ErrEmptyEnsemble)
    _, err = New([]models.Model{}, DefaultConfig())
    assert.ErrorIs(t, err, ErrEmptyEnsemble)
    _, err = New([]models.Model{&fixedModel{}, nil}, DefaultConfig())
    assert.ErrorIs(t, err, ErrEmptyEnsemble)
}

func TestNewRejectsDecisionConfig(t *testing.T) {
    ms := []models.Model{&fixedModel{vals: []float64{0, 0}}}
    _, err := New(ms, DefaultConfig().WithThreshold(0))
    assert.ErrorIs(t, err, ErrInvalidConfig)
    _, err = New(ms, DefaultConfig().WithThreshold(-2))
    assert.ErrorIs(t, err, ErrInvalidConfig)
    _, err = New(ms, DefaultConfig().WithPredictionCol(""))
    assert.ErrorIs(t, err, ErrInvalidConfig)

    e, err := New(ms, DefaultConfig().WithThreshold(1))
    require.NoError(t, err)
    assert.Equal(t, 1, e.Config().Threshold())
}

func TestNewCopiesModels(t *testing.T) {
    ms := []models.Model{&fixedModel{name: "a"}, &fixedModel{name: "b"}}
    e, err := New(ms, DefaultConfig().WithNumModels(7))
    require.NoError(t, err)
    ms[0] = &fixedModel{name: "z"}

    assert.Equal(t, 2, e.NumModels())
    assert.Equal(t, 2, e.Config().NumModels())
    got := e.Models()
    assert.Equal(t, "a", got[0].Name())
    got[1] = nil
    assert.NotNil(t, e.Models()[1])
}

func TestPredictTenRows(t *testing.T) {
    vals := []float64{1, 1, 1, 1, 1, 0, 0, 0, 0, 0}
    ms := []models.Model{&fixedModel{vals: vals}, &fixedModel{vals: vals}, &fixedModel{vals: vals}}
    e, err := New(ms, DefaultConfig())
    require.NoError(t, err)
    ds := tenRows(t)

    votes, err := e.Votes(context.Background(), ds)
    require.NoError(t, err)
    assert.Equal(t, []float64{3, 3, 3, 3, 3, 0, 0, 0, 0, 0}, votes)

    out, err := e.Predict(context.Background(), ds)
    require.NoError(t, err)
    got, ok := out.Column("prediction")
    require.True(t, ok)
    assert.Equal(t, []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, got)
    assert.Equal(t, ds.Features(), out.Features())

    _, ok = ds.Column("prediction")
    assert.False(t, ok, "input dataset must be left unchanged")
}

func TestPredictSingleModel(t *testing.T) {
    e, err := New([]models.Model{&fixedModel{vals: []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}}}, DefaultConfig())
    require.NoError(t, err)
    e, err = e.WithThreshold(1)
    require.NoError(t, err)

    out, err := e.Predict(context.Background(), tenRows(t))
    require.NoError(t, err)
    got, _ := out.Column("prediction")
    assert.Equal(t, make([]float64, 10), got)
}

func TestWithThresholdLeavesReceiver(t *testing.T) {
    e, err := New([]models.Model{&fixedModel{vals: make([]float64, 10)}}, DefaultConfig())
    require.NoError(t, err)

    lower, err := e.WithThreshold(1)
    require.NoError(t, err)
    assert.Equal(t, 1, lower.Config().Threshold())
    assert.Equal(t, 2, e.Config().Threshold())

    _, err = e.WithThreshold(0)
    assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWithPredictionCol(t *testing.T) {
    vals := []float64{1, 0, 1, 0, 1, 0, 1, 0, 1, 0}
    e, err := New([]models.Model{&fixedModel{vals: vals}}, DefaultConfig())
    require.NoError(t, err)

    renamed, err := e.WithPredictionCol("decision")
    require.NoError(t, err)
    out, err := renamed.Predict(context.Background(), tenRows(t))
    require.NoError(t, err)
    _, ok := out.Column("decision")
    assert.True(t, ok)
    assert.Equal(t, "prediction", e.Config().PredictionCol())

    _, err = e.WithPredictionCol("")
    assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPredictSchemaMismatch(t *testing.T) {
    ds := tenRows(t)

    short, err := New([]models.Model{&fixedModel{vals: make([]float64, 10)}, &fixedModel{vals: make([]float64, 9)}}, DefaultConfig())
    require.NoError(t, err)
    _, err = short.Predict(context.Background(), ds)
    assert.ErrorIs(t, err, ErrSchemaMismatch)

    single, err := New([]models.Model{&fixedModel{vals: make([]float64, 10)}}, DefaultConfig())
    require.NoError(t, err)
    withCol, err := ds.WithColumn("prediction", make([]float64, 10))
    require.NoError(t, err)
    _, err = single.Predict(context.Background(), withCol)
    assert.ErrorIs(t, err, ErrSchemaMismatch)

    other, err := data.New("vector", "", nil, ds.Features(), nil)
    require.NoError(t, err)
    _, err = single.Predict(context.Background(), other)
    assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestPredictMemberError(t *testing.T) {
    boom := errors.New("predict failed")
    ctrl := gomock.NewController(t)
    m := mocks.NewMockModel(ctrl)
    m.EXPECT().Name().Return("mock").AnyTimes()
    m.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(nil, boom)

    e, err := New([]models.Model{m}, DefaultConfig())
    require.NoError(t, err)
    out, err := e.Predict(context.Background(), tenRows(t))
    assert.Nil(t, out)
    assert.ErrorIs(t, err, boom)
}

func TestMemberPredictionsOrder(t *testing.T) {
    ms := make([]models.Model, 6)
    for i := range ms {
        v := make([]float64, 10)
        for j := range v { v[j] = float64(i) }
        ms[i] = &fixedModel{vals: v}
    }
    e, err := New(ms, DefaultConfig().WithParallelism(3))
    require.NoError(t, err)
    preds, err := e.MemberPredictions(context.Background(), tenRows(t))
    require.NoError(t, err)
    for i, p := range preds { assert.Equal(t, float64(i), p[0]) }
}
