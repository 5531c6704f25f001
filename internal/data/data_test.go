package data

import (
    "bytes"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Dataset {
    t.Helper()
    ds, err := New("features", "label", []string{"a", "b"},
        [][]float64{{1, 10}, {2, 20}, {3, 30}, {4, 40}},
        []int{0, 1, 0, 1})
    require.NoError(t, err)
    return ds
}

func TestNewValidatesLabels(t *testing.T) {
    _, err := New("features", "label", nil, [][]float64{{1}, {2}}, []int{1})
    assert.ErrorIs(t, err, ErrLengthMismatch)

    ds, err := New("features", "label", nil, [][]float64{{1}}, nil)
    require.NoError(t, err)
    assert.False(t, ds.HasLabels())
    assert.Equal(t, "", ds.LabelCol())
    assert.Equal(t, []string{"features"}, ds.Schema().Columns)
}

func TestRowsRepeatsAndCarriesColumns(t *testing.T) {
    ds, err := sample(t).WithColumn("score", []float64{0.1, 0.2, 0.3, 0.4})
    require.NoError(t, err)

    sub := ds.Rows([]int{3, 3, 0})
    assert.Equal(t, 3, sub.Len())
    assert.Equal(t, [][]float64{{4, 40}, {4, 40}, {1, 10}}, sub.Features())
    assert.Equal(t, []int{1, 1, 0}, sub.Labels())
    score, ok := sub.Column("score")
    require.True(t, ok)
    assert.Equal(t, []float64{0.4, 0.4, 0.1}, score)
    assert.Equal(t, []string{"a", "b"}, sub.FeatureNames())
}

func TestWithColumn(t *testing.T) {
    ds := sample(t)
    vals := []float64{1, 0, 1, 0}
    out, err := ds.WithColumn("prediction", vals)
    require.NoError(t, err)
    vals[0] = 9

    got, ok := out.Column("prediction")
    require.True(t, ok)
    assert.Equal(t, []float64{1, 0, 1, 0}, got)
    assert.Empty(t, ds.Columns())
    assert.Equal(t, []string{"features", "label", "prediction"}, out.Schema().Columns)

    _, err = out.WithColumn("prediction", vals)
    assert.ErrorIs(t, err, ErrDuplicateColumn)
    _, err = ds.WithColumn("label", vals)
    assert.ErrorIs(t, err, ErrDuplicateColumn)
    _, err = ds.WithColumn("short", []float64{1})
    assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSchemaWith(t *testing.T) {
    s := Schema{Features: "f", Columns: []string{"f"}}
    w := s.With("p")
    assert.True(t, w.Has("p"))
    assert.False(t, s.Has("p"))
}

func TestReadCSV(t *testing.T) {
    in := "a,flag,label,b\n1.5,true,1,7\n2,false,0,8\n"
    ds, err := ReadCSV(strings.NewReader(in), ReadOptions{Label: "label"})
    require.NoError(t, err)
    assert.Equal(t, []string{"a", "flag", "b"}, ds.FeatureNames())
    assert.Equal(t, [][]float64{{1.5, 1, 7}, {2, 0, 8}}, ds.Features())
    assert.Equal(t, []int{1, 0}, ds.Labels())
    assert.Equal(t, "features", ds.FeaturesCol())

    ds, err = ReadCSV(strings.NewReader(in), ReadOptions{FeaturesCol: "vec", Features: []string{"b", "a"}})
    require.NoError(t, err)
    assert.Equal(t, [][]float64{{7, 1.5}, {8, 2}}, ds.Features())
    assert.False(t, ds.HasLabels())
    assert.Equal(t, "vec", ds.FeaturesCol())
}

func TestReadCSVErrors(t *testing.T) {
    _, err := ReadCSV(strings.NewReader(""), ReadOptions{})
    assert.Error(t, err)

    _, err = ReadCSV(strings.NewReader("a,label\nx,1\n"), ReadOptions{Label: "label"})
    assert.ErrorContains(t, err, "line 2")

    _, err = ReadCSV(strings.NewReader("a,label\n1,0.5\n"), ReadOptions{Label: "label"})
    assert.Error(t, err)

    _, err = ReadCSV(strings.NewReader("a\n1\n"), ReadOptions{Label: "label"})
    assert.Error(t, err)
}

func TestWriteCSVReadBack(t *testing.T) {
    ds, err := sample(t).WithColumn("prediction", []float64{1, 0, 1, 0})
    require.NoError(t, err)

    var buf bytes.Buffer
    require.NoError(t, WriteCSV(&buf, ds))
    assert.True(t, strings.HasPrefix(buf.String(), "a,b,label,prediction\n"))

    back, err := ReadCSV(&buf, ReadOptions{Label: "label", Features: []string{"a", "b"}})
    require.NoError(t, err)
    assert.Equal(t, ds.Features(), back.Features())
    assert.Equal(t, ds.Labels(), back.Labels())
}

func TestStratifiedSplit(t *testing.T) {
    n := 100
    x := make([][]float64, n)
    y := make([]int, n)
    for i := range x {
        x[i] = []float64{float64(i)}
        if i%5 == 0 { y[i] = 1 }
    }
    ds, err := New("features", "label", nil, x, y)
    require.NoError(t, err)

    train, test, err := StratifiedSplit(ds, 0.8, 3)
    require.NoError(t, err)
    assert.Equal(t, 80, train.Len())
    assert.Equal(t, 20, test.Len())
    count := func(d *Dataset) (pos int) {
        for _, c := range d.Labels() { pos += c }
        return
    }
    assert.Equal(t, 16, count(train))
    assert.Equal(t, 4, count(test))

    seen := map[float64]bool{}
    for _, r := range append(train.Features(), test.Features()...) { seen[r[0]] = true }
    assert.Len(t, seen, n)

    again, _, err := StratifiedSplit(ds, 0.8, 3)
    require.NoError(t, err)
    assert.Equal(t, train.Features(), again.Features())

    _, _, err = StratifiedSplit(ds, 1, 3)
    assert.Error(t, err)
    unlabeled, err := New("features", "", nil, x, nil)
    require.NoError(t, err)
    _, _, err = StratifiedSplit(unlabeled, 0.5, 3)
    assert.Error(t, err)
}

func TestGenerateSyntheticDeterministic(t *testing.T) {
    dir := t.TempDir()
    a := filepath.Join(dir, "a.csv")
    b := filepath.Join(dir, "sub", "b.csv")
    require.NoError(t, GenerateSynthetic(200, 0.1, 7, a))
    require.NoError(t, GenerateSynthetic(200, 0.1, 7, b))

    ra, err := os.ReadFile(a)
    require.NoError(t, err)
    rb, err := os.ReadFile(b)
    require.NoError(t, err)
    assert.Equal(t, ra, rb)

    ds, err := ReadFile(a, ReadOptions{Label: "label"})
    require.NoError(t, err)
    assert.Equal(t, 200, ds.Len())
    assert.Equal(t, SyntheticHeader[:len(SyntheticHeader)-1], ds.FeatureNames())
    for _, c := range ds.Labels() { assert.Contains(t, []int{0, 1}, c) }

    assert.Error(t, GenerateSynthetic(0, 0.1, 7, a))
}
