package data

import (
    "encoding/csv"
    "io"
    "os"
    "strconv"

    "github.com/pkg/errors"

    "bagging/internal/features"
)

// ReadOptions names the columns ReadCSV projects. An empty Features list takes
// every column except Label. An empty Label reads unlabeled rows.
type ReadOptions struct {
    FeaturesCol string
    Label       string
    Features    []string
}

func ReadFile(path string, opts ReadOptions) (*Dataset, error) {
    f, err := os.Open(path)
    if err != nil { return nil, err }
    defer f.Close()
    ds, err := ReadCSV(f, opts)
    if err != nil { return nil, errors.Wrapf(err, "read %s", path) }
    return ds, nil
}

// ReadCSV reads a headed CSV into a Dataset.
func ReadCSV(r io.Reader, opts ReadOptions) (*Dataset, error) {
    cr := csv.NewReader(r)
    header, err := cr.Read()
    if err == io.EOF { return nil, errors.New("empty csv") }
    if err != nil { return nil, err }

    proj, err := features.Project(header, opts.Label, opts.Features)
    if err != nil { return nil, err }

    var x [][]float64
    var y []int
    if proj.HasLabel() { y = []int{} }
    line := 1
    for {
        rec, err := cr.Read()
        if err == io.EOF { break }
        line++
        if err != nil { return nil, errors.Wrapf(err, "line %d", line) }
        v, err := proj.Vectorize(rec)
        if err != nil { return nil, errors.Wrapf(err, "line %d", line) }
        x = append(x, v)
        if proj.HasLabel() {
            c, err := proj.ClassOf(rec)
            if err != nil { return nil, errors.Wrapf(err, "line %d", line) }
            y = append(y, c)
        }
    }
    col := opts.FeaturesCol
    if col == "" { col = "features" }
    return New(col, opts.Label, proj.Names, x, y)
}

// WriteCSV writes the feature values, the label and every appended column.
func WriteCSV(w io.Writer, ds *Dataset) error {
    cw := csv.NewWriter(w)
    header := ds.FeatureNames()
    if len(header) == 0 && ds.Len() > 0 {
        for j := range ds.x[0] { header = append(header, "f"+strconv.Itoa(j)) }
    }
    if ds.HasLabels() { header = append(header, ds.labelCol) }
    for _, c := range ds.cols { header = append(header, c.Name) }
    if err := cw.Write(header); err != nil { return err }

    for i, row := range ds.x {
        rec := make([]string, 0, len(header))
        for _, v := range row { rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64)) }
        if ds.HasLabels() { rec = append(rec, strconv.Itoa(ds.y[i])) }
        for _, c := range ds.cols { rec = append(rec, strconv.FormatFloat(c.Values[i], 'g', -1, 64)) }
        if err := cw.Write(rec); err != nil { return err }
    }
    cw.Flush()
    return cw.Error()
}
