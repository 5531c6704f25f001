package data

import (
    "github.com/pkg/errors"
)

var (
    ErrLengthMismatch  = errors.New("column length does not match row count")
    ErrDuplicateColumn = errors.New("column already exists")
)

// Column is a numeric column appended to a Dataset, such as a prediction.
type Column struct {
    Name   string
    Values []float64
}

// Dataset is a row-aligned table: a features column, an optional integer label
// column and any number of appended numeric columns. Row i of every column
// belongs to the same record. A Dataset is never modified after construction;
// derived datasets share the underlying feature rows.
type Dataset struct {
    featuresCol  string
    labelCol     string
    featureNames []string
    x            [][]float64
    y            []int
    cols         []Column
}

// New builds a dataset. y may be nil for unlabeled data; otherwise it must be
// row-aligned with x.
func New(featuresCol, labelCol string, featureNames []string, x [][]float64, y []int) (*Dataset, error) {
    if y != nil && len(y) != len(x) {
        return nil, errors.Wrapf(ErrLengthMismatch, "%d labels for %d rows", len(y), len(x))
    }
    if y == nil { labelCol = "" }
    return &Dataset{featuresCol: featuresCol, labelCol: labelCol, featureNames: featureNames, x: x, y: y}, nil
}

func (d *Dataset) Len() int { return len(d.x) }

func (d *Dataset) FeaturesCol() string { return d.featuresCol }

func (d *Dataset) LabelCol() string { return d.labelCol }

func (d *Dataset) FeatureNames() []string { return append([]string(nil), d.featureNames...) }

// Features returns the feature rows. Callers must not modify them.
func (d *Dataset) Features() [][]float64 { return d.x }

// Labels returns the class ids, or nil when the dataset is unlabeled.
func (d *Dataset) Labels() []int { return d.y }

func (d *Dataset) HasLabels() bool { return d.y != nil }

// Column looks up an appended numeric column by name.
func (d *Dataset) Column(name string) ([]float64, bool) {
    for _, c := range d.cols {
        if c.Name == name { return c.Values, true }
    }
    return nil, false
}

func (d *Dataset) Columns() []Column { return append([]Column(nil), d.cols...) }

func (d *Dataset) Schema() Schema {
    s := Schema{Features: d.featuresCol, Label: d.labelCol}
    s.Columns = append(s.Columns, d.featuresCol)
    if d.labelCol != "" { s.Columns = append(s.Columns, d.labelCol) }
    for _, c := range d.cols { s.Columns = append(s.Columns, c.Name) }
    return s
}

// Rows gathers the rows at idx into a new dataset. Indices may repeat.
// Appended columns are carried along.
func (d *Dataset) Rows(idx []int) *Dataset {
    out := &Dataset{featuresCol: d.featuresCol, labelCol: d.labelCol, featureNames: d.featureNames}
    out.x = make([][]float64, len(idx))
    for i, j := range idx { out.x[i] = d.x[j] }
    if d.y != nil {
        out.y = make([]int, len(idx))
        for i, j := range idx { out.y[i] = d.y[j] }
    }
    for _, c := range d.cols {
        vals := make([]float64, len(idx))
        for i, j := range idx { vals[i] = c.Values[j] }
        out.cols = append(out.cols, Column{Name: c.Name, Values: vals})
    }
    return out
}

// WithColumn returns a copy of d with one more column.
func (d *Dataset) WithColumn(name string, values []float64) (*Dataset, error) {
    if len(values) != len(d.x) {
        return nil, errors.Wrapf(ErrLengthMismatch, "column %q has %d values for %d rows", name, len(values), len(d.x))
    }
    if d.Schema().Has(name) {
        return nil, errors.Wrapf(ErrDuplicateColumn, "%q", name)
    }
    out := *d
    out.cols = make([]Column, len(d.cols), len(d.cols)+1)
    copy(out.cols, d.cols)
    out.cols = append(out.cols, Column{Name: name, Values: append([]float64(nil), values...)})
    return &out, nil
}

// Schema lists the column names of a dataset in order.
type Schema struct {
    Features string
    Label    string
    Columns  []string
}

func (s Schema) Has(name string) bool {
    for _, c := range s.Columns {
        if c == name { return true }
    }
    return false
}

// With returns a copy of s extended by name.
func (s Schema) With(name string) Schema {
    out := s
    out.Columns = append(append([]string(nil), s.Columns...), name)
    return out
}
