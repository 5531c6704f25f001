package features

import (
    "strconv"
    "strings"

    "github.com/pkg/errors"
)

var ErrUnknownColumn = errors.New("unknown column")

// Projection selects the feature and label columns of a raw CSV record.
type Projection struct {
    Names []string
    Label string
    idx   []int
    lbl   int
}

// Project resolves column names against header. An empty wanted list selects
// every column except the label. labelCol may be empty for unlabeled input.
func Project(header []string, labelCol string, wanted []string) (*Projection, error) {
    pos := make(map[string]int, len(header))
    for i, h := range header { pos[strings.TrimSpace(h)] = i }

    p := &Projection{Label: labelCol, lbl: -1}
    if labelCol != "" {
        i, ok := pos[labelCol]
        if !ok { return nil, errors.Wrapf(ErrUnknownColumn, "label %q", labelCol) }
        p.lbl = i
    }
    if len(wanted) == 0 {
        for i, h := range header {
            if i == p.lbl { continue }
            p.Names = append(p.Names, strings.TrimSpace(h))
            p.idx = append(p.idx, i)
        }
        return p, nil
    }
    for _, w := range wanted {
        i, ok := pos[w]
        if !ok { return nil, errors.Wrapf(ErrUnknownColumn, "feature %q", w) }
        if i == p.lbl { return nil, errors.Errorf("column %q is both feature and label", w) }
        p.Names = append(p.Names, w)
        p.idx = append(p.idx, i)
    }
    return p, nil
}

func (p *Projection) HasLabel() bool { return p.lbl >= 0 }

// Vectorize converts the projected cells of record into a feature vector.
func (p *Projection) Vectorize(record []string) ([]float64, error) {
    vec := make([]float64, len(p.idx))
    for j, i := range p.idx {
        if i >= len(record) { return nil, errors.Errorf("record has %d cells, need column %d", len(record), i) }
        v, err := parseValue(record[i])
        if err != nil { return nil, errors.Wrapf(err, "column %q", p.Names[j]) }
        vec[j] = v
    }
    return vec, nil
}

// ClassOf reads the integer class id of record.
func (p *Projection) ClassOf(record []string) (int, error) {
    if p.lbl < 0 { return 0, errors.New("projection has no label column") }
    if p.lbl >= len(record) { return 0, errors.Errorf("record has %d cells, need label column %d", len(record), p.lbl) }
    s := strings.TrimSpace(record[p.lbl])
    if c, err := strconv.Atoi(s); err == nil { return c, nil }
    f, err := strconv.ParseFloat(s, 64)
    if err != nil || f != float64(int(f)) {
        return 0, errors.Errorf("label %q is not an integer class id", s)
    }
    return int(f), nil
}

func parseValue(s string) (float64, error) {
    s = strings.TrimSpace(s)
    switch strings.ToLower(s) {
    case "true", "false":
        return boolToFloat(strings.EqualFold(s, "true")), nil
    }
    return strconv.ParseFloat(s, 64)
}

func boolToFloat(b bool) float64 { if b { return 1.0 } ; return 0.0 }
