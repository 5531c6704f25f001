package ensemble

import (
    "encoding/gob"
    "io"
    "os"
    "path/filepath"

    "github.com/pkg/errors"

    "bagging/internal/models"
)

// snapshot is the gob form of an Ensemble. Member types must be registered
// with gob; the learners in package models are.
type snapshot struct {
    Models        []models.Model
    IsClassifier  bool
    Threshold     int
    Seed          int64
    FeaturesCol   string
    LabelCol      string
    PredictionCol string
    Base          models.Estimator
    Sampling      map[int]float64
    Parallelism   int
}

func Save(w io.Writer, e *Ensemble) error {
    c := e.cfg
    s := snapshot{
        Models:        e.models,
        IsClassifier:  c.isClassifier,
        Threshold:     c.threshold,
        Seed:          c.seed,
        FeaturesCol:   c.featuresCol,
        LabelCol:      c.labelCol,
        PredictionCol: c.predictionCol,
        Base:          c.base,
        Sampling:      c.sampling,
        Parallelism:   c.parallelism,
    }
    return errors.Wrap(gob.NewEncoder(w).Encode(&s), "encode ensemble")
}

func Load(r io.Reader) (*Ensemble, error) {
    var s snapshot
    if err := gob.NewDecoder(r).Decode(&s); err != nil { return nil, errors.Wrap(err, "decode ensemble") }
    cfg := DefaultConfig().
        WithClassifier(s.IsClassifier).
        WithThreshold(s.Threshold).
        WithSeed(s.Seed).
        WithFeaturesCol(s.FeaturesCol).
        WithLabelCol(s.LabelCol).
        WithPredictionCol(s.PredictionCol).
        WithParallelism(s.Parallelism).
        WithSampling(s.Sampling)
    cfg.base = s.Base
    return New(s.Models, cfg)
}

func SaveFile(path string, e *Ensemble) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    if err := Save(f, e); err != nil {
        f.Close()
        return err
    }
    return f.Close()
}

func LoadFile(path string) (*Ensemble, error) {
    f, err := os.Open(path)
    if err != nil { return nil, err }
    defer f.Close()
    return Load(f)
}
