// Package config reads ensemble settings from YAML or TOML files.
package config

import (
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strconv"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/goccy/go-yaml"
    "github.com/pelletier/go-toml/v2"
    "github.com/pkg/errors"

    "bagging/internal/ensemble"
    "bagging/internal/models"
)

// File is the on-disk form of an ensemble configuration. Unset fields keep
// the value of the Config they are applied to.
type File struct {
    NumModels     *int               `yaml:"num_models" toml:"num_models" validate:"omitempty,min=1"`
    IsClassifier  *bool              `yaml:"is_classifier" toml:"is_classifier"`
    Threshold     *int               `yaml:"threshold" toml:"threshold" validate:"omitempty,min=1"`
    Seed          *int64             `yaml:"seed" toml:"seed"`
    FeaturesCol   string             `yaml:"features_col" toml:"features_col"`
    LabelCol      string             `yaml:"label_col" toml:"label_col"`
    PredictionCol string             `yaml:"prediction_col" toml:"prediction_col"`
    Parallelism   *int               `yaml:"parallelism" toml:"parallelism" validate:"omitempty,min=1"`
    Algo          string             `yaml:"algo" toml:"algo" validate:"omitempty,oneof=dt rf gb lgbm"`
    Params        map[string]any     `yaml:"params" toml:"params"`
    Sampling      Rates              `yaml:"sampling" toml:"sampling" validate:"omitempty,dive,gte=0"`
}

// Rates maps a class, written as a key, to its sampling rate.
type Rates map[string]float64

// UnmarshalYAML accepts plain integer keys as well as quoted ones. Decoding
// an integer key straight into a string key would yield the rune, not the
// digits.
func (r *Rates) UnmarshalYAML(unmarshal func(any) error) error {
    var items yaml.MapSlice
    if err := unmarshal(&items); err != nil { return err }
    out := make(Rates, len(items))
    for _, it := range items {
        k := fmt.Sprint(it.Key)
        var v float64
        switch n := it.Value.(type) {
        case float64:
            v = n
        case int64:
            v = float64(n)
        case uint64:
            v = float64(n)
        case int:
            v = float64(n)
        default:
            return errors.Wrapf(ensemble.ErrInvalidSamplingSpec, "class %s rate %v is not a number", k, it.Value)
        }
        out[k] = v
    }
    *r = out
    return nil
}

var validate = validator.New()

// Load decodes path by extension: .yaml/.yml or .toml.
func Load(path string) (*File, error) {
    raw, err := os.ReadFile(path)
    if err != nil { return nil, err }
    f, err := Parse(raw, strings.ToLower(filepath.Ext(path)))
    if err != nil { return nil, errors.Wrapf(err, "config %s", path) }
    return f, nil
}

func Parse(raw []byte, ext string) (*File, error) {
    var f File
    switch ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(raw, &f); err != nil { return nil, err }
    case ".toml":
        if err := toml.Unmarshal(raw, &f); err != nil { return nil, err }
    default:
        return nil, errors.Errorf("unsupported config format %q", ext)
    }
    if err := validate.Struct(&f); err != nil { return nil, errors.Wrap(ensemble.ErrInvalidConfig, err.Error()) }
    return &f, nil
}

// SamplingSpec converts the string-keyed class rates; TOML keys are always
// strings.
func (f *File) SamplingSpec() (ensemble.SamplingSpec, error) {
    if len(f.Sampling) == 0 { return nil, nil }
    keys := make([]string, 0, len(f.Sampling))
    for k := range f.Sampling { keys = append(keys, k) }
    sort.Strings(keys)
    out := make(ensemble.SamplingSpec, len(keys))
    for _, k := range keys {
        c, err := strconv.Atoi(strings.TrimSpace(k))
        if err != nil { return nil, errors.Wrapf(ensemble.ErrInvalidSamplingSpec, "class %q is not an integer", k) }
        out[c] = f.Sampling[k]
    }
    return out, nil
}

// Apply overlays the file on cfg. A base estimator is built when Algo or
// Params is set; Params without Algo override the estimator already in cfg,
// or the default decision tree.
func (f *File) Apply(cfg ensemble.Config) (ensemble.Config, error) {
    if f.NumModels != nil { cfg = cfg.WithNumModels(*f.NumModels) }
    if f.IsClassifier != nil { cfg = cfg.WithClassifier(*f.IsClassifier) }
    if f.Threshold != nil { cfg = cfg.WithThreshold(*f.Threshold) }
    if f.Seed != nil { cfg = cfg.WithSeed(*f.Seed) }
    if f.FeaturesCol != "" { cfg = cfg.WithFeaturesCol(f.FeaturesCol) }
    if f.LabelCol != "" { cfg = cfg.WithLabelCol(f.LabelCol) }
    if f.PredictionCol != "" { cfg = cfg.WithPredictionCol(f.PredictionCol) }
    if f.Parallelism != nil { cfg = cfg.WithParallelism(*f.Parallelism) }

    spec, err := f.SamplingSpec()
    if err != nil { return cfg, err }
    if spec != nil { cfg = cfg.WithSampling(spec) }

    if f.Algo == "" && len(f.Params) == 0 { return cfg, nil }
    var est models.Estimator
    switch {
    case f.Algo != "":
        est, err = models.New(f.Algo, models.Params(f.Params))
    case cfg.BaseEstimator() != nil:
        est, err = cfg.BaseEstimator().Clone(models.Params(f.Params))
    default:
        est, err = models.New("dt", models.Params(f.Params))
    }
    if err != nil { return cfg, errors.Wrap(err, "base estimator") }
    return cfg.WithBaseEstimator(est)
}
