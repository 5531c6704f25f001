package models

import (
    "math"

    "github.com/pkg/errors"
)

// Params are hyperparameter overrides keyed by snake_case name.
type Params map[string]any

var (
    ErrUnknownParam = errors.New("unknown parameter")
    ErrParamType    = errors.New("parameter has wrong type")
)

func (p Params) Copy() Params {
    out := make(Params, len(p))
    for k, v := range p { out[k] = v }
    return out
}

// each hands every override to set, which reports whether it knew the key.
func (p Params) each(set func(key string, v any) (bool, error)) error {
    for k, v := range p {
        ok, err := set(k, v)
        if err != nil { return errors.Wrapf(err, "parameter %q", k) }
        if !ok { return errors.Wrapf(ErrUnknownParam, "%q", k) }
    }
    return nil
}

// intParam accepts integers and integral floats, since decoded YAML, TOML and
// JSON disagree on numeric types.
func intParam(v any) (int, error) {
    switch n := v.(type) {
    case int:
        return n, nil
    case int32:
        return int(n), nil
    case int64:
        return int(n), nil
    case uint64:
        return int(n), nil
    case float64:
        if n != math.Trunc(n) { return 0, errors.Wrapf(ErrParamType, "%v is not an integer", n) }
        return int(n), nil
    }
    return 0, errors.Wrapf(ErrParamType, "%T is not an integer", v)
}

func floatParam(v any) (float64, error) {
    switch n := v.(type) {
    case float64:
        return n, nil
    case float32:
        return float64(n), nil
    case int, int32, int64, uint64:
        i, _ := intParam(n)
        return float64(i), nil
    }
    return 0, errors.Wrapf(ErrParamType, "%T is not a number", v)
}

func stringParam(v any) (string, error) {
    s, ok := v.(string)
    if !ok { return "", errors.Wrapf(ErrParamType, "%T is not a string", v) }
    return s, nil
}

func setInt(dst *int) func(any) error {
    return func(v any) error {
        n, err := intParam(v)
        if err != nil { return err }
        *dst = n
        return nil
    }
}

func setInt64(dst *int64) func(any) error {
    return func(v any) error {
        n, err := intParam(v)
        if err != nil { return err }
        *dst = int64(n)
        return nil
    }
}

func setFloat(dst *float64) func(any) error {
    return func(v any) error {
        f, err := floatParam(v)
        if err != nil { return err }
        *dst = f
        return nil
    }
}

func setString(dst *string) func(any) error {
    return func(v any) error {
        s, err := stringParam(v)
        if err != nil { return err }
        *dst = s
        return nil
    }
}

// applyFields runs the setter registered for each override key.
func applyFields(p Params, fields map[string]func(any) error) error {
    return p.each(func(key string, v any) (bool, error) {
        set, ok := fields[key]
        if !ok { return false, nil }
        return true, set(v)
    })
}
