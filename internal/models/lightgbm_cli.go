package models

import (
    "bufio"
    "bytes"
    "context"
    "fmt"
    "os"
    "os/exec"
    "path/filepath"
    "strings"

    "github.com/pkg/errors"

    "bagging/internal/data"
)

// LightGBMCLI trains through an external lightgbm binary. Each Fit and Predict
// runs in its own temporary directory, so clones can run concurrently. The
// fitted model text is kept in memory.
type LightGBMCLI struct {
    ExecPath      string
    NumLeaves     int
    MaxDepth      int
    MinDataInLeaf int
    NumIterations int
    LearningRate  float64
    Device        string
    WorkDir       string
    ModelText     []byte
}

func NewLightGBMCLI() *LightGBMCLI {
    return &LightGBMCLI{
        ExecPath:      "lightgbm",
        NumLeaves:     31,
        MaxDepth:      -1,
        MinDataInLeaf: 100,
        NumIterations: 200,
        LearningRate:  0.1,
        Device:        "cpu",
    }
}

func (l *LightGBMCLI) Name() string {
    if l.Device == "gpu" { return "LightGBM(GPU)" }
    return "LightGBM(CPU)"
}

func (l *LightGBMCLI) Clone(overrides Params) (Estimator, error) {
    c := *l
    c.ModelText = nil
    err := applyFields(overrides, map[string]func(any) error{
        "exec_path":        setString(&c.ExecPath),
        "num_leaves":       setInt(&c.NumLeaves),
        "max_depth":        setInt(&c.MaxDepth),
        "min_data_in_leaf": setInt(&c.MinDataInLeaf),
        "estimators":       setInt(&c.NumIterations),
        "lr":               setFloat(&c.LearningRate),
        "device":           setString(&c.Device),
        "work_dir":         setString(&c.WorkDir),
    })
    if err != nil { return nil, err }
    if c.Device != "cpu" && c.Device != "gpu" { return nil, errors.Wrapf(ErrParamType, "device %q", c.Device) }
    return &c, nil
}

func (l *LightGBMCLI) trainConfig(trainCSV, modelPath string) string {
    return fmt.Sprintf("task=train\nboosting=gbdt\nobjective=binary\nmetric=auc\n"+
        "data=%s\nheader=false\nlabel_column=0\n"+
        "num_leaves=%d\nmax_depth=%d\nmin_data_in_leaf=%d\n"+
        "num_iterations=%d\nlearning_rate=%f\n"+
        "device=%s\ntree_learner=%s\noutput_model=%s\n",
        trainCSV, l.NumLeaves, l.MaxDepth, l.MinDataInLeaf, l.NumIterations, l.LearningRate,
        l.Device, ternary(l.Device == "gpu", "gpu", "serial"), modelPath,
    )
}

func predictConfig(modelPath, predCSV, outPath string) string {
    return fmt.Sprintf("task=predict\ninput_model=%s\ndata=%s\nheader=false\nlabel_column=0\noutput_result=%s\n",
        modelPath, predCSV, outPath,
    )
}

func (l *LightGBMCLI) Fit(ctx context.Context, ds *data.Dataset) (Model, error) {
    y, err := binaryLabels(ds)
    if err != nil { return nil, err }
    dir, err := os.MkdirTemp(l.WorkDir, "lgbm-fit-")
    if err != nil { return nil, err }
    defer os.RemoveAll(dir)

    trainCSV := filepath.Join(dir, "train.csv")
    if err := writeCSVLabelFirst(trainCSV, ds.Features(), y); err != nil { return nil, err }
    modelPath := filepath.Join(dir, "model.txt")
    conf := filepath.Join(dir, "train.conf")
    if err := os.WriteFile(conf, []byte(l.trainConfig(trainCSV, modelPath)), 0o644); err != nil { return nil, err }

    if err := l.run(ctx, conf); err != nil { return nil, err }
    text, err := os.ReadFile(modelPath)
    if err != nil { return nil, errors.Wrap(err, "lightgbm model not found after training") }
    fitted := *l
    fitted.ModelText = text
    return &fitted, nil
}

func (l *LightGBMCLI) Predict(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    ps, err := l.PredictProba(ctx, ds)
    if err != nil { return nil, err }
    return probaToPred(ps), nil
}

func (l *LightGBMCLI) PredictProba(ctx context.Context, ds *data.Dataset) ([]float64, error) {
    if len(l.ModelText) == 0 { return nil, ErrNotFitted }
    if ds.Len() == 0 { return []float64{}, nil }
    dir, err := os.MkdirTemp(l.WorkDir, "lgbm-predict-")
    if err != nil { return nil, err }
    defer os.RemoveAll(dir)

    modelPath := filepath.Join(dir, "model.txt")
    if err := os.WriteFile(modelPath, l.ModelText, 0o644); err != nil { return nil, err }
    predCSV := filepath.Join(dir, "pred.csv")
    if err := writeCSVLabelFirst(predCSV, ds.Features(), make([]int, ds.Len())); err != nil { return nil, err }
    outPath := filepath.Join(dir, "preds.txt")
    conf := filepath.Join(dir, "predict.conf")
    if err := os.WriteFile(conf, []byte(predictConfig(modelPath, predCSV, outPath)), 0o644); err != nil { return nil, err }

    if err := l.run(ctx, conf); err != nil { return nil, err }
    f, err := os.Open(outPath)
    if err != nil { return nil, err }
    defer f.Close()
    return readPredictions(f, ds.Len())
}

func (l *LightGBMCLI) run(ctx context.Context, conf string) error {
    var out bytes.Buffer
    cmd := exec.CommandContext(ctx, l.ExecPath, fmt.Sprintf("config=%s", conf))
    cmd.Stdout = &out
    cmd.Stderr = &out
    if err := cmd.Run(); err != nil {
        return errors.Wrapf(err, "lightgbm %s failed (is it installed and on PATH?): %s", filepath.Base(conf), strings.TrimSpace(out.String()))
    }
    return nil
}

func readPredictions(f *os.File, want int) ([]float64, error) {
    sc := bufio.NewScanner(f)
    ps := make([]float64, 0, want)
    for sc.Scan() {
        var v float64
        if _, err := fmt.Sscan(sc.Text(), &v); err != nil { return nil, errors.Wrapf(err, "prediction line %d", len(ps)+1) }
        ps = append(ps, v)
    }
    if err := sc.Err(); err != nil { return nil, err }
    if len(ps) != want { return nil, errors.Errorf("lightgbm returned %d predictions for %d rows", len(ps), want) }
    return ps, nil
}

func writeCSVLabelFirst(path string, X [][]float64, y []int) error {
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := bufio.NewWriter(f)
    for i := range X {
        fmt.Fprintf(w, "%d", y[i])
        for j := range X[i] { fmt.Fprintf(w, ",%g", X[i][j]) }
        fmt.Fprintln(w)
    }
    return w.Flush()
}

func ternary[T any](cond bool, a, b T) T { if cond { return a } ; return b }
