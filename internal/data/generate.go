package data

import (
    "encoding/csv"
    "math/rand"
    "os"
    "path/filepath"
    "strconv"

    "github.com/pkg/errors"
)

// SyntheticHeader is the column layout written by GenerateSynthetic.
var SyntheticHeader = []string{"amount", "interval_days", "weekday", "same_approver", "round_value", "multiple5", "noise", "label"}

// GenerateSynthetic writes n labeled rows of an imbalanced two-class problem to
// outPath. posRate is the base probability of the positive class before the
// rule-driven signal is added. The same seed always produces the same file.
func GenerateSynthetic(n int, posRate float64, seed int64, outPath string) error {
    if n <= 0 { return errors.Errorf("synthetic row count must be positive, got %d", n) }
    if dir := filepath.Dir(outPath); dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil { return err }
    }
    f, err := os.Create(outPath)
    if err != nil { return err }
    defer f.Close()

    w := csv.NewWriter(f)
    if err := w.Write(SyntheticHeader); err != nil { return err }

    rng := rand.New(rand.NewSource(seed))
    for i := 0; i < n; i++ {
        if err := w.Write(syntheticRow(rng, posRate)); err != nil { return err }
    }
    w.Flush()
    return w.Error()
}

func syntheticRow(rng *rand.Rand, posRate float64) []string {
    amount := rng.Float64()*450 + 10
    round := rng.Float64() < 0.25
    multiple5 := rng.Float64() < 0.25
    if round { amount = float64(int(amount)) }
    if multiple5 { amount = float64(5 * int(amount/5)) }

    interval := rng.Intn(30)
    if rng.Float64() < 0.02 { interval = -rng.Intn(5) - 1 }
    sameApprover := rng.Float64() < 0.03

    score := 0.0
    flags := 0
    if sameApprover { score += 0.35; flags++ }
    if round { score += 0.15; flags++ }
    if multiple5 { score += 0.15; flags++ }
    if interval < 0 { score += 0.3; flags++ }
    if amount > 400 { score += 0.2; flags++ }

    label := 0
    if flags >= 2 || interval < 0 {
        label = 1
    } else if rng.Float64() < posRate+score/4 {
        label = 1
    }

    return []string{
        strconv.FormatFloat(amount, 'f', 2, 64),
        strconv.Itoa(interval),
        strconv.Itoa(rng.Intn(7)),
        strconv.Itoa(int(boolToFloat(sameApprover))),
        strconv.Itoa(int(boolToFloat(round))),
        strconv.Itoa(int(boolToFloat(multiple5))),
        strconv.FormatFloat(rng.NormFloat64(), 'f', 4, 64),
        strconv.Itoa(label),
    }
}

func boolToFloat(b bool) float64 { if b { return 1 } ; return 0 }
