package utils

import (
    "os"
    "path/filepath"
    "sync"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var (
    logger     *zap.Logger
    loggerOnce sync.Once
)

// Logger returns the process logger. JSON goes to stdout and, when LOG_FILE is
// set, is teed to that file. LOG_LEVEL (debug|info|warn|error) defaults to info.
func Logger() *zap.Logger {
    loggerOnce.Do(func() { logger = NewLogger(os.Getenv("LOG_FILE"), os.Getenv("LOG_LEVEL")) })
    return logger
}

func NewLogger(logFile, level string) *zap.Logger {
    lvl := zapcore.InfoLevel
    if level != "" {
        if l, err := zapcore.ParseLevel(level); err == nil { lvl = l }
    }
    enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
    cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)}
    if logFile != "" {
        _ = os.MkdirAll(filepath.Dir(logFile), 0o755)
        if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
            cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), lvl))
        }
    }
    return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
