package main

import (
    "net/http"
    "os"
    "path/filepath"
    "strconv"

    "github.com/gin-gonic/gin"
    "go.uber.org/zap"

    "bagging/internal/data"
    "bagging/internal/ensemble"
    "bagging/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    path := os.Getenv("MODEL_PATH")
    if path == "" { path = filepath.Join("models", "ensemble.gob") }
    ens, err := ensemble.LoadFile(path)
    if err != nil {
        logger.Warn("no ensemble loaded, scoring disabled", zap.String("path", path), zap.Error(err))
    } else {
        logger.Info("ensemble loaded", zap.String("path", path), zap.Int("models", ens.NumModels()))
    }

    r := newRouter(&server{ens: ens, logger: logger, apiKey: os.Getenv("API_KEY")})

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    if err := r.Run(":" + port); err != nil { logger.Fatal("serve", zap.Error(err)) }
}

type server struct {
    ens    *ensemble.Ensemble
    logger *zap.Logger
    apiKey string
}

func newRouter(s *server) *gin.Engine {
    r := gin.New()
    r.Use(gin.Recovery())

    r.GET("/healthz", s.handleHealth)

    api := r.Group("/")
    api.Use(s.apiKeyMiddleware, s.requireEnsemble)
    api.GET("/ensemble", s.handleEnsemble)
    api.POST("/predict", s.handlePredict)
    return r
}

func (s *server) apiKeyMiddleware(c *gin.Context) {
    if s.apiKey == "" { c.Next(); return }
    got := c.GetHeader("X-API-Key")
    if got != s.apiKey { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }
    c.Next()
}

func (s *server) requireEnsemble(c *gin.Context) {
    if s.ens == nil { c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "no ensemble loaded"}); return }
    c.Next()
}

func (s *server) handleHealth(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"status": "ok", "loaded": s.ens != nil})
}

func (s *server) handleEnsemble(c *gin.Context) {
    cfg := s.ens.Config()
    names := make([]string, 0, s.ens.NumModels())
    for _, m := range s.ens.Models() { names = append(names, m.Name()) }
    sampling := cfg.Sampling()
    classes := sampling.Classes()
    rates := make(map[string]float64, len(classes))
    for _, k := range classes { rates[strconv.Itoa(k)] = sampling[k] }
    base := ""
    if b := cfg.BaseEstimator(); b != nil { base = b.Name() }
    c.JSON(http.StatusOK, gin.H{
        "num_models":     s.ens.NumModels(),
        "is_classifier":  cfg.IsClassifier(),
        "threshold":      cfg.Threshold(),
        "seed":           cfg.Seed(),
        "features_col":   cfg.FeaturesCol(),
        "label_col":      cfg.LabelCol(),
        "prediction_col": cfg.PredictionCol(),
        "base_estimator": base,
        "members":        names,
        "sampling":       rates,
    })
}

type predictReq struct {
    Rows      [][]float64 `json:"rows" binding:"required,min=1"`
    Threshold *int        `json:"threshold" binding:"omitempty,min=1"`
}

type predictResp struct {
    Model     string    `json:"model"`
    Threshold int       `json:"threshold"`
    Decisions []float64 `json:"decisions"`
    Votes     []float64 `json:"votes"`
}

func (s *server) handlePredict(c *gin.Context) {
    var req predictReq
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()}); return
    }
    ens := s.ens
    if req.Threshold != nil {
        var err error
        if ens, err = ens.WithThreshold(*req.Threshold); err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return
        }
    }
    cfg := ens.Config()
    ds, err := data.New(cfg.FeaturesCol(), "", nil, req.Rows, nil)
    if err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return }

    ctx := c.Request.Context()
    preds, err := ens.MemberPredictions(ctx, ds)
    if err != nil {
        s.logger.Warn("member predictions", zap.Int("rows", ds.Len()), zap.Error(err))
        c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()}); return
    }
    decisions, err := ensemble.Aggregate(preds, float64(cfg.Threshold()))
    if err != nil { c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()}); return }
    votes, err := ensemble.Sum(preds)
    if err != nil { c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()}); return }

    s.logger.Debug("scored rows", zap.Int("rows", ds.Len()), zap.Int("threshold", cfg.Threshold()))
    base := "ensemble"
    if b := cfg.BaseEstimator(); b != nil { base = b.Name() }
    c.JSON(http.StatusOK, predictResp{Model: base, Threshold: cfg.Threshold(), Decisions: decisions, Votes: votes})
}
