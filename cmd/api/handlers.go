package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"randforest/internal/classifier"
	"randforest/internal/metrics"
)

type server struct {
	clf       *classifier.Classifier
	modelPath string
	apiKey    string
	logger    *zap.Logger
}

func (s *server) routes(r *gin.Engine) {
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/")
	api.Use(s.apiKeyMiddleware)
	api.POST("/examples", s.handleExamples)
	api.POST("/train", s.handleTrain)
	api.POST("/classify", s.handleClassify)
	api.POST("/predict", s.handlePredict)
	api.GET("/model", s.handleModel)
}

func (s *server) apiKeyMiddleware(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	if c.GetHeader("X-API-Key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

type exampleReq struct {
	Features []float64 `json:"features" binding:"required,min=1"`
	Label    any       `json:"label"`
}

type examplesReq struct {
	Examples []exampleReq `json:"examples" binding:"required,min=1,dive"`
}

type classifyReq struct {
	Features []float64 `json:"features" binding:"required"`
}

type predictReq struct {
	Rows [][]float64 `json:"rows" binding:"required,min=1"`
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"trained":  s.clf.Trained(),
		"examples": s.clf.NumExamples(),
		"width":    s.clf.Width(),
	})
}

func (s *server) handleExamples(c *gin.Context) {
	var req examplesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for i, ex := range req.Examples {
		if err := s.clf.AddExample(ex.Features, ex.Label); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "index": i, "added": i})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"added":    len(req.Examples),
		"examples": s.clf.NumExamples(),
		"width":    s.clf.Width(),
		"labels":   s.clf.Labels(),
	})
}

func (s *server) handleTrain(c *gin.Context) {
	if err := s.clf.Train(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, classifier.ErrNoExamples) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if s.modelPath != "" {
		if err := s.clf.SaveFile(s.modelPath); err != nil {
			s.logger.Warn("Failed to persist model", zap.String("path", s.modelPath), zap.Error(err))
		}
	}
	rf, _ := s.clf.Forest()
	c.JSON(http.StatusOK, gin.H{
		"trees":    len(rf.Trees),
		"classes":  rf.NumClasses,
		"features": rf.NumFeatures,
		"examples": s.clf.NumExamples(),
	})
}

func classifyStatus(err error) int {
	switch {
	case errors.Is(err, classifier.ErrNotTrained):
		return http.StatusConflict
	case errors.Is(err, classifier.ErrWidthMismatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *server) handleClassify(c *gin.Context) {
	var req classifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ranked, err := s.clf.Classifications(req.Features)
	if err != nil {
		c.JSON(classifyStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"label": ranked[0].Label, "classifications": ranked})
}

func (s *server) handlePredict(c *gin.Context) {
	var req predictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := make([]classifier.Classification, len(req.Rows))
	for i, row := range req.Rows {
		ranked, err := s.clf.Classifications(row)
		if err != nil {
			c.JSON(classifyStatus(err), gin.H{"error": err.Error(), "row": i})
			return
		}
		out[i] = ranked[0]
	}
	c.JSON(http.StatusOK, gin.H{"predictions": out})
}

func (s *server) handleModel(c *gin.Context) {
	rf, err := s.clf.Forest()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	b, err := rf.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", b)
}
