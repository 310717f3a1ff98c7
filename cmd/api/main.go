package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"randforest/internal/classifier"
	"randforest/internal/config"
	"randforest/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG"))
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	template, err := cfg.Forest.Forest()
	if err != nil {
		logger.Fatal("Invalid forest config", zap.Error(err))
	}

	clf, err := classifier.LoadFile(cfg.Server.ModelPath, template, classifier.WithLogger(logger))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("No saved model, starting empty", zap.String("path", cfg.Server.ModelPath))
		clf = classifier.New(template, classifier.WithLogger(logger))
	case err != nil:
		logger.Fatal("Failed to load model", zap.String("path", cfg.Server.ModelPath), zap.Error(err))
	default:
		logger.Info("Model loaded",
			zap.String("path", cfg.Server.ModelPath),
			zap.Int("examples", clf.NumExamples()),
			zap.Bool("trained", clf.Trained()),
		)
	}

	srv := &server{clf: clf, modelPath: cfg.Server.ModelPath, apiKey: cfg.Server.APIKey, logger: logger}
	r := gin.Default()
	srv.routes(r)

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
