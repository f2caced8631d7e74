// Package main runs the gateway as a plain HTTP server for local
// development, exposing the same dispatch contract the Lambda serves.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/docrelay/ai-gateway/internal/awsclients"
	"github.com/docrelay/ai-gateway/internal/config"
	"github.com/docrelay/ai-gateway/internal/extract"
	"github.com/docrelay/ai-gateway/internal/gateway"
	"github.com/docrelay/ai-gateway/internal/logging"
	"github.com/docrelay/ai-gateway/internal/sentiment"
	"github.com/docrelay/ai-gateway/internal/source"
	"github.com/docrelay/ai-gateway/internal/speech"
	"github.com/docrelay/ai-gateway/internal/transcription"
	"github.com/docrelay/ai-gateway/internal/vision"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, "console")

	clients, err := awsclients.Load(context.Background(), cfg.Region)
	if err != nil {
		slog.Error("failed to initialize AWS clients", "error", err)
		os.Exit(1)
	}

	resolver := source.NewResolver(nil)
	dispatcher := gateway.New(
		extract.New(clients.Textract, resolver),
		sentiment.New(clients.Comprehend),
		speech.New(clients.Polly, cfg.PollyVoiceID),
		transcription.New(clients.Transcribe, clients.S3, cfg.TranscribeBucket, cfg.TranscribePollInterval, cfg.TranscribeMaxAttempts),
		vision.New(clients.Rekognition),
	)

	if cfg.Environment != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.POST("/invoke", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
			return
		}

		resp := dispatcher.Handle(c.Request.Context(), string(body))
		for key, value := range resp.Headers {
			c.Header(key, value)
		}
		c.Data(resp.StatusCode, "application/json", []byte(resp.Body))
	})

	slog.Info("local gateway listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
