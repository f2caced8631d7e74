// Package main is the entry point for the AI gateway Lambda function.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"

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
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	clients, err := awsclients.Load(ctx, cfg.Region)
	if err != nil {
		slog.Error("failed to initialize AWS clients", "error", err)
		os.Exit(1)
	}

	dispatcher := newDispatcher(cfg, clients)
	warmer := newWarmer(lambdasdk.NewFromConfig(clients.AWSConfig()), os.Getenv("AWS_LAMBDA_FUNCTION_NAME"))

	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		// Warmup detection must run before any request parsing.
		if warmup, ok := isWarmupEvent(event); ok {
			return warmer.handle(ctx, warmup)
		}

		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, err
		}

		return dispatcher.Handle(ctx, req.Body), nil
	})
}

func newDispatcher(cfg *config.Config, clients *awsclients.Set) *gateway.Dispatcher {
	resolver := source.NewResolver(nil)
	return gateway.New(
		extract.New(clients.Textract, resolver),
		sentiment.New(clients.Comprehend),
		speech.New(clients.Polly, cfg.PollyVoiceID),
		transcription.New(clients.Transcribe, clients.S3, cfg.TranscribeBucket, cfg.TranscribePollInterval, cfg.TranscribeMaxAttempts),
		vision.New(clients.Rekognition),
	)
}
