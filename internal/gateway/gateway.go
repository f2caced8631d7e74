// Package gateway dispatches request envelopes to the AI service handlers
// and shapes their results into the HTTP JSON response contract.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/docrelay/ai-gateway/internal/sentiment"
	"github.com/docrelay/ai-gateway/internal/source"
	"github.com/docrelay/ai-gateway/internal/speech"
	"github.com/docrelay/ai-gateway/internal/transcription"
	"github.com/docrelay/ai-gateway/internal/vision"
)

// Actions recognized by the dispatcher.
const (
	ActionTextract           = "textract"
	ActionComprehend         = "comprehend"
	ActionTextractComprehend = "textract-comprehend"
	ActionPolly              = "polly"
	ActionTranscribe         = "transcribe"
	ActionRekognition        = "rekognition"
)

// Request is the envelope every action shares. The action field selects the
// handler; the rest are action-specific and validated per action.
type Request struct {
	Action          string `json:"action"`
	SourceType      string `json:"source_type"`
	FileContent     string `json:"file_content"`
	Text            string `json:"text"`
	Format          string `json:"format"`
	AudioBase64     string `json:"audio_base64"`
	LanguageCode    string `json:"language_code"`
	RekognitionType string `json:"rekognition_type"`
	ImageData       string `json:"image_data"`
}

// LineExtractor extracts cleaned text lines from a declared document source.
type LineExtractor interface {
	ExtractLines(ctx context.Context, sourceType, fileContent string) ([]string, error)
}

// SentimentScorer scores the sentiment of a text.
type SentimentScorer interface {
	Score(ctx context.Context, text string) (sentiment.Result, error)
}

// SpeechSynthesizer converts text to audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, format string) (speech.Result, error)
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64, languageCode string) (transcription.Result, error)
}

// ImageAnalyzer runs one kind of image analysis.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, kind, imageBase64 string) (vision.Result, error)
}

// Dispatcher routes request envelopes to handlers. It holds no per-request
// state; one Dispatcher serves all invocations.
type Dispatcher struct {
	extractor   LineExtractor
	scorer      SentimentScorer
	synthesizer SpeechSynthesizer
	transcriber Transcriber
	analyzer    ImageAnalyzer
}

// New creates a Dispatcher over the given handlers.
func New(extractor LineExtractor, scorer SentimentScorer, synthesizer SpeechSynthesizer, transcriber Transcriber, analyzer ImageAnalyzer) *Dispatcher {
	return &Dispatcher{
		extractor:   extractor,
		scorer:      scorer,
		synthesizer: synthesizer,
		transcriber: transcriber,
		analyzer:    analyzer,
	}
}

// Handle processes one request body: parse, validate the action's required
// fields (fail fast, before any handler side effect), invoke, relay.
func (d *Dispatcher) Handle(ctx context.Context, body string) events.APIGatewayProxyResponse {
	var req Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "Invalid request body.")
	}

	slog.Info("dispatching request", "action", req.Action)

	if msg := validateRequest(req); msg != "" {
		return errorResponse(http.StatusBadRequest, msg)
	}

	switch req.Action {
	case ActionTextract:
		return d.handleTextract(ctx, req)
	case ActionComprehend:
		return d.handleComprehend(ctx, req)
	case ActionTextractComprehend:
		return d.handleTextractComprehend(ctx, req)
	case ActionPolly:
		return d.handlePolly(ctx, req)
	case ActionTranscribe:
		return d.handleTranscribe(ctx, req)
	case ActionRekognition:
		return d.handleRekognition(ctx, req)
	default:
		return errorResponse(http.StatusBadRequest, "Invalid action specified.")
	}
}

// validateRequest checks the action's required fields and returns a
// field-specific message for the first missing one, or "" when valid.
// Unknown actions validate clean; Handle rejects them itself.
func validateRequest(req Request) string {
	switch req.Action {
	case ActionTextract, ActionTextractComprehend:
		if req.SourceType == "" {
			return "Missing or invalid 'source_type' in the request."
		}
		if req.FileContent == "" {
			return "Missing 'file_content' in the request."
		}
	case ActionComprehend, ActionPolly:
		if req.Text == "" {
			return "Missing 'text' in the request."
		}
	case ActionTranscribe:
		if req.AudioBase64 == "" {
			return "Missing 'audio_base64' in the request."
		}
	case ActionRekognition:
		if req.RekognitionType == "" {
			return "Missing 'rekognition_type' in the request."
		}
		if req.RekognitionType != vision.KindLabels && req.RekognitionType != vision.KindFaces {
			return "Invalid rekognition_type. Use 'label' or 'detect_faces'."
		}
		if req.ImageData == "" {
			return "Missing 'image_data' in the request."
		}
	}
	return ""
}

func (d *Dispatcher) handleTextract(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	lines, err := d.extractor.ExtractLines(ctx, req.SourceType, req.FileContent)
	if err != nil {
		return extractionErrorResponse(err)
	}
	return jsonResponse(http.StatusOK, lines)
}

func (d *Dispatcher) handleComprehend(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	result, err := d.scorer.Score(ctx, req.Text)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "Failed to analyze sentiment: "+err.Error())
	}
	return jsonResponse(http.StatusOK, sentimentResponse{
		Sentiment:      result.Sentiment,
		SentimentScore: result.Scores,
	})
}

// handleTextractComprehend sequences extraction and sentiment scoring. An
// extraction failure short-circuits with the exact response the textract
// action would have produced; the scorer is never called.
//
// The extracted_text field re-splits the space-joined line blob into single
// tokens. That loses the line boundaries the cleaner computed, but keeps the
// combined response's token-array shape; changing it would break consumers.
func (d *Dispatcher) handleTextractComprehend(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	lines, err := d.extractor.ExtractLines(ctx, req.SourceType, req.FileContent)
	if err != nil {
		return extractionErrorResponse(err)
	}

	blob := strings.Join(lines, " ")
	result, err := d.scorer.Score(ctx, blob)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "Failed to analyze sentiment: "+err.Error())
	}

	return jsonResponse(http.StatusOK, combinedResponse{
		ExtractedText: strings.Split(blob, " "),
		SentimentAnalysis: sentimentAnalysis{
			Sentiment: result.Sentiment,
			Score:     result.Scores,
		},
	})
}

func (d *Dispatcher) handlePolly(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	result, err := d.synthesizer.Synthesize(ctx, req.Text, req.Format)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "Failed to synthesize speech: "+err.Error())
	}
	return jsonResponse(http.StatusOK, result)
}

func (d *Dispatcher) handleTranscribe(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	result, err := d.transcriber.Transcribe(ctx, req.AudioBase64, req.LanguageCode)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "Failed to transcribe audio: "+err.Error())
	}
	return jsonResponse(http.StatusOK, result)
}

func (d *Dispatcher) handleRekognition(ctx context.Context, req Request) events.APIGatewayProxyResponse {
	result, err := d.analyzer.Analyze(ctx, req.RekognitionType, req.ImageData)
	if err != nil {
		if errors.Is(err, vision.ErrUnknownKind) {
			return errorResponse(http.StatusBadRequest, "Invalid rekognition_type. Use 'label' or 'detect_faces'.")
		}
		return errorResponse(http.StatusInternalServerError, "Failed to analyze image: "+err.Error())
	}
	return jsonResponse(http.StatusOK, result)
}

// extractionErrorResponse maps an extractor failure onto the response
// contract. Client-correctable input gets a 400; anything else is the
// extractor's catch-all 500 with the cause embedded. Both the textract
// action and the composer use this, so a composed failure is byte-identical
// to a standalone one.
func extractionErrorResponse(err error) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, source.ErrUnreachableURL):
		return errorResponse(http.StatusBadRequest, "Unable to fetch content from the provided URL.")
	case errors.Is(err, source.ErrInvalidSourceType):
		return errorResponse(http.StatusBadRequest, "Invalid source_type")
	default:
		return errorResponse(http.StatusInternalServerError, "Failed to process the document: "+err.Error())
	}
}
