// Package speech synthesizes spoken audio from text with Amazon Polly.
package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
)

// DefaultFormat is used when the request does not name an output format.
const DefaultFormat = "mp3"

// Client is the slice of the Polly API this package needs.
// *polly.Client satisfies it.
type Client interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Result carries the synthesized audio, base64-encoded for the JSON
// response envelope.
type Result struct {
	AudioBase64 string `json:"audio_base64"`
	Format      string `json:"format"`
}

// Synthesizer wraps Polly speech synthesis with a fixed voice.
type Synthesizer struct {
	client Client
	voice  string
}

// New creates a Synthesizer using the given voice ID.
func New(client Client, voice string) *Synthesizer {
	return &Synthesizer{client: client, voice: voice}
}

// Synthesize converts text into audio in the requested format. An empty
// format falls back to DefaultFormat; unknown formats are left to the
// service to reject.
func (s *Synthesizer) Synthesize(ctx context.Context, text, format string) (Result, error) {
	if format == "" {
		format = DefaultFormat
	}

	out, err := s.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: types.OutputFormat(format),
		VoiceId:      types.VoiceId(s.voice),
	})
	if err != nil {
		return Result{}, fmt.Errorf("synthesize speech: %w", err)
	}
	defer out.AudioStream.Close()

	audio, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return Result{}, fmt.Errorf("read audio stream: %w", err)
	}

	return Result{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Format:      format,
	}, nil
}
