// Package sentiment scores text sentiment with Amazon Comprehend.
package sentiment

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
)

// Client is the slice of the Comprehend API this package needs.
// *comprehend.Client satisfies it.
type Client interface {
	DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
}

// Result is a sentiment verdict: the dominant label plus the per-label
// probabilities reported by the service.
type Result struct {
	Sentiment string
	Scores    map[string]float64
}

// Scorer wraps Comprehend sentiment detection. The analysis language is
// fixed to English.
type Scorer struct {
	client Client
}

// New creates a Scorer around the given Comprehend client.
func New(client Client) *Scorer {
	return &Scorer{client: client}
}

// Score runs a single DetectSentiment call for the given text. No retries;
// a failed call is the caller's problem to report.
func (s *Scorer) Score(ctx context.Context, text string) (Result, error) {
	out, err := s.client.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCodeEn,
	})
	if err != nil {
		return Result{}, fmt.Errorf("detect sentiment: %w", err)
	}

	scores := make(map[string]float64, 4)
	if sc := out.SentimentScore; sc != nil {
		scores["Positive"] = float64(aws.ToFloat32(sc.Positive))
		scores["Negative"] = float64(aws.ToFloat32(sc.Negative))
		scores["Neutral"] = float64(aws.ToFloat32(sc.Neutral))
		scores["Mixed"] = float64(aws.ToFloat32(sc.Mixed))
	}

	return Result{
		Sentiment: string(out.Sentiment),
		Scores:    scores,
	}, nil
}
