// Package awsclients builds the AWS service clients the gateway depends on
// from a single shared configuration. Handlers receive these as injected
// dependencies; nothing here is a package-level global.
package awsclients

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
)

// Set holds one client per service the gateway talks to.
type Set struct {
	Textract    *textract.Client
	Comprehend  *comprehend.Client
	Polly       *polly.Client
	Transcribe  *transcribe.Client
	Rekognition *rekognition.Client
	S3          *s3.Client

	cfg aws.Config
}

// AWSConfig exposes the shared configuration for callers that need to build
// additional clients (the warmup self-invoker, for one).
func (s *Set) AWSConfig() aws.Config {
	return s.cfg
}

// Load resolves ambient AWS credentials/region once and constructs all
// service clients from the result. An empty region defers to the
// environment.
func Load(ctx context.Context, region string) (*Set, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Set{
		Textract:    textract.NewFromConfig(cfg),
		Comprehend:  comprehend.NewFromConfig(cfg),
		Polly:       polly.NewFromConfig(cfg),
		Transcribe:  transcribe.NewFromConfig(cfg),
		Rekognition: rekognition.NewFromConfig(cfg),
		S3:          s3.NewFromConfig(cfg),
		cfg:         cfg,
	}, nil
}
