// Package transcription converts spoken audio to text with Amazon Transcribe.
//
// Transcribe only reads media from S3, so the audio bytes are first staged
// into a bucket as a side channel; the objects are not cleaned up here.
// Job completion is observed by polling, with a hard attempt bound so a
// stuck upstream job cannot block a request forever.
package transcription

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/google/uuid"
)

// DefaultLanguageCode is used when the request does not name one.
const DefaultLanguageCode = "en-US"

var (
	// ErrTimedOut is returned when the job does not reach a terminal state
	// within the configured attempt bound.
	ErrTimedOut = errors.New("transcription job timed out")

	// ErrJobFailed is returned when the service reports the job as FAILED.
	ErrJobFailed = errors.New("transcription job failed")
)

// Client is the slice of the Transcribe API this package needs.
// *transcribe.Client satisfies it.
type Client interface {
	StartTranscriptionJob(ctx context.Context, params *transcribe.StartTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error)
	GetTranscriptionJob(ctx context.Context, params *transcribe.GetTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error)
}

// Uploader is the slice of the S3 API used to stage audio.
// *s3.Client satisfies it.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Result is a finished transcription.
type Result struct {
	Transcript string `json:"transcript"`
	JobName    string `json:"job_name"`
}

// Service stages audio, submits a transcription job, and waits for it.
type Service struct {
	client       Client
	uploader     Uploader
	bucket       string
	pollInterval time.Duration
	maxAttempts  int

	// test seams
	sleep      func(time.Duration)
	httpClient *http.Client
	newID      func() string
}

// New creates a Service. pollInterval and maxAttempts bound the completion
// wait; worst-case blocking time is roughly their product.
func New(client Client, uploader Uploader, bucket string, pollInterval time.Duration, maxAttempts int) *Service {
	return &Service{
		client:       client,
		uploader:     uploader,
		bucket:       bucket,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		sleep:        time.Sleep,
		httpClient:   http.DefaultClient,
		newID:        uuid.NewString,
	}
}

// Transcribe decodes the audio, stages it to S3, starts a job, and blocks
// until the job completes, fails, or the attempt bound runs out.
func (s *Service) Transcribe(ctx context.Context, audioBase64, languageCode string) (Result, error) {
	if languageCode == "" {
		languageCode = DefaultLanguageCode
	}

	audio, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return Result{}, fmt.Errorf("decode audio_base64: %w", err)
	}

	jobName := "transcription-" + s.newID()
	key := jobName + ".mp3"

	_, err = s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(audio),
	})
	if err != nil {
		return Result{}, fmt.Errorf("stage audio to s3: %w", err)
	}

	_, err = s.client.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
		LanguageCode:         types.LanguageCode(languageCode),
		MediaFormat:          types.MediaFormatMp3,
		Media: &types.Media{
			MediaFileUri: aws.String(fmt.Sprintf("s3://%s/%s", s.bucket, key)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("start transcription job: %w", err)
	}

	return s.waitForJob(ctx, jobName)
}

// waitForJob polls job status on a fixed interval until a terminal state or
// the attempt bound.
func (s *Service) waitForJob(ctx context.Context, jobName string) (Result, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			s.sleep(s.pollInterval)
		}
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("waiting for transcription job: %w", err)
		}

		out, err := s.client.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
			TranscriptionJobName: aws.String(jobName),
		})
		if err != nil {
			return Result{}, fmt.Errorf("get transcription job: %w", err)
		}

		job := out.TranscriptionJob
		switch job.TranscriptionJobStatus {
		case types.TranscriptionJobStatusCompleted:
			transcript, err := s.fetchTranscript(ctx, job)
			if err != nil {
				return Result{}, err
			}
			return Result{Transcript: transcript, JobName: jobName}, nil
		case types.TranscriptionJobStatusFailed:
			return Result{}, fmt.Errorf("%w: %s", ErrJobFailed, aws.ToString(job.FailureReason))
		}
	}

	return Result{}, fmt.Errorf("%w after %d attempts", ErrTimedOut, s.maxAttempts)
}

// fetchTranscript downloads the transcript document the job produced and
// pulls out the first transcript string.
func (s *Service) fetchTranscript(ctx context.Context, job *types.TranscriptionJob) (string, error) {
	if job.Transcript == nil || job.Transcript.TranscriptFileUri == nil {
		return "", fmt.Errorf("completed job %s has no transcript URI", aws.ToString(job.TranscriptionJobName))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *job.Transcript.TranscriptFileUri, nil)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch transcript: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	var doc struct {
		Results struct {
			Transcripts []struct {
				Transcript string `json:"transcript"`
			} `json:"transcripts"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("parse transcript: %w", err)
	}
	if len(doc.Results.Transcripts) == 0 {
		return "", errors.New("transcript document contains no transcripts")
	}

	return doc.Results.Transcripts[0].Transcript, nil
}
