package transcription

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
)

type stubUploader struct {
	gotBucket string
	gotKey    string
	gotBody   []byte
	err       error
}

func (u *stubUploader) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	u.gotBucket = aws.ToString(params.Bucket)
	u.gotKey = aws.ToString(params.Key)
	if params.Body != nil {
		u.gotBody, _ = io.ReadAll(params.Body)
	}
	if u.err != nil {
		return nil, u.err
	}
	return &s3.PutObjectOutput{}, nil
}

// stubClient walks through a scripted sequence of job statuses, one per
// GetTranscriptionJob call. The last status repeats.
type stubClient struct {
	statuses      []types.TranscriptionJobStatus
	transcriptURI string
	failureReason string
	startErr      error
	getCalls      int
	gotLanguage   types.LanguageCode
	gotMediaURI   string
}

func (c *stubClient) StartTranscriptionJob(_ context.Context, params *transcribe.StartTranscriptionJobInput, _ ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error) {
	c.gotLanguage = params.LanguageCode
	c.gotMediaURI = aws.ToString(params.Media.MediaFileUri)
	if c.startErr != nil {
		return nil, c.startErr
	}
	return &transcribe.StartTranscriptionJobOutput{}, nil
}

func (c *stubClient) GetTranscriptionJob(_ context.Context, params *transcribe.GetTranscriptionJobInput, _ ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error) {
	idx := c.getCalls
	if idx >= len(c.statuses) {
		idx = len(c.statuses) - 1
	}
	c.getCalls++

	job := &types.TranscriptionJob{
		TranscriptionJobName:   params.TranscriptionJobName,
		TranscriptionJobStatus: c.statuses[idx],
	}
	if c.statuses[idx] == types.TranscriptionJobStatusCompleted {
		job.Transcript = &types.Transcript{TranscriptFileUri: aws.String(c.transcriptURI)}
	}
	if c.statuses[idx] == types.TranscriptionJobStatusFailed {
		job.FailureReason = aws.String(c.failureReason)
	}
	return &transcribe.GetTranscriptionJobOutput{TranscriptionJob: job}, nil
}

func newTestService(client Client, uploader Uploader, maxAttempts int) (*Service, *[]time.Duration) {
	var slept []time.Duration
	s := New(client, uploader, "audio-staging", 5*time.Second, maxAttempts)
	s.sleep = func(d time.Duration) { slept = append(slept, d) }
	s.newID = func() string { return "fixed-id" }
	return s, &slept
}

func transcriptServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}))
}

const transcriptDoc = `{"jobName":"x","results":{"transcripts":[{"transcript":"hello from the audio"}]}}`

func audioPayload() string {
	return base64.StdEncoding.EncodeToString([]byte("fake-audio"))
}

func TestTranscribe_Completed(t *testing.T) {
	server := transcriptServer(t, transcriptDoc)
	defer server.Close()

	client := &stubClient{
		statuses: []types.TranscriptionJobStatus{
			types.TranscriptionJobStatusInProgress,
			types.TranscriptionJobStatusInProgress,
			types.TranscriptionJobStatusCompleted,
		},
		transcriptURI: server.URL,
	}
	uploader := &stubUploader{}
	s, slept := newTestService(client, uploader, 10)
	s.httpClient = server.Client()

	result, err := s.Transcribe(context.Background(), audioPayload(), "")
	if err != nil {
		t.Fatalf("Transcribe unexpected error: %v", err)
	}

	if result.Transcript != "hello from the audio" {
		t.Errorf("Transcript = %q", result.Transcript)
	}
	if result.JobName != "transcription-fixed-id" {
		t.Errorf("JobName = %q", result.JobName)
	}
	if client.gotLanguage != types.LanguageCode(DefaultLanguageCode) {
		t.Errorf("language = %q, want default %q", client.gotLanguage, DefaultLanguageCode)
	}
	if client.gotMediaURI != "s3://audio-staging/transcription-fixed-id.mp3" {
		t.Errorf("media URI = %q", client.gotMediaURI)
	}
	if uploader.gotBucket != "audio-staging" || string(uploader.gotBody) != "fake-audio" {
		t.Errorf("staged %q to bucket %q", uploader.gotBody, uploader.gotBucket)
	}
	// No sleep before the first poll, one before each subsequent one.
	if len(*slept) != 2 {
		t.Errorf("slept %d times, want 2", len(*slept))
	}
}

func TestTranscribe_Failed(t *testing.T) {
	client := &stubClient{
		statuses:      []types.TranscriptionJobStatus{types.TranscriptionJobStatusFailed},
		failureReason: "unsupported media",
	}
	s, _ := newTestService(client, &stubUploader{}, 10)

	_, err := s.Transcribe(context.Background(), audioPayload(), "en-US")
	if !errors.Is(err, ErrJobFailed) {
		t.Fatalf("Transcribe = %v, want ErrJobFailed", err)
	}
	if got := err.Error(); got != "transcription job failed: unsupported media" {
		t.Errorf("error = %q, want failure reason embedded", got)
	}
}

func TestTranscribe_TimedOut(t *testing.T) {
	client := &stubClient{
		statuses: []types.TranscriptionJobStatus{types.TranscriptionJobStatusInProgress},
	}
	s, slept := newTestService(client, &stubUploader{}, 3)

	_, err := s.Transcribe(context.Background(), audioPayload(), "en-US")
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("Transcribe = %v, want ErrTimedOut", err)
	}
	if client.getCalls != 3 {
		t.Errorf("polled %d times, want exactly maxAttempts (3)", client.getCalls)
	}
	if len(*slept) != 2 {
		t.Errorf("slept %d times, want 2", len(*slept))
	}
}

func TestTranscribe_InvalidBase64(t *testing.T) {
	client := &stubClient{statuses: []types.TranscriptionJobStatus{types.TranscriptionJobStatusCompleted}}
	uploader := &stubUploader{}
	s, _ := newTestService(client, uploader, 10)

	_, err := s.Transcribe(context.Background(), "!!!not base64!!!", "en-US")
	if err == nil {
		t.Fatal("Transcribe with malformed base64 should fail")
	}
	if uploader.gotBucket != "" {
		t.Error("nothing should be uploaded when decoding fails")
	}
}

func TestTranscribe_UploadError(t *testing.T) {
	uploadErr := errors.New("AccessDenied")
	s, _ := newTestService(&stubClient{statuses: []types.TranscriptionJobStatus{types.TranscriptionJobStatusInProgress}}, &stubUploader{err: uploadErr}, 10)

	_, err := s.Transcribe(context.Background(), audioPayload(), "en-US")
	if !errors.Is(err, uploadErr) {
		t.Errorf("Transcribe = %v, want wrapped upload error", err)
	}
}

func TestTranscribe_CanceledContext(t *testing.T) {
	client := &stubClient{
		statuses: []types.TranscriptionJobStatus{types.TranscriptionJobStatusInProgress},
	}
	s, _ := newTestService(client, &stubUploader{}, 10)

	ctx, cancel := context.WithCancel(context.Background())
	s.sleep = func(time.Duration) { cancel() }

	_, err := s.Transcribe(ctx, audioPayload(), "en-US")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Transcribe = %v, want context.Canceled", err)
	}
}

func TestTranscribe_TranscriptDocumentWithoutTranscripts(t *testing.T) {
	server := transcriptServer(t, `{"results":{"transcripts":[]}}`)
	defer server.Close()

	client := &stubClient{
		statuses:      []types.TranscriptionJobStatus{types.TranscriptionJobStatusCompleted},
		transcriptURI: server.URL,
	}
	s, _ := newTestService(client, &stubUploader{}, 10)
	s.httpClient = server.Client()

	_, err := s.Transcribe(context.Background(), audioPayload(), "en-US")
	if err == nil {
		t.Fatal("Transcribe should fail when the transcript document is empty")
	}
}
