package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/docrelay/ai-gateway/internal/source"
)

type stubDetector struct {
	blocks   []types.Block
	err      error
	gotBytes []byte
	calls    int
}

func (s *stubDetector) DetectDocumentText(_ context.Context, params *textract.DetectDocumentTextInput, _ ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error) {
	s.calls++
	s.gotBytes = params.Document.Bytes
	if s.err != nil {
		return nil, s.err
	}
	return &textract.DetectDocumentTextOutput{Blocks: s.blocks}, nil
}

func lineBlock(text string) types.Block {
	return types.Block{BlockType: types.BlockTypeLine, Text: aws.String(text)}
}

func wordBlock(text string) types.Block {
	return types.Block{BlockType: types.BlockTypeWord, Text: aws.String(text)}
}

func upload(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func TestExtractLines(t *testing.T) {
	detector := &stubDetector{blocks: []types.Block{
		{BlockType: types.BlockTypePage},
		lineBlock("Hi"),
		wordBlock("ignored word block"),
		lineBlock("http://x.com"),
		lineBlock("Confidential report"),
	}}
	e := New(detector, source.NewResolver(nil))

	lines, err := e.ExtractLines(context.Background(), source.TypeUpload, upload("%PDF-fake"))
	if err != nil {
		t.Fatalf("ExtractLines unexpected error: %v", err)
	}

	want := []string{"Confidential report"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("ExtractLines = %q, want %q", lines, want)
	}
	if string(detector.gotBytes) != "%PDF-fake" {
		t.Errorf("detector received bytes %q, want decoded upload", detector.gotBytes)
	}
}

func TestExtractLines_PreservesServiceOrder(t *testing.T) {
	detector := &stubDetector{blocks: []types.Block{
		lineBlock("first line of text"),
		lineBlock("second line of text"),
		lineBlock("third line of text"),
	}}
	e := New(detector, source.NewResolver(nil))

	lines, err := e.ExtractLines(context.Background(), source.TypeUpload, upload("doc"))
	if err != nil {
		t.Fatalf("ExtractLines unexpected error: %v", err)
	}

	want := []string{"first line of text", "second line of text", "third line of text"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("ExtractLines = %q, want %q", lines, want)
	}
}

func TestExtractLines_InvalidSourceType(t *testing.T) {
	detector := &stubDetector{}
	e := New(detector, source.NewResolver(nil))

	_, err := e.ExtractLines(context.Background(), "carrier-pigeon", "content")
	if !errors.Is(err, source.ErrInvalidSourceType) {
		t.Errorf("ExtractLines = %v, want ErrInvalidSourceType", err)
	}
	if detector.calls != 0 {
		t.Errorf("detector called %d times on resolution failure, want 0", detector.calls)
	}
}

func TestExtractLines_ServiceError(t *testing.T) {
	serviceErr := errors.New("UnsupportedDocumentException")
	e := New(&stubDetector{err: serviceErr}, source.NewResolver(nil))

	_, err := e.ExtractLines(context.Background(), source.TypeUpload, upload("doc"))
	if !errors.Is(err, serviceErr) {
		t.Errorf("ExtractLines = %v, want wrapped service error", err)
	}
	if errors.Is(err, source.ErrInvalidSourceType) || errors.Is(err, source.ErrUnreachableURL) {
		t.Errorf("service error must not look like a client input error: %v", err)
	}
}

func TestExtractLines_NilTextBlocks(t *testing.T) {
	detector := &stubDetector{blocks: []types.Block{
		{BlockType: types.BlockTypeLine, Text: nil},
		lineBlock("a surviving line"),
	}}
	e := New(detector, source.NewResolver(nil))

	lines, err := e.ExtractLines(context.Background(), source.TypeUpload, upload("doc"))
	if err != nil {
		t.Fatalf("ExtractLines unexpected error: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"a surviving line"}) {
		t.Errorf("ExtractLines = %q, want nil-text blocks skipped", lines)
	}
}
