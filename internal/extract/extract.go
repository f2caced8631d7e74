// Package extract pulls text lines out of documents with Amazon Textract.
//
// The whole document goes to the service in one synchronous call; pagination
// of very large documents is out of scope here and would need the async
// Textract APIs.
package extract

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/docrelay/ai-gateway/internal/source"
	"github.com/docrelay/ai-gateway/internal/textclean"
)

// TextDetector is the slice of the Textract API this package needs.
// *textract.Client satisfies it.
type TextDetector interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Extractor resolves a document source and extracts its cleaned text lines.
type Extractor struct {
	detector TextDetector
	resolver *source.Resolver
}

// New creates an Extractor around the given Textract client and resolver.
func New(detector TextDetector, resolver *source.Resolver) *Extractor {
	return &Extractor{detector: detector, resolver: resolver}
}

// ExtractLines returns the document's cleaned text lines in reading order.
//
// Source resolution failures propagate unchanged so callers can tell
// client-correctable input (bad source type, unreachable URL) from service
// faults. Only LINE blocks are collected from the Textract response; the
// service already returns them in reading order and that order is preserved
// through cleaning.
func (e *Extractor) ExtractLines(ctx context.Context, sourceType, fileContent string) ([]string, error) {
	data, err := e.resolver.Resolve(ctx, sourceType, fileContent)
	if err != nil {
		return nil, err
	}

	out, err := e.detector.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: data},
	})
	if err != nil {
		return nil, fmt.Errorf("detect document text: %w", err)
	}

	lines := make([]string, 0, len(out.Blocks))
	for _, block := range out.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, *block.Text)
		}
	}

	return textclean.Lines(lines), nil
}
