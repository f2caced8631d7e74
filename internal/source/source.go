// Package source resolves a declared document source into raw bytes.
//
// Callers declare where the document comes from with a source type: "upload"
// carries the bytes inline as base64, "url" points at a fetchable location.
package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Source types accepted in requests.
const (
	TypeUpload = "upload"
	TypeURL    = "url"
)

var (
	// ErrInvalidSourceType is returned for a source type outside the accepted
	// set. This is a client error, not a processing failure.
	ErrInvalidSourceType = errors.New("invalid source_type")

	// ErrUnreachableURL is returned when a url source cannot be fetched, for
	// any network-layer or non-2xx reason. The URL is client-supplied, so the
	// caller should treat this as correctable input rather than a fault.
	ErrUnreachableURL = errors.New("unable to fetch content from the provided URL")
)

// Resolver turns (source_type, file_content) pairs into document bytes.
type Resolver struct {
	httpClient *http.Client
}

// NewResolver creates a Resolver. A nil client falls back to
// http.DefaultClient.
func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{httpClient: client}
}

// Resolve produces the raw document bytes for the given source.
//
// For TypeUpload, content is decoded as standard base64; malformed input
// surfaces the decode error directly. For TypeURL, content is fetched and any
// failure is reported as ErrUnreachableURL. Anything else is
// ErrInvalidSourceType.
func (r *Resolver) Resolve(ctx context.Context, sourceType, content string) ([]byte, error) {
	switch sourceType {
	case TypeUpload:
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("decode file_content: %w", err)
		}
		return data, nil
	case TypeURL:
		return r.fetch(ctx, content)
	default:
		return nil, ErrInvalidSourceType
	}
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableURL, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachableURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableURL, err)
	}
	return data, nil
}
