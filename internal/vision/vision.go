// Package vision analyzes images with Amazon Rekognition.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// Analysis kinds selectable per request.
const (
	KindLabels = "label"
	KindFaces  = "detect_faces"
)

// ErrUnknownKind is returned for an analysis kind outside the accepted set.
var ErrUnknownKind = errors.New("unknown rekognition_type")

// Client is the slice of the Rekognition API this package needs.
// *rekognition.Client satisfies it.
type Client interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Label is one detected object label.
type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Emotion is one detected facial emotion with its confidence.
type Emotion struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Face is a reduced view of one detected face.
type Face struct {
	AgeLow     int32     `json:"age_low"`
	AgeHigh    int32     `json:"age_high"`
	Smile      bool      `json:"smile"`
	Confidence float64   `json:"confidence"`
	Emotions   []Emotion `json:"emotions"`
}

// Result carries the outcome of one analysis; exactly one field is set,
// matching the requested kind.
type Result struct {
	Labels []Label `json:"labels,omitempty"`
	Faces  []Face  `json:"faces,omitempty"`
}

// Analyzer wraps Rekognition image analysis.
type Analyzer struct {
	client Client
}

// New creates an Analyzer around the given Rekognition client.
func New(client Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze decodes the image and runs the requested analysis kind.
func (a *Analyzer) Analyze(ctx context.Context, kind, imageBase64 string) (Result, error) {
	image, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return Result{}, fmt.Errorf("decode image_data: %w", err)
	}

	switch kind {
	case KindLabels:
		return a.detectLabels(ctx, image)
	case KindFaces:
		return a.detectFaces(ctx, image)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func (a *Analyzer) detectLabels(ctx context.Context, image []byte) (Result, error) {
	out, err := a.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return Result{}, fmt.Errorf("detect labels: %w", err)
	}

	labels := make([]Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, Label{
			Name:       aws.ToString(l.Name),
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
	}
	return Result{Labels: labels}, nil
}

func (a *Analyzer) detectFaces(ctx context.Context, image []byte) (Result, error) {
	out, err := a.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return Result{}, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]Face, 0, len(out.FaceDetails))
	for _, fd := range out.FaceDetails {
		face := Face{Confidence: float64(aws.ToFloat32(fd.Confidence))}
		if fd.AgeRange != nil {
			face.AgeLow = aws.ToInt32(fd.AgeRange.Low)
			face.AgeHigh = aws.ToInt32(fd.AgeRange.High)
		}
		if fd.Smile != nil {
			face.Smile = fd.Smile.Value
		}
		for _, em := range fd.Emotions {
			face.Emotions = append(face.Emotions, Emotion{
				Type:       string(em.Type),
				Confidence: float64(aws.ToFloat32(em.Confidence)),
			})
		}
		faces = append(faces, face)
	}
	return Result{Faces: faces}, nil
}
