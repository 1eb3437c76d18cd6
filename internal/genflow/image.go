package genflow

import (
	"context"
	"fmt"
	"strings"

	"librarylaunchpad/internal/llmclient"
	"librarylaunchpad/internal/util/dataurl"
)

// Aspect ratios accepted by the image operation.
const (
	AspectSquare    = "1:1"
	AspectLandscape = "16:9"
	AspectPortrait  = "9:16"
)

type GenerateImageInput struct {
	Prompt string `json:"prompt"`
	// ReferenceImage is an optional data URI; when present the model treats
	// it as an edit target ("refine" semantics) rather than a fresh render.
	ReferenceImage string `json:"referenceImage,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
}

func (in GenerateImageInput) Validate() error {
	if strings.TrimSpace(in.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	switch in.AspectRatio {
	case "", AspectSquare, AspectLandscape, AspectPortrait:
	default:
		return fmt.Errorf("unsupported aspect ratio %q", in.AspectRatio)
	}
	if in.ReferenceImage != "" && !dataurl.IsDataURL(in.ReferenceImage) {
		return fmt.Errorf("referenceImage must be a data URI")
	}
	return nil
}

type GenerateImageOutput struct {
	// ImageDataURI is the generated image as a base64 data URI.
	ImageDataURI string `json:"imageDataUri"`
}

// GenerateImage produces a new image artifact. Unlike the JSON operations
// this talks to the image-capable model; the failure contract is the same:
// no usable image means ErrGeneration and the caller rolls back any
// placeholder it created.
func GenerateImage(ctx context.Context, cli llmclient.ImageClient, in GenerateImageInput) (GenerateImageOutput, error) {
	if cli == nil {
		return GenerateImageOutput{}, fmt.Errorf("genflow: image client is nil")
	}
	if err := in.Validate(); err != nil {
		return GenerateImageOutput{}, fmt.Errorf("%w: generateImage: %v", ErrInvalidInput, err)
	}

	var ref *llmclient.ImageData
	if in.ReferenceImage != "" {
		mimeType, data, err := dataurl.Decode(in.ReferenceImage)
		if err != nil {
			return GenerateImageOutput{}, fmt.Errorf("%w: generateImage: %v", ErrInvalidInput, err)
		}
		ref = &llmclient.ImageData{MIMEType: mimeType, Data: data}
	}

	prompt := in.Prompt
	if in.AspectRatio != "" {
		prompt += fmt.Sprintf(" (aspect ratio %s)", in.AspectRatio)
	}

	ctx = llmclient.WithOperation(ctx, "generateImage")
	img, err := cli.GenerateImage(ctx, prompt, ref)
	if err != nil {
		return GenerateImageOutput{}, fmt.Errorf("%w: generateImage: %v", ErrGeneration, err)
	}
	if len(img.Data) == 0 {
		return GenerateImageOutput{}, fmt.Errorf("%w: generateImage: empty image payload", ErrGeneration)
	}
	return GenerateImageOutput{ImageDataURI: dataurl.Encode(img.MIMEType, img.Data)}, nil
}
