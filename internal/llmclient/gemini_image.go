package llmclient

import (
	"context"
	"log"

	genai "google.golang.org/genai"
)

// GeminiImageClient wraps an image-capable Gemini model. When a reference
// image is supplied it is sent as an inline part ahead of the text prompt,
// which the model treats as an edit target rather than a fresh generation.
type GeminiImageClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiImageClient(ctx context.Context, apiKey, model string) (*GeminiImageClient, error) {
	_ = apiKey

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiImageClient{cli: cli, model: model}, nil
}

func (g *GeminiImageClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiImageClient) Close() error { return nil }

func (g *GeminiImageClient) GenerateImage(ctx context.Context, prompt string, ref *ImageData) (ImageData, error) {
	parts := make([]*genai.Part, 0, 2)
	if ref != nil && len(ref.Data) > 0 {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{
			MIMEType: ref.MIMEType,
			Data:     ref.Data,
		}})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	log.Printf("image request (%s): prompt %d bytes, ref=%t", OperationFrom(ctx), len(prompt), ref != nil)

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: parts}},
		&genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	)
	if err != nil {
		return ImageData{}, err
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return ImageData{
					MIMEType: part.InlineData.MIMEType,
					Data:     part.InlineData.Data,
				}, nil
			}
		}
	}
	return ImageData{}, ErrNoImage
}
