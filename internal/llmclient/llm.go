package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrInvalidJSON = errors.New("llmclient: invalid JSON from model")
	ErrNoImage     = errors.New("llmclient: no image returned by model")
)

// LLMClient is the minimal surface for structured JSON generation.
type LLMClient interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// ImageClient generates an image for a prompt, optionally conditioned on a
// reference image (edit/refine semantics).
type ImageClient interface {
	Name() string
	GenerateImage(ctx context.Context, prompt string, ref *ImageData) (ImageData, error)
	Close() error
}

// ImageData is an inline image payload.
type ImageData struct {
	MIMEType string
	Data     []byte
}

type operationKey struct{}

// WithOperation tags the context with the logical operation name so that
// clients (and fakes) can tell calls apart without inspecting prompts.
func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

// OperationFrom returns the operation name set by WithOperation, or "".
func OperationFrom(ctx context.Context) string {
	if v, ok := ctx.Value(operationKey{}).(string); ok {
		return v
	}
	return ""
}
