package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// FakeClient returns canned JSON payloads per operation for offline/testing.
type FakeClient struct {
	mu        sync.Mutex
	Responses map[string]json.RawMessage
	Err       error
	Calls     []string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Responses: map[string]json.RawMessage{}}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Respond(operation string, payload string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[operation] = json.RawMessage(payload)
	return f
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	op := OperationFrom(ctx)
	f.mu.Lock()
	f.Calls = append(f.Calls, op)
	err := f.Err
	raw, ok := f.Responses[op]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fake llm: no canned response for operation %q", op)
	}
	return raw, nil
}

// FakeImageClient returns a fixed image payload, or fails when Err is set.
type FakeImageClient struct {
	mu    sync.Mutex
	Image ImageData
	Err   error
	Calls int
	Refs  []*ImageData
}

func NewFakeImageClient() *FakeImageClient {
	return &FakeImageClient{Image: ImageData{MIMEType: "image/png", Data: []byte("fake-png")}}
}

func (f *FakeImageClient) Name() string { return "FakeImage" }
func (f *FakeImageClient) Close() error { return nil }

func (f *FakeImageClient) GenerateImage(ctx context.Context, prompt string, ref *ImageData) (ImageData, error) {
	f.mu.Lock()
	f.Calls++
	f.Refs = append(f.Refs, ref)
	err := f.Err
	img := f.Image
	f.mu.Unlock()
	if err != nil {
		return ImageData{}, err
	}
	return img, nil
}
