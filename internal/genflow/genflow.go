// Package genflow defines the schema-constrained generation operations:
// each operation pairs a prompt spec with typed input/output structs and
// validates the model's JSON before it reaches callers.
package genflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"librarylaunchpad/internal/llmclient"
)

var (
	// ErrGeneration means the model produced nothing usable for an operation:
	// the call failed, the payload was not JSON, or it failed validation.
	ErrGeneration = errors.New("genflow: generation failed")

	// ErrInvalidInput means a local precondition failed before any call was made.
	ErrInvalidInput = errors.New("genflow: invalid input")
)

// Validator is implemented by every operation input and output.
type Validator interface {
	Validate() error
}

// Operation names a structured-generation call and carries its prompt spec.
// Operations differ only by schema and prompt, never by control flow.
type Operation struct {
	Name   string
	Prompt PromptSpec
}

// Run executes one operation: validate input, build the prompt, call the
// model, unmarshal and validate the output. Partial or non-conforming
// output never escapes; the out value is only populated on success.
func Run(ctx context.Context, cli llmclient.LLMClient, op Operation, input Validator, out Validator) error {
	if cli == nil {
		return fmt.Errorf("genflow: llm client is nil")
	}
	if err := input.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, op.Name, err)
	}
	prompt, err := BuildPrompt(op.Prompt)
	if err != nil {
		return fmt.Errorf("genflow: %s: %w", op.Name, err)
	}

	ctx = llmclient.WithOperation(ctx, op.Name)
	raw, err := cli.GenerateJSON(ctx, prompt, input)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrGeneration, op.Name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: unmarshal output: %v", ErrGeneration, op.Name, err)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("%w: %s: non-conforming output: %v", ErrGeneration, op.Name, err)
	}
	return nil
}
