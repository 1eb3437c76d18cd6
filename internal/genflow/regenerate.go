package genflow

import (
	"context"
	"fmt"
	"strings"

	"librarylaunchpad/internal/llmclient"
)

type RegenerateIdeaInput struct {
	Topic               string `json:"topic"`
	Category            string `json:"category"`
	ExistingDescription string `json:"existingDescription"`
}

func (in RegenerateIdeaInput) Validate() error {
	if strings.TrimSpace(in.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if strings.TrimSpace(in.ExistingDescription) == "" {
		return fmt.Errorf("existingDescription is required")
	}
	return nil
}

type RegenerateIdeaOutput struct {
	NewDescription string `json:"newDescription"`
}

func (out RegenerateIdeaOutput) Validate() error {
	if strings.TrimSpace(out.NewDescription) == "" {
		return fmt.Errorf("newDescription is empty")
	}
	return nil
}

// Distinctness from the existing description is a prompt instruction, not
// verified here.
var regenerateIdeaOp = Operation{
	Name: "regeneratePromotionIdea",
	Prompt: PromptSpec{
		Purpose: "You are a creative marketing expert specializing in library promotions. Generate a new and different promotional idea for the given topic and category.",
		Background: "Think outside the box and try to tie into relevant news or current entertainment trends if applicable. " +
			"The input contains the existing idea that must be replaced.",
		OutputFields: []PromptField{
			{Name: "newDescription", Type: "string", Required: true, Description: "A new, detailed description for the promotional idea."},
		},
		Rules: []string{
			"The new idea must be distinct from the existing one provided.",
			"It should not be overly complicated to implement.",
			"Provide only the new description for the idea.",
		},
		OutputFormat: "Format the output as a JSON object.",
	},
}

// RegeneratePromotionIdea produces one replacement description for a single
// idea; the caller swaps exactly that entry's description.
func RegeneratePromotionIdea(ctx context.Context, cli llmclient.LLMClient, in RegenerateIdeaInput) (RegenerateIdeaOutput, error) {
	var out RegenerateIdeaOutput
	if err := Run(ctx, cli, regenerateIdeaOp, in, &out); err != nil {
		return RegenerateIdeaOutput{}, err
	}
	return out, nil
}
