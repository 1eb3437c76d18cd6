package genflow

import (
	"context"
	"fmt"
	"strings"

	"librarylaunchpad/internal/llmclient"
)

type ElaborateIdeaInput struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (in ElaborateIdeaInput) Validate() error {
	if strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

type ElaborateIdeaOutput struct {
	ElaboratedIdea string `json:"elaboratedIdea"`
}

func (out ElaborateIdeaOutput) Validate() error {
	if strings.TrimSpace(out.ElaboratedIdea) == "" {
		return fmt.Errorf("elaboratedIdea is empty")
	}
	return nil
}

var elaborateIdeaOp = Operation{
	Name: "elaborateOnIdea",
	Prompt: PromptSpec{
		Purpose: "You are a creative marketing expert for libraries. A user has selected a promotion idea and wants more detail.",
		Background: "Elaborate on the idea in the input, providing a more detailed plan, potential steps, materials needed, " +
			"or other useful information to help a librarian implement it.",
		OutputFields: []PromptField{
			{Name: "elaboratedIdea", Type: "string", Required: true, Description: "The detailed elaboration of the promotion idea, formatted as Markdown."},
		},
		Rules: []string{
			"Provide the elaboration as a single block of well-formatted Markdown text.",
			"Use headings, bold text, and lists to make the content easy to read and scan.",
		},
		OutputFormat: "Format the output as a JSON object.",
	},
}

// ElaborateOnIdea is a pure derived read; the result is never persisted here.
func ElaborateOnIdea(ctx context.Context, cli llmclient.LLMClient, in ElaborateIdeaInput) (ElaborateIdeaOutput, error) {
	var out ElaborateIdeaOutput
	if err := Run(ctx, cli, elaborateIdeaOp, in, &out); err != nil {
		return ElaborateIdeaOutput{}, err
	}
	return out, nil
}
