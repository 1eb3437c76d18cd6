package genflow

import (
	"context"
	"fmt"
	"strings"

	"librarylaunchpad/internal/llmclient"
)

type SummarizeCampaignInput struct {
	// FeedbackData holds all feedback entries for a campaign as one string.
	FeedbackData string `json:"feedbackData"`
}

func (in SummarizeCampaignInput) Validate() error {
	if strings.TrimSpace(in.FeedbackData) == "" {
		return fmt.Errorf("feedbackData is required")
	}
	return nil
}

type SummarizeCampaignOutput struct {
	Summary     string `json:"summary"`
	Suggestions string `json:"suggestions"`
}

func (out SummarizeCampaignOutput) Validate() error {
	if strings.TrimSpace(out.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}

var summarizeCampaignOp = Operation{
	Name: "summarizeMarketingCampaign",
	Prompt: PromptSpec{
		Purpose: "You are a marketing expert tasked with summarizing feedback data from library cross-promotion marketing campaigns.",
		Background: "Analyze the feedback data in the input and provide a summary of what worked well and what didn't, " +
			"plus suggestions for improving future marketing campaigns.",
		OutputFields: []PromptField{
			{Name: "summary", Type: "string", Required: true, Description: "A summary of the feedback data."},
			{Name: "suggestions", Type: "string", Required: true, Description: "Suggestions for improving future marketing campaigns."},
		},
		OutputFormat: "Format the output as a JSON object.",
	},
}

// SummarizeMarketingCampaign condenses campaign feedback into a summary and
// improvement suggestions.
func SummarizeMarketingCampaign(ctx context.Context, cli llmclient.LLMClient, in SummarizeCampaignInput) (SummarizeCampaignOutput, error) {
	var out SummarizeCampaignOutput
	if err := Run(ctx, cli, summarizeCampaignOp, in, &out); err != nil {
		return SummarizeCampaignOutput{}, err
	}
	return out, nil
}

type SummarizeEventInput struct {
	// EventData includes attendance numbers, feedback, and other metrics.
	EventData string `json:"eventData"`
}

func (in SummarizeEventInput) Validate() error {
	if strings.TrimSpace(in.EventData) == "" {
		return fmt.Errorf("eventData is required")
	}
	return nil
}

type SummarizeEventOutput struct {
	Summary         string `json:"summary"`
	KeyLearnings    string `json:"keyLearnings"`
	Recommendations string `json:"recommendations"`
}

func (out SummarizeEventOutput) Validate() error {
	if strings.TrimSpace(out.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}

var summarizeEventOp = Operation{
	Name: "summarizePromotionEventImpact",
	Prompt: PromptSpec{
		Purpose: "You are an experienced librarian tasked with analyzing the impact of past promotion events.",
		Background: "Analyze the event data in the input and provide a summary of its impact, key learnings, " +
			"and recommendations for future events.",
		OutputFields: []PromptField{
			{Name: "summary", Type: "string", Required: true, Description: "A summary of the event impact, highlighting key successes and failures."},
			{Name: "keyLearnings", Type: "string", Required: true, Description: "Key learnings and insights gained from the event data."},
			{Name: "recommendations", Type: "string", Required: true, Description: "Recommendations for improving future promotion events."},
		},
		OutputFormat: "Format the output as a JSON object.",
	},
}

// SummarizePromotionEventImpact reviews one promotion event's metrics.
func SummarizePromotionEventImpact(ctx context.Context, cli llmclient.LLMClient, in SummarizeEventInput) (SummarizeEventOutput, error) {
	var out SummarizeEventOutput
	if err := Run(ctx, cli, summarizeEventOp, in, &out); err != nil {
		return SummarizeEventOutput{}, err
	}
	return out, nil
}
