package genflow

import (
	"context"
	"fmt"
	"strings"

	"librarylaunchpad/internal/llmclient"
)

// IdeaItem is one promotion idea as emitted by the model. The model never
// sees topic or id; callers stamp those after the fact.
type IdeaItem struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

type RelevantDateItem struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type CrossMediaItem struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Year  string `json:"year"`
}

type GenerateIdeasInput struct {
	Topic string `json:"topic"`
	// ImageReference is an optional context image as a data URI.
	ImageReference string `json:"imageReference,omitempty"`
}

func (in GenerateIdeasInput) Validate() error {
	if strings.TrimSpace(in.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

type GenerateIdeasOutput struct {
	Ideas                 []IdeaItem         `json:"ideas"`
	RelevantDates         []RelevantDateItem `json:"relevantDates"`
	CrossMediaConnections []CrossMediaItem   `json:"crossMediaConnections"`
}

func (out GenerateIdeasOutput) Validate() error {
	if len(out.Ideas) == 0 {
		return fmt.Errorf("no ideas returned")
	}
	for i, idea := range out.Ideas {
		if strings.TrimSpace(idea.Category) == "" {
			return fmt.Errorf("idea %d: category is empty", i)
		}
		if strings.TrimSpace(idea.Description) == "" {
			return fmt.Errorf("idea %d: description is empty", i)
		}
	}
	for i, d := range out.RelevantDates {
		if strings.TrimSpace(d.Date) == "" {
			return fmt.Errorf("relevant date %d: date is empty", i)
		}
	}
	for i, c := range out.CrossMediaConnections {
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("cross-media connection %d: title is empty", i)
		}
	}
	return nil
}

// Category counts below (one per category, two Social Media) are prompt
// guidance only; the model is not held to them and callers must treat the
// counts as advisory.
var generateIdeasOp = Operation{
	Name: "generatePromotionIdeas",
	Prompt: PromptSpec{
		Purpose: "You are a creative marketing expert specializing in library promotions for the Northeast Regional Library in Corinth, MS. Generate cross-promotional ideas, relevant dates, and cross-media connections for the topic in the input.",
		Background: "First, analyze the provided topic. Search thoroughly for its presence across all major media formats (Book, Movie, TV Show, Game, etc.). " +
			"Populate the crossMediaConnections array with ALL relevant versions you find. It is crucial that you include the original source material " +
			"(e.g., the book a movie was based on) and any significant adaptations.",
		OutputFields: []PromptField{
			{Name: "ideas", Type: "[]{category,description}", Required: true, Description: "A list of creative cross-promotional ideas for the topic in a library setting."},
			{Name: "relevantDates", Type: "[]{date,reason}", Required: true, Description: "Relevant dates or holidays associated with the topic, such as release dates, holidays depicted, or author birthdays."},
			{Name: "crossMediaConnections", Type: "[]{type,title,year}", Required: true, Description: "Connections to other media formats if they exist, each with its type, title, and release year."},
		},
		Rules: []string{
			"Include one idea for each of these categories: Display, Shelf Signage, Video, Escape Room, Game, Craft, Sign.",
			"For the 'Social Media' category, generate two distinct ideas.",
			"Also include any other ideas you can think of, especially those that tie into current events or culture.",
			"For example, for the movie \"Jaws\", a relevant date would be July 4th. For a book, it could be the author's birthday or a significant date within the story.",
		},
		OutputFormat: "Format the output as a JSON object.",
	},
}

// GeneratePromotionIdeas produces categorized promotion ideas, relevant
// dates, and cross-media connections for a topic.
func GeneratePromotionIdeas(ctx context.Context, cli llmclient.LLMClient, in GenerateIdeasInput) (GenerateIdeasOutput, error) {
	var out GenerateIdeasOutput
	if err := Run(ctx, cli, generateIdeasOp, in, &out); err != nil {
		return GenerateIdeasOutput{}, err
	}
	return out, nil
}
