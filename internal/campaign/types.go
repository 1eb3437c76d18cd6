// Package campaign holds the working-session state machine and the
// aggregation model that turns generated ideas, dates, connections, and
// images into persisted campaigns.
package campaign

// Idea is one categorized promotional concept for a topic. The id is
// assigned client-side for regeneration targeting and list reconciliation;
// the model never emits it.
type Idea struct {
	ID          string `json:"id,omitempty"`
	Topic       string `json:"topic"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// RelevantDate is immutable once generated.
type RelevantDate struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// CrossMediaConnection is immutable once generated.
type CrossMediaConnection struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Year  string `json:"year"`
}

// PinnedIdea is an Idea persisted independently of its originating session.
// The id is the persistence key assigned by the store.
type PinnedIdea struct {
	ID          string `json:"id"`
	Topic       string `json:"topic"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SavedCampaign is an immutable named snapshot of one complete working set.
// There is no update operation: create, load, delete only.
type SavedCampaign struct {
	ID                    string                 `json:"id"`
	Name                  string                 `json:"name"`
	Topic                 string                 `json:"topic"`
	Ideas                 []Idea                 `json:"ideas"`
	RelevantDates         []RelevantDate         `json:"relevantDates"`
	CrossMediaConnections []CrossMediaConnection `json:"crossMediaConnections"`
	CreatedAt             string                 `json:"createdAt"`
}

// SavedImage is an explicitly saved image with a lifecycle independent of
// the campaign or session that produced it.
type SavedImage struct {
	ID        string `json:"id"`
	Prompt    string `json:"prompt"`
	Topic     string `json:"topic,omitempty"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt"`
}

// GeneratedImage lives only in the session working set. URL is empty while
// generation is in flight (placeholder state); it is filled on completion
// or the entry is removed on failure.
type GeneratedImage struct {
	ID     string `json:"id"`
	URL    string `json:"url,omitempty"`
	Prompt string `json:"prompt"`
	Topic  string `json:"topic,omitempty"`
}

// Pending reports whether the image is still a placeholder.
func (g GeneratedImage) Pending() bool { return g.URL == "" }
