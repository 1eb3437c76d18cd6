package campaign

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State of a working session.
type State string

const (
	StateEmpty     State = "empty"
	StateLoading   State = "loading"
	StatePopulated State = "populated"
)

// Session owns one working result set. All mutation goes through its
// methods; the reset for a new submission happens synchronously before any
// generation call is dispatched, and every dispatch carries the generation
// current at that moment. Results whose generation is stale are discarded.
type Session struct {
	ID string

	mu                    sync.Mutex
	state                 State
	topic                 string
	ideas                 []Idea
	relevantDates         []RelevantDate
	crossMediaConnections []CrossMediaConnection
	images                []GeneratedImage
	loadedCampaignID      string
	generation            uint64
	cancel                context.CancelFunc
	regenerating          map[string]bool
	createdAt             time.Time
}

func NewSession() *Session {
	return &Session{
		ID:           uuid.NewString(),
		state:        StateEmpty,
		regenerating: map[string]bool{},
		createdAt:    time.Now().UTC(),
	}
}

// BeginSubmit clears the full working set for a new topic, advances the
// generation, cancels the previous dispatch, and returns the generation
// token plus the context the new dispatch must run under.
func (s *Session) BeginSubmit(parent context.Context, topic string) (uint64, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.topic = strings.TrimSpace(topic)
	s.state = StateLoading

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return s.generation, ctx
}

// resetLocked clears ideas, dates, connections, images, and any loaded
// campaign reference, advancing the generation so in-flight completions
// from the previous submission are discarded.
func (s *Session) resetLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.topic = ""
	s.ideas = nil
	s.relevantDates = nil
	s.crossMediaConnections = nil
	s.images = nil
	s.loadedCampaignID = ""
	s.regenerating = map[string]bool{}
	s.state = StateEmpty
}

// CompleteIdeas installs a generation result. Ideas are stamped with the
// submission topic and fresh ids. Returns false when the result is stale.
func (s *Session) CompleteIdeas(gen uint64, ideas []Idea, dates []RelevantDate, conns []CrossMediaConnection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.ideas = make([]Idea, len(ideas))
	for i, idea := range ideas {
		idea.ID = uuid.NewString()
		idea.Topic = s.topic
		s.ideas[i] = idea
	}
	s.relevantDates = append([]RelevantDate(nil), dates...)
	s.crossMediaConnections = append([]CrossMediaConnection(nil), conns...)
	s.state = StatePopulated
	return true
}

// FailSubmit clears partial working state after a failed generation; the
// session returns to Empty. Returns false when the failure is stale.
func (s *Session) FailSubmit(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.resetLocked()
	return true
}

// LoadCampaign replaces the whole working set with a saved snapshot.
// Ideas missing an id (older records) are stamped with a fresh one.
func (s *Session) LoadCampaign(c SavedCampaign) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.topic = c.Topic
	s.ideas = make([]Idea, len(c.Ideas))
	for i, idea := range c.Ideas {
		if idea.ID == "" {
			idea.ID = uuid.NewString()
		}
		if idea.Topic == "" {
			idea.Topic = c.Topic
		}
		s.ideas[i] = idea
	}
	s.relevantDates = append([]RelevantDate(nil), c.RelevantDates...)
	s.crossMediaConnections = append([]CrossMediaConnection(nil), c.CrossMediaConnections...)
	s.loadedCampaignID = c.ID
	s.state = StatePopulated
}

// SnapshotCampaign captures the entire current working set under a name.
// The snapshot is a deep copy: later working mutations never touch it.
func (s *Session) SnapshotCampaign(name string) (SavedCampaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedCampaign{}, fmt.Errorf("%w: campaign name is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePopulated {
		return SavedCampaign{}, fmt.Errorf("%w: nothing to save in state %q", ErrValidation, s.state)
	}
	return SavedCampaign{
		Name:                  name,
		Topic:                 s.topic,
		Ideas:                 append([]Idea(nil), s.ideas...),
		RelevantDates:         append([]RelevantDate(nil), s.relevantDates...),
		CrossMediaConnections: append([]CrossMediaConnection(nil), s.crossMediaConnections...),
		CreatedAt:             time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// IdeaByID returns a copy of the matching idea.
func (s *Session) IdeaByID(id string) (Idea, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idea := range s.ideas {
		if idea.ID == id {
			return idea, true
		}
	}
	return Idea{}, false
}

// BeginRegenerate latches one idea for regeneration. Other ideas may
// regenerate concurrently; the same idea may not.
func (s *Session) BeginRegenerate(ideaID string) (Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idea := range s.ideas {
		if idea.ID == ideaID {
			if s.regenerating[ideaID] {
				return Idea{}, fmt.Errorf("%w: idea %s is already regenerating", ErrValidation, ideaID)
			}
			s.regenerating[ideaID] = true
			return idea, nil
		}
	}
	return Idea{}, fmt.Errorf("%w: idea %s", ErrNotFound, ideaID)
}

// CompleteRegenerate replaces exactly the matching idea's description,
// leaving id, topic, and category unchanged.
func (s *Session) CompleteRegenerate(ideaID, newDescription string) (Idea, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regenerating, ideaID)
	for i := range s.ideas {
		if s.ideas[i].ID == ideaID {
			s.ideas[i].Description = newDescription
			return s.ideas[i], true
		}
	}
	return Idea{}, false
}

// AbortRegenerate releases the latch after a failed regeneration.
func (s *Session) AbortRegenerate(ideaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regenerating, ideaID)
}

// AddPlaceholder appends an in-flight image entry to the gallery.
func (s *Session) AddPlaceholder(prompt, topic string) GeneratedImage {
	img := GeneratedImage{ID: uuid.NewString(), Prompt: prompt, Topic: topic}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
	return img
}

// AddImage appends a completed image, rejecting URL duplicates so that
// reloading a saved image cannot create a second gallery entry.
func (s *Session) AddImage(img GeneratedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img.URL != "" {
		for _, existing := range s.images {
			if existing.URL == img.URL {
				return ErrDuplicateImage
			}
		}
	}
	s.images = append(s.images, img)
	return nil
}

// CompleteImage fills in a placeholder's URL. Returns false when the
// placeholder is gone (session reset or rolled back).
func (s *Session) CompleteImage(id, url string) (GeneratedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.images {
		if s.images[i].ID == id {
			s.images[i].URL = url
			return s.images[i], true
		}
	}
	return GeneratedImage{}, false
}

// RemoveImage deletes a gallery entry; used both by the user and as the
// rollback path for failed generations.
func (s *Session) RemoveImage(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.images {
		if s.images[i].ID == id {
			s.images = append(s.images[:i], s.images[i+1:]...)
			return true
		}
	}
	return false
}

// ImageByID returns a copy of the matching gallery entry.
func (s *Session) ImageByID(id string) (GeneratedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.images {
		if img.ID == id {
			return img, true
		}
	}
	return GeneratedImage{}, false
}

// WorkingSet is a consistent copy of the session's current result set.
type WorkingSet struct {
	State                 State                  `json:"state"`
	Topic                 string                 `json:"topic"`
	Ideas                 []Idea                 `json:"ideas"`
	RelevantDates         []RelevantDate         `json:"relevantDates"`
	CrossMediaConnections []CrossMediaConnection `json:"crossMediaConnections"`
	Images                []GeneratedImage       `json:"images"`
	LoadedCampaignID      string                 `json:"loadedCampaignId,omitempty"`
}

// Snapshot returns a deep copy of the working set.
func (s *Session) Snapshot() WorkingSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WorkingSet{
		State:                 s.state,
		Topic:                 s.topic,
		Ideas:                 append([]Idea(nil), s.ideas...),
		RelevantDates:         append([]RelevantDate(nil), s.relevantDates...),
		CrossMediaConnections: append([]CrossMediaConnection(nil), s.crossMediaConnections...),
		Images:                append([]GeneratedImage(nil), s.images...),
		LoadedCampaignID:      s.loadedCampaignID,
	}
}

// Generation returns the current generation counter.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// StateOf returns the current state.
func (s *Session) StateOf() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Topic returns the active topic.
func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}
