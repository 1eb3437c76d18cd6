package campaign

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"librarylaunchpad/internal/genflow"
	"librarylaunchpad/internal/imagestore"
	"librarylaunchpad/internal/llmclient"
	"librarylaunchpad/internal/store"
	"librarylaunchpad/internal/util/dataurl"
)

// Service orchestrates generation flows, session state, and persistence.
type Service struct {
	llm    llmclient.LLMClient
	img    llmclient.ImageClient
	store  *store.Store
	images *imagestore.Store

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(llm llmclient.LLMClient, img llmclient.ImageClient, st *store.Store, images *imagestore.Store) *Service {
	return &Service{
		llm:      llm,
		img:      img,
		store:    st,
		images:   images,
		sessions: map[string]*Session{},
	}
}

func (s *Service) NewSession() *Session {
	sess := NewSession()
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *Service) Session(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

// SubmitResult is what a topic submission returns once the idea generation
// resolves. ImageID names the gallery placeholder when an image was also
// requested; that generation completes independently.
type SubmitResult struct {
	Working WorkingSet `json:"working"`
	ImageID string     `json:"imageId,omitempty"`
}

const topicImagePrompt = "A creative, artistic, visually-appealing promotional image for a library about: "

// SubmitTopic resets the session synchronously, then dispatches idea
// generation and (optionally) image generation concurrently. The idea
// result is returned as soon as it resolves; the image completes into the
// session gallery on its own. A failed idea generation clears the session
// back to empty — no partial idea sets are retained.
func (s *Service) SubmitTopic(ctx context.Context, sess *Session, topic string, withImage bool) (SubmitResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return SubmitResult{}, fmt.Errorf("%w: topic is required", ErrValidation)
	}

	// The dispatch context outlives the HTTP request and is cancelled by
	// the next reset, so superseded calls stop instead of racing.
	gen, dispatchCtx := sess.BeginSubmit(context.Background(), topic)

	var imageID string
	if withImage && s.img != nil {
		placeholder := sess.AddPlaceholder(topicImagePrompt+topic, topic)
		imageID = placeholder.ID
		go s.generateInto(dispatchCtx, sess, placeholder.ID, genflow.GenerateImageInput{Prompt: placeholder.Prompt})
	}

	out, err := genflow.GeneratePromotionIdeas(dispatchCtx, s.llm, genflow.GenerateIdeasInput{Topic: topic})
	if err != nil {
		if sess.FailSubmit(gen) {
			return SubmitResult{}, err
		}
		return SubmitResult{}, ErrSuperseded
	}

	ideas := make([]Idea, len(out.Ideas))
	for i, item := range out.Ideas {
		ideas[i] = Idea{Category: item.Category, Description: item.Description}
	}
	dates := make([]RelevantDate, len(out.RelevantDates))
	for i, item := range out.RelevantDates {
		dates[i] = RelevantDate(item)
	}
	conns := make([]CrossMediaConnection, len(out.CrossMediaConnections))
	for i, item := range out.CrossMediaConnections {
		conns[i] = CrossMediaConnection(item)
	}
	if !sess.CompleteIdeas(gen, ideas, dates, conns) {
		return SubmitResult{}, ErrSuperseded
	}
	return SubmitResult{Working: sess.Snapshot(), ImageID: imageID}, nil
}

// generateInto runs one image generation against an existing placeholder,
// filling it on success and rolling it back on failure. A completion whose
// placeholder is gone (session reset) is discarded silently.
func (s *Service) generateInto(ctx context.Context, sess *Session, placeholderID string, in genflow.GenerateImageInput) {
	out, err := genflow.GenerateImage(ctx, s.img, in)
	if err != nil {
		if sess.RemoveImage(placeholderID) {
			log.Printf("image generation failed for %s: %v", placeholderID, err)
		}
		return
	}
	sess.CompleteImage(placeholderID, out.ImageDataURI)
}

// RegenerateIdea swaps exactly one idea's description. The idea is latched
// while the call is in flight; concurrent regeneration of other ideas is
// allowed.
func (s *Service) RegenerateIdea(ctx context.Context, sess *Session, ideaID string) (Idea, error) {
	idea, err := sess.BeginRegenerate(ideaID)
	if err != nil {
		return Idea{}, err
	}
	out, err := genflow.RegeneratePromotionIdea(ctx, s.llm, genflow.RegenerateIdeaInput{
		Topic:               idea.Topic,
		Category:            idea.Category,
		ExistingDescription: idea.Description,
	})
	if err != nil {
		sess.AbortRegenerate(ideaID)
		return Idea{}, err
	}
	updated, ok := sess.CompleteRegenerate(ideaID, out.NewDescription)
	if !ok {
		return Idea{}, ErrSuperseded
	}
	return updated, nil
}

// Elaborate derives a Markdown elaboration for one idea; nothing is stored.
func (s *Service) Elaborate(ctx context.Context, in genflow.ElaborateIdeaInput) (genflow.ElaborateIdeaOutput, error) {
	return genflow.ElaborateOnIdea(ctx, s.llm, in)
}

// ReviewCampaign summarizes campaign feedback data.
func (s *Service) ReviewCampaign(ctx context.Context, in genflow.SummarizeCampaignInput) (genflow.SummarizeCampaignOutput, error) {
	return genflow.SummarizeMarketingCampaign(ctx, s.llm, in)
}

// ReviewEvent summarizes one promotion event's impact.
func (s *Service) ReviewEvent(ctx context.Context, in genflow.SummarizeEventInput) (genflow.SummarizeEventOutput, error) {
	return genflow.SummarizePromotionEventImpact(ctx, s.llm, in)
}

// GenerateImage adds a placeholder, generates, and either completes the
// entry or rolls it back.
func (s *Service) GenerateImage(ctx context.Context, sess *Session, in genflow.GenerateImageInput) (GeneratedImage, error) {
	if s.img == nil {
		return GeneratedImage{}, fmt.Errorf("%w: image generation is not configured", ErrValidation)
	}
	placeholder := sess.AddPlaceholder(in.Prompt, sess.Topic())
	out, err := genflow.GenerateImage(ctx, s.img, in)
	if err != nil {
		sess.RemoveImage(placeholder.ID)
		return GeneratedImage{}, err
	}
	img, ok := sess.CompleteImage(placeholder.ID, out.ImageDataURI)
	if !ok {
		return GeneratedImage{}, ErrSuperseded
	}
	return img, nil
}

// RefineImage generates a new image using an existing completed one as the
// edit target. The source entry is untouched; the refinement gets its own
// placeholder with the usual rollback-on-failure.
func (s *Service) RefineImage(ctx context.Context, sess *Session, sourceID, prompt string) (GeneratedImage, error) {
	if s.img == nil {
		return GeneratedImage{}, fmt.Errorf("%w: image generation is not configured", ErrValidation)
	}
	source, ok := sess.ImageByID(sourceID)
	if !ok {
		return GeneratedImage{}, fmt.Errorf("%w: image %s", ErrNotFound, sourceID)
	}
	if source.Pending() {
		return GeneratedImage{}, fmt.Errorf("%w: image is still generating", ErrValidation)
	}
	placeholder := sess.AddPlaceholder(prompt, source.Topic)
	out, err := genflow.GenerateImage(ctx, s.img, genflow.GenerateImageInput{
		Prompt:         prompt,
		ReferenceImage: source.URL,
	})
	if err != nil {
		sess.RemoveImage(placeholder.ID)
		return GeneratedImage{}, err
	}
	img, ok := sess.CompleteImage(placeholder.ID, out.ImageDataURI)
	if !ok {
		return GeneratedImage{}, ErrSuperseded
	}
	return img, nil
}

// PinIdea appends a copy of one idea, stamped with its originating topic,
// to the persisted pinned-ideas collection. The idea stays in the working
// set.
func (s *Service) PinIdea(ctx context.Context, sess *Session, ideaID string) (PinnedIdea, error) {
	idea, ok := sess.IdeaByID(ideaID)
	if !ok {
		return PinnedIdea{}, fmt.Errorf("%w: idea %s", ErrNotFound, ideaID)
	}
	pin := PinnedIdea{Topic: idea.Topic, Category: idea.Category, Description: idea.Description}
	id, err := s.store.Create(ctx, store.PinnedIdeas, pin)
	if err != nil {
		return PinnedIdea{}, fmt.Errorf("%w: pin idea: %v", ErrPersistence, err)
	}
	pin.ID = id
	return pin, nil
}

// UnpinIdea removes a pinned idea by persistence id. Irreversible; deleting
// an already-deleted id is a no-op.
func (s *Service) UnpinIdea(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.PinnedIdeas, id); err != nil {
		return fmt.Errorf("%w: unpin idea: %v", ErrPersistence, err)
	}
	return nil
}

// SaveCampaign snapshots the entire working set under a user-chosen name.
// Working state is unchanged; the record is immutable after creation.
func (s *Service) SaveCampaign(ctx context.Context, sess *Session, name string) (SavedCampaign, error) {
	snap, err := sess.SnapshotCampaign(name)
	if err != nil {
		return SavedCampaign{}, err
	}
	id, err := s.store.Create(ctx, store.SavedCampaigns, snap)
	if err != nil {
		return SavedCampaign{}, fmt.Errorf("%w: save campaign: %v", ErrPersistence, err)
	}
	snap.ID = id
	return snap, nil
}

// LoadCampaign replaces the session working set with a saved snapshot.
func (s *Service) LoadCampaign(ctx context.Context, sess *Session, campaignID string) (SavedCampaign, error) {
	var c SavedCampaign
	if err := s.store.Get(ctx, store.SavedCampaigns, campaignID, &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SavedCampaign{}, fmt.Errorf("%w: campaign %s", ErrNotFound, campaignID)
		}
		return SavedCampaign{}, fmt.Errorf("%w: load campaign: %v", ErrPersistence, err)
	}
	c.ID = campaignID
	sess.LoadCampaign(c)
	return c, nil
}

// DeleteCampaign removes a saved campaign.
func (s *Service) DeleteCampaign(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.SavedCampaigns, id); err != nil {
		return fmt.Errorf("%w: delete campaign: %v", ErrPersistence, err)
	}
	return nil
}

// SaveImage persists a completed gallery image. A placeholder still in
// flight is rejected before any store or upload call is made. When object
// storage is configured the binary moves there and the record carries the
// object URL; otherwise the inline data URI is stored as-is.
func (s *Service) SaveImage(ctx context.Context, sess *Session, imageID string) (SavedImage, error) {
	img, ok := sess.ImageByID(imageID)
	if !ok {
		return SavedImage{}, fmt.Errorf("%w: image %s", ErrNotFound, imageID)
	}
	if img.Pending() {
		return SavedImage{}, fmt.Errorf("%w: cannot save an image that is still generating", ErrValidation)
	}

	url := img.URL
	if s.images.Enabled() && dataurl.IsDataURL(url) {
		mimeType, data, err := dataurl.Decode(url)
		if err != nil {
			return SavedImage{}, fmt.Errorf("%w: decode image: %v", ErrValidation, err)
		}
		stored, err := s.images.Put(ctx, img.ID+extensionFor(mimeType), mimeType, data)
		if err != nil {
			return SavedImage{}, fmt.Errorf("%w: upload image: %v", ErrPersistence, err)
		}
		url = stored
	}

	saved := SavedImage{
		Prompt:    img.Prompt,
		Topic:     img.Topic,
		URL:       url,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	id, err := s.store.Create(ctx, store.SavedImages, saved)
	if err != nil {
		return SavedImage{}, fmt.Errorf("%w: save image: %v", ErrPersistence, err)
	}
	saved.ID = id
	return saved, nil
}

// LoadSavedImage copies a saved image into the working gallery, rejecting
// the load when an entry with the same URL is already present.
func (s *Service) LoadSavedImage(ctx context.Context, sess *Session, savedImageID string) (GeneratedImage, error) {
	var saved SavedImage
	if err := s.store.Get(ctx, store.SavedImages, savedImageID, &saved); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return GeneratedImage{}, fmt.Errorf("%w: saved image %s", ErrNotFound, savedImageID)
		}
		return GeneratedImage{}, fmt.Errorf("%w: load saved image: %v", ErrPersistence, err)
	}
	img := GeneratedImage{ID: uuid.NewString(), URL: saved.URL, Prompt: saved.Prompt, Topic: saved.Topic}
	if err := sess.AddImage(img); err != nil {
		return GeneratedImage{}, err
	}
	return img, nil
}

// DeleteSavedImage removes a saved image record.
func (s *Service) DeleteSavedImage(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.SavedImages, id); err != nil {
		return fmt.Errorf("%w: delete saved image: %v", ErrPersistence, err)
	}
	return nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
