package campaign

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"librarylaunchpad/internal/genflow"
	"librarylaunchpad/internal/llmclient"
	"librarylaunchpad/internal/store"
	"librarylaunchpad/internal/tester"
	"librarylaunchpad/internal/util/dataurl"
)

const duneIdeasPayload = `{
	"ideas": [
		{"category": "Display", "description": "Desert diorama with spice jars."},
		{"category": "Social Media", "description": "Fear is the mind-killer quote series."},
		{"category": "Social Media", "description": "Stillsuit cosplay photo contest."}
	],
	"relevantDates": [{"date": "2024-03-01", "reason": "Film release anniversary."}],
	"crossMediaConnections": [
		{"type": "Book", "title": "Dune", "year": "1965"},
		{"type": "Movie", "title": "Dune: Part Two", "year": "2024"}
	]
}`

func newTestService(t *testing.T, cli llmclient.LLMClient, img llmclient.ImageClient) *Service {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "store.json"))
	return NewService(cli, img, st, nil)
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSubmitTopic(t *testing.T) {
	cli := llmclient.NewFakeClient().Respond("generatePromotionIdeas", duneIdeasPayload)
	svc := newTestService(t, cli, nil)
	sess := svc.NewSession()

	result, err := svc.SubmitTopic(context.Background(), sess, "Dune", false)
	tester.NoErr(t, err)
	tester.Eq(t, result.Working.State, StatePopulated)
	tester.Eq(t, result.Working.Topic, "Dune")
	tester.Eq(t, len(result.Working.Ideas), 3)
	tester.Eq(t, result.Working.Ideas[0].Topic, "Dune")
	tester.True(t, result.Working.Ideas[0].ID != "")
	tester.Eq(t, len(result.Working.CrossMediaConnections), 2)
	tester.Eq(t, result.ImageID, "", "no image was requested")
}

func TestSubmitTopicWithImage(t *testing.T) {
	cli := llmclient.NewFakeClient().Respond("generatePromotionIdeas", duneIdeasPayload)
	img := llmclient.NewFakeImageClient()
	svc := newTestService(t, cli, img)
	sess := svc.NewSession()

	result, err := svc.SubmitTopic(context.Background(), sess, "Dune", true)
	tester.NoErr(t, err)
	tester.True(t, result.ImageID != "", "a gallery placeholder is created up front")

	eventually(t, func() bool {
		got, ok := sess.ImageByID(result.ImageID)
		return ok && !got.Pending()
	}, "topic image should complete into the gallery")

	got, _ := sess.ImageByID(result.ImageID)
	tester.True(t, dataurl.IsDataURL(got.URL))
	tester.Eq(t, got.Topic, "Dune")
}

func TestSubmitTopicFailureClearsSession(t *testing.T) {
	cli := llmclient.NewFakeClient()
	cli.Err = errors.New("model unavailable")
	svc := newTestService(t, cli, nil)
	sess := svc.NewSession()

	_, err := svc.SubmitTopic(context.Background(), sess, "Dune", false)
	tester.True(t, errors.Is(err, genflow.ErrGeneration))
	tester.Eq(t, sess.StateOf(), StateEmpty)
	tester.Eq(t, len(sess.Snapshot().Ideas), 0)
}

func TestSubmitTopicImageFailureRollsBackPlaceholder(t *testing.T) {
	cli := llmclient.NewFakeClient().Respond("generatePromotionIdeas", duneIdeasPayload)
	img := llmclient.NewFakeImageClient()
	img.Err = llmclient.ErrNoImage
	svc := newTestService(t, cli, img)
	sess := svc.NewSession()

	result, err := svc.SubmitTopic(context.Background(), sess, "Dune", true)
	tester.NoErr(t, err, "idea generation is independent of the image")

	eventually(t, func() bool {
		_, ok := sess.ImageByID(result.ImageID)
		return !ok
	}, "failed image placeholder should be rolled back")
	tester.Eq(t, sess.StateOf(), StatePopulated, "ideas survive an image failure")
}

func TestRegenerateIdea(t *testing.T) {
	cli := llmclient.NewFakeClient().
		Respond("generatePromotionIdeas", duneIdeasPayload).
		Respond("regeneratePromotionIdea", `{"newDescription": "Spice-trade board game night."}`)
	svc := newTestService(t, cli, nil)
	sess := svc.NewSession()

	result, err := svc.SubmitTopic(context.Background(), sess, "Dune", false)
	tester.NoErr(t, err)
	target := result.Working.Ideas[0]

	updated, err := svc.RegenerateIdea(context.Background(), sess, target.ID)
	tester.NoErr(t, err)
	tester.Eq(t, updated.ID, target.ID)
	tester.Eq(t, updated.Category, target.Category)
	tester.Eq(t, updated.Description, "Spice-trade board game night.")
}

func TestRegenerateIdeaFailureKeepsOriginal(t *testing.T) {
	cli := llmclient.NewFakeClient().Respond("generatePromotionIdeas", duneIdeasPayload)
	svc := newTestService(t, cli, nil)
	sess := svc.NewSession()

	result, err := svc.SubmitTopic(context.Background(), sess, "Dune", false)
	tester.NoErr(t, err)
	target := result.Working.Ideas[0]

	_, err = svc.RegenerateIdea(context.Background(), sess, target.ID)
	tester.True(t, errors.Is(err, genflow.ErrGeneration), "no canned regenerate response")

	kept, _ := sess.IdeaByID(target.ID)
	tester.Eq(t, kept.Description, target.Description)

	// The latch is released; a retry is allowed.
	cli.Respond("regeneratePromotionIdea", `{"newDescription": "Retry works."}`)
	_, err = svc.RegenerateIdea(context.Background(), sess, target.ID)
	tester.NoErr(t, err)
}

func TestPinAndUnpinIdea(t *testing.T) {
	cli := llmclient.NewFakeClient().Respond("generatePromotionIdeas", duneIdeasPayload)
	svc := newTestService(t, cli, nil)
	sess := svc.NewSession()
	ctx := context.Background()

	result, err := svc.SubmitTopic(ctx, sess, "Dune", false)
	tester.NoErr(t, err)
	target := result.Working.Ideas[1]

	pin, err := svc.PinIdea(ctx, sess, target.ID)
	tester.NoErr(t, err)
	tester.True(t, pin.ID != "")
	tester.Eq(t, pin.Topic, "Dune")
	tester.Eq(t, pin.Description, target.Description)

	// The working idea is still present after pinning.
	_, ok := sess.IdeaByID(target.ID)
	tester.True(t, ok)

	tester.NoErr(t, svc.UnpinIdea(ctx, pin.ID))
	tester.NoErr(t, svc.UnpinIdea(ctx, pin.ID), "unpinning twice is a no-op")
}

func TestSaveAndLoadCampaign(t *testing.T) {
	cli := llmclient.NewFakeClient().Respond("generatePromotionIdeas", duneIdeasPayload)
	svc := newTestService(t, cli, nil)
	ctx := context.Background()

	sess := svc.NewSession()
	_, err := svc.SubmitTopic(ctx, sess, "Dune", false)
	tester.NoErr(t, err)

	saved, err := svc.SaveCampaign(ctx, sess, "Dune Fall Display")
	tester.NoErr(t, err)
	tester.True(t, saved.ID != "")
	tester.Eq(t, saved.Name, "Dune Fall Display")

	// Load into a fresh session.
	other := svc.NewSession()
	loaded, err := svc.LoadCampaign(ctx, other, saved.ID)
	tester.NoErr(t, err)
	tester.Eq(t, loaded.Topic, "Dune")

	snap := other.Snapshot()
	tester.Eq(t, snap.State, StatePopulated)
	tester.Eq(t, snap.Topic, "Dune")
	tester.Eq(t, len(snap.Ideas), 3)
	tester.Eq(t, snap.LoadedCampaignID, saved.ID)
}

func TestLoadCampaignUnknownID(t *testing.T) {
	svc := newTestService(t, llmclient.NewFakeClient(), nil)
	_, err := svc.LoadCampaign(context.Background(), svc.NewSession(), "missing")
	tester.True(t, errors.Is(err, ErrNotFound))
}

func TestGenerateAndRefineImage(t *testing.T) {
	img := llmclient.NewFakeImageClient()
	svc := newTestService(t, llmclient.NewFakeClient(), img)
	sess := svc.NewSession()
	ctx := context.Background()

	first, err := svc.GenerateImage(ctx, sess, genflow.GenerateImageInput{Prompt: "sandworm poster"})
	tester.NoErr(t, err)
	tester.False(t, first.Pending())

	refined, err := svc.RefineImage(ctx, sess, first.ID, "add a sunset")
	tester.NoErr(t, err)
	tester.True(t, refined.ID != first.ID, "refinement is a new gallery entry")
	tester.Eq(t, len(sess.Snapshot().Images), 2)

	// The refinement call carried the source image as its edit target.
	tester.True(t, img.Refs[1] != nil)
}

func TestRefineImageRequiresCompletedSource(t *testing.T) {
	img := llmclient.NewFakeImageClient()
	svc := newTestService(t, llmclient.NewFakeClient(), img)
	sess := svc.NewSession()
	ctx := context.Background()

	ph := sess.AddPlaceholder("poster", "Dune")
	_, err := svc.RefineImage(ctx, sess, ph.ID, "warmer")
	tester.True(t, errors.Is(err, ErrValidation), "pending source cannot be refined")

	_, err = svc.RefineImage(ctx, sess, "missing", "warmer")
	tester.True(t, errors.Is(err, ErrNotFound))
}

func TestGenerateImageFailureRollsBack(t *testing.T) {
	img := llmclient.NewFakeImageClient()
	img.Err = llmclient.ErrNoImage
	svc := newTestService(t, llmclient.NewFakeClient(), img)
	sess := svc.NewSession()

	_, err := svc.GenerateImage(context.Background(), sess, genflow.GenerateImageInput{Prompt: "poster"})
	tester.True(t, errors.Is(err, genflow.ErrGeneration))
	tester.Eq(t, len(sess.Snapshot().Images), 0, "failed placeholder is rolled back")
}

func TestSaveImageRejectsPending(t *testing.T) {
	svc := newTestService(t, llmclient.NewFakeClient(), llmclient.NewFakeImageClient())
	sess := svc.NewSession()

	ph := sess.AddPlaceholder("poster", "Dune")
	_, err := svc.SaveImage(context.Background(), sess, ph.ID)
	tester.True(t, errors.Is(err, ErrValidation), "in-flight image cannot be saved")
}

func TestSaveAndLoadImage(t *testing.T) {
	img := llmclient.NewFakeImageClient()
	svc := newTestService(t, llmclient.NewFakeClient(), img)
	sess := svc.NewSession()
	ctx := context.Background()

	generated, err := svc.GenerateImage(ctx, sess, genflow.GenerateImageInput{Prompt: "sandworm poster"})
	tester.NoErr(t, err)

	saved, err := svc.SaveImage(ctx, sess, generated.ID)
	tester.NoErr(t, err)
	tester.True(t, saved.ID != "")
	tester.Eq(t, saved.URL, generated.URL, "without object storage the data URI is stored as-is")
	tester.Eq(t, saved.Prompt, generated.Prompt)

	// Loading the saved image back while the identical URL is still in the
	// gallery is a duplicate.
	_, err = svc.LoadSavedImage(ctx, sess, saved.ID)
	tester.True(t, errors.Is(err, ErrDuplicateImage))

	// After removing the gallery entry the load succeeds as a new entry.
	sess.RemoveImage(generated.ID)
	loaded, err := svc.LoadSavedImage(ctx, sess, saved.ID)
	tester.NoErr(t, err)
	tester.True(t, loaded.ID != generated.ID)
	tester.Eq(t, loaded.URL, saved.URL)

	tester.NoErr(t, svc.DeleteSavedImage(ctx, saved.ID))
	_, err = svc.LoadSavedImage(ctx, sess, saved.ID)
	tester.True(t, errors.Is(err, ErrNotFound))
}
