package campaign

import (
	"context"
	"errors"
	"testing"

	"librarylaunchpad/internal/tester"
)

func populatedSession(t *testing.T, topic string) (*Session, []Idea) {
	t.Helper()
	sess := NewSession()
	gen, _ := sess.BeginSubmit(context.Background(), topic)
	ok := sess.CompleteIdeas(gen,
		[]Idea{
			{Category: "Display", Description: "Front-table takeover."},
			{Category: "Social Media", Description: "Quote-a-day series."},
		},
		[]RelevantDate{{Date: "2024-07-04", Reason: "Beach season."}},
		[]CrossMediaConnection{{Type: "Movie", Title: "Jaws", Year: "1975"}},
	)
	tester.True(t, ok, "completion should not be stale")
	return sess, sess.Snapshot().Ideas
}

func TestBeginSubmitClearsEverything(t *testing.T) {
	sess, _ := populatedSession(t, "Jaws")
	sess.AddPlaceholder("poster", "Jaws")

	gen, _ := sess.BeginSubmit(context.Background(), "Dune")
	snap := sess.Snapshot()
	tester.Eq(t, snap.State, StateLoading)
	tester.Eq(t, snap.Topic, "Dune")
	tester.Eq(t, len(snap.Ideas), 0)
	tester.Eq(t, len(snap.RelevantDates), 0)
	tester.Eq(t, len(snap.CrossMediaConnections), 0)
	tester.Eq(t, len(snap.Images), 0)
	tester.Eq(t, snap.LoadedCampaignID, "")
	tester.True(t, gen > 0)
}

func TestBeginSubmitCancelsPreviousDispatch(t *testing.T) {
	sess := NewSession()
	_, ctx1 := sess.BeginSubmit(context.Background(), "Jaws")
	_, ctx2 := sess.BeginSubmit(context.Background(), "Dune")

	select {
	case <-ctx1.Done():
	default:
		t.Fatal("previous dispatch context should be cancelled")
	}
	select {
	case <-ctx2.Done():
		t.Fatal("current dispatch context should be live")
	default:
	}
}

func TestCompleteIdeasStampsTopicAndIDs(t *testing.T) {
	sess, ideas := populatedSession(t, "Jaws")

	seen := map[string]bool{}
	for _, idea := range ideas {
		tester.Eq(t, idea.Topic, "Jaws")
		tester.True(t, idea.ID != "", "idea needs an id")
		tester.False(t, seen[idea.ID], "idea ids must be unique")
		seen[idea.ID] = true
	}
	tester.Eq(t, sess.StateOf(), StatePopulated)
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	sess := NewSession()
	gen1, _ := sess.BeginSubmit(context.Background(), "Jaws")
	_, _ = sess.BeginSubmit(context.Background(), "Dune")

	ok := sess.CompleteIdeas(gen1, []Idea{{Category: "Display", Description: "stale"}}, nil, nil)
	tester.False(t, ok, "stale completion must be discarded")
	tester.Eq(t, len(sess.Snapshot().Ideas), 0)
	tester.Eq(t, sess.Topic(), "Dune")
}

func TestStaleFailureIsDiscarded(t *testing.T) {
	sess := NewSession()
	gen1, _ := sess.BeginSubmit(context.Background(), "Jaws")
	gen2, _ := sess.BeginSubmit(context.Background(), "Dune")

	tester.False(t, sess.FailSubmit(gen1), "stale failure must not clear the newer submission")
	tester.Eq(t, sess.StateOf(), StateLoading)

	tester.True(t, sess.FailSubmit(gen2))
	tester.Eq(t, sess.StateOf(), StateEmpty)
	tester.Eq(t, sess.Topic(), "")
}

func TestRegenerateReplacesOnlyDescription(t *testing.T) {
	sess, ideas := populatedSession(t, "Jaws")
	target := ideas[0]

	got, err := sess.BeginRegenerate(target.ID)
	tester.NoErr(t, err)
	tester.Eq(t, got.Description, target.Description)

	updated, ok := sess.CompleteRegenerate(target.ID, "Shark-week trivia night.")
	tester.True(t, ok)
	tester.Eq(t, updated.ID, target.ID)
	tester.Eq(t, updated.Category, target.Category)
	tester.Eq(t, updated.Topic, target.Topic)
	tester.Eq(t, updated.Description, "Shark-week trivia night.")

	// The other idea is untouched.
	other, _ := sess.IdeaByID(ideas[1].ID)
	tester.Eq(t, other.Description, ideas[1].Description)
}

func TestRegenerateLatch(t *testing.T) {
	sess, ideas := populatedSession(t, "Jaws")

	_, err := sess.BeginRegenerate(ideas[0].ID)
	tester.NoErr(t, err)

	_, err = sess.BeginRegenerate(ideas[0].ID)
	tester.True(t, errors.Is(err, ErrValidation), "same idea may not regenerate twice concurrently")

	// A different idea regenerates concurrently.
	_, err = sess.BeginRegenerate(ideas[1].ID)
	tester.NoErr(t, err)

	sess.AbortRegenerate(ideas[0].ID)
	_, err = sess.BeginRegenerate(ideas[0].ID)
	tester.NoErr(t, err, "abort releases the latch")
}

func TestRegenerateUnknownIdea(t *testing.T) {
	sess, _ := populatedSession(t, "Jaws")
	_, err := sess.BeginRegenerate("nope")
	tester.True(t, errors.Is(err, ErrNotFound))
}

func TestSnapshotCampaignValidation(t *testing.T) {
	sess := NewSession()
	_, err := sess.SnapshotCampaign("Summer Reading")
	tester.True(t, errors.Is(err, ErrValidation), "empty session cannot be saved")

	sess, _ = populatedSession(t, "Jaws")
	_, err = sess.SnapshotCampaign("   ")
	tester.True(t, errors.Is(err, ErrValidation), "name is required")
}

func TestSnapshotCampaignIsIsolated(t *testing.T) {
	sess, ideas := populatedSession(t, "Jaws")

	snap, err := sess.SnapshotCampaign("Shark Week")
	tester.NoErr(t, err)
	tester.Eq(t, snap.Name, "Shark Week")
	tester.Eq(t, snap.Topic, "Jaws")
	tester.Eq(t, len(snap.Ideas), 2)
	tester.True(t, snap.CreatedAt != "")

	// Mutating the working set afterwards must not touch the snapshot.
	sess.CompleteRegenerate(ideas[0].ID, "changed")
	tester.Eq(t, snap.Ideas[0].Description, "Front-table takeover.")
}

func TestLoadCampaignReplacesWorkingSet(t *testing.T) {
	sess, _ := populatedSession(t, "Jaws")
	sess.AddPlaceholder("poster", "Jaws")

	sess.LoadCampaign(SavedCampaign{
		ID:    "camp-1",
		Name:  "Fall Display",
		Topic: "Dune",
		Ideas: []Idea{{Category: "Display", Description: "Desert diorama."}},
	})

	snap := sess.Snapshot()
	tester.Eq(t, snap.State, StatePopulated)
	tester.Eq(t, snap.Topic, "Dune")
	tester.Eq(t, len(snap.Ideas), 1)
	tester.True(t, snap.Ideas[0].ID != "", "loaded ideas get ids when missing")
	tester.Eq(t, snap.Ideas[0].Topic, "Dune")
	tester.Eq(t, len(snap.Images), 0, "gallery is cleared by a load")
	tester.Eq(t, snap.LoadedCampaignID, "camp-1")
}

func TestAddImageRejectsDuplicateURL(t *testing.T) {
	sess := NewSession()
	tester.NoErr(t, sess.AddImage(GeneratedImage{ID: "a", URL: "http://img/1", Prompt: "p"}))

	err := sess.AddImage(GeneratedImage{ID: "b", URL: "http://img/1", Prompt: "p"})
	tester.True(t, errors.Is(err, ErrDuplicateImage))
	tester.Eq(t, len(sess.Snapshot().Images), 1)
}

func TestPlaceholderLifecycle(t *testing.T) {
	sess := NewSession()
	ph := sess.AddPlaceholder("poster", "Jaws")
	got, ok := sess.ImageByID(ph.ID)
	tester.True(t, ok)
	tester.True(t, got.Pending())

	img, ok := sess.CompleteImage(ph.ID, "data:image/png;base64,AAAA")
	tester.True(t, ok)
	tester.False(t, img.Pending())

	tester.True(t, sess.RemoveImage(ph.ID))
	tester.False(t, sess.RemoveImage(ph.ID), "second remove is a no-op")

	_, ok = sess.CompleteImage(ph.ID, "x")
	tester.False(t, ok, "completing a removed placeholder is discarded")
}
