package handler

import (
	"net/http"
	"strings"

	"librarylaunchpad/internal/genflow"
)

func (h *Handler) HandleNewSession(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	sess := h.svc.NewSession()
	writeJSON(w, http.StatusOK, map[string]any{"sessionId": sess.ID})
}

func (h *Handler) HandleWorkingSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := h.session(w, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID     string `json:"sessionId"`
		Topic         string `json:"topic"`
		GenerateImage bool   `json:"generateImage"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if len(strings.TrimSpace(in.Topic)) < MinTopicLength {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "topic must be at least 3 characters long"})
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	result, err := h.svc.SubmitTopic(r.Context(), sess, in.Topic, in.GenerateImage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID string `json:"sessionId"`
		IdeaID    string `json:"ideaId"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	idea, err := h.svc.RegenerateIdea(r.Context(), sess, in.IdeaID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

func (h *Handler) HandleElaborate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in genflow.ElaborateIdeaInput
	if !decodeBody(w, r, &in) {
		return
	}
	out, err := h.svc.Elaborate(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGenerateImage(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID string `json:"sessionId"`
		genflow.GenerateImageInput
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	img, err := h.svc.GenerateImage(r.Context(), sess, in.GenerateImageInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *Handler) HandleRefineImage(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID string `json:"sessionId"`
		ImageID   string `json:"imageId"`
		Prompt    string `json:"prompt"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	img, err := h.svc.RefineImage(r.Context(), sess, in.ImageID, in.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *Handler) HandleRemoveImage(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID string `json:"sessionId"`
		ImageID   string `json:"imageId"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	sess.RemoveImage(in.ImageID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) HandlePin(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID string `json:"sessionId"`
		IdeaID    string `json:"ideaId"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	pin, err := h.svc.PinIdea(r.Context(), sess, in.IdeaID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pin)
}

func (h *Handler) HandleUnpin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "id is required"})
		return
	}
	if err := h.svc.UnpinIdea(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) HandleSaveCampaign(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID string `json:"sessionId"`
		Name      string `json:"name"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	saved, err := h.svc.SaveCampaign(r.Context(), sess, in.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) HandleLoadCampaign(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID  string `json:"sessionId"`
		CampaignID string `json:"campaignId"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	loaded, err := h.svc.LoadCampaign(r.Context(), sess, in.CampaignID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loaded)
}

func (h *Handler) HandleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "id is required"})
		return
	}
	if err := h.svc.DeleteCampaign(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) HandleSaveImage(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID string `json:"sessionId"`
		ImageID   string `json:"imageId"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	saved, err := h.svc.SaveImage(r.Context(), sess, in.ImageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) HandleLoadSavedImage(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in struct {
		SessionID    string `json:"sessionId"`
		SavedImageID string `json:"savedImageId"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	sess, ok := h.session(w, in.SessionID)
	if !ok {
		return
	}
	img, err := h.svc.LoadSavedImage(r.Context(), sess, in.SavedImageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *Handler) HandleDeleteSavedImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "id is required"})
		return
	}
	if err := h.svc.DeleteSavedImage(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) HandleReviewCampaign(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in genflow.SummarizeCampaignInput
	if !decodeBody(w, r, &in) {
		return
	}
	out, err := h.svc.ReviewCampaign(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleReviewEvent(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var in genflow.SummarizeEventInput
	if !decodeBody(w, r, &in) {
		return
	}
	out, err := h.svc.ReviewEvent(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
