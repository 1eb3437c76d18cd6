// Package handler exposes the generation and campaign operations as a JSON
// API plus a websocket feed of persisted-collection snapshots.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"librarylaunchpad/internal/campaign"
	"librarylaunchpad/internal/genflow"
	"librarylaunchpad/internal/store"
)

// MinTopicLength is the UI convention; the flows themselves only require a
// non-empty topic.
const MinTopicLength = 3

type Handler struct {
	svc *campaign.Service
	st  *store.Store
}

func New(svc *campaign.Service, st *store.Store) *Handler {
	return &Handler{svc: svc, st: st}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the failure taxonomy onto HTTP statuses. Every failure
// becomes a user-visible message; nothing propagates silently.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, campaign.ErrValidation), errors.Is(err, genflow.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, campaign.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, campaign.ErrDuplicateImage), errors.Is(err, campaign.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, genflow.ErrGeneration):
		status = http.StatusBadGateway
	case errors.Is(err, campaign.ErrPersistence):
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return false
	}
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// session resolves the session referenced by a request body or query.
func (h *Handler) session(w http.ResponseWriter, id string) (*campaign.Session, bool) {
	sess, ok := h.svc.Session(strings.TrimSpace(id))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown session"})
		return nil, false
	}
	return sess, true
}
