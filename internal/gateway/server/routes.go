package server

import (
	"net/http"

	"librarylaunchpad/internal/gateway/handler"
	"librarylaunchpad/internal/gateway/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	// Session and working set
	mux.HandleFunc("/api/session", h.HandleNewSession)
	mux.HandleFunc("/api/session/working-set", h.HandleWorkingSet)

	// Generation flows
	mux.HandleFunc("/api/generate", h.HandleGenerate)
	mux.HandleFunc("/api/regenerate", h.HandleRegenerate)
	mux.HandleFunc("/api/elaborate", h.HandleElaborate)
	mux.HandleFunc("/api/image", h.HandleGenerateImage)
	mux.HandleFunc("/api/image/refine", h.HandleRefineImage)
	mux.HandleFunc("/api/image/remove", h.HandleRemoveImage)

	// Persistence
	mux.HandleFunc("/api/pin", h.HandlePin)
	mux.HandleFunc("/api/unpin", h.HandleUnpin)
	mux.HandleFunc("/api/campaigns/save", h.HandleSaveCampaign)
	mux.HandleFunc("/api/campaigns/load", h.HandleLoadCampaign)
	mux.HandleFunc("/api/campaigns", h.HandleDeleteCampaign)
	mux.HandleFunc("/api/images/save", h.HandleSaveImage)
	mux.HandleFunc("/api/images/load", h.HandleLoadSavedImage)
	mux.HandleFunc("/api/images", h.HandleDeleteSavedImage)

	// Review flows
	mux.HandleFunc("/api/review/campaign", h.HandleReviewCampaign)
	mux.HandleFunc("/api/review/event", h.HandleReviewEvent)

	// Collection snapshots over websocket
	mux.HandleFunc("/api/subscribe", h.HandleSubscribe)

	return middleware.CORS(mux)
}
