package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"librarylaunchpad/internal/store"

	"github.com/gorilla/websocket"
)

const (
	collectionWSWriteWait = 10 * time.Second
	collectionWSPongWait  = 60 * time.Second
	collectionWSPingEvery = (collectionWSPongWait * 9) / 10
)

var collectionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type collectionWSOutbound struct {
	Type       string         `json:"type"`
	Collection string         `json:"collection,omitempty"`
	Records    []store.Record `json:"records,omitempty"`
	Message    string         `json:"message,omitempty"`
}

func parseCollection(name string) (store.Collection, bool) {
	switch store.Collection(strings.TrimSpace(name)) {
	case store.PinnedIdeas:
		return store.PinnedIdeas, true
	case store.SavedCampaigns:
		return store.SavedCampaigns, true
	case store.SavedImages:
		return store.SavedImages, true
	}
	return "", false
}

// HandleSubscribe streams collection snapshots over a websocket. Each
// create/delete pushes a full snapshot; slow consumers only ever see the
// latest one.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	coll, ok := parseCollection(r.URL.Query().Get("collection"))
	if !ok {
		http.Error(w, "collection is required", http.StatusBadRequest)
		return
	}

	conn, err := collectionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(collectionWSPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(collectionWSPongWait))
	})

	writeCh := make(chan collectionWSOutbound, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(collectionWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(collectionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(collectionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	snapshots, unsubscribe := h.st.Subscribe(ctx, coll)
	defer unsubscribe()

	pushCollectionWS(writeCh, collectionWSOutbound{
		Type:       "subscribed",
		Collection: string(coll),
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				if snap == nil {
					snap = []store.Record{}
				}
				pushCollectionWS(writeCh, collectionWSOutbound{
					Type:       "snapshot",
					Collection: string(coll),
					Records:    snap,
				})
			}
		}
	}()

	// The read loop only services pong frames and detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			cancel()
			<-writerDone
			return
		}
	}
}

// pushCollectionWS never blocks: if the writer is behind, the stale pending
// message is dropped in favour of the new one.
func pushCollectionWS(writeCh chan collectionWSOutbound, out collectionWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
