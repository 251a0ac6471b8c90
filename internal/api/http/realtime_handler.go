package http

import (
	"net/http"

	"github.com/gorilla/websocket"

	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/realtime"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe upgrades to a websocket streaming row changes of ?table= that
// match ?filter= (column=eq.value). The filter is authorized before the
// upgrade so refusals are plain HTTP errors.
func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := realtime.ParseFilter(q.Get("table"), q.Get("filter"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	actor := mustActor(r)
	if err := filter.Authorize(actor); err != nil {
		logger.Rejected("RealtimeHandler.Subscribe", err, "user_id", actor.UserID, "table", filter.Table)
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		logger.WarnContext(r.Context(), "Websocket upgrade failed", "error", err)
		return
	}
	if err := realtime.Serve(r.Context(), h.hub, conn, filter, actor.UserID); err != nil {
		logger.WarnContext(r.Context(), "Realtime subscription ended", "error", err)
	}
}
