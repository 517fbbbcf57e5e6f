package server

import (
	"net/http"

	"AuxFM/core/hub"
	"AuxFM/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The jukebox has no accounts and no cross-origin secrets to protect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades the connection and hands it to the realtime hub.
type WSHandler struct {
	hub *hub.Hub
}

// NewWSHandler creates the websocket endpoint handler.
func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{hub: h}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := h.hub.NewClient(conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
