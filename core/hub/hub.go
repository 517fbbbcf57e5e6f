package hub

import (
	"encoding/json"
	"sync"
	"time"

	"AuxFM/core/player"
	"AuxFM/logger"
)

// MessageType names a websocket message type.
type MessageType string

const (
	MsgTypePing         MessageType = "ping"
	MsgTypePong         MessageType = "pong"
	MsgTypePlayerAction MessageType = "player_action"
	MsgTypeStateUpdate  MessageType = "state_update"
)

// WSMessage is the websocket message envelope.
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Hub maintains the set of connected clients and fans playback state out to
// them. There is one jukebox room per process; every client is in it.
//
// The hub subscribes to the transport's state-changed notification, so an
// accepted action from any client is broadcast to every connected client,
// including the one that sent it. The broadcast carries the raw state (the
// frozen position plus lastEventAt), never a server-computed "now" position;
// each client recomputes drift locally against the shared clock reference.
type Hub struct {
	transport *player.Transport

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub bound to the given transport.
func NewHub(transport *player.Transport) *Hub {
	h := &Hub{
		transport:  transport,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
	transport.Subscribe(h.onStateChanged)
	return h
}

// Run drives the hub loop. The loop goroutine owns the client set.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToAll(message)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop shuts the hub down and closes every client send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal. Disconnects change no transport
// state and trigger no broadcast.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// HandleAction applies a client playback action to the transport. The
// resulting broadcast arrives through the state subscription; unrecognized
// actions are dropped silently so protocol evolution doesn't break old
// clients.
func (h *Hub) HandleAction(client *Client, action player.Action) {
	state, ok := h.transport.Apply(action)
	if !ok {
		logger.Debug("ignoring unrecognized player action",
			logger.String("action", action.Action),
			logger.String("client", client.ID))
		return
	}
	logger.Info("player action applied",
		logger.String("action", action.Action),
		logger.String("client", client.ID),
		logger.Bool("isPlaying", state.IsPlaying),
		logger.Float64("position", state.PositionSeconds))
}

// onStateChanged receives the raw state after every accepted action.
func (h *Hub) onStateChanged(state player.State) {
	data, err := marshalStateUpdate(state)
	if err != nil {
		logger.Error("failed to marshal state update", logger.ErrorField(err))
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	logger.Info("client connected", logger.String("client", client.ID), logger.Int("clients", len(h.clients)))

	// New joiners get one drift-adjusted snapshot so they can start at the
	// right position immediately.
	data, err := marshalStateUpdate(h.transport.Snapshot())
	if err != nil {
		logger.Error("failed to marshal snapshot", logger.ErrorField(err))
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		logger.Info("client disconnected", logger.String("client", client.ID), logger.Int("clients", len(h.clients)))
	}
}

func (h *Hub) broadcastToAll(message []byte) {
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Send buffer full; the client is too slow to keep, drop it.
			delete(h.clients, client)
			close(client.send)
			logger.Warn("dropping slow client", logger.String("client", client.ID))
		}
	}
}

func (h *Hub) cleanup() {
	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]bool)
}

func marshalStateUpdate(state player.State) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&WSMessage{
		Type:      MsgTypeStateUpdate,
		Data:      payload,
		Timestamp: time.Now().UnixMilli(),
	})
}
