// Package websocket streams layout frames and view events to connected
// rendering clients and relays their filter commands back to the view
// controller.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"kith-backend/application/services"
	"kith-backend/domain/layout"
)

// Message types pushed to clients.
const (
	MessageTypeFrame = "FRAME"
	MessageTypeView  = "VIEW"
)

// Envelope is the wire form of every server push.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Hub maintains the active connections and fans server pushes out to all of
// them. Every client sees the same view: the controller is the single
// source of filter state, so there is no per-connection routing. The hub is
// the controller's FrameSink.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	outbound   chan []byte

	// Replayed to newly connected clients so they can render immediately
	// instead of waiting for the next transition.
	lastView  []byte
	lastFrame []byte

	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewHub creates a hub.
func NewHub(logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		outbound:   make(chan []byte, 1024),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Run is the hub's event loop. It owns the client set; registration,
// removal and broadcast all serialize through it.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case data := <-h.outbound:
			h.broadcast(data)
		}
	}
}

// Stop shuts the hub down and closes every connection.
func (h *Hub) Stop() {
	h.cancel()
}

// PublishFrame implements services.FrameSink.
func (h *Hub) PublishFrame(frame layout.Frame) {
	h.push(MessageTypeFrame, frame)
}

// PublishView implements services.FrameSink.
func (h *Hub) PublishView(event services.ViewEvent) {
	h.push(MessageTypeView, event)
}

func (h *Hub) push(messageType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal push payload",
			zap.String("messageType", messageType),
			zap.Error(err),
		)
		return
	}
	envelope, err := json.Marshal(Envelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		h.logger.Error("Failed to marshal push envelope", zap.Error(err))
		return
	}

	select {
	case h.outbound <- envelope:
	default:
		// The hub loop is stalled; dropping a frame is preferable to
		// blocking the simulation goroutine.
		h.logger.Warn("Outbound channel full, dropping push",
			zap.String("messageType", messageType),
		)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	lastView, lastFrame := h.lastView, h.lastFrame
	h.mu.Unlock()

	if lastView != nil {
		client.enqueue(lastView)
	}
	if lastFrame != nil {
		client.enqueue(lastFrame)
	}

	h.logger.Info("Client connected",
		zap.String("connectionID", client.id),
		zap.Int("activeConnections", count),
	)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.logger.Info("Client disconnected",
		zap.String("connectionID", client.id),
		zap.Int("activeConnections", len(h.clients)),
	)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err == nil {
		switch envelope.Type {
		case MessageTypeView:
			h.lastView = data
		case MessageTypeFrame:
			h.lastFrame = data
		}
	}
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		if !client.enqueue(data) {
			h.logger.Warn("Closing slow client",
				zap.String("connectionID", client.id),
			)
			client.conn.Close()
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		client.conn.Close()
		delete(h.clients, client)
	}
	h.logger.Info("All connections closed")
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
