package websocket

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kith-backend/domain/core/valueobjects"
	"kith-backend/domain/egonet"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; commands are tiny
	maxMessageSize = 4 * 1024

	// Send buffer size; sized for frame bursts during a simulation run
	sendBufferSize = 512
)

// ViewCommands is the slice of the view controller a client may drive.
type ViewCommands interface {
	Apply(egonet.Filter) error
	Recenter(valueobjects.PersonID) error
	Reset() error
	Retry() error
}

// Command types accepted from clients.
const (
	CommandApply    = "APPLY"
	CommandRecenter = "RECENTER"
	CommandReset    = "RESET"
	CommandRetry    = "RETRY"
)

// Command is the wire form of a client request. Filter carries the
// bookmarkable query-string encoding for APPLY; PersonID targets RECENTER.
type Command struct {
	Type     string `json:"type"`
	Filter   string `json:"filter,omitempty"`
	PersonID string `json:"person_id,omitempty"`
}

// Client is one WebSocket connection.
type Client struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	commands ViewCommands
	send     chan []byte
	logger   *zap.Logger
}

// NewClient creates a client for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, commands ViewCommands, logger *zap.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:       id,
		hub:      hub,
		conn:     conn,
		commands: commands,
		send:     make(chan []byte, sendBufferSize),
		logger:   logger.With(zap.String("connectionID", id)),
	}
}

// Start registers the client and begins its read and write pumps.
func (c *Client) Start() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

// enqueue offers a message to the client without blocking. It reports false
// when the client's buffer is full, which the hub treats as a dead or
// hopelessly slow connection.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// readPump consumes client commands until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.logger.Warn("Binary messages not supported")
			continue
		}
		c.handleCommand(bytes.TrimSpace(message))
	}
}

// writePump flushes outbound messages and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

			// Drain whatever queued up behind this message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					c.logger.Error("Failed to write batched message", zap.Error(err))
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleCommand(message []byte) {
	var cmd Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		c.logger.Warn("Ignoring malformed command", zap.Error(err))
		return
	}

	var err error
	switch cmd.Type {
	case CommandApply:
		var filter egonet.Filter
		filter, err = egonet.DecodeFilterString(cmd.Filter)
		if err == nil {
			err = c.commands.Apply(filter)
		}
	case CommandRecenter:
		var id valueobjects.PersonID
		id, err = valueobjects.NewPersonIDFromString(cmd.PersonID)
		if err == nil {
			err = c.commands.Recenter(id)
		}
	case CommandReset:
		err = c.commands.Reset()
	case CommandRetry:
		err = c.commands.Retry()
	default:
		c.logger.Warn("Unknown command type", zap.String("type", cmd.Type))
		return
	}

	if err != nil {
		c.logger.Warn("Command rejected",
			zap.String("type", cmd.Type),
			zap.Error(err),
		)
	}
}

// ID returns the client's connection ID.
func (c *Client) ID() string {
	return c.id
}
