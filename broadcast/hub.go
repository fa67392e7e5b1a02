package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrHubStopped is returned when broadcasting after the hub's Run loop exited.
var ErrHubStopped = errors.New("broadcast hub is not running")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// RoomID names the hub room a tournament's draw is broadcast to.
func RoomID(tournamentID string) string {
	return "draw_" + tournamentID
}

// Observer is told about connection churn and dropped clients.
type Observer interface {
	ClientsChanged(room string, delta int)
	SlowClientDropped(room string)
}

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Room string

	mu       sync.Mutex
	isClosed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, room string) *Client {
	return &Client{Hub: hub, Conn: conn, Send: make(chan []byte, sendBuffer), Room: room}
}

// Enqueue queues msg for this client only. It reports false if the client
// is closed or its buffer is full.
func (c *Client) Enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isClosed {
		close(c.Send)
		c.isClosed = true
	}
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	logger   *slog.Logger
	observer Observer

	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	done  chan struct{}
}

func NewHub(logger *slog.Logger, observer Observer) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger,
		observer:   observer,
		rooms:      make(map[string]map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Run owns room membership until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.add(client)

		case client := <-h.Unregister:
			h.mu.Lock()
			removed := h.removeLocked(client)
			h.mu.Unlock()
			if removed {
				h.clientsChanged(client.Room, -1)
				h.logger.Info("client left room", slog.String("room", client.Room))
			}
		}
	}
}

// Join adds c to its room before returning, so every frame broadcast after
// Join reaches it. It fails once the hub has stopped.
func (h *Hub) Join(ctx context.Context, c *Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.add(c) {
		return ErrHubStopped
	}
	return nil
}

func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return false
	default:
	}
	if _, ok := h.rooms[c.Room]; !ok {
		h.rooms[c.Room] = make(map[*Client]struct{})
	}
	h.rooms[c.Room][c] = struct{}{}
	size := len(h.rooms[c.Room])
	h.mu.Unlock()

	h.clientsChanged(c.Room, 1)
	h.logger.Info("client joined room", slog.String("room", c.Room), slog.Int("clients", size))
	return true
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		for c := range clients {
			c.closeSend()
		}
		h.clientsChanged(room, -len(clients))
	}
	clear(h.rooms)
	close(h.done)
	h.logger.Info("broadcast hub stopped")
}

// removeLocked must be called with mu held.
func (h *Hub) removeLocked(c *Client) bool {
	clients, ok := h.rooms[c.Room]
	if !ok {
		return false
	}
	if _, ok := clients[c]; !ok {
		return false
	}
	c.closeSend()
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.Room)
	}
	return true
}

// BroadcastToRoom queues an encoded frame for every client in the room and
// returns how many received it. A client whose buffer is full is dropped
// rather than sent a gap in the event stream; it can rejoin and resume.
func (h *Hub) BroadcastToRoom(roomID string, msg []byte) (int, error) {
	select {
	case <-h.done:
		return 0, ErrHubStopped
	default:
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for c := range h.rooms[roomID] {
		if c.Enqueue(msg) {
			delivered++
			continue
		}
		if h.removeLocked(c) {
			h.clientsChanged(roomID, -1)
			if h.observer != nil {
				h.observer.SlowClientDropped(roomID)
			}
			h.logger.Warn("dropped slow client", slog.String("room", roomID))
		}
	}
	return delivered, nil
}

// RoomSize reports how many clients are currently in a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) clientsChanged(room string, delta int) {
	if h.observer != nil && delta != 0 {
		h.observer.ClientsChanged(room, delta)
	}
}

// ReadPump drains control frames. Viewers never send draw input; anything
// they write is discarded.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read failed", slog.String("room", c.Room), slog.Any("error", err))
			}
			return
		}
	}
}

// WritePump writes one websocket message per queued frame so viewers can
// decode each event on its own.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Warn("websocket write failed", slog.String("room", c.Room), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
