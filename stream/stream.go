// Package stream pushes the poses of a tree to websocket clients, typically browser
// renderers, one JSON frame per tick.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"

	spacet "github.com/william-xian/SpaceT"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Frame is what clients receive at every tick.
type Frame struct {
	Time   float64     `json:"time"`
	JD     float64     `json:"jd"`
	Bodies []BodyFrame `json:"bodies"`
}

// BodyFrame is the pose of one body.
type BodyFrame struct {
	Path   string     `json:"path"`
	Name   string     `json:"name"`
	Pos    [3]float64 `json:"pos"`
	Offset [3]float64 `json:"offset"`
	Radius float64    `json:"radius"`
}

// NewFrame converts poses into a frame.
func NewFrame(now, jd float64, poses []spacet.Pose) Frame {
	f := Frame{Time: now, JD: jd, Bodies: make([]BodyFrame, len(poses))}
	for i, p := range poses {
		f.Bodies[i] = BodyFrame{
			Path:   p.Path,
			Name:   p.Name,
			Pos:    [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
			Offset: [3]float64{p.Offset.X, p.Offset.Y, p.Offset.Z},
			Radius: p.Radius,
		}
	}
	return f
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected client. Slow clients miss frames.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	last     []byte
	closed   bool
	upgrader websocket.Upgrader
	logger   log.Logger
}

// NewHub returns a hub accepting connections from any origin.
func NewHub(logger log.Logger) *Hub {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log.With(logger, "subsys", "stream"),
	}
}

// ServeHTTP upgrades the connection and streams frames until the client goes away.
// The last published frame is sent right away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(h.logger).Log("msg", "upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()
	level.Info(h.logger).Log("msg", "client connected", "remote", r.RemoteAddr)

	go h.write(c)
	// Clients are not expected to talk; reading only detects closed connections.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	level.Info(h.logger).Log("msg", "client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) write(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			level.Debug(h.logger).Log("msg", "write failed", "err", err)
			h.remove(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish sends the frame to every client.
func (h *Hub) Publish(f Frame) error {
	msg, err := json.Marshal(f)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
