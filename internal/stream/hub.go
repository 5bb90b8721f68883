package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/san-kum/particles/internal/environment"
	"github.com/san-kum/particles/internal/strategy"
)

// Path is where Handler mounts the hub.
const Path = "/frames"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Controller receives client commands. nil makes the stream read-only.
type Controller interface {
	SetActive(active bool)
	SetStrategy(kind strategy.Kind) error
	SetTimeStep(step float64)
}

// Hub maintains the set of connected clients.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	last       []byte

	control Controller
	logger  *log.Logger
	done    chan struct{}
}

func NewHub(control Controller, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		control:    control,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run serves registrations until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			last := h.last
			n := len(h.clients)
			h.mu.Unlock()
			if last != nil {
				c.queue(last)
			}
			h.logger.Printf("[STREAM] client %s connected (%d total)", c.id, n)

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Printf("[STREAM] client %s disconnected after %d dropped frames (%d total)", c.id, c.dropped.Load(), n)

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Render implements environment.Renderer. It never blocks on a client.
func (h *Hub) Render(f environment.Frame) {
	data, err := json.Marshal(NewFrameMessage(f))
	if err != nil {
		h.logger.Printf("[STREAM] marshal frame: %v", err)
		return
	}
	h.Broadcast(data)
}

// Broadcast queues data to every client and keeps it for late joiners.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for c := range h.clients {
		c.queue(data)
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and attaches the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[STREAM] upgrade error: %v", err)
		return
	}
	c := &Client{
		hub:  h,
		conn: conn,
		id:   r.RemoteAddr,
		send: make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// Handler returns a mux serving the hub at Path.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	return mux
}
