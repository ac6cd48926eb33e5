package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mesh-intelligence/gamevault/internal/store"
)

const (
	clientBuffer = 16
	writeTimeout = 5 * time.Second
)

// hub fans store change events out to connected sockets. A client that falls
// behind loses events rather than blocking the store.
type hub struct {
	logger  *slog.Logger
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

type wsClient struct {
	events chan store.Event
	done   chan struct{}
	once   sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.done) })
}

func newHub(logger *slog.Logger) *hub {
	return &hub{logger: logger, clients: map[*wsClient]struct{}{}}
}

func (h *hub) register() (*wsClient, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := &wsClient{events: make(chan store.Event, clientBuffer), done: make(chan struct{})}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *hub) unregister(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast forwards changes of the game list. Query, filter, sort and
// selection changes describe one viewer's state and are not sent.
func (h *hub) broadcast(e store.Event) {
	if e.Kind != store.ChangeGames {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.events <- e:
		default:
			h.logger.Warn("websocket client lagging, event dropped", "type", e.Kind)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.close()
	}
}

// ServeHTTP upgrades the request and streams events until the peer or the
// hub goes away. Messages from the peer are discarded.
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, ok := h.register()
	if !ok {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.unregister(c)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case e := <-c.events:
			if err := h.write(ctx, conn, e); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func (h *hub) write(ctx context.Context, conn *websocket.Conn, e store.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, e)
}
