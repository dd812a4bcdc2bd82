// Package stream serves the dye field to browsers over a websocket and
// accepts pointer input from them.
package stream

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pthm-cable/stirfluid/fluid"
)

//go:embed index.html
var indexHTML []byte

const writeWait = 2 * time.Second

// Message is the JSON envelope exchanged with clients. Coordinates are
// normalised to [0,1] across the grid.
type Message struct {
	Type       string  `json:"type"`
	Down       bool    `json:"down,omitempty"`
	X          float32 `json:"x,omitempty"`
	Y          float32 `json:"y,omitempty"`
	Resolution int     `json:"resolution,omitempty"`
}

// Message types.
const (
	MsgHello   = "hello"
	MsgPointer = "pointer"
	MsgReset   = "reset"
)

// Hub fans JPEG frames out to every connected client and merges their
// pointer input into a single fluid.PointerSource. The first client to press
// owns the pointer until it releases or disconnects; presses from other
// clients are ignored meanwhile.
type Hub struct {
	res      int
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	frames chan []byte

	inputMu sync.Mutex
	owner   *websocket.Conn
	down    bool
	pos     fluid.Vec2
	tracker fluid.PointerTracker
	reset   bool
}

// NewHub creates a hub for a res x res grid.
func NewHub(res int) *Hub {
	return &Hub{
		res: res,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
		frames:  make(chan []byte, 1),
	}
}

// Handler returns the HTTP routes: the viewer page at / and the socket at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	mux.HandleFunc("/ws", h.handleWebSocket)
	return mux
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Publish queues an encoded frame for broadcast, replacing any frame still
// waiting. The hub keeps the slice; callers must not reuse it.
func (h *Hub) Publish(frame []byte) {
	select {
	case <-h.frames:
	default:
	}
	select {
	case h.frames <- frame:
	default:
	}
}

// Pointer implements fluid.PointerSource from the most recent client input.
// A client holding still yields zero direction.
func (h *Hub) Pointer() fluid.Pointer {
	h.inputMu.Lock()
	defer h.inputMu.Unlock()
	return h.tracker.Update(h.down, h.pos)
}

// TakeReset reports whether a client asked for a reset since the last call.
func (h *Hub) TakeReset() bool {
	h.inputMu.Lock()
	defer h.inputMu.Unlock()
	r := h.reset
	h.reset = false
	return r
}

// Run broadcasts published frames until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case frame := <-h.frames:
			h.broadcast(frame)
		}
	}
}

// ListenAndServe serves Handler on addr and runs the broadcaster until ctx
// is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	go h.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("stream server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	connMutex.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteJSON(Message{Type: MsgHello, Resolution: h.res})
	connMutex.Unlock()
	if err != nil {
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = connMutex
	h.clientsMu.Unlock()
	defer func() {
		h.clientsMu.Lock()
		delete(h.clients, conn)
		h.clientsMu.Unlock()
	}()
	slog.Info("stream client connected", "remote", r.RemoteAddr)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "error", err)
			}
			break
		}
		h.handleMessage(conn, msg)
	}
	h.handleMessage(conn, Message{Type: MsgPointer, Down: false})
}

func (h *Hub) handleMessage(from *websocket.Conn, msg Message) {
	h.inputMu.Lock()
	defer h.inputMu.Unlock()

	switch msg.Type {
	case MsgPointer:
		if h.owner != nil && h.owner != from {
			return
		}
		h.down = msg.Down
		h.pos = fluid.Vec2{X: msg.X * float32(h.res), Y: msg.Y * float32(h.res)}
		if msg.Down {
			h.owner = from
		} else {
			h.owner = nil
		}
	case MsgReset:
		h.reset = true
	}
}

func (h *Hub) broadcast(frame []byte) {
	h.clientsMu.RLock()
	var failed []*websocket.Conn
	for client, mutex := range h.clients {
		mutex.Lock()
		client.SetWriteDeadline(time.Now().Add(writeWait))
		err := client.WriteMessage(websocket.BinaryMessage, frame)
		mutex.Unlock()
		if err != nil {
			slog.Warn("websocket write error", "error", err)
			failed = append(failed, client)
		}
	}
	h.clientsMu.RUnlock()

	// Closing makes the reader loop exit and unregister the client.
	for _, client := range failed {
		client.Close()
	}
}

func (h *Hub) closeAll() {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	for client := range h.clients {
		client.Close()
	}
}
