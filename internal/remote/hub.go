// Package remote exposes a running simulation over websockets. Clients send
// pointer samples, splat bursts, parameter changes and front-end actions;
// every client receives periodic stats.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"fluidsim/internal/app"
	"fluidsim/internal/core"
	"fluidsim/internal/sims/fluid"

	"github.com/gorilla/websocket"
)

// Message types.
const (
	TypePointer = "pointer"
	TypeSplats  = "splats"
	TypeParam   = "param"
	TypeAction  = "action"
	TypeStats   = "stats"
	TypeError   = "error"
)

// Pointer is the wire form of a pointer sample.
type Pointer struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Down  bool    `json:"down"`
	Moved bool    `json:"moved"`
}

// Message is the single envelope used in both directions.
type Message struct {
	Type    string       `json:"type"`
	Pointer *Pointer     `json:"pointer,omitempty"`
	Count   int          `json:"count,omitempty"`
	Key     string       `json:"key,omitempty"`
	Value   string       `json:"value,omitempty"`
	Action  string       `json:"action,omitempty"`
	Stats   *fluid.Stats `json:"stats,omitempty"`
	Running bool         `json:"running,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ErrUnknownMessage is reported to clients sending an unsupported type.
var ErrUnknownMessage = errors.New("unknown message type")

type command struct {
	msg  Message
	from *websocket.Conn
}

// Hub owns the simulation goroutine and the set of connected clients.
type Hub struct {
	ctl      *app.Controller
	sim      *fluid.Simulation
	log      *log.Logger
	upgrader websocket.Upgrader

	commands chan command

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub wraps ctl. Only Run may touch the simulation afterwards.
func NewHub(ctl *app.Controller, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		ctl: ctl,
		sim: ctl.Sim(),
		log: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		commands: make(chan command, 256),
		clients:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the request and forwards client messages to Run.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Printf("remote: upgrade: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Printf("remote: read: %v", err)
			}
			return
		}
		select {
		case h.commands <- command{msg: msg, from: conn}:
		case <-r.Context().Done():
			return
		}
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run ticks the simulation every tick, applies queued client messages in
// between and broadcasts stats every statsEvery. It returns when ctx ends.
func (h *Hub) Run(ctx context.Context, tick, statsEvery time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	stats := time.NewTicker(statsEvery)
	defer stats.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-h.commands:
			if err := h.apply(cmd.msg); err != nil {
				h.send(cmd.from, Message{Type: TypeError, Error: err.Error()})
			}
		case <-ticker.C:
			if err := h.sim.Tick(); err != nil {
				return err
			}
		case <-stats.C:
			h.Broadcast(h.statsMessage())
		}
	}
}

func (h *Hub) apply(msg Message) error {
	switch msg.Type {
	case TypePointer:
		if msg.Pointer == nil {
			return fmt.Errorf("%s: missing pointer: %w", msg.Type, core.ErrInvalidParameter)
		}
		p := msg.Pointer
		h.sim.UpdatePointer(core.PointerSample{ID: p.ID, X: p.X, Y: p.Y, Down: p.Down, Moved: p.Moved})
		return nil
	case TypeSplats:
		return h.sim.RequestSplats(msg.Count)
	case TypeParam:
		return h.sim.SetParameter(msg.Key, msg.Value)
	case TypeAction:
		a, ok := app.ParseAction(msg.Action)
		if !ok {
			return fmt.Errorf("action %q: %w", msg.Action, core.ErrInvalidParameter)
		}
		return h.ctl.Do(a)
	case TypeStats:
		h.Broadcast(h.statsMessage())
		return nil
	}
	return fmt.Errorf("%q: %w", msg.Type, ErrUnknownMessage)
}

func (h *Hub) statsMessage() Message {
	st := h.sim.Stats()
	return Message{Type: TypeStats, Stats: &st, Running: h.sim.Running()}
}

// Broadcast sends msg to every client, dropping those whose write fails.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	var failed []*websocket.Conn
	for conn, mu := range h.clients {
		mu.Lock()
		err := conn.WriteJSON(msg)
		mu.Unlock()
		if err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
	}
}

func (h *Hub) send(conn *websocket.Conn, msg Message) {
	h.mu.RLock()
	mu, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Printf("remote: write: %v", err)
	}
}
