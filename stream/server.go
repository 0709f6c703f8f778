// Package stream exposes the simulation's read-only particles/bodies/
// boundaries views and its kinetic energy to out-of-process consumers over a
// websocket, broadcasting one JSON snapshot per completed tick. The globals
// view is not part of the snapshot. It carries no drawing code — only the
// read-only data a renderer collaborator would consume.
package stream

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/haldenlabs/pbd2d/scene"
	"github.com/haldenlabs/pbd2d/sim"
)

// Renderer is the subset of Simulation's read-only accessors the stream
// server broadcasts.
type Renderer interface {
	Particles() []sim.ParticleView
	Bodies() []sim.BodyView
	Boundaries() scene.Domain
	KineticEnergy() float64
}

// Snapshot is the per-tick JSON payload broadcast to every connected client.
type Snapshot struct {
	Particles     []sim.ParticleView `json:"particles"`
	Bodies        []sim.BodyView     `json:"bodies"`
	Boundaries    scene.Domain       `json:"boundaries"`
	KineticEnergy float64            `json:"kineticEnergy"`
}

// Server upgrades incoming HTTP connections to websockets and broadcasts a
// Snapshot to every connected client each time Broadcast is called.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewServer constructs a Server with an origin-check-everything upgrader,
// suitable for local development; a production deployment should restrict
// CheckOrigin to known hosts.
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS upgrades the request and registers the connection for
// broadcasts; it is a pure sink, reading nothing back from the client
// (the stream is outbound-only, matching the Renderer interface's
// read-only contract).
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: websocket upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// Drain and discard any inbound frames (pings, client closes) so the
	// connection's read deadline logic keeps working; the stream never
	// acts on client input.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends snap as JSON to every currently connected client. A
// client whose write fails is dropped rather than blocking the others.
func (s *Server) Broadcast(snap Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.clients {
		if err := conn.WriteJSON(snap); err != nil {
			log.Printf("stream: dropping client after write error: %v", err)
			go func(c *websocket.Conn) {
				s.mu.Lock()
				delete(s.clients, c)
				s.mu.Unlock()
				c.Close()
			}(conn)
		}
	}
}

// SnapshotFrom builds a Snapshot from a live Renderer, copying whatever
// state the simulation goroutine currently holds — the handoff happens once
// per tick, never concurrently with a tick in flight.
func SnapshotFrom(r Renderer) Snapshot {
	return Snapshot{
		Particles:     r.Particles(),
		Bodies:        r.Bodies(),
		Boundaries:    r.Boundaries(),
		KineticEnergy: r.KineticEnergy(),
	}
}
