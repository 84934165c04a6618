package realtime

import (
	"log"
	"sync"
)

// Conn is the transport handle the hub fans payloads out to. It is satisfied
// by *websocket.Conn wrappers in production and by doubles in tests.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub maps a user id to that user's currently open realtime connections.
// A user may hold any number of concurrent connections (multi-device).
// All state is process-local; after a restart clients reconnect and resync
// missed notifications through the pull endpoints.
type Hub struct {
	mu          sync.RWMutex
	connections map[uint]map[Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[uint]map[Conn]bool),
	}
}

func (h *Hub) Register(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[userID] == nil {
		h.connections[userID] = make(map[Conn]bool)
	}
	h.connections[userID][conn] = true
}

// Unregister removes the connection; the user's entry is dropped entirely
// once its last connection goes away.
func (h *Hub) Unregister(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, exists := h.connections[userID]; exists {
		delete(conns, conn)

		if len(conns) == 0 {
			delete(h.connections, userID)
		}
	}
}

// ConnectionsFor returns a snapshot of the user's current connections. The
// snapshot can be iterated without holding the hub lock.
func (h *Hub) ConnectionsFor(userID uint) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.connections[userID]
	snapshot := make([]Conn, 0, len(conns))

	for conn := range conns {
		snapshot = append(snapshot, conn)
	}

	return snapshot
}

// SendToUser pushes the payload to every connection the user currently holds.
// Sends happen outside the lock so a slow socket cannot stall registry
// mutations for unrelated users. A failed send forcibly unregisters and
// closes the connection; the failure is absorbed, never surfaced.
func (h *Hub) SendToUser(userID uint, payload interface{}) {
	for _, conn := range h.ConnectionsFor(userID) {
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("Failed to push to user %d: %v", userID, err)
			h.Unregister(userID, conn)
			conn.Close()
		}
	}
}

// Broadcast pushes the payload to every listed user, deduplicating ids.
func (h *Hub) Broadcast(userIDs []uint, payload interface{}) {
	seen := make(map[uint]bool, len(userIDs))

	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		h.SendToUser(userID, payload)
	}
}
