package game

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
)

// Room codes are compared case-insensitively; generation and lookup
// both normalize to upper case.
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Registry owns the room-id -> room mapping and the global player
// connection map. It is injected rather than package-level state so
// test instances run in isolation. Unrelated rooms never contend on a
// room lock here, only on the short map-level critical sections.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*internal.Room

	connsMu sync.RWMutex
	conns   map[string]internal.Conn
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*internal.Room),
		conns: make(map[string]internal.Conn),
	}
}

// Register assigns a fresh room code and inserts the room. Generation
// retries on collision; the code space is huge next to the room count,
// but the retry is still real, not assumed away.
func (r *Registry) Register(room *internal.Room) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		id := randomRoomCode()
		if _, exists := r.rooms[id]; exists {
			continue
		}
		room.Id = id
		r.rooms[id] = room
		return id
	}
}

func (r *Registry) Get(id string) (*internal.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[strings.ToUpper(id)]
	return room, ok
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, strings.ToUpper(id))
}

// Count reports active rooms, for the health endpoint.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Rooms returns a snapshot of all registered rooms.
func (r *Registry) Rooms() []*internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*internal.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (r *Registry) AddConn(playerID string, conn internal.Conn) {
	r.connsMu.Lock()
	defer r.connsMu.Unlock()
	r.conns[playerID] = conn
}

func (r *Registry) RemoveConn(playerID string) {
	r.connsMu.Lock()
	defer r.connsMu.Unlock()
	delete(r.conns, playerID)
}

// ConnCount reports tracked connections, for the health endpoint.
func (r *Registry) ConnCount() int {
	r.connsMu.RLock()
	defer r.connsMu.RUnlock()
	return len(r.conns)
}

func randomRoomCode() string {
	var b strings.Builder
	b.Grow(internal.RoomCodeLength)
	for i := 0; i < internal.RoomCodeLength; i++ {
		b.WriteByte(roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))])
	}
	return b.String()
}
