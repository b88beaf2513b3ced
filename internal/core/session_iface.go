package core

import (
	"fmt"
	"sync"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/google/uuid"
)

type ConnectionID string

// Connection is an authenticated realtime link. It is only ever created after
// the handshake succeeded, so the identity is bound once, at construction.
//
// The rooms set mirrors RoomService membership; it is written only by room
// implementations in this package while holding the room lock.
type Connection struct {
	id       ConnectionID
	identity domain.Identity
	signal   SignalConnection

	mu     sync.Mutex
	rooms  map[domain.RoomID]struct{}
	closed bool
}

func NewConnection(identity domain.Identity, signal SignalConnection) *Connection {
	return &Connection{
		id:       ConnectionID(uuid.NewString()),
		identity: identity,
		signal:   signal,
		rooms:    make(map[domain.RoomID]struct{}),
	}
}

func (c *Connection) ID() ConnectionID          { return c.id }
func (c *Connection) Identity() domain.Identity { return c.identity }
func (c *Connection) UserID() domain.UserID     { return c.identity.UserID }
func (c *Connection) Signal() SignalConnection  { return c.signal }

// Send encodes v and queues it without blocking.
func (c *Connection) Send(v any) error {
	f, err := Encode(v)
	if err != nil {
		return err
	}
	return c.SendFrame(f)
}

func (c *Connection) SendFrame(f Frame) error {
	if err := c.signal.TrySend(f); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	return nil
}

func (c *Connection) Rooms() []domain.RoomID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.RoomID, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}

func (c *Connection) InRoom(id domain.RoomID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[id]
	return ok
}

func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Teardown marks the connection closed and returns the rooms it was in.
// Only the first call reports ok; later calls are no-ops.
// Closing and snapshotting happen in one critical section so a concurrent
// join either sees closed or is included in the snapshot.
func (c *Connection) Teardown() ([]domain.RoomID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false
	}
	c.closed = true
	out := make([]domain.RoomID, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out, true
}

func (c *Connection) trackRoom(id domain.RoomID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectionClosed
	}
	c.rooms[id] = struct{}{}
	return nil
}

func (c *Connection) untrackRoom(id domain.RoomID) {
	c.mu.Lock()
	delete(c.rooms, id)
	c.mu.Unlock()
}
