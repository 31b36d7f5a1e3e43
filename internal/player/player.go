package player

import (
	"sync"
	"time"
)

// Connection abstracts the websocket connection so rooms can be tested
// without a network.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Player is a client connected to a game. Whether it may move is decided by
// the game's seating, not by the client.
type Player struct {
	ID   string
	Name string
	Conn Connection

	mu       sync.Mutex
	status   Status
	lastSeen time.Time
}

// New returns a connected player.
func New(id, name string, conn Connection) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Conn:     conn,
		status:   StatusConnected,
		lastSeen: time.Now(),
	}
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetStatus records a status change and refreshes LastSeen.
func (p *Player) SetStatus(s Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = s
	p.lastSeen = time.Now()
}

func (p *Player) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Send writes one message if the player is still connected.
func (p *Player) Send(messageType int, data []byte) error {
	if p.Conn == nil || p.Status() != StatusConnected {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Conn.WriteMessage(messageType, data)
}
