package internal

import (
	"sync"
	"time"
)

// Conn is the transport handle a player writes to. *websocket.Conn is
// wrapped by the gateway so broadcasts and private acks share one write
// lock; tests plug in an in-memory recorder.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Player struct {
	Id            string `json:"id"`
	Conn          Conn   `json:"-"`
	Name          string `json:"name"`
	WalletAddress string `json:"wallet_address,omitempty"`

	// Game state
	Eliminated       bool      `json:"eliminated"`
	EliminationRound int       `json:"elimination_round,omitempty"` // 0 = still alive
	CurrentAnswer    string    `json:"-"`                           // "" = no pending answer this round
	AnswerLatencyMs  int64     `json:"-"`
	JoinedAt         time.Time `json:"joined_at"`

	// Statistics
	CorrectAnswers int `json:"correct_answers"`

	Mu sync.Mutex `json:"-"`
}

type PlayerSnapshot struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Eliminated       bool   `json:"eliminated"`
	EliminationRound int    `json:"eliminationRound,omitempty"`
	CorrectAnswers   int    `json:"correctAnswers"`
}

// ResetRoundState clears the per-round answer so a new question starts
// with no pending answers. Caller must hold the owning Room.Mu.
func (p *Player) ResetRoundState() {
	p.CurrentAnswer = ""
	p.AnswerLatencyMs = 0
}

func (p *Player) ToSnapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:               p.Id,
		Name:             p.Name,
		Eliminated:       p.Eliminated,
		EliminationRound: p.EliminationRound,
		CorrectAnswers:   p.CorrectAnswers,
	}
}

// SafeWriteJSON writes to the player's connection, serializing writes
// from broadcasts and private acks.
func (p *Player) SafeWriteJSON(v any) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	if p.Conn == nil {
		return ErrNoConnection
	}
	return p.Conn.WriteJSON(v)
}
