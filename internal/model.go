package internal

import (
	"sync"
	"time"
)

const (
	MaxPlayersPerRoom = 50
	MinPlayersToStart = 2
	RoomCodeLength    = 6

	QuestionsPerGame = 10

	WinnerShare      = 0.95
	PlatformFeeShare = 0.05

	CountdownTicks        = 3
	CountdownTickInterval = 1 * time.Second
	PostCountdownSettle   = 1500 * time.Millisecond
	QuestionTimeLimit     = 15 * time.Second
	ResolveDebounce       = 500 * time.Millisecond
	InterRoundSettle      = 3 * time.Second
	GameEndingSettle      = 2 * time.Second
	RoomAutoDeleteDelay   = 30 * time.Second

	PingInterval = 30 * time.Second
	PongWait     = 60 * time.Second
)

type RoomState string

const (
	StateWaiting  RoomState = "waiting"
	StateStarting RoomState = "starting"
	StatePlaying  RoomState = "playing"
	StateFinished RoomState = "finished"
)

// Question is immutable once a match starts. Choices are keyed "a".."d",
// matching CorrectAnswer. QuestionID is set only for externally sourced
// questions and drives usage tracking.
type Question struct {
	QuestionID    string            `json:"questionId,omitempty"`
	Text          string            `json:"question"`
	Choices       map[string]string `json:"choices"`
	CorrectAnswer string            `json:"correctAnswer"`
}

type PrizeDistribution struct {
	WinnerPrize float64 `json:"winnerPrize"`
	PlatformFee float64 `json:"platformFee"`
}

func ComputePrizes(prizePool float64) PrizeDistribution {
	return PrizeDistribution{
		WinnerPrize: prizePool * WinnerShare,
		PlatformFee: prizePool * PlatformFeeShare,
	}
}

type Room struct {
	Id         string
	CreatorID  string
	EntryFee   float64
	MaxPlayers int

	Players     map[string]*Player
	PlayerOrder []string // join order; PlayerOrder[0] inherits creator role

	// Game State
	State         RoomState  `json:"state"`
	Questions     []Question `json:"-"`
	CurrentIndex  int        `json:"current_index"`
	PrizePool     float64    `json:"prize_pool"`
	Countdown     int        `json:"countdown"`
	QuestionStart time.Time  `json:"-"`

	// RoundResolved guards exactly-once elimination per round: the first
	// of deadline / debounce to reach resolution flips it, the other no-ops.
	RoundResolved bool `json:"-"`

	// Timers
	Timers *TimerSet `json:"-"`

	// Concurrency control
	Mu sync.RWMutex `json:"-"`
}

// AliveCount counts non-eliminated players. Caller must hold Room.Mu.
func (r *Room) AliveCount() int {
	alive := 0
	for _, p := range r.Players {
		if !p.Eliminated {
			alive++
		}
	}
	return alive
}

// AlivePlayers returns non-eliminated players in join order.
// Caller must hold Room.Mu.
func (r *Room) AlivePlayers() []*Player {
	alive := make([]*Player, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		if p := r.Players[id]; p != nil && !p.Eliminated {
			alive = append(alive, p)
		}
	}
	return alive
}

// AllAliveAnswered reports whether every alive player has a pending
// answer for the current round. Caller must hold Room.Mu.
func (r *Room) AllAliveAnswered() bool {
	alive := 0
	answered := 0
	for _, p := range r.Players {
		if p.Eliminated {
			continue
		}
		alive++
		if p.CurrentAnswer != "" {
			answered++
		}
	}
	return alive > 0 && answered == alive
}

// RecomputePrizePool re-derives the pool from entry fee and player count.
// Only meaningful while WAITING; the pool is frozen once STARTING begins.
// Caller must hold Room.Mu.
func (r *Room) RecomputePrizePool() {
	r.PrizePool = r.EntryFee * float64(len(r.Players))
}
