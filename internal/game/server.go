package game

import (
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/store"
)

// GameServer wires the registry, the fire-and-forget recorder, the
// question source and the clock together. Everything is injected; two
// GameServer instances never share state.
type GameServer struct {
	registry  *Registry
	recorder  *store.Recorder
	questions QuestionSource
	clock     clockwork.Clock
}

func NewGameServer(registry *Registry, recorder *store.Recorder, questions QuestionSource, clock clockwork.Clock) *GameServer {
	return &GameServer{
		registry:  registry,
		recorder:  recorder,
		questions: questions,
		clock:     clock,
	}
}

func (g *GameServer) Registry() *Registry {
	return g.registry
}

func validatePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 2 || n > 20 {
		return "", internal.ErrInvalidName
	}
	return name, nil
}

// roomUpdateSnapshot builds a room_update payload under the room lock.
// PlayerID is filled in per-recipient by the callers.
func roomUpdateSnapshot(room *internal.Room) internal.RoomUpdateData {
	room.Mu.RLock()
	defer room.Mu.RUnlock()

	players := make([]internal.PlayerSnapshot, 0, len(room.PlayerOrder))
	for _, id := range room.PlayerOrder {
		if p := room.Players[id]; p != nil {
			players = append(players, p.ToSnapshot())
		}
	}
	return internal.RoomUpdateData{
		RoomID:     room.Id,
		Success:    true,
		GamePhase:  room.State,
		CreatorID:  room.CreatorID,
		EntryFee:   room.EntryFee,
		PrizePool:  room.PrizePool,
		MaxPlayers: room.MaxPlayers,
		Players:    players,
	}
}
