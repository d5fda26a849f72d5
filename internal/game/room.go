package game

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/store"
)

// =============================================================================
// ROOM LIFECYCLE
// =============================================================================

// CreateRoom makes a new WAITING room with the caller as creator and
// sole member, and privately acknowledges with a room_update carrying
// the caller's player id.
func (g *GameServer) CreateRoom(conn internal.Conn, data internal.CreateRoomData) (*internal.Room, *internal.Player, error) {
	name, err := validatePlayerName(data.PlayerName)
	if err != nil {
		return nil, nil, err
	}
	if data.EntryFee <= 0 {
		return nil, nil, internal.ErrInvalidEntryFee
	}

	player := &internal.Player{
		Id:            uuid.NewString(),
		Conn:          conn,
		Name:          name,
		WalletAddress: data.WalletAddress,
		JoinedAt:      g.clock.Now(),
	}
	room := &internal.Room{
		CreatorID:   player.Id,
		EntryFee:    data.EntryFee,
		MaxPlayers:  internal.MaxPlayersPerRoom,
		State:       internal.StateWaiting,
		Players:     map[string]*internal.Player{player.Id: player},
		PlayerOrder: []string{player.Id},
		Timers:      internal.NewTimerSet(g.clock),
	}
	room.RecomputePrizePool()
	roomID := g.registry.Register(room)

	log.Info().
		Str("room", roomID).
		Str("player", player.Id).
		Str("name", player.Name).
		Float64("entry_fee", room.EntryFee).
		Msg("room created")

	g.recorder.CreateGame(roomID, player.Id, room.EntryFee, room.MaxPlayers)
	g.recorder.AddPlayerToGame(roomID, player.Id, player.Name, player.WalletAddress)

	update := roomUpdateSnapshot(room)
	update.PlayerID = player.Id
	sendPrivate(player, internal.Message[internal.RoomUpdateData]{Type: internal.MsgRoomUpdate, Data: update})

	return room, player, nil
}

// JoinRoom adds a player to a WAITING room. The new member gets a
// private room_update carrying their player id; everyone else gets the
// refreshed room state.
func (g *GameServer) JoinRoom(conn internal.Conn, data internal.JoinRoomData) (*internal.Room, *internal.Player, error) {
	name, err := validatePlayerName(data.PlayerName)
	if err != nil {
		return nil, nil, err
	}
	room, ok := g.registry.Get(data.RoomID)
	if !ok {
		return nil, nil, internal.ErrRoomNotFound
	}

	player := &internal.Player{
		Id:            uuid.NewString(),
		Conn:          conn,
		Name:          name,
		WalletAddress: data.WalletAddress,
		JoinedAt:      g.clock.Now(),
	}

	room.Mu.Lock()
	if room.State != internal.StateWaiting {
		room.Mu.Unlock()
		return nil, nil, internal.ErrRoomNotWaiting
	}
	if len(room.Players) >= room.MaxPlayers {
		room.Mu.Unlock()
		return nil, nil, internal.ErrRoomFull
	}
	for _, p := range room.Players {
		if strings.EqualFold(p.Name, name) {
			room.Mu.Unlock()
			return nil, nil, internal.ErrNameTaken
		}
	}
	room.Players[player.Id] = player
	room.PlayerOrder = append(room.PlayerOrder, player.Id)
	room.RecomputePrizePool()
	playerCount := len(room.Players)
	prizePool := room.PrizePool
	room.Mu.Unlock()

	log.Info().
		Str("room", room.Id).
		Str("player", player.Id).
		Str("name", player.Name).
		Int("players", playerCount).
		Msg("player joined room")

	g.recorder.AddPlayerToGame(room.Id, player.Id, player.Name, player.WalletAddress)
	g.recorder.UpdateGame(room.Id, store.GameUpdate{TotalPlayers: &playerCount, PrizePool: &prizePool})

	update := roomUpdateSnapshot(room)
	SafeBroadcastToRoomExcept(room, internal.Message[internal.RoomUpdateData]{Type: internal.MsgRoomUpdate, Data: update}, player.Id)

	private := update
	private.PlayerID = player.Id
	sendPrivate(player, internal.Message[internal.RoomUpdateData]{Type: internal.MsgRoomUpdate, Data: private})

	return room, player, nil
}

// LeaveRoom removes a player, whatever the room state. Leaving is
// cancellation of that player's participation only: other players'
// answers and timers are untouched, except that a mid-game departure
// leaving a sole survivor schedules the end of the game.
func (g *GameServer) LeaveRoom(room *internal.Room, playerID string) {
	room.Mu.Lock()
	player, ok := room.Players[playerID]
	if !ok {
		room.Mu.Unlock()
		return
	}
	delete(room.Players, playerID)
	for i, id := range room.PlayerOrder {
		if id == playerID {
			room.PlayerOrder = append(room.PlayerOrder[:i], room.PlayerOrder[i+1:]...)
			break
		}
	}

	empty := len(room.Players) == 0
	promotedCreator := ""
	scheduleEnd := false

	switch room.State {
	case internal.StateWaiting:
		room.RecomputePrizePool()
		if !empty && room.CreatorID == playerID {
			room.CreatorID = room.PlayerOrder[0]
			promotedCreator = room.CreatorID
		}
	case internal.StatePlaying:
		if !empty && !player.Eliminated && room.AliveCount() <= 1 {
			scheduleEnd = true
		}
	}
	wasAlive := !player.Eliminated
	state := room.State
	room.Mu.Unlock()

	log.Info().
		Str("room", room.Id).
		Str("player", playerID).
		Str("state", string(state)).
		Bool("was_alive", wasAlive).
		Bool("room_empty", empty).
		Msg("player left room")

	g.recorder.RemovePlayerFromGame(room.Id, playerID)

	if empty {
		if state == internal.StateWaiting {
			status := "cancelled"
			g.recorder.UpdateGame(room.Id, store.GameUpdate{Status: &status})
		}
		g.teardownRoom(room)
		return
	}

	if promotedCreator != "" {
		log.Info().Str("room", room.Id).Str("player", promotedCreator).Msg("creator left, promoted oldest member")
	}

	update := roomUpdateSnapshot(room)
	SafeBroadcastToRoom(room, internal.Message[internal.RoomUpdateData]{Type: internal.MsgRoomUpdate, Data: update})

	if scheduleEnd {
		// Sole survivor: declare them winner after a short settle so the
		// departure broadcast lands first.
		room.Timers.Cancel(internal.TimerDeadline)
		room.Timers.Cancel(internal.TimerDebounce)
		room.Timers.Schedule(internal.TimerInterRound, internal.GameEndingSettle, func() {
			g.EndGame(room)
		})
	}
}

// teardownRoom cancels every outstanding timer unconditionally and
// drops the registry entry. Idempotent: a second call finds nothing.
func (g *GameServer) teardownRoom(room *internal.Room) {
	room.Timers.Stop()
	g.registry.Delete(room.Id)
	log.Info().Str("room", room.Id).Msg("room destroyed")
}
