package game

import (
	"github.com/rs/zerolog/log"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
)

// =============================================================================
// ROOM BROADCASTING
// =============================================================================

// SafeBroadcastToRoom fans a message out to every member. Players are
// snapshotted under the room lock and written to outside it; one
// member's failed send never blocks delivery to the rest.
func SafeBroadcastToRoom[T any](room *internal.Room, msg internal.Message[T]) {
	SafeBroadcastToRoomExcept(room, msg, "")
}

// SafeBroadcastToRoomExcept is SafeBroadcastToRoom minus one player id.
func SafeBroadcastToRoomExcept[T any](room *internal.Room, msg internal.Message[T], excludeID string) {
	room.Mu.RLock()
	players := make([]*internal.Player, 0, len(room.Players))
	for _, player := range room.Players {
		if player.Conn != nil {
			players = append(players, player)
		}
	}
	roomID := room.Id
	room.Mu.RUnlock()

	sent := 0
	for _, player := range players {
		if excludeID != "" && player.Id == excludeID {
			continue
		}
		if err := player.SafeWriteJSON(msg); err != nil {
			log.Warn().Err(err).
				Str("room", roomID).
				Str("player", player.Id).
				Str("msg_type", string(msg.Type)).
				Msg("broadcast send failed")
			continue
		}
		sent++
	}
	log.Debug().
		Str("room", roomID).
		Str("msg_type", string(msg.Type)).
		Int("sent", sent).
		Int("members", len(players)).
		Msg("broadcast complete")
}

// sendPrivate writes a message to a single player, logging but
// swallowing transport failures. Used for acks and per-player errors
// that must not go through the broadcaster.
func sendPrivate[T any](player *internal.Player, msg internal.Message[T]) {
	if player == nil {
		return
	}
	if err := player.SafeWriteJSON(msg); err != nil {
		log.Warn().Err(err).
			Str("player", player.Id).
			Str("msg_type", string(msg.Type)).
			Msg("private send failed")
	}
}
