package game

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
)

// =============================================================================
// WEBSOCKET CONNECTION GATEWAY
// =============================================================================

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn wraps a gorilla connection so broadcasts, private acks and
// gateway error frames all serialize on one write lock.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// session tracks the (room, player) identity a connection established
// through create_room/join_room, so later frames route without
// re-resolving it.
type session struct {
	conn   *websocket.Conn
	safe   *wsConn
	room   *internal.Room
	player *internal.Player
}

// HandleWebSocket upgrades the connection and starts its read loop.
func (g *GameServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	sess := &session{conn: conn, safe: &wsConn{conn: conn}}
	go g.readLoop(sess)
}

// readLoop reads frames until the transport closes. Transport close
// synthesizes a leave_room against the tracked room, so a dropped
// player never leaves a zombie seat behind.
func (g *GameServer) readLoop(sess *session) {
	defer func() {
		g.detach(sess)
		sess.conn.Close()
	}()

	// Liveness: probe every 30s, drop connections that stop ponging.
	sess.conn.SetReadDeadline(time.Now().Add(internal.PongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(internal.PongWait))
	})
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(internal.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, raw, err := sess.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("websocket read ended")
			return
		}
		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			sess.safe.WriteJSON(internal.ErrorMessage("invalid message format"))
			continue
		}
		g.dispatch(sess, msg)
	}
}

// dispatch routes one inbound frame. The message-type set is closed;
// anything else earns a single error frame and the connection stays
// open. A panic in one handler is caught here so it cannot take down
// the read loop or any other room.
func (g *GameServer) dispatch(sess *session, msg internal.Message[json.RawMessage]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("msg_type", string(msg.Type)).
				Msg("recovered from handler panic")
			sess.safe.WriteJSON(internal.ErrorMessage("internal server error"))
		}
	}()

	switch msg.Type {
	case internal.MsgCreateRoom:
		if sess.player != nil {
			sess.safe.WriteJSON(internal.ErrorMessage("leave your current room first"))
			return
		}
		var data internal.CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			sess.safe.WriteJSON(internal.ErrorMessage("invalid create_room payload"))
			return
		}
		room, player, err := g.CreateRoom(sess.safe, data)
		if err != nil {
			sess.safe.WriteJSON(internal.ErrorMessage(err.Error()))
			return
		}
		sess.room, sess.player = room, player
		g.registry.AddConn(player.Id, sess.safe)

	case internal.MsgJoinRoom:
		if sess.player != nil {
			sess.safe.WriteJSON(internal.ErrorMessage("leave your current room first"))
			return
		}
		var data internal.JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			sess.safe.WriteJSON(internal.ErrorMessage("invalid join_room payload"))
			return
		}
		room, player, err := g.JoinRoom(sess.safe, data)
		if err != nil {
			sess.safe.WriteJSON(internal.ErrorMessage(err.Error()))
			return
		}
		sess.room, sess.player = room, player
		g.registry.AddConn(player.Id, sess.safe)

	case internal.MsgLeaveRoom:
		if sess.player == nil {
			sess.safe.WriteJSON(internal.ErrorMessage(internal.ErrNotInRoom.Error()))
			return
		}
		g.detach(sess)

	case internal.MsgStartGame:
		if sess.player == nil {
			sess.safe.WriteJSON(internal.ErrorMessage(internal.ErrNotInRoom.Error()))
			return
		}
		var data internal.StartGameData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				sess.safe.WriteJSON(internal.ErrorMessage("invalid start_game payload"))
				return
			}
		}
		if err := g.StartGame(sess.room, sess.player.Id, data); err != nil {
			sess.safe.WriteJSON(internal.ErrorMessage(err.Error()))
		}

	case internal.MsgPlayerAnswer:
		if sess.player == nil {
			sess.safe.WriteJSON(internal.ErrorMessage(internal.ErrNotInRoom.Error()))
			return
		}
		var data internal.PlayerAnswerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			sess.safe.WriteJSON(internal.ErrorMessage("invalid player_answer payload"))
			return
		}
		if err := g.SubmitAnswer(sess.room, sess.player.Id, data.Answer); err != nil {
			sess.safe.WriteJSON(internal.ErrorMessage(err.Error()))
		}

	case internal.MsgPing:
		sess.safe.WriteJSON(internal.Message[struct{}]{Type: internal.MsgPong})

	default:
		sess.safe.WriteJSON(internal.ErrorMessage("unknown message type"))
	}
}

// detach removes the session's player from their room and clears the
// tracked identity. No-op when nothing is tracked.
func (g *GameServer) detach(sess *session) {
	if sess.player == nil {
		return
	}
	g.LeaveRoom(sess.room, sess.player.Id)
	g.registry.RemoveConn(sess.player.Id)
	sess.room, sess.player = nil, nil
}
