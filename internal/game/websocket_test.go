package game

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
)

func dialTestServer(t *testing.T, g *GameServer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(g.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) internal.Message[json.RawMessage] {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg internal.Message[json.RawMessage]
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func writeFrame[T any](t *testing.T, conn *websocket.Conn, typ internal.MessageType, data T) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(internal.Message[T]{Type: typ, Data: data}))
}

func errorText(t *testing.T, msg internal.Message[json.RawMessage]) string {
	t.Helper()
	require.Equal(t, internal.MsgError, msg.Type)
	var data internal.ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data.Message
}

func TestGatewayRejectsMalformedJSON(t *testing.T) {
	g, _ := newTestServer()
	conn := dialTestServer(t, g)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, "invalid message format", errorText(t, readFrame(t, conn)))
}

func TestGatewayRejectsUnknownType(t *testing.T) {
	g, _ := newTestServer()
	conn := dialTestServer(t, g)

	writeFrame(t, conn, internal.MessageType("teleport"), struct{}{})
	assert.Equal(t, "unknown message type", errorText(t, readFrame(t, conn)))
}

func TestGatewayPingPong(t *testing.T) {
	g, _ := newTestServer()
	conn := dialTestServer(t, g)

	writeFrame(t, conn, internal.MsgPing, struct{}{})
	assert.Equal(t, internal.MsgPong, readFrame(t, conn).Type)
}

func TestGatewayCreateRoomRoundTrip(t *testing.T) {
	g, _ := newTestServer()
	conn := dialTestServer(t, g)

	writeFrame(t, conn, internal.MsgCreateRoom, internal.CreateRoomData{
		PlayerName: "alice",
		EntryFee:   0.5,
	})

	msg := readFrame(t, conn)
	require.Equal(t, internal.MsgRoomUpdate, msg.Type)
	var upd internal.RoomUpdateData
	require.NoError(t, json.Unmarshal(msg.Data, &upd))
	assert.Len(t, upd.RoomID, internal.RoomCodeLength)
	assert.NotEmpty(t, upd.PlayerID)
	assert.Equal(t, internal.StateWaiting, upd.GamePhase)

	// The session is now bound; a second create on the same socket is
	// rejected.
	writeFrame(t, conn, internal.MsgCreateRoom, internal.CreateRoomData{
		PlayerName: "alice2",
		EntryFee:   0.5,
	})
	assert.Equal(t, "leave your current room first", errorText(t, readFrame(t, conn)))

	waitFor(t, func() bool { return g.Registry().ConnCount() == 1 })
}

func TestGatewayJoinAndCreateErrorsSurfaceAsFrames(t *testing.T) {
	g, _ := newTestServer()
	conn := dialTestServer(t, g)

	writeFrame(t, conn, internal.MsgJoinRoom, internal.JoinRoomData{
		RoomID:     "ZZZZZZ",
		PlayerName: "bob",
	})
	assert.Equal(t, internal.ErrRoomNotFound.Error(), errorText(t, readFrame(t, conn)))

	writeFrame(t, conn, internal.MsgCreateRoom, internal.CreateRoomData{
		PlayerName: "x",
		EntryFee:   0.5,
	})
	assert.Equal(t, internal.ErrInvalidName.Error(), errorText(t, readFrame(t, conn)))
}

func TestGatewayRequiresSessionForGameFrames(t *testing.T) {
	g, _ := newTestServer()
	conn := dialTestServer(t, g)

	writeFrame(t, conn, internal.MsgStartGame, struct{}{})
	assert.Equal(t, internal.ErrNotInRoom.Error(), errorText(t, readFrame(t, conn)))

	writeFrame(t, conn, internal.MsgPlayerAnswer, internal.PlayerAnswerData{Answer: "a"})
	assert.Equal(t, internal.ErrNotInRoom.Error(), errorText(t, readFrame(t, conn)))

	writeFrame(t, conn, internal.MsgLeaveRoom, struct{}{})
	assert.Equal(t, internal.ErrNotInRoom.Error(), errorText(t, readFrame(t, conn)))
}

// Dropping the socket synthesizes a leave: the waiting room the player
// created is torn down once its last member disconnects.
func TestGatewayDisconnectLeavesRoom(t *testing.T) {
	g, _ := newTestServer()
	conn := dialTestServer(t, g)

	writeFrame(t, conn, internal.MsgCreateRoom, internal.CreateRoomData{
		PlayerName: "alice",
		EntryFee:   0.5,
	})
	msg := readFrame(t, conn)
	require.Equal(t, internal.MsgRoomUpdate, msg.Type)
	waitFor(t, func() bool { return g.Registry().Count() == 1 })

	conn.Close()
	waitFor(t, func() bool {
		return g.Registry().Count() == 0 && g.Registry().ConnCount() == 0
	})
}
