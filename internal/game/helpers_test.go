package game

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/store"
)

// fakeConn records every frame written to it, in order.
type fakeConn struct {
	mu     sync.Mutex
	frames []recordedFrame
	closed bool
}

type recordedFrame struct {
	Type internal.MessageType
	Data json.RawMessage
}

func newFakeConn() *fakeConn {
	return &fakeConn{}
}

func (c *fakeConn) WriteJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var frame struct {
		Type internal.MessageType `json:"type"`
		Data json.RawMessage      `json:"data"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, recordedFrame{Type: frame.Type, Data: frame.Data})
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) countOf(typ internal.MessageType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, f := range c.frames {
		if f.Type == typ {
			n++
		}
	}
	return n
}

func (c *fakeConn) lastOf(typ internal.MessageType) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].Type == typ {
			return c.frames[i].Data, true
		}
	}
	return nil, false
}

// decodeLast decodes the most recent frame of the given type.
func decodeLast[T any](t *testing.T, c *fakeConn, typ internal.MessageType) T {
	t.Helper()
	var out T
	raw, ok := c.lastOf(typ)
	require.True(t, ok, "no %s frame recorded", typ)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// waitFor polls until pred holds; the fake clock freezes game time, so
// callbacks only need real time to hop goroutines.
func waitFor(t *testing.T, pred func() bool) {
	t.Helper()
	require.Eventually(t, pred, 2*time.Second, 5*time.Millisecond)
}

// failingConn always errors, standing in for a dead peer.
type failingConn struct{}

func (failingConn) WriteJSON(any) error { return errors.New("connection reset") }
func (failingConn) Close() error        { return nil }

func newTestServer() (*GameServer, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	g := NewGameServer(NewRegistry(), store.NewRecorder(store.NoopStore{}), nil, clock)
	return g, clock
}

// twoQuestions is a minimal deterministic question set.
func twoQuestions() []internal.Question {
	return []internal.Question{
		{
			Text:          "What color is the sky on a clear day?",
			Choices:       map[string]string{"a": "Blue", "b": "Green", "c": "Red", "d": "Yellow"},
			CorrectAnswer: "a",
		},
		{
			Text:          "How many legs does a spider have?",
			Choices:       map[string]string{"a": "6", "b": "8", "c": "10", "d": "12"},
			CorrectAnswer: "b",
		},
	}
}

// startedGame creates a room with two players and runs it through the
// countdown into the first question.
func startedGame(t *testing.T, g *GameServer, clock *clockwork.FakeClock) (room *internal.Room, p1, p2 *internal.Player, c1, c2 *fakeConn) {
	t.Helper()
	c1, c2 = newFakeConn(), newFakeConn()

	room, p1, err := g.CreateRoom(c1, internal.CreateRoomData{PlayerName: "alice", EntryFee: 0.5})
	require.NoError(t, err)
	_, p2, err = g.JoinRoom(c2, internal.JoinRoomData{RoomID: room.Id, PlayerName: "bob"})
	require.NoError(t, err)

	require.NoError(t, g.StartGame(room, p1.Id, internal.StartGameData{Questions: twoQuestions()}))

	for _, tick := range []int{2, 1, 0} {
		clock.Advance(internal.CountdownTickInterval)
		waitFor(t, func() bool {
			data, ok := c1.lastOf(internal.MsgGameStarted)
			if !ok {
				return false
			}
			var gs internal.GameStartedData
			return json.Unmarshal(data, &gs) == nil && gs.Countdown == tick
		})
	}
	clock.Advance(internal.PostCountdownSettle)
	waitFor(t, func() bool { return c1.countOf(internal.MsgNextQuestion) == 1 })
	return room, p1, p2, c1, c2
}
