package room

import (
	"context"
	"ctchen222/Hex/internal/events"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/player"
	"ctchen222/Hex/internal/repository"
	"ctchen222/Hex/internal/repository/mocks"
	"ctchen222/Hex/pkg/proto"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeConn records text frames and serves queued inbound messages.
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	inbound chan []byte
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 8)}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if messageType == websocket.TextMessage {
		c.written = append(c.written, data)
	}
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-c.inbound
	if !ok {
		return 0, nil, io.EOF
	}
	return websocket.TextMessage, msg, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// types returns the kind of every frame written so far: the "type" of a
// server message or the "event" of a relayed game event.
func (c *fakeConn) types(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.written))
	for _, data := range c.written {
		var head struct {
			Type  string `json:"type"`
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal(data, &head))
		if head.Event != "" {
			out = append(out, head.Event)
			continue
		}
		out = append(out, head.Type)
	}
	return out
}

func (c *fakeConn) last(t *testing.T, v any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.written)
	require.NoError(t, json.Unmarshal(c.written[len(c.written)-1], v))
}

type fixture struct {
	room     *Room
	games    *mocks.MockGameRepository
	archive  *mocks.MockArchiveRepository
	presence *mocks.MockPlayerRepository

	mu        sync.Mutex
	published []events.Envelope
}

func (f *fixture) publishedTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.published))
	for i, env := range f.published {
		out[i] = env.Type
	}
	return out
}

func newFixture(t *testing.T, size int, timeout time.Duration) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		games:    mocks.NewMockGameRepository(ctrl),
		archive:  mocks.NewMockArchiveRepository(ctrl),
		presence: mocks.NewMockPlayerRepository(ctrl),
	}
	f.games.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.games.EXPECT().Publish(gomock.Any(), "room-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, payload []byte) error {
			var env events.Envelope
			require.NoError(t, json.Unmarshal(payload, &env))
			f.mu.Lock()
			f.published = append(f.published, env)
			f.mu.Unlock()
			return nil
		}).AnyTimes()
	f.presence.EXPECT().SetPresence(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.presence.EXPECT().UpdateConnectionStatus(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	g, err := hex.NewGame(size, [2]hex.Player{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}})
	require.NoError(t, err)
	f.room = New("room-1", g, Deps{
		Games:       f.games,
		Archive:     f.archive,
		Presence:    f.presence,
		MoveTimeout: timeout,
	})
	t.Cleanup(f.room.Close)
	return f
}

func TestPlayRelaysEventsAndArchivesOnWin(t *testing.T) {
	f := newFixture(t, 2, 0)
	ctx := context.Background()

	var stored *repository.ArchivedGame
	f.archive.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, g *repository.ArchivedGame) error {
			stored = g
			return nil
		}).Times(1)

	conn := newFakeConn()
	f.room.Join(ctx, player.New("carol", "Carol", conn))

	require.NoError(t, f.room.Start(ctx))
	require.NoError(t, f.room.Play(ctx, 0, hex.NewMove(0, 0)))
	require.NoError(t, f.room.Play(ctx, 1, hex.NewMove(0, 1)))
	require.NoError(t, f.room.Play(ctx, 0, hex.NewMove(1, 0)))

	assert.Equal(t, []string{"played", "played", "played", "ended"}, f.publishedTypes())
	assert.Equal(t, []string{"state", "state", "played", "played", "played", "ended"}, conn.types(t))

	var ended events.Envelope
	conn.last(t, &ended)
	var payload events.EndedPayload
	require.NoError(t, json.Unmarshal(ended.Payload, &payload))
	assert.Equal(t, events.EndedPayload{Winner: 0, Reason: "path"}, payload)

	require.NotNil(t, stored)
	assert.Equal(t, "room-1", stored.ID)
	assert.Equal(t, "alice", stored.WinnerID)
	assert.Equal(t, "path", stored.Reason)
	assert.Equal(t, 3, stored.Moves)
	assert.True(t, stored.EndedAt.Valid)
	assert.Contains(t, stored.SGF, ";B[a1];W[b1];B[a2])")

	assert.True(t, f.room.IsOver())
	view := f.room.View()
	assert.Equal(t, []string{"01", "0."}, view.Board)
	assert.ElementsMatch(t, []hex.Coord{{Row: 0, Col: 0}, {Row: 1, Col: 0}}, view.WinningPath)
}

func TestRejectedMovePublishesNothing(t *testing.T) {
	f := newFixture(t, 3, 0)
	ctx := context.Background()
	require.NoError(t, f.room.Start(ctx))

	err := f.room.Play(ctx, 1, hex.NewMove(0, 0))
	assert.ErrorIs(t, err, hex.ErrNotYourTurn)

	require.NoError(t, f.room.Play(ctx, 0, hex.NewMove(0, 0)))
	err = f.room.Play(ctx, 1, hex.NewMove(0, 0))
	assert.ErrorIs(t, err, hex.ErrCellOccupied)
	assert.ErrorIs(t, err, hex.ErrIllegalMove)

	assert.Equal(t, []string{"played"}, f.publishedTypes())
	assert.Equal(t, 1, len(f.room.View().Moves))
}

func TestMovesBeforeStartAreRejected(t *testing.T) {
	f := newFixture(t, 3, 0)
	err := f.room.Play(context.Background(), 0, hex.NewMove(0, 0))
	assert.ErrorIs(t, err, hex.ErrInvalidTransition)
}

func TestHandleMessage(t *testing.T) {
	f := newFixture(t, 4, 0)
	ctx := context.Background()
	require.NoError(t, f.room.Start(ctx))

	aliceConn, bobConn, carolConn := newFakeConn(), newFakeConn(), newFakeConn()
	alice := player.New("alice", "Alice", aliceConn)
	bob := player.New("bob", "Bob", bobConn)
	carol := player.New("carol", "Carol", carolConn)
	f.room.Join(ctx, alice)
	f.room.Join(ctx, bob)
	f.room.Join(ctx, carol)

	var state proto.ServerToClientMessage
	bobConn.last(t, &state)
	require.NotNil(t, state.Seat)
	assert.Equal(t, 1, *state.Seat)

	f.room.HandleMessage(ctx, alice, []byte(`{"type":"move","position":[1,2]}`))
	f.room.HandleMessage(ctx, bob, []byte(`{"type":"swap"}`))

	// After the swap Bob holds seat 0 and moves next.
	assert.Equal(t, 0, f.room.SeatOf("bob"))
	assert.Equal(t, 1, f.room.SeatOf("alice"))

	f.room.HandleMessage(ctx, alice, []byte(`{"type":"move","position":[0,0]}`))
	var errMsg proto.ServerToClientMessage
	aliceConn.last(t, &errMsg)
	assert.Equal(t, proto.TypeError, errMsg.Type)
	assert.Contains(t, errMsg.Error, "not your turn")

	f.room.HandleMessage(ctx, bob, []byte(`{"type":"move","position":[0,3]}`))
	assert.Equal(t, "played", func() string {
		var env events.Envelope
		bobConn.last(t, &env)
		return env.Type
	}())

	f.room.HandleMessage(ctx, carol, []byte(`{"type":"move","position":[3,3]}`))
	carolConn.last(t, &errMsg)
	assert.Contains(t, errMsg.Error, "spectators cannot play")

	f.room.HandleMessage(ctx, alice, []byte(`{"type":"move"}`))
	aliceConn.last(t, &errMsg)
	assert.Contains(t, errMsg.Error, "invalid message")

	f.room.HandleMessage(ctx, alice, []byte(`not json`))
	aliceConn.last(t, &errMsg)
	assert.Contains(t, errMsg.Error, "malformed message")

	assert.Equal(t, []string{"played", "played", "played"}, f.publishedTypes())
	assert.Contains(t, f.room.SGF(), ";B[c2];W[swap-pieces];B[d1])")
}

func TestResignMessage(t *testing.T) {
	f := newFixture(t, 4, 0)
	ctx := context.Background()
	f.archive.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, f.room.Start(ctx))

	bob := player.New("bob", "Bob", newFakeConn())
	f.room.Join(ctx, bob)
	f.room.HandleMessage(ctx, bob, []byte(`{"type":"resign"}`))

	view := f.room.View()
	assert.Equal(t, "ended", view.State)
	assert.Equal(t, 0, view.Winner)
	assert.Equal(t, "resign", view.Reason)
	assert.Contains(t, f.room.SGF(), "RE[B+Resign]")
}

func TestCancelArchivesVoidGame(t *testing.T) {
	f := newFixture(t, 4, 0)
	f.archive.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, g *repository.ArchivedGame) error {
			assert.Equal(t, "canceled", g.State)
			assert.Equal(t, hex.NoPlayer, g.Winner)
			assert.Empty(t, g.WinnerID)
			return nil
		})

	require.NoError(t, f.room.Cancel(context.Background()))
	assert.Equal(t, []string{"ended"}, f.publishedTypes())
	assert.ErrorIs(t, f.room.Cancel(context.Background()), hex.ErrInvalidTransition)
}

func TestForfeitRejectsBadSeat(t *testing.T) {
	f := newFixture(t, 4, 0)
	require.NoError(t, f.room.Start(context.Background()))
	assert.ErrorIs(t, f.room.Forfeit(context.Background(), 2), hex.ErrInvalidPlayer)
}

func TestMoveTimeoutEndsGame(t *testing.T) {
	f := newFixture(t, 4, 20*time.Millisecond)
	f.archive.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)

	ctx := context.Background()
	require.NoError(t, f.room.Start(ctx))
	require.NoError(t, f.room.Play(ctx, 0, hex.NewMove(0, 0)))

	require.Eventually(t, f.room.IsOver, time.Second, 5*time.Millisecond)
	view := f.room.View()
	assert.Equal(t, 0, view.Winner, "player 1 was to move and timed out")
	assert.Equal(t, "time", view.Reason)
}

func TestReadPumpDetachesOnClose(t *testing.T) {
	f := newFixture(t, 4, 0)
	ctx := context.Background()
	require.NoError(t, f.room.Start(ctx))

	conn := newFakeConn()
	alice := player.New("alice", "Alice", conn)
	f.room.Join(ctx, alice)

	conn.inbound <- []byte(`{"type":"move","position":[0,0]}`)
	close(conn.inbound)
	f.room.ReadPump(ctx, alice)

	assert.Empty(t, f.room.Clients())
	assert.Equal(t, player.StatusDisconnected, alice.Status())
	assert.True(t, conn.closed)
	assert.Equal(t, 1, len(f.room.View().Moves))
}

func TestPersistenceFailuresDoNotBlockPlay(t *testing.T) {
	ctrl := gomock.NewController(t)
	games := mocks.NewMockGameRepository(ctrl)
	games.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down")).AnyTimes()
	games.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down")).AnyTimes()

	g, err := hex.NewGame(3, [2]hex.Player{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	r := New("room-2", g, Deps{Games: games})
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Play(ctx, 0, hex.NewMove(1, 1)))
	assert.Equal(t, 1, len(r.View().Moves))
}

func TestTimeoutAfterCloseIsIgnored(t *testing.T) {
	f := newFixture(t, 4, time.Hour)
	ctx := context.Background()
	require.NoError(t, f.room.Start(ctx))

	before := f.publishedTypes()

	f.room.Close()
	f.room.timeout(0)

	assert.False(t, f.room.IsOver())
	assert.Equal(t, before, f.publishedTypes())
}
