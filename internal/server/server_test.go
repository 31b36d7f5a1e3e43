package server

import (
	"context"
	"ctchen222/Hex/internal/api/controller"
	"ctchen222/Hex/internal/api/service"
	"ctchen222/Hex/internal/events"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/hub"
	"ctchen222/Hex/internal/repository"
	"ctchen222/Hex/internal/repository/mocks"
	"ctchen222/Hex/internal/room"
	"ctchen222/Hex/pkg/proto"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testServer struct {
	url      string
	hub      *hub.Hub
	games    *mocks.MockGameRepository
	presence *mocks.MockPlayerRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	ts := &testServer{
		games:    mocks.NewMockGameRepository(ctrl),
		presence: mocks.NewMockPlayerRepository(ctrl),
	}
	archive := mocks.NewMockArchiveRepository(ctrl)
	ts.games.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	ts.games.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	ts.presence.EXPECT().SetPresence(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	ts.presence.EXPECT().UpdateConnectionStatus(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	ts.hub = hub.NewHub(room.Deps{Games: ts.games, Archive: archive, Presence: ts.presence}, hub.Options{DefaultSize: 5, MaxSize: 11})
	t.Cleanup(ts.hub.Close)

	srv := NewServer(ts.hub, controller.NewGameController(service.NewGameService(ts.hub, archive)))
	httpServer := httptest.NewServer(srv.Handler())
	t.Cleanup(httpServer.Close)
	ts.url = httpServer.URL
	return ts
}

func (ts *testServer) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.url, "http")+path, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func (ts *testServer) startedGame(t *testing.T) *room.Room {
	t.Helper()
	ctx := context.Background()
	r, err := ts.hub.Create(ctx, 5, [2]hex.Player{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}})
	require.NoError(t, err)
	require.NoError(t, r.Start(ctx))
	return r
}

func TestWebSocketPlay(t *testing.T) {
	ts := newTestServer(t)
	r := ts.startedGame(t)

	alice := ts.dial(t, "/ws/games/"+r.ID+"?player_id=alice&name=Alice")
	var state proto.ServerToClientMessage
	readJSON(t, alice, &state)
	assert.Equal(t, proto.TypeState, state.Type)
	require.NotNil(t, state.Seat)
	assert.Equal(t, 0, *state.Seat)
	assert.Equal(t, "playing", state.Game.State)

	watcher := ts.dial(t, "/ws/games/"+r.ID)
	readJSON(t, watcher, &state)
	assert.Nil(t, state.Seat)

	require.NoError(t, alice.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{2, 3}}))

	for _, conn := range []*websocket.Conn{alice, watcher} {
		var env events.Envelope
		readJSON(t, conn, &env)
		assert.Equal(t, events.Played, env.Type)
		var played events.PlayedPayload
		require.NoError(t, json.Unmarshal(env.Payload, &played))
		assert.Equal(t, "d3", played.Notation)
		assert.Equal(t, 1, played.Ply)
	}

	require.NoError(t, watcher.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeResign}))
	var errMsg proto.ServerToClientMessage
	readJSON(t, watcher, &errMsg)
	assert.Equal(t, proto.TypeError, errMsg.Type)
	assert.Equal(t, "playing", r.View().State)
}

func TestWebSocketUnknownGame(t *testing.T) {
	ts := newTestServer(t)
	ts.games.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, repository.ErrNotFound)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.url, "http")+"/ws/games/missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketReconnect(t *testing.T) {
	ts := newTestServer(t)
	r := ts.startedGame(t)
	ts.presence.EXPECT().FindPresence(gomock.Any(), "bob").Return(&repository.Presence{GameID: r.ID, Seat: 1}, nil)

	bob := ts.dial(t, "/ws/reconnect?player_id=bob")
	var state proto.ServerToClientMessage
	readJSON(t, bob, &state)
	require.NotNil(t, state.Seat)
	assert.Equal(t, 1, *state.Seat)
	assert.Equal(t, r.ID, state.Game.ID)

	resp, err := http.Get(ts.url + "/ws/reconnect")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	ts.startedGame(t)

	resp, err := http.Get(ts.url + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Extras struct {
			Rooms int `json:"rooms"`
		} `json:"extras"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Extras.Rooms)
}
