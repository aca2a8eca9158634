package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/darkermage/quiz-buzzer-admin/internal/events"
	"github.com/darkermage/quiz-buzzer-admin/internal/registry"
)

func newTestFeed(t *testing.T) (*Feed, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(bus.Close)
	return &Feed{
		bus:      bus,
		logger:   zap.NewNop(),
		roomCode: "R1",
		teams:    make(map[string]registry.Team),
		phase:    PhaseLobby,
	}, bus
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("http://localhost:443", "R1")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:443/quiz/ws?role=admin&room=R1", u)

	u, err = websocketURL("https://quiz.example.com/", "R1")
	require.NoError(t, err)
	assert.Equal(t, "wss://quiz.example.com/quiz/ws?role=admin&room=R1", u)
}

func TestHandleRoomStateReplacesSnapshot(t *testing.T) {
	f, _ := newTestFeed(t)

	f.handleMessage([]byte(`{
		"type": "room_state",
		"payload": {
			"code": "R1",
			"phase": "started",
			"teams": {
				"t1": {"name": "Red", "color": "#ff0000"},
				"t2": {"id": "t2", "name": "Blue", "color": "#0000ff"}
			}
		}
	}`))

	teams, err := f.Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 2)
	// The team ID falls back to the map key when the payload omits it.
	assert.Equal(t, "t1", teams["t1"].ID)
	assert.Equal(t, "Red", teams["t1"].Name)
	assert.Equal(t, PhaseStarted, f.Phase())

	// The next snapshot replaces the previous one wholesale.
	f.handleMessage([]byte(`{
		"type": "room_state",
		"payload": {"code": "R1", "phase": "active", "teams": {"t3": {"name": "Green"}}}
	}`))

	teams, err = f.Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Green", teams["t3"].Name)
	assert.Equal(t, PhaseActive, f.Phase())
}

func TestHandlePressPublishesOnBus(t *testing.T) {
	f, bus := newTestFeed(t)
	_, presses := bus.Subscribe()

	f.handleMessage([]byte(`{
		"type": "hardware_button_pressed",
		"payload": {"teamId": "t1", "teamName": "Red", "teamColor": "#ff0000"}
	}`))

	select {
	case ev := <-presses:
		assert.Equal(t, events.PressEvent{TeamID: "t1", TeamName: "Red", TeamColor: "#ff0000"}, ev)
	case <-time.After(time.Second):
		t.Fatal("press event was not published")
	}
}

func TestHandleMalformedMessagesAreSkipped(t *testing.T) {
	f, _ := newTestFeed(t)

	f.handleMessage([]byte(`not json at all`))
	f.handleMessage([]byte(`{"type": "room_state", "payload": "not an object"}`))
	f.handleMessage([]byte(`{"type": "something_new", "payload": {}}`))

	teams, err := f.Teams(context.Background())
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.Equal(t, PhaseLobby, f.Phase())
}

func TestSetPhaseRejectsUnknownPhase(t *testing.T) {
	f, _ := newTestFeed(t)

	err := f.SetPhase("intermission")

	var verr *registry.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phase", verr.Field)
}

func TestValidPhase(t *testing.T) {
	for _, phase := range []string{PhaseLobby, PhaseStarted, PhaseActive, PhaseFinished} {
		assert.True(t, ValidPhase(phase), phase)
	}
	assert.False(t, ValidPhase(""))
	assert.False(t, ValidPhase("paused"))
}

func TestDialAndRunAgainstServer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan envelope, 1)
	testDone := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quiz/ws", r.URL.Path)
		assert.Equal(t, "R1", r.URL.Query().Get("room"))
		assert.Equal(t, "admin", r.URL.Query().Get("role"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		payload, _ := json.Marshal(roomStatePayload{
			Code:  "R1",
			Phase: PhaseActive,
			Teams: map[string]registry.Team{"t1": {Name: "Red", Color: "#ff0000"}},
		})
		require.NoError(t, conn.WriteJSON(envelope{Type: MessageTypeRoomState, Payload: payload}))

		var env envelope
		require.NoError(t, conn.ReadJSON(&env))
		received <- env

		// Hold the connection open so the only read error the client sees
		// comes from its own context cancellation.
		<-testDone
	}))
	defer srv.Close()
	defer close(testDone)

	bus := events.NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f, err := Dial(ctx, srv.URL, "R1", bus, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()

	runErr := make(chan error, 1)
	go func() { runErr <- f.Run(ctx) }()

	require.Eventually(t, func() bool {
		teams, err := f.Teams(ctx)
		return err == nil && len(teams) == 1
	}, 2*time.Second, 10*time.Millisecond, "room snapshot never arrived")
	assert.Equal(t, PhaseActive, f.Phase())

	require.NoError(t, f.SetPhase(PhaseFinished))

	select {
	case env := <-received:
		assert.Equal(t, MessageTypeSetGamePhase, env.Type)
		var cmd phasePayload
		require.NoError(t, json.Unmarshal(env.Payload, &cmd))
		assert.Equal(t, PhaseFinished, cmd.Phase)
	case <-time.After(2 * time.Second):
		t.Fatal("phase command never reached the server")
	}

	cancel()
	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop on cancel")
	}
}

func TestDialFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	bus := events.NewBus()
	defer bus.Close()

	_, err := Dial(context.Background(), srv.URL, "R1", bus, zap.NewNop())

	var nerr *registry.NetworkError
	require.ErrorAs(t, err, &nerr)
}
