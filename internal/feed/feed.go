// Package feed maintains the admin's live connection to the quiz server: it
// tracks the room snapshot (teams, game phase), republishes hardware press
// notifications onto the in-process events bus, and sends game phase
// transitions.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/darkermage/quiz-buzzer-admin/internal/events"
	"github.com/darkermage/quiz-buzzer-admin/internal/registry"
)

// writeWait bounds a single outbound message write.
const writeWait = 10 * time.Second

// Feed is a live room connection. It holds the most recent room snapshot,
// wholly replaced on every room_state message, and publishes press events on
// the bus. There is no automatic reconnect: a dropped connection ends Run
// with an error and the operator decides what to do.
type Feed struct {
	conn   *websocket.Conn
	bus    *events.Bus
	logger *zap.Logger

	roomCode string

	mu    sync.RWMutex
	teams map[string]registry.Team
	phase string

	writeMu sync.Mutex
}

// Dial connects to the quiz server's WebSocket endpoint for a room. serverURL
// is the same base URL the REST client uses; the scheme is rewritten to
// ws/wss.
func Dial(ctx context.Context, serverURL, roomCode string, bus *events.Bus, logger *zap.Logger) (*Feed, error) {
	wsURL, err := websocketURL(serverURL, roomCode)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, &registry.NetworkError{Op: "dial " + wsURL, Err: err}
	}

	return &Feed{
		conn:     conn,
		bus:      bus,
		logger:   logger,
		roomCode: roomCode,
		teams:    make(map[string]registry.Team),
		phase:    PhaseLobby,
	}, nil
}

// websocketURL derives the feed endpoint from the HTTP base URL.
func websocketURL(serverURL, roomCode string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/quiz/ws"
	u.RawQuery = url.Values{"room": {roomCode}, "role": {"admin"}}.Encode()
	return u.String(), nil
}

// Run reads messages until the connection fails or the context is canceled.
// It blocks; callers usually run it in its own goroutine.
func (f *Feed) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		f.conn.Close()
	}()

	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &registry.NetworkError{Op: "read room feed", Err: err}
		}
		f.handleMessage(data)
	}
}

// handleMessage dispatches one inbound frame. Unknown or malformed messages
// are logged and skipped, never fatal to the feed.
func (f *Feed) handleMessage(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		f.logger.Warn("dropping malformed feed message", zap.Error(err))
		return
	}

	switch env.Type {
	case MessageTypeRoomState:
		var state roomStatePayload
		if err := json.Unmarshal(env.Payload, &state); err != nil {
			f.logger.Warn("dropping malformed room state", zap.Error(err))
			return
		}
		f.applyRoomState(state)

	case MessageTypeButtonPressed:
		var press pressPayload
		if err := json.Unmarshal(env.Payload, &press); err != nil {
			f.logger.Warn("dropping malformed press notification", zap.Error(err))
			return
		}
		f.bus.Publish(events.PressEvent{
			TeamID:    press.TeamID,
			TeamName:  press.TeamName,
			TeamColor: press.TeamColor,
		})

	case MessageTypeError:
		var msg errorPayload
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return
		}
		f.logger.Warn("server reported error", zap.String("message", msg.Message))

	default:
		f.logger.Debug("ignoring feed message", zap.String("type", string(env.Type)))
	}
}

// applyRoomState replaces the room snapshot wholesale.
func (f *Feed) applyRoomState(state roomStatePayload) {
	f.mu.Lock()
	defer f.mu.Unlock()

	teams := make(map[string]registry.Team, len(state.Teams))
	for id, team := range state.Teams {
		if team.ID == "" {
			team.ID = id
		}
		teams[id] = team
	}
	f.teams = teams
	if state.Phase != "" {
		f.phase = state.Phase
	}

	f.logger.Debug("room state updated",
		zap.String("room", f.roomCode),
		zap.String("phase", f.phase),
		zap.Int("teams", len(teams)))
}

// Teams returns a copy of the room's current team set keyed by team ID.
func (f *Feed) Teams(ctx context.Context) (map[string]registry.Team, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	teams := make(map[string]registry.Team, len(f.teams))
	for id, team := range f.teams {
		teams[id] = team
	}
	return teams, nil
}

// Phase returns the room's current game phase.
func (f *Feed) Phase() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.phase
}

// SetPhase sends a game phase transition command.
func (f *Feed) SetPhase(phase string) error {
	if !ValidPhase(phase) {
		return &registry.ValidationError{Field: "phase", Reason: fmt.Sprintf("%q is not a valid game phase", phase)}
	}

	payload, err := json.Marshal(phasePayload{Phase: phase})
	if err != nil {
		return fmt.Errorf("failed to marshal phase command: %w", err)
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := f.conn.WriteJSON(envelope{Type: MessageTypeSetGamePhase, Payload: payload}); err != nil {
		return &registry.NetworkError{Op: "send phase command", Err: err}
	}
	return nil
}

// Close closes the underlying connection.
func (f *Feed) Close() error {
	return f.conn.Close()
}
