package client

import (
	"context"
	"errors"
	"sync"

	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"partyracer/game/message"
	"partyracer/game/session"
	"partyracer/transport/websocket"
)

// ErrDisconnected is returned when the relay link drops before the room
// code arrives.
var ErrDisconnected = errors.New("relay connection closed")

var _ session.Transport = (*GameClient)(nil)

// Dispatcher receives the session events decoded from relayed player
// actions. *session.Controller satisfies it.
type Dispatcher interface {
	Dispatch(ev session.Event)
}

// GameClient is the host side of a room: one WebSocket connection to the
// relay, the room code it was assigned, and the live view of the joined
// players and their latched button state.
//
// GameClient implements session.Transport.
type GameClient struct {
	peer       *websocket.Peer
	dispatcher Dispatcher
	logger     *zap.Logger

	mu        sync.Mutex
	roomCode  string
	connected bool
	players   []message.PlayerData
	pressed   map[string]bool

	readyOnce sync.Once
	ready     chan struct{}
	done      chan struct{}
}

// Dial connects to the relay's host endpoint and starts processing
// messages. url is the full WebSocket URL, e.g. ws://localhost:8080/host.
func Dial(ctx context.Context, url string, dispatcher Dispatcher, logger *zap.Logger) (*GameClient, error) {
	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	gc := &GameClient{
		peer:       websocket.NewPeer(conn, logger),
		dispatcher: dispatcher,
		logger:     logger,
		connected:  true,
		pressed:    make(map[string]bool),
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
	}
	gc.peer.Start(gc.handleMessage, gc.handleClose)
	return gc, nil
}

// WaitForRoomCode blocks until the relay assigns a room code, the
// connection drops, or the context expires.
func (gc *GameClient) WaitForRoomCode(ctx context.Context) (string, error) {
	select {
	case <-gc.ready:
		gc.mu.Lock()
		defer gc.mu.Unlock()
		return gc.roomCode, nil
	case <-gc.done:
		return "", ErrDisconnected
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// RoomCode returns the assigned room code, or "" before assignment.
func (gc *GameClient) RoomCode() string {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.roomCode
}

// Done is closed when the relay connection dies.
func (gc *GameClient) Done() <-chan struct{} {
	return gc.done
}

// Close tears down the relay connection.
func (gc *GameClient) Close() {
	gc.peer.Close()
}

// Connected reports whether the relay link is up.
func (gc *GameClient) Connected() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.connected
}

// ConnectedPlayers lists the joined players in join order.
func (gc *GameClient) ConnectedPlayers() []message.PlayerData {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	players := make([]message.PlayerData, len(gc.players))
	copy(players, gc.players)
	return players
}

// IsPressed reports the latched state of a button. A button is pressed
// while any phone holds it down.
func (gc *GameClient) IsPressed(button string) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.pressed[button]
}

// ResetButtonsPressed clears all latched button state.
func (gc *GameClient) ResetButtonsPressed() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	for k := range gc.pressed {
		delete(gc.pressed, k)
	}
}

// SendLevelStarted announces the active level and layout to a target
// player, or to everyone with message.BroadcastID.
func (gc *GameClient) SendLevelStarted(target, level int, layout string) {
	gc.send(message.Envelope{
		Type:   message.TypeLevelStarted,
		ID:     target,
		Level:  level,
		Layout: layout,
	})
}

// SendButtonsEnabled assigns or revokes a set of buttons for a target
// player.
func (gc *GameClient) SendButtonsEnabled(target int, buttons []string, enabled bool) {
	gc.send(message.Envelope{
		Type:    message.TypeButtonsEnabled,
		ID:      target,
		Buttons: buttons,
		Enabled: enabled,
	})
}

// SendPauseState tells every phone who owns the pause. The relay
// broadcasts pause_state regardless of the id, which here names the
// owner rather than a routing target.
func (gc *GameClient) SendPauseState(owner int, paused bool) {
	gc.send(message.Envelope{
		Type:   message.TypePauseState,
		ID:     owner,
		Paused: paused,
	})
}

// SendMainMenuOpened announces a return to the main menu.
func (gc *GameClient) SendMainMenuOpened() {
	gc.send(message.Envelope{
		Type: message.TypeMainMenuOpened,
		ID:   message.BroadcastID,
	})
}

func (gc *GameClient) send(env message.Envelope) {
	data, err := env.Encode()
	if err != nil {
		gc.logger.Error("Failed to encode outbound message", zap.String("type", env.Type), zap.Error(err))
		return
	}
	gc.peer.Send(data)
}

// handleMessage decodes one relay message and routes it. Runs on the read
// pump goroutine.
func (gc *GameClient) handleMessage(data []byte) {
	env, err := message.Decode(data)
	if err != nil {
		gc.logger.Warn("Dropping malformed relay message", zap.Error(err))
		return
	}

	switch env.Type {
	case message.TypeRoomCreated:
		gc.mu.Lock()
		gc.roomCode = env.RoomCode
		gc.mu.Unlock()
		gc.readyOnce.Do(func() { close(gc.ready) })
		gc.logger.Info("Room created", zap.String("room", env.RoomCode))

	case message.TypePlayerJoined:
		player := message.PlayerData{ID: env.ID, Name: env.Name}
		gc.mu.Lock()
		gc.players = append(gc.players, player)
		gc.mu.Unlock()
		gc.dispatcher.Dispatch(session.PlayerJoined{Player: player})
		gc.logger.Info("Player joined", zap.Int("player", player.ID), zap.String("name", player.Name))

	case message.TypePlayerLeft:
		player := gc.removePlayer(env.ID)
		gc.dispatcher.Dispatch(session.PlayerLeft{Player: player})
		gc.logger.Info("Player left", zap.Int("player", player.ID))

	case message.TypeButton:
		gc.mu.Lock()
		gc.pressed[env.Button] = env.Pressed
		gc.mu.Unlock()

	case message.TypePauseRequest:
		gc.dispatcher.Dispatch(session.PauseRequested{Player: gc.playerByID(env.ID)})

	case message.TypeUnpauseRequest:
		gc.dispatcher.Dispatch(session.UnpauseRequested{Player: gc.playerByID(env.ID)})

	case message.TypeMainMenuRequest:
		gc.dispatcher.Dispatch(session.MainMenuRequested{Player: gc.playerByID(env.ID)})

	case message.TypeLevelRequest:
		gc.dispatcher.Dispatch(session.LevelStartRequested{Level: env.Level})

	default:
		gc.logger.Debug("Ignoring relay message", zap.String("type", env.Type))
	}
}

// handleClose marks the link down. Runs once, from the read pump.
func (gc *GameClient) handleClose() {
	gc.mu.Lock()
	gc.connected = false
	gc.mu.Unlock()
	close(gc.done)
	gc.logger.Info("Relay connection closed")
}

// playerByID resolves a relayed sender id against the join list. Unknown
// ids still produce a usable record carrying the id alone.
func (gc *GameClient) playerByID(id int) message.PlayerData {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	for _, p := range gc.players {
		if p.ID == id {
			return p
		}
	}
	return message.PlayerData{ID: id}
}

// removePlayer drops a player from the join list and returns the removed
// record.
func (gc *GameClient) removePlayer(id int) message.PlayerData {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	for i, p := range gc.players {
		if p.ID == id {
			gc.players = append(gc.players[:i], gc.players[i+1:]...)
			return p
		}
	}
	return message.PlayerData{ID: id}
}
