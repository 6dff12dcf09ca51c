package room

import (
	"sync"

	"go.uber.org/zap"

	"partyracer/game/message"
)

// Conn is the subset of the transport connection a room needs. Send must be
// non-blocking and fire-and-forget; Close must be idempotent.
type Conn interface {
	Send(data []byte) bool
	Close()
}

// player pairs a registered player connection with its wire identity.
type player struct {
	conn Conn
	data message.PlayerData
}

// Room relays messages between one host connection and its set of player
// connections. All methods are safe for concurrent use by the per-connection
// read goroutines.
type Room struct {
	code   string
	host   Conn
	logger *zap.Logger

	mu      sync.Mutex
	players map[int]*player
	nextID  int
	closed  bool
}

// NewRoom binds a room code to its host connection. The room is live until
// CloseRoom; it never outlives the host.
func NewRoom(code string, host Conn, logger *zap.Logger) *Room {
	return &Room{
		code:    code,
		host:    host,
		logger:  logger.With(zap.String("room", code)),
		players: make(map[int]*player),
		nextID:  1,
	}
}

// Code returns the room's code.
func (r *Room) Code() string {
	return r.code
}

// MsgGame sends a message to the host connection. A sender id above
// ServerID tags the envelope so the host knows which player it came from.
func (r *Room) MsgGame(env message.Envelope, senderID int) {
	if senderID != message.ServerID {
		env.ID = senderID
	}

	data, err := env.Encode()
	if err != nil {
		r.logger.Error("Failed to encode host message", zap.Error(err))
		return
	}
	r.host.Send(data)
}

// MsgAllPlayers broadcasts a message to every registered player. Delivery
// is fire-and-forget per player; one undeliverable connection does not
// abort the rest.
func (r *Room) MsgAllPlayers(env message.Envelope, senderID int) {
	if senderID != message.ServerID {
		env.ID = senderID
	}

	data, err := env.Encode()
	if err != nil {
		r.logger.Error("Failed to encode broadcast", zap.Error(err))
		return
	}

	for _, p := range r.playerSnapshot() {
		p.conn.Send(data)
	}
}

// AddPlayer registers a player connection, assigns it the next player id,
// and notifies the host. Fails once the room is closed.
func (r *Room) AddPlayer(conn Conn, name string) (message.PlayerData, bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return message.PlayerData{}, false
	}
	data := message.PlayerData{ID: r.nextID, Name: name}
	r.nextID++
	r.players[data.ID] = &player{conn: conn, data: data}
	r.mu.Unlock()

	r.logger.Info("Player joined room", zap.Int("player", data.ID), zap.String("name", name))
	r.MsgGame(message.PlayerJoined(data), message.ServerID)
	return data, true
}

// RemovePlayer drops a player from the room, closes its connection, and
// notifies the host. Unknown ids are ignored.
func (r *Room) RemovePlayer(id int) {
	r.mu.Lock()
	p, ok := r.players[id]
	if ok {
		delete(r.players, id)
	}
	closed := r.closed
	r.mu.Unlock()

	if !ok {
		return
	}
	p.conn.Close()

	if !closed {
		r.logger.Info("Player left room", zap.Int("player", id))
		r.MsgGame(message.PlayerLeft(id), message.ServerID)
	}
}

// HandlePlayerMessage relays a raw player frame to the host, tagged with
// the sender's id. Malformed frames and stray join messages are dropped.
func (r *Room) HandlePlayerMessage(senderID int, data []byte) {
	env, err := message.Decode(data)
	if err != nil {
		r.logger.Debug("Dropping malformed player message", zap.Int("player", senderID), zap.Error(err))
		return
	}
	if env.Type == "" || env.Type == message.TypeJoin {
		return
	}
	r.MsgGame(env, senderID)
}

// HandleHostMessage routes a raw host frame to its player(s). A positive id
// addresses a single player and anything else broadcasts, except
// pause_state whose id is the pause owner and which always broadcasts.
func (r *Room) HandleHostMessage(data []byte) {
	env, err := message.Decode(data)
	if err != nil {
		r.logger.Debug("Dropping malformed host message", zap.Error(err))
		return
	}
	if env.Type == "" {
		return
	}

	if env.Type != message.TypePauseState && env.ID > 0 {
		r.msgPlayer(env.ID, data)
		return
	}

	for _, p := range r.playerSnapshot() {
		p.conn.Send(data)
	}
}

// CloseRoom closes every player connection and releases the player table.
// Idempotent; the host connection is managed by its own read goroutine.
func (r *Room) CloseRoom() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	players := r.players
	r.players = make(map[int]*player)
	r.mu.Unlock()

	for _, p := range players {
		p.conn.Close()
	}
	r.logger.Info("Room closed", zap.Int("players", len(players)))
}

// PlayerCount returns the number of registered players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Players returns a snapshot of the registered players in no particular
// order.
func (r *Room) Players() []message.PlayerData {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]message.PlayerData, 0, len(r.players))
	for _, p := range r.players {
		result = append(result, p.data)
	}
	return result
}

// msgPlayer delivers a raw frame to one player, if present.
func (r *Room) msgPlayer(id int, data []byte) {
	r.mu.Lock()
	p, ok := r.players[id]
	r.mu.Unlock()

	if ok {
		p.conn.Send(data)
	}
}

// playerSnapshot copies the player set so sends happen outside the lock.
func (r *Room) playerSnapshot() []*player {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*player, 0, len(r.players))
	for _, p := range r.players {
		result = append(result, p)
	}
	return result
}
