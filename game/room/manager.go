package room

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"partyracer/game/message"
)

// ErrRoomNotFound is returned when a code does not name an open room.
// Callers should treat it as "room expired or code invalid", a normal
// branch rather than a fault.
var ErrRoomNotFound = errors.New("room not found")

// Manager owns the code→room table. It is the single entry point for
// incoming host connections.
type Manager struct {
	codes  *CodeGenerator
	logger *zap.Logger

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewManager creates a room manager whose codes are drawn from
// [0, capacity]; pass 0 for the default capacity.
func NewManager(capacity int, logger *zap.Logger) (*Manager, error) {
	codes, err := NewCodeGenerator(capacity)
	if err != nil {
		return nil, err
	}

	return &Manager{
		codes:  codes,
		logger: logger,
		rooms:  make(map[string]*Room),
	}, nil
}

// CreateRoom generates a fresh code, registers a room bound to the host
// connection, and sends the host its room_created notice. The caller wires
// the host connection's close handling to DropRoom.
func (m *Manager) CreateRoom(host Conn) (*Room, error) {
	m.mu.Lock()
	code, err := m.generateCode()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	r := NewRoom(code, host, m.logger)
	m.rooms[code] = r
	m.mu.Unlock()

	r.MsgGame(message.RoomCreated(code), message.ServerID)
	m.logger.Info("New room", zap.String("room", code))
	return r, nil
}

// GetRoom looks a room up by code.
func (m *Manager) GetRoom(code string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// DropRoom tears a room down after its host disconnects: players are told
// the game is gone, every player connection is closed, and the code is
// freed for reuse. Dropping an already-removed room is a no-op.
func (m *Manager) DropRoom(code string) {
	m.mu.Lock()
	r, ok := m.rooms[code]
	if ok {
		delete(m.rooms, code)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	r.MsgAllPlayers(message.GameDisconnected(), message.ServerID)
	r.CloseRoom()
	m.logger.Info("Room dropped", zap.String("room", code))
}

// RoomCount returns the number of open rooms.
func (m *Manager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// RoomCodes returns the codes of all open rooms in no particular order.
func (m *Manager) RoomCodes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	codes := make([]string, 0, len(m.rooms))
	for code := range m.rooms {
		codes = append(codes, code)
	}
	return codes
}

// generateCode draws random codes until one not held by an open room comes
// up. Collisions are rare at sane room counts, but the loop is deliberately
// unbounded: as long as free codes exist it terminates, and sizing the
// capacity is the operator's job. Caller must hold m.mu.
func (m *Manager) generateCode() (string, error) {
	for {
		code, err := m.codes.Random()
		if err != nil {
			return "", err
		}
		if _, taken := m.rooms[code]; !taken {
			return code, nil
		}
	}
}
