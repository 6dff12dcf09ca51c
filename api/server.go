package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"partyracer/game/message"
	"partyracer/game/room"
	"partyracer/transport/websocket"
)

// joinTimeout bounds how long a freshly connected player gets to send the
// join handshake before the connection is dropped.
const joinTimeout = 10 * time.Second

// handshakeWriteWait bounds handshake reply writes, which happen before
// the peer's write pump is running.
const handshakeWriteWait = 10 * time.Second

// Server is the relay's HTTP server.
type Server struct {
	rooms  *room.Manager
	router *mux.Router
	logger *zap.Logger
}

// NewServer creates the relay server around a room manager.
func NewServer(rooms *room.Manager, logger *zap.Logger) *Server {
	s := &Server{
		rooms:  rooms,
		router: mux.NewRouter(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/host", s.handleHost)
	s.router.HandleFunc("/play", s.handlePlay)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleHost upgrades a host connection and opens a room for it. The room
// lives exactly as long as the connection: when the socket dies the room
// is dropped and its players disconnected.
func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	peer, err := websocket.Upgrade(w, r, s.logger)
	if err != nil {
		s.logger.Warn("Host upgrade failed", zap.Error(err))
		return
	}

	rm, err := s.rooms.CreateRoom(peer)
	if err != nil {
		s.logger.Error("Failed to create room", zap.Error(err))
		peer.Close()
		return
	}

	peer.Start(
		func(data []byte) { rm.HandleHostMessage(data) },
		func() { s.rooms.DropRoom(rm.Code()) },
	)
}

// handlePlay upgrades a player connection and runs the join handshake: the
// first message must be a join naming an open room, answered with
// room_joined or join_failed. After a successful join the connection is
// relayed into the room until either side drops.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	peer, err := websocket.Upgrade(w, r, s.logger)
	if err != nil {
		s.logger.Warn("Player upgrade failed", zap.Error(err))
		return
	}

	data, err := peer.ReadOne(joinTimeout)
	if err != nil {
		s.logger.Debug("Player handshake read failed", zap.Error(err))
		peer.Close()
		return
	}

	env, err := message.Decode(data)
	if err != nil || env.Type != message.TypeJoin {
		s.rejectJoin(peer, "bad_request", "first message must be a join")
		return
	}

	rm, err := s.rooms.GetRoom(env.RoomCode)
	if err != nil {
		s.rejectJoin(peer, "room_not_found", "no room with that code")
		return
	}

	player, ok := rm.AddPlayer(peer, env.Name)
	if !ok {
		s.rejectJoin(peer, "room_closed", "the game has ended")
		return
	}

	if ack, err := message.RoomJoined(rm.Code(), player.ID).Encode(); err == nil {
		if err := peer.WriteOne(ack, handshakeWriteWait); err != nil {
			rm.RemovePlayer(player.ID)
			peer.Close()
			return
		}
	}

	peer.Start(
		func(data []byte) { rm.HandlePlayerMessage(player.ID, data) },
		func() { rm.RemovePlayer(player.ID) },
	)
}

// rejectJoin answers a failed handshake and closes the connection.
func (s *Server) rejectJoin(peer *websocket.Peer, code, text string) {
	if data, err := message.JoinFailed(code, text).Encode(); err == nil {
		peer.WriteOne(data, handshakeWriteWait)
	}
	peer.Close()
}

// roomInfo is one row of the room listing.
type roomInfo struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	codes := s.rooms.RoomCodes()
	sort.Strings(codes)

	rooms := make([]roomInfo, 0, len(codes))
	for _, code := range codes {
		rm, err := s.rooms.GetRoom(code)
		if err != nil {
			// Dropped between listing and lookup.
			continue
		}
		rooms = append(rooms, roomInfo{Code: code, Players: rm.PlayerCount()})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"rooms": rooms,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
