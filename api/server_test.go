package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"partyracer/game/message"
	"partyracer/game/room"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rooms, err := room.NewManager(0, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create room manager: %v", err)
	}
	server := httptest.NewServer(NewServer(rooms, zap.NewNop()))
	t.Cleanup(server.Close)
	return server
}

func wsDial(t *testing.T, server *httptest.Server, path string) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnv(t *testing.T, conn *gorillaws.Conn) message.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	env, err := message.Decode(data)
	if err != nil {
		t.Fatalf("Failed to decode %q: %v", data, err)
	}
	return env
}

func writeEnv(t *testing.T, conn *gorillaws.Conn, env message.Envelope) {
	t.Helper()
	data, err := env.Encode()
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if err := conn.WriteMessage(gorillaws.TextMessage, data); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
}

// openRoom connects a host and returns its connection and room code.
func openRoom(t *testing.T, server *httptest.Server) (*gorillaws.Conn, string) {
	t.Helper()
	host := wsDial(t, server, "/host")
	env := readEnv(t, host)
	if env.Type != message.TypeRoomCreated || env.RoomCode == "" {
		t.Fatalf("Expected room_created with a code, got %+v", env)
	}
	return host, env.RoomCode
}

// joinRoom connects a player, runs the join handshake, and returns the
// connection and assigned id.
func joinRoom(t *testing.T, server *httptest.Server, code, name string) (*gorillaws.Conn, int) {
	t.Helper()
	player := wsDial(t, server, "/play")
	writeEnv(t, player, message.Envelope{Type: message.TypeJoin, RoomCode: code, Name: name})
	env := readEnv(t, player)
	if env.Type != message.TypeRoomJoined {
		t.Fatalf("Expected room_joined, got %+v", env)
	}
	return player, env.ID
}

func TestHostGetsRoomCode(t *testing.T) {
	server := newTestServer(t)
	_, code := openRoom(t, server)

	if len(code) < 4 {
		t.Errorf("Room code should be at least 4 characters, got %q", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			t.Errorf("Room code should be uppercase letters only, got %q", code)
		}
	}
}

func TestPlayerJoinHandshake(t *testing.T) {
	server := newTestServer(t)
	host, code := openRoom(t, server)

	_, id := joinRoom(t, server, code, "Ada")
	if id != 1 {
		t.Errorf("First player should get id 1, got %d", id)
	}

	notice := readEnv(t, host)
	if notice.Type != message.TypePlayerJoined || notice.ID != 1 || notice.Name != "Ada" {
		t.Errorf("Host should be told about the join, got %+v", notice)
	}
}

func TestJoinUnknownRoomFails(t *testing.T) {
	server := newTestServer(t)
	openRoom(t, server)

	player := wsDial(t, server, "/play")
	writeEnv(t, player, message.Envelope{Type: message.TypeJoin, RoomCode: "XXXX", Name: "Ada"})

	env := readEnv(t, player)
	if env.Type != message.TypeJoinFailed || env.Code != "room_not_found" {
		t.Errorf("Expected join_failed room_not_found, got %+v", env)
	}

	// The connection is closed after the rejection.
	player.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := player.ReadMessage(); err == nil {
		t.Error("Connection should be closed after a failed join")
	}
}

func TestFirstMessageMustBeJoin(t *testing.T) {
	server := newTestServer(t)
	_, code := openRoom(t, server)

	player := wsDial(t, server, "/play")
	writeEnv(t, player, message.Envelope{Type: message.TypeButton, RoomCode: code, Button: message.ButtonForward})

	env := readEnv(t, player)
	if env.Type != message.TypeJoinFailed || env.Code != "bad_request" {
		t.Errorf("Expected join_failed bad_request, got %+v", env)
	}
}

func TestPlayerMessagesRelayedToHostWithSenderID(t *testing.T) {
	server := newTestServer(t)
	host, code := openRoom(t, server)
	player, id := joinRoom(t, server, code, "Ada")
	readEnv(t, host) // player_joined

	writeEnv(t, player, message.Envelope{Type: message.TypeButton, Button: message.ButtonForward, Pressed: true})

	env := readEnv(t, host)
	if env.Type != message.TypeButton || env.ID != id || env.Button != message.ButtonForward || !env.Pressed {
		t.Errorf("Expected relayed button tagged with sender %d, got %+v", id, env)
	}
}

func TestHostMessagesRoutedByID(t *testing.T) {
	server := newTestServer(t)
	host, code := openRoom(t, server)
	first, firstID := joinRoom(t, server, code, "Ada")
	second, _ := joinRoom(t, server, code, "Grace")
	readEnv(t, host) // player_joined Ada
	readEnv(t, host) // player_joined Grace

	// Targeted: only the named player receives it.
	writeEnv(t, host, message.Envelope{Type: message.TypeButtonsEnabled, ID: firstID, Buttons: message.Buttons(), Enabled: true})
	env := readEnv(t, first)
	if env.Type != message.TypeButtonsEnabled || !env.Enabled {
		t.Errorf("Targeted message should reach player %d, got %+v", firstID, env)
	}

	// Broadcast: both receive it.
	writeEnv(t, host, message.Envelope{Type: message.TypeLevelStarted, ID: message.BroadcastID, Level: 1, Layout: message.LayoutStandard})
	for _, conn := range []*gorillaws.Conn{first, second} {
		env := readEnv(t, conn)
		if env.Type != message.TypeLevelStarted || env.Level != 1 {
			t.Errorf("Broadcast should reach every player, got %+v", env)
		}
	}
}

func TestHostDisconnectTearsRoomDown(t *testing.T) {
	server := newTestServer(t)
	host, code := openRoom(t, server)
	player, _ := joinRoom(t, server, code, "Ada")
	readEnv(t, host)

	host.Close()

	env := readEnv(t, player)
	if env.Type != message.TypeGameDisconnected {
		t.Errorf("Players should be told the game is gone, got %+v", env)
	}

	// The code no longer resolves.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(server.URL + "/api/rooms")
		if err != nil {
			t.Fatalf("Failed to list rooms: %v", err)
		}
		var listing struct {
			Count int `json:"count"`
		}
		json.NewDecoder(resp.Body).Decode(&listing)
		resp.Body.Close()
		if listing.Count == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Room should be removed after the host disconnects")
}

func TestListRooms(t *testing.T) {
	server := newTestServer(t)
	_, code := openRoom(t, server)
	joinRoom(t, server, code, "Ada")

	resp, err := http.Get(server.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("Failed to list rooms: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var listing struct {
		Count int `json:"count"`
		Rooms []struct {
			Code    string `json:"code"`
			Players int    `json:"players"`
		} `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}

	if listing.Count != 1 || len(listing.Rooms) != 1 {
		t.Fatalf("Expected one room, got %+v", listing)
	}
	if listing.Rooms[0].Code != code || listing.Rooms[0].Players != 1 {
		t.Errorf("Unexpected room row: %+v", listing.Rooms[0])
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("Failed to hit health check: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
