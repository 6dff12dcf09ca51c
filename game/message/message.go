package message

import "encoding/json"

// Message type tags exchanged between server, host, and players.
const (
	// Server→host room lifecycle notices.
	TypeRoomCreated      = "room_created"
	TypePlayerJoined     = "player_joined"
	TypePlayerLeft       = "player_left"
	TypeGameDisconnected = "game_disconnected"

	// Server→player join handshake results.
	TypeRoomJoined = "room_joined"
	TypeJoinFailed = "join_failed"

	// Player→host actions (relayed, tagged with the sender id).
	TypeJoin            = "join"
	TypeButton          = "button"
	TypePauseRequest    = "pause_request"
	TypeUnpauseRequest  = "unpause_request"
	TypeMainMenuRequest = "main_menu_request"
	TypeLevelRequest    = "level_request"

	// Host→player game-control messages (relayed by target id).
	TypeLevelStarted   = "level_started"
	TypeButtonsEnabled = "buttons_enabled"
	TypePauseState     = "pause_state"
	TypeMainMenuOpened = "main_menu_opened"
)

// ID sentinels for the Envelope ID field. Player ids assigned by the relay
// start at 1, so both sentinels are safely out of range.
const (
	// ServerID marks a message originating from the relay itself.
	ServerID = 0

	// BroadcastID addresses every player in the room.
	BroadcastID = -1
)

// Gamepad layout names assigned per level.
const (
	LayoutStandard = "standard"
	LayoutJump     = "jump"
)

// Button name vocabulary for the on-screen gamepad.
const (
	ButtonLeft    = "left"
	ButtonRight   = "right"
	ButtonForward = "go"
	ButtonBack    = "stop"
)

// Buttons returns the full button vocabulary in its canonical order.
func Buttons() []string {
	return []string{ButtonLeft, ButtonRight, ButtonForward, ButtonBack}
}

// PlayerData identifies a connected controller client.
type PlayerData struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SameIdentity reports whether two player records refer to the same player.
// Identity is the id alone; the name is display data and may change.
func (p PlayerData) SameIdentity(other PlayerData) bool {
	return p.ID == other.ID
}

// Envelope is the union of all wire message fields. Only Type is always
// present; every other field is optional per message type.
type Envelope struct {
	Type     string       `json:"type"`
	RoomCode string       `json:"room_code,omitempty"`
	ID       int          `json:"id,omitempty"`
	Name     string       `json:"name,omitempty"`
	Code     string       `json:"code,omitempty"`
	Message  string       `json:"message,omitempty"`
	Players  []PlayerData `json:"players,omitempty"`
	Paused   bool         `json:"paused,omitempty"`
	Level    int          `json:"level,omitempty"`
	Layout   string       `json:"layout,omitempty"`
	Buttons  []string     `json:"buttons,omitempty"`
	Enabled  bool         `json:"enabled,omitempty"`
	Button   string       `json:"button,omitempty"`
	Pressed  bool         `json:"pressed,omitempty"`
}

// Encode marshals the envelope to its wire form.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a wire message. Unknown fields are ignored so newer peers
// can talk to older ones.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}

// RoomCreated builds the server→host notice carrying the assigned room code.
func RoomCreated(code string) Envelope {
	return Envelope{Type: TypeRoomCreated, RoomCode: code}
}

// PlayerJoined builds the server→host notice for a newly registered player.
func PlayerJoined(player PlayerData) Envelope {
	return Envelope{Type: TypePlayerJoined, ID: player.ID, Name: player.Name}
}

// PlayerLeft builds the server→host notice for a departed player.
func PlayerLeft(id int) Envelope {
	return Envelope{Type: TypePlayerLeft, ID: id}
}

// GameDisconnected builds the notice broadcast to players when the host
// connection closes and the room is torn down.
func GameDisconnected() Envelope {
	return Envelope{Type: TypeGameDisconnected}
}

// RoomJoined builds the server→player join acknowledgement.
func RoomJoined(code string, id int) Envelope {
	return Envelope{Type: TypeRoomJoined, RoomCode: code, ID: id}
}

// JoinFailed builds the server→player join rejection. The code is a short
// machine-readable reason such as "room_not_found".
func JoinFailed(code, text string) Envelope {
	return Envelope{Type: TypeJoinFailed, Code: code, Message: text}
}
