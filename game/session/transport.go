package session

import "partyracer/game/message"

// Transport is the controller's view of the host↔relay connection. The
// game client implements it over WebSocket; tests substitute a recorder.
//
// Send targets use the wire id convention: a player id addresses one phone,
// message.BroadcastID addresses every phone in the room.
type Transport interface {
	// Connected reports whether the relay link is up.
	Connected() bool

	// ConnectedPlayers lists the players currently known to the transport,
	// in join order.
	ConnectedPlayers() []message.PlayerData

	// SendLevelStarted announces the active level and gamepad layout.
	SendLevelStarted(target int, level int, layout string)

	// SendButtonsEnabled assigns or revokes a set of buttons.
	SendButtonsEnabled(target int, buttons []string, enabled bool)

	// SendPauseState broadcasts the pause owner (message.BroadcastID when
	// unpaused) and the paused flag to every phone.
	SendPauseState(owner int, paused bool)

	// SendMainMenuOpened announces a return to the main menu.
	SendMainMenuOpened()

	// ResetButtonsPressed clears all latched button state, so stale input
	// never leaks into a fresh level.
	ResetButtonsPressed()
}
