package session

import (
	"partyracer/game/message"
	"partyracer/game/scene"
)

// Event is a discrete input to the session state machine. Events are
// processed one at a time in arrival order.
type Event interface {
	isEvent()
}

// LevelStartRequested asks for a playable scene to be loaded. Valid only
// from the main menu.
type LevelStartRequested struct {
	Level int
}

// MainMenuRequested asks to leave the current level. While paused, only the
// pause owner may trigger it.
type MainMenuRequested struct {
	Player message.PlayerData
}

// PlayerJoined reports a player registering with the room mid-session.
type PlayerJoined struct {
	Player message.PlayerData
}

// PlayerLeft reports a player connection closing.
type PlayerLeft struct {
	Player message.PlayerData
}

// PauseRequested asks to freeze the session. Only active players may pause.
type PauseRequested struct {
	Player message.PlayerData
}

// UnpauseRequested asks to resume the session. Only the pause owner may
// unpause.
type UnpauseRequested struct {
	Player message.PlayerData
}

// PlayerDied reports the controlled car being destroyed, ending the round.
// Coins is the number collected during the round.
type PlayerDied struct {
	Coins int
}

// sceneLoaded re-enters the machine when an asynchronous scene load
// finishes. Target is nil for the main menu.
type sceneLoaded struct {
	Index  int
	Target *scene.Scene
	Err    error
}

// countdownFinished re-enters the machine when the post-spawn countdown
// elapses. Generation ties it to the load that armed it.
type countdownFinished struct {
	Generation int
}

func (LevelStartRequested) isEvent() {}
func (MainMenuRequested) isEvent()   {}
func (PlayerJoined) isEvent()        {}
func (PlayerLeft) isEvent()          {}
func (PauseRequested) isEvent()      {}
func (UnpauseRequested) isEvent()    {}
func (PlayerDied) isEvent()          {}
func (sceneLoaded) isEvent()         {}
func (countdownFinished) isEvent()   {}
