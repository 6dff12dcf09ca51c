// Package session implements the host-side game-flow state machine.
//
// The controller is the single authority over scene transitions, roster
// management, pause arbitration, and the spawn/countdown sequence. It
// consumes typed events decoded from the relay by the transport (player
// joins and leaves, level requests, pause requests) and emits outbound
// intents back through the same transport.
//
// States:
//
//	MainMenu ──LevelStartRequested──▶ Loading ──load done──▶ InLevel
//	InLevel ──MainMenuRequested / last player left──▶ Loading ──▶ MainMenu
//
// Every external event is rejected outright while a scene load is in
// flight. There is no queuing: late player actions during a transition are
// dropped, which keeps the machine free of rollback logic.
//
// Roster:
//
// On entering a playable level the connected players are partitioned in
// join order: the first four become active controllers, the rest become
// spectators. Spectators never gain control mid-level; players who join
// mid-level always spectate. When the last active player leaves, the
// session returns to the main menu.
//
// Pause Ownership:
//
// Only an active player may pause, and only the player who paused (matched
// by id, never by name) may unpause or return the session to the menu while
// paused. If the pause owner disconnects, the session unpauses itself.
//
// Concurrency:
//
// The controller is effectively single-threaded: Run drains one event at a
// time from an internal queue. The only operations spanning real time are
// the scene load (a single in-flight task gated by the loading flag) and
// the countdown timer; both re-enter the machine as internal events, and a
// countdown continuation is discarded if a newer load has started since it
// was armed.
package session
