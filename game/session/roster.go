package session

import "partyracer/game/message"

// MaxActivePlayers caps the number of simultaneous controllers; everyone
// beyond it spectates.
const MaxActivePlayers = 4

// Roster partitions the currently joined players into active controllers
// and spectators. A player appears in at most one of the two lists, and
// both lists preserve join order. The roster belongs to the controller's
// event loop and needs no locking of its own.
type Roster struct {
	active     []message.PlayerData
	spectators []message.PlayerData
}

// Reset empties both lists. Called on every level start.
func (r *Roster) Reset() {
	r.active = r.active[:0]
	r.spectators = r.spectators[:0]
}

// Add places a player in the active list while there is capacity, otherwise
// among the spectators. Players already present are left where they are.
func (r *Roster) Add(p message.PlayerData) {
	if r.Contains(p) {
		return
	}
	if len(r.active) < MaxActivePlayers {
		r.active = append(r.active, p)
	} else {
		r.spectators = append(r.spectators, p)
	}
}

// AddSpectator places a player among the spectators regardless of active
// capacity. Used for mid-level joins, which never gain control.
func (r *Roster) AddSpectator(p message.PlayerData) {
	if r.Contains(p) {
		return
	}
	r.spectators = append(r.spectators, p)
}

// Remove drops a player from whichever list contains them. Identity is
// matched by id only.
func (r *Roster) Remove(p message.PlayerData) {
	r.active = removePlayer(r.active, p)
	r.spectators = removePlayer(r.spectators, p)
}

// Contains reports whether the player is in either list.
func (r *Roster) Contains(p message.PlayerData) bool {
	return r.IsActivePlayer(p) || r.IsSpectator(p)
}

// IsActivePlayer reports whether the player currently holds a controller
// slot.
func (r *Roster) IsActivePlayer(p message.PlayerData) bool {
	for _, current := range r.active {
		if current.SameIdentity(p) {
			return true
		}
	}
	return false
}

// IsSpectator reports whether the player is spectating.
func (r *Roster) IsSpectator(p message.PlayerData) bool {
	for _, current := range r.spectators {
		if current.SameIdentity(p) {
			return true
		}
	}
	return false
}

// ActivePlayers returns the active controllers in join order.
func (r *Roster) ActivePlayers() []message.PlayerData {
	result := make([]message.PlayerData, len(r.active))
	copy(result, r.active)
	return result
}

// Spectators returns the spectators in join order.
func (r *Roster) Spectators() []message.PlayerData {
	result := make([]message.PlayerData, len(r.spectators))
	copy(result, r.spectators)
	return result
}

// ActiveCount returns the number of active controllers.
func (r *Roster) ActiveCount() int {
	return len(r.active)
}

// SpectatorCount returns the number of spectators.
func (r *Roster) SpectatorCount() int {
	return len(r.spectators)
}

func removePlayer(list []message.PlayerData, p message.PlayerData) []message.PlayerData {
	for i, current := range list {
		if current.SameIdentity(p) {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
