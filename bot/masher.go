package main

import "math/rand"

// Masher generates button actions over the buttons a bot has been
// assigned. Every press is eventually paired with a release, so a host
// never sees a button stuck down by a departed bot mid-press.
type Masher struct {
	rng     *rand.Rand
	buttons []string
	held    string
}

// NewMasher creates a masher seeded for reproducible runs.
func NewMasher(seed uint64) *Masher {
	return &Masher{rng: rand.New(rand.NewSource(int64(seed)))}
}

// Assign replaces the button set. Revoking (enabled=false) clears it; any
// held button is released by the next action.
func (m *Masher) Assign(buttons []string, enabled bool) {
	if !enabled {
		m.buttons = nil
		return
	}
	m.buttons = make([]string, len(buttons))
	copy(m.buttons, buttons)
}

// Next returns the next action to send, alternating presses and releases.
// ok is false when there is nothing to do: no buttons assigned and nothing
// held.
func (m *Masher) Next() (button string, pressed bool, ok bool) {
	if m.held != "" {
		button = m.held
		m.held = ""
		return button, false, true
	}
	if len(m.buttons) == 0 {
		return "", false, false
	}
	button = m.buttons[m.rng.Intn(len(m.buttons))]
	m.held = button
	return button, true, true
}
