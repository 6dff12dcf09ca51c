// Package client implements the host's connection to the relay server. It
// dials the host endpoint, records the assigned room code, translates
// relayed player actions into session events, and carries the session
// controller's outbound game-control messages back to the phones.
package client
