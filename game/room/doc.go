// Package room implements the relay server's room registry and per-room
// message routing.
//
// A Room unites exactly one host connection (the game display) with any
// number of player connections (phone gamepads) under a short alphabetic
// code. The Manager owns the code→room table, generates codes, and tears
// rooms down when their host disconnects; a room never outlives its host.
//
// Room Codes:
//
// Codes are produced by encoding a random integer from a small bounded
// range into fixed-length uppercase letters (hashids). The range is a
// capacity parameter: it must comfortably exceed the expected number of
// concurrently open rooms, because generation retries unboundedly until it
// draws a code no open room holds. Codes are released when a room closes
// and may be reused by later rooms.
//
// Relay Policy:
//
// Player messages are tagged with the sender's id and forwarded verbatim to
// the host. Host messages are routed by their id field: a positive id
// addresses that player, anything else broadcasts. The exception is
// pause_state, whose id names the pause owner and which always broadcasts.
// Delivery is
// fire-and-forget per recipient; one slow phone never stalls the rest of
// the room.
//
// Concurrency:
//
// Each connection feeds the room from its own read goroutine, so the player
// table is mutex-guarded on every add, remove, and broadcast. The Manager
// guards its room table the same way.
package room
