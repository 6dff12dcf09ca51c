// Package message defines the wire schema shared by the relay server, the
// host game instance, and the phone controllers.
//
// Every message is a JSON object tagged by a "type" string. Fields that a
// given type does not use are simply omitted, and receivers ignore fields
// they do not recognize, so the schema can grow without breaking older
// clients.
//
// Message Flow:
//
//	player socket → Room (relay, tags sender id) → host socket
//	host socket   → Room (routes by target id)   → player socket(s)
//
// The Envelope type carries the union of all fields used by any message
// type. The ID field does double duty: on host→player traffic it is the
// relay target (BroadcastID means "everyone"), except for pause_state where
// it names the pause owner and the message is always broadcast.
//
// Identity:
//
// PlayerData records are compared by id only; two records with the same id
// but different names refer to the same player. Use SameIdentity, never
// struct equality.
package message
