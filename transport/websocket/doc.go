// Package websocket provides the WebSocket transport used by the relay
// server.
//
// The package wraps a gorilla/websocket connection in a Peer with a buffered
// outbound queue and dedicated read/write goroutines, so room code never
// blocks on a slow phone and never writes to a connection from two
// goroutines at once.
//
// Connection Lifecycle:
//
//  1. HTTP request upgraded via Upgrade
//  2. Optional handshake read with ReadOne (the /play join message)
//  3. Start launches the read and write pumps
//  4. Send queues outbound frames, dropping them if the peer is backed up
//  5. Close (or a read error) tears the connection down exactly once,
//     flushing already-queued frames and sending a close frame first
//
// Keepalive:
//
// The write pump pings on a fixed period and the read pump extends its
// deadline on every pong, mirroring the usual gorilla/websocket pump
// arrangement. A peer that stops answering pings is closed by the read
// deadline.
//
// Concurrency:
//
// Send and Close are safe to call from any goroutine. The message and close
// callbacks passed to Start are invoked from the read pump goroutine, one
// at a time.
package websocket
