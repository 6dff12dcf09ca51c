// Package api exposes the relay's HTTP surface: the WebSocket endpoints
// hosts and players connect through, a room listing for operators, and a
// health check.
package api
