// Package save persists the host's progression data: coin totals, total
// play time, and per-level results.
//
// The save file is a single JSON document on disk. The session controller
// records a LevelSaveData snapshot whenever the controlled car is
// destroyed, and the accumulated totals survive process restarts.
//
// The store is safe for concurrent use, though in practice the session
// controller is its only writer.
package save
