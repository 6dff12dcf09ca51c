package save

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LevelSaveData is the per-round result captured when a run ends.
// BestPlayDuration is the shortest completed round recorded for the level
// and is maintained by SetLevelSaveData.
type LevelSaveData struct {
	CoinsCollected   int           `json:"coins_collected"`
	PlayDuration     time.Duration `json:"play_duration"`
	BestPlayDuration time.Duration `json:"best_play_duration,omitempty"`
}

// fileData is the JSON layout of the save file.
type fileData struct {
	TotalCoins       int                   `json:"total_coins"`
	TotalPlaySeconds float64               `json:"total_play_seconds"`
	Levels           map[int]LevelSaveData `json:"levels"`
}

// File is a JSON-backed save store.
type File struct {
	path string

	mu   sync.Mutex
	data fileData
}

// NewFile creates a save store backed by the given path. The file is not
// read until ReadFromDisk and not written until WriteToDisk.
func NewFile(path string) *File {
	return &File{
		path: path,
		data: fileData{Levels: make(map[int]LevelSaveData)},
	}
}

// SetLevelSaveData records the latest result for a level, carrying the
// level's best duration forward.
func (f *File) SetLevelSaveData(levelIndex int, data LevelSaveData) {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous := f.data.Levels[levelIndex]
	data.BestPlayDuration = bestDuration(previous.BestPlayDuration, data.PlayDuration)
	f.data.Levels[levelIndex] = data
}

// bestDuration picks the shorter of two round durations, ignoring zeroes,
// which mean "no round recorded".
func bestDuration(a, b time.Duration) time.Duration {
	if a <= 0 {
		return b
	}
	if b <= 0 || a < b {
		return a
	}
	return b
}

// IncreaseCoinCounter adds to the lifetime coin total.
func (f *File) IncreaseCoinCounter(coins int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data.TotalCoins += coins
}

// IncreaseTotalPlayTime adds to the lifetime play time.
func (f *File) IncreaseTotalPlayTime(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data.TotalPlaySeconds += d.Seconds()
}

// TotalCoins returns the lifetime coin total.
func (f *File) TotalCoins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.TotalCoins
}

// TotalPlayTime returns the lifetime play time.
func (f *File) TotalPlayTime() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Duration(f.data.TotalPlaySeconds * float64(time.Second))
}

// LevelSaveData returns the recorded result for a level, if any.
func (f *File) LevelSaveData(levelIndex int) (LevelSaveData, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data.Levels[levelIndex]
	return data, ok
}

// ReadFromDisk loads the save file. A missing file is not an error; the
// store simply starts empty.
func (f *File) ReadFromDisk() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read save file: %w", err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse save file: %w", err)
	}
	if data.Levels == nil {
		data.Levels = make(map[int]LevelSaveData)
	}

	f.mu.Lock()
	f.data = data
	f.mu.Unlock()
	return nil
}

// WriteToDisk persists the store, creating parent directories as needed.
func (f *File) WriteToDisk() error {
	f.mu.Lock()
	raw, err := json.MarshalIndent(f.data, "", "  ")
	f.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal save data: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create save directory: %w", err)
		}
	}

	if err := os.WriteFile(f.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}
