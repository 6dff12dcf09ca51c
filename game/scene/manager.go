package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"partyracer/game/message"
)

var (
	ErrSceneNotFound = errors.New("scene not found")
	ErrInvalidScene  = errors.New("invalid scene definition")
)

// MenuIndex is the reserved scene index of the main menu.
const MenuIndex = 0

// Spawn is a car spawn position within a scene.
type Spawn struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Scene describes one loadable scene.
type Scene struct {
	Index            int    `json:"index"`
	Name             string `json:"name"`
	Layout           string `json:"layout"`
	CountdownSeconds int    `json:"countdown_seconds"`
	Spawn            *Spawn `json:"spawn,omitempty"`
}

// Validate checks a single scene definition for internal consistency.
func (s *Scene) Validate() error {
	if s.Index <= MenuIndex {
		return fmt.Errorf("%w: index %d must be positive (0 is the main menu)", ErrInvalidScene, s.Index)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: scene %d has no name", ErrInvalidScene, s.Index)
	}
	switch s.Layout {
	case message.LayoutStandard, message.LayoutJump:
	default:
		return fmt.Errorf("%w: scene %d has unknown layout %q", ErrInvalidScene, s.Index, s.Layout)
	}
	if s.CountdownSeconds < 0 {
		return fmt.Errorf("%w: scene %d has negative countdown", ErrInvalidScene, s.Index)
	}
	return nil
}

// Manager serves scene definitions by index.
type Manager struct {
	dir string

	mu     sync.RWMutex
	scenes map[int]*Scene
}

// NewManager loads every scene definition in dir. It fails on a missing
// directory, an unparseable file, an invalid definition, or a duplicate
// index.
func NewManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("scene directory does not exist: %s", dir)
	}

	m := &Manager{dir: dir}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewManagerFromScenes builds a registry from in-memory definitions. Used
// by the headless host mode and tests.
func NewManagerFromScenes(scenes []Scene) (*Manager, error) {
	m := &Manager{scenes: make(map[int]*Scene)}
	for i := range scenes {
		s := scenes[i]
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.scenes[s.Index]; dup {
			return nil, fmt.Errorf("%w: duplicate scene index %d", ErrInvalidScene, s.Index)
		}
		m.scenes[s.Index] = &s
	}
	return m, nil
}

// Reload re-reads every definition file from the scene directory.
func (m *Manager) Reload() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read scene directory: %w", err)
	}

	scenes := make(map[int]*Scene)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read scene file %s: %w", entry.Name(), err)
		}

		var s Scene
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to parse scene file %s: %w", entry.Name(), err)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if _, dup := scenes[s.Index]; dup {
			return fmt.Errorf("%w: duplicate scene index %d in %s", ErrInvalidScene, s.Index, entry.Name())
		}
		scenes[s.Index] = &s
	}

	m.mu.Lock()
	m.scenes = scenes
	m.mu.Unlock()
	return nil
}

// Get returns the scene registered at index, or ErrSceneNotFound.
func (m *Manager) Get(index int) (*Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scenes[index]
	if !ok {
		return nil, ErrSceneNotFound
	}
	return s, nil
}

// List returns all scenes ordered by index.
func (m *Manager) List() []*Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result
}

// Count returns the number of registered scenes.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scenes)
}
