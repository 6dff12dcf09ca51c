package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"partyracer/game/message"
)

func writeSceneFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene file: %v", err)
	}
}

func TestManagerLoadsScenesFromDir(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "canyon.json",
		`{"index":1,"name":"Canyon Run","layout":"standard","countdown_seconds":3}`)
	writeSceneFile(t, dir, "rooftops.json",
		`{"index":3,"name":"Rooftops","layout":"jump","countdown_seconds":3,"spawn":{"x":0,"y":1,"z":0}}`)
	writeSceneFile(t, dir, "notes.txt", "ignored")

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if m.Count() != 2 {
		t.Errorf("Expected 2 scenes, got %d", m.Count())
	}

	s, err := m.Get(3)
	if err != nil {
		t.Fatalf("Get(3) failed: %v", err)
	}
	if s.Layout != message.LayoutJump {
		t.Errorf("Expected jump layout, got %q", s.Layout)
	}
	if s.Spawn == nil || s.Spawn.Y != 1 {
		t.Errorf("Spawn not loaded: %+v", s.Spawn)
	}

	list := m.List()
	if len(list) != 2 || list[0].Index != 1 || list[1].Index != 3 {
		t.Errorf("List not ordered by index: %+v", list)
	}
}

func TestManagerMissingDir(t *testing.T) {
	if _, err := NewManager("/non/existent/scenes"); err == nil {
		t.Error("Expected error for missing scene directory")
	}
}

func TestManagerLookupMiss(t *testing.T) {
	m, err := NewManagerFromScenes([]Scene{
		{Index: 1, Name: "Canyon Run", Layout: message.LayoutStandard, CountdownSeconds: 3},
	})
	if err != nil {
		t.Fatalf("NewManagerFromScenes failed: %v", err)
	}

	if _, err := m.Get(9); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("Expected ErrSceneNotFound, got %v", err)
	}
}

func TestManagerRejectsDuplicateIndex(t *testing.T) {
	_, err := NewManagerFromScenes([]Scene{
		{Index: 1, Name: "A", Layout: message.LayoutStandard},
		{Index: 1, Name: "B", Layout: message.LayoutStandard},
	})
	if !errors.Is(err, ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene for duplicate index, got %v", err)
	}
}

func TestSceneValidate(t *testing.T) {
	tests := []struct {
		name  string
		scene Scene
		valid bool
	}{
		{"valid standard", Scene{Index: 1, Name: "A", Layout: "standard"}, true},
		{"valid jump", Scene{Index: 2, Name: "B", Layout: "jump", CountdownSeconds: 5}, true},
		{"menu index", Scene{Index: 0, Name: "Menu", Layout: "standard"}, false},
		{"negative index", Scene{Index: -2, Name: "A", Layout: "standard"}, false},
		{"missing name", Scene{Index: 1, Layout: "standard"}, false},
		{"unknown layout", Scene{Index: 1, Name: "A", Layout: "dance"}, false},
		{"negative countdown", Scene{Index: 1, Name: "A", Layout: "standard", CountdownSeconds: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scene.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestManagerRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "broken.json", `{"index":1,`)

	if _, err := NewManager(dir); err == nil {
		t.Error("Expected error for unparseable scene file")
	}
}
