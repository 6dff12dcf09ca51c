package session

import (
	"context"

	"partyracer/game/scene"
)

// SceneLoader performs the actual scene load. Load blocks until the scene
// is ready; the controller runs it on its own goroutine and allows exactly
// one load in flight. Loads are never cancelled once started.
type SceneLoader interface {
	Load(ctx context.Context, index int) error
}

// Car is the controllable vehicle spawned for the active players.
type Car interface {
	// SetInputBlocked gates whether player input reaches the car.
	SetInputBlocked(blocked bool)

	// SetOnDestroyed registers the end-of-round callback, invoked with the
	// coins collected during the round.
	SetOnDestroyed(fn func(coinsCollected int))
}

// Stage is the presentation and simulation boundary the controller drives:
// car spawning, pause UI, simulation time, the level timer. The rendering
// build supplies the real implementation; the headless host uses NopStage.
type Stage interface {
	// SpawnCar places the car at the given spawn, or at a degraded default
	// when the spawn is nil or unusable. Implementations should not fail
	// merely because no spawn point is configured.
	SpawnCar(spawn *scene.Spawn) (Car, error)

	// SetTimeScale freezes (0) or resumes (1) simulation time.
	SetTimeScale(scale float64)

	// ShowPauseMenu displays the pause indicator naming the pause owner.
	ShowPauseMenu(playerName string)

	// HidePauseMenu removes the pause indicator.
	HidePauseMenu()

	// StartLevelTimer begins timing the round once input unlocks.
	StartLevelTimer()
}

// NopStage is a Stage that does nothing. It backs the headless host mode.
type NopStage struct{}

// NopCar is the car spawned by NopStage.
type NopCar struct{}

func (NopCar) SetInputBlocked(bool) {}

func (NopCar) SetOnDestroyed(func(int)) {}

func (NopStage) SpawnCar(*scene.Spawn) (Car, error) { return NopCar{}, nil }

func (NopStage) SetTimeScale(float64) {}

func (NopStage) ShowPauseMenu(string) {}

func (NopStage) HidePauseMenu() {}

func (NopStage) StartLevelTimer() {}

// InstantLoader is a SceneLoader that completes immediately. It backs the
// headless host mode, where no assets exist to load.
type InstantLoader struct{}

func (InstantLoader) Load(ctx context.Context, index int) error { return nil }
