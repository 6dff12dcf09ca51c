package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"partyracer/game/message"
	"partyracer/game/save"
	"partyracer/game/scene"
)

// phase is the controller's top-level state.
type phase int

const (
	phaseMainMenu phase = iota
	phaseLoading
	phaseInLevel
)

// eventQueueSize bounds the controller's inbox. Events beyond it are
// dropped with a warning; the protocol tolerates lost player actions.
const eventQueueSize = 256

// Controller is the host-side game-flow state machine. Construct with
// NewController, feed it with Dispatch, and drive it with Run.
type Controller struct {
	transport Transport
	scenes    *scene.Manager
	loader    SceneLoader
	stage     Stage
	saves     *save.File
	logger    *zap.Logger

	queue chan Event

	// Everything below belongs to the event loop goroutine.
	ctx            context.Context
	phase          phase
	currentScene   *scene.Scene
	loading        bool
	generation     int
	roster         Roster
	paused         bool
	pausedBy       message.PlayerData
	car            Car
	levelStartedAt time.Time
}

// NewController wires the state machine to its collaborators. saves may be
// nil when the host has no save file configured.
func NewController(transport Transport, scenes *scene.Manager, loader SceneLoader, stage Stage, saves *save.File, logger *zap.Logger) *Controller {
	return &Controller{
		transport: transport,
		scenes:    scenes,
		loader:    loader,
		stage:     stage,
		saves:     saves,
		logger:    logger,
		queue:     make(chan Event, eventQueueSize),
		ctx:       context.Background(),
	}
}

// Dispatch queues an event for processing. Non-blocking: if the queue is
// full the event is dropped, consistent with the protocol's drop-over-queue
// stance.
func (c *Controller) Dispatch(ev Event) {
	select {
	case c.queue <- ev:
	default:
		c.logger.Warn("Event queue full, dropping event")
	}
}

// Run drains the event queue until the context is cancelled, processing
// one event at a time in arrival order.
func (c *Controller) Run(ctx context.Context) {
	c.ctx = ctx
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.queue:
			c.handleEvent(ev)
		}
	}
}

// handleEvent applies one event to the machine. Runs on the event loop
// goroutine only.
func (c *Controller) handleEvent(ev Event) {
	switch e := ev.(type) {
	case LevelStartRequested:
		if c.loading || c.inLevel() {
			return
		}
		c.requestScene(e.Level)

	case MainMenuRequested:
		if c.loading || !c.inLevel() {
			return
		}
		if c.paused && !e.Player.SameIdentity(c.pausedBy) {
			return
		}
		c.requestScene(scene.MenuIndex)

	case PlayerJoined:
		if c.loading || !c.inLevel() {
			return
		}
		c.roster.AddSpectator(e.Player)
		c.transport.SendLevelStarted(e.Player.ID, c.currentScene.Index, c.currentScene.Layout)
		c.transport.SendButtonsEnabled(e.Player.ID, message.Buttons(), false)

	case PlayerLeft:
		if c.loading || !c.inLevel() {
			return
		}
		c.roster.Remove(e.Player)
		if c.roster.ActiveCount() < 1 {
			c.requestScene(scene.MenuIndex)
			return
		}
		c.applyButtonLayout()
		if c.paused && e.Player.SameIdentity(c.pausedBy) {
			c.unpause()
		}

	case PauseRequested:
		if !c.loading && c.inLevel() && !c.paused && c.roster.IsActivePlayer(e.Player) {
			c.pause(e.Player)
		}

	case UnpauseRequested:
		// Accepted even while a load is in flight; scene entry clears
		// pause state regardless.
		if c.paused && c.pausedBy.SameIdentity(e.Player) {
			c.unpause()
		}

	case PlayerDied:
		c.recordRoundEnd(e.Coins)

	case sceneLoaded:
		c.finishLoad(e)

	case countdownFinished:
		// Stale continuations from an abandoned level are dropped.
		if e.Generation != c.generation || !c.inLevel() {
			return
		}
		if c.car != nil {
			c.car.SetInputBlocked(false)
		}
		c.stage.StartLevelTimer()
		c.levelStartedAt = time.Now()
	}
}

// requestScene begins an asynchronous load. A load already in flight makes
// this a silent no-op; an index with no registered scene is logged and
// aborted with no state change.
func (c *Controller) requestScene(index int) {
	if c.loading {
		return
	}

	var target *scene.Scene
	if index != scene.MenuIndex {
		s, err := c.scenes.Get(index)
		if err != nil {
			c.logger.Error("Invalid scene index", zap.Int("scene", index), zap.Error(err))
			return
		}
		target = s
	}

	c.loading = true
	c.phase = phaseLoading
	c.generation++

	go func() {
		err := c.loader.Load(c.ctx, index)
		c.Dispatch(sceneLoaded{Index: index, Target: target, Err: err})
	}()
}

// finishLoad completes a scene transition: roster partition, layout
// assignment, and the spawn/countdown sequence for levels; menu
// housekeeping otherwise.
func (c *Controller) finishLoad(e sceneLoaded) {
	c.loading = false

	if e.Err != nil {
		c.logger.Error("Scene load failed", zap.Int("scene", e.Index), zap.Error(e.Err))
		if c.currentScene != nil {
			c.phase = phaseInLevel
		} else {
			c.phase = phaseMainMenu
		}
		return
	}

	if e.Index == scene.MenuIndex {
		c.enterMainMenu()
		return
	}
	c.enterLevel(e.Target)
}

// enterMainMenu resets the per-level state and announces the menu.
func (c *Controller) enterMainMenu() {
	c.phase = phaseMainMenu
	c.currentScene = nil
	c.car = nil
	c.roster.Reset()
	if c.paused {
		c.unpause()
	}
	c.transport.SendMainMenuOpened()
	c.logger.Info("Entered main menu")
}

// enterLevel performs the on-level-entered sequence: announce the level,
// partition the connected players, hand out buttons, then spawn the car
// input-blocked behind the countdown.
func (c *Controller) enterLevel(target *scene.Scene) {
	c.phase = phaseInLevel
	c.currentScene = target

	c.transport.ResetButtonsPressed()
	c.transport.SendLevelStarted(message.BroadcastID, target.Index, target.Layout)

	c.roster.Reset()
	for _, p := range c.transport.ConnectedPlayers() {
		c.roster.Add(p)
	}

	if c.roster.ActiveCount() > 0 {
		c.applyButtonLayout()
		for _, spectator := range c.roster.Spectators() {
			c.transport.SendButtonsEnabled(spectator.ID, message.Buttons(), false)
		}
	}

	c.spawnCarAndResume(target)

	// An empty level is pointless; head straight back to the menu. The
	// generation bump from this request also cancels the countdown armed
	// above.
	if c.roster.ActiveCount() == 0 {
		c.requestScene(scene.MenuIndex)
	}

	c.logger.Info("Level started",
		zap.Int("scene", target.Index),
		zap.Int("players", c.roster.ActiveCount()),
		zap.Int("spectators", c.roster.SpectatorCount()))
}

// spawnCarAndResume spawns the car with input blocked and arms the
// countdown that will unblock it.
func (c *Controller) spawnCarAndResume(target *scene.Scene) {
	car, err := c.stage.SpawnCar(target.Spawn)
	if err != nil {
		c.logger.Error("Car spawn failed, continuing without car", zap.Error(err))
		car = nil
	}
	c.car = car
	c.levelStartedAt = time.Time{}

	if car != nil {
		car.SetOnDestroyed(func(coins int) {
			c.Dispatch(PlayerDied{Coins: coins})
		})
		car.SetInputBlocked(true)
	}

	if c.transport.Connected() {
		c.unpause()
	}

	gen := c.generation
	countdown := time.Duration(target.CountdownSeconds) * time.Second
	time.AfterFunc(countdown, func() {
		c.Dispatch(countdownFinished{Generation: gen})
	})
}

// applyButtonLayout deals the button vocabulary round-robin across the
// active players and tells each phone which buttons it controls. With four
// players everyone gets one button; a lone player gets all four.
func (c *Controller) applyButtonLayout() {
	players := c.roster.ActivePlayers()
	buttons := message.Buttons()

	for i, p := range players {
		assigned := make([]string, 0, len(buttons))
		for j := i; j < len(buttons); j += len(players) {
			assigned = append(assigned, buttons[j])
		}
		c.transport.SendButtonsEnabled(p.ID, assigned, true)
	}
}

// pause freezes the session on behalf of a player.
func (c *Controller) pause(owner message.PlayerData) {
	c.paused = true
	c.pausedBy = owner
	c.stage.ShowPauseMenu(owner.Name)
	c.transport.SendPauseState(owner.ID, true)
	c.stage.SetTimeScale(0)
	c.logger.Info("Session paused", zap.Int("player", owner.ID), zap.String("name", owner.Name))
}

// unpause resumes the session and clears the pause owner.
func (c *Controller) unpause() {
	c.paused = false
	c.pausedBy = message.PlayerData{}
	c.stage.HidePauseMenu()
	c.transport.SendPauseState(message.BroadcastID, false)
	c.stage.SetTimeScale(1)
}

// recordRoundEnd captures the round's save data and forwards it to the
// save file, if one is configured.
func (c *Controller) recordRoundEnd(coins int) {
	if !c.inLevel() || c.loading {
		return
	}

	var duration time.Duration
	if !c.levelStartedAt.IsZero() {
		duration = time.Since(c.levelStartedAt)
	}

	if c.saves == nil {
		return
	}
	c.saves.SetLevelSaveData(c.currentScene.Index, save.LevelSaveData{
		CoinsCollected: coins,
		PlayDuration:   duration,
	})
	c.saves.IncreaseCoinCounter(coins)
	c.saves.IncreaseTotalPlayTime(duration)
	if err := c.saves.WriteToDisk(); err != nil {
		c.logger.Error("Failed to write save file", zap.Error(err))
	}
}

// inLevel reports whether a playable scene is active.
func (c *Controller) inLevel() bool {
	return c.phase == phaseInLevel
}
