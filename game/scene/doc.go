// Package scene provides the registry of loadable scenes for the host game
// instance.
//
// Scenes are defined as JSON files in a directory, one file per scene:
//
//	{
//	  "index": 2,
//	  "name": "Canyon Run",
//	  "layout": "standard",
//	  "countdown_seconds": 3,
//	  "spawn": {"x": 0, "y": 1, "z": 0}
//	}
//
// Index 0 is reserved for the main menu and needs no definition file; every
// playable scene uses a positive index. The layout names which gamepad
// layout the phones present for that scene.
//
// The Manager loads and validates all definitions up front and serves
// lookups by index from an RWMutex-guarded cache. A lookup miss is
// ErrSceneNotFound, which the session controller treats as an invalid load
// target: logged, aborted, no state change.
package scene
