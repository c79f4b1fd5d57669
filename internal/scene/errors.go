package scene

import (
	"errors"
)

var (
	ErrAlreadyBooted  = errors.New("scene already booted")
	ErrNotBooted      = errors.New("scene not booted")
	ErrDestroyed      = errors.New("scene destroyed")
	ErrSceneNotFound  = errors.New("scene not found")
	ErrDuplicateScene = errors.New("scene key already exists")
	ErrEmptyKey       = errors.New("scene key is empty")
	ErrInvalidState   = errors.New("invalid scene state for operation")
	ErrTransitionBusy = errors.New("scene is already transitioning")
	ErrSelfTransition = errors.New("cannot transition a scene to itself")
)

// ErrPluginExists is returned when a plugin key is injected twice.
var ErrPluginExists = errors.New("plugin key already injected")
