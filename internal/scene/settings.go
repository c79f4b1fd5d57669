package scene

import (
	"time"
)

// Data is the free-form payload handed to start, pause, sleep and friends.
type Data map[string]interface{}

// Settings is the mutable per-scene state tracked by Systems.
type Settings struct {
	Key     string `json:"key"`
	Status  Status `json:"status"`
	Active  bool   `json:"active"`
	Visible bool   `json:"visible"`
	Booted  bool   `json:"booted"`

	// IsTransition is set on a scene that was started by a transition and
	// has not yet received transitioncomplete.
	IsTransition       bool          `json:"is_transition"`
	TransitionFrom     string        `json:"transition_from,omitempty"`
	TransitionDuration time.Duration `json:"transition_duration,omitempty"`
	// TransitionOut is set on the scene being transitioned away from.
	TransitionOut bool `json:"transition_out"`

	Data Data `json:"data,omitempty"`
}
