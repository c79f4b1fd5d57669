package scene

import (
	"fmt"
)

// Status is the position of a scene in its lifecycle.
type Status int

const (
	StatusPending Status = iota
	StatusInit
	StatusStart
	StatusCreating
	StatusRunning
	StatusPaused
	StatusSleeping
	StatusShutdown
	StatusDestroyed
)

var statusNames = map[Status]string{
	StatusPending:   "pending",
	StatusInit:      "init",
	StatusStart:     "start",
	StatusCreating:  "creating",
	StatusRunning:   "running",
	StatusPaused:    "paused",
	StatusSleeping:  "sleeping",
	StatusShutdown:  "shutdown",
	StatusDestroyed: "destroyed",
}

// String returns the lowercase name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText lets the status appear by name in JSON and logs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// steppable reports whether Update should step a scene in this status.
func (s Status) steppable() bool {
	return s > StatusStart && s <= StatusRunning
}
