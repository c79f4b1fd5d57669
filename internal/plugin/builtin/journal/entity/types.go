package entity

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded lifecycle notification of a scene.
type Entry struct {
	ID     string    `json:"id"`
	Scene  string    `json:"scene"`
	Event  string    `json:"event"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	// Data carries the payload of notifications that have one (start data,
	// transition source, viewport size).
	Data map[string]interface{} `json:"data,omitempty"`
}

// NewEntry creates an entry stamped with a fresh ID and the current time.
func NewEntry(scene, event, status string) *Entry {
	return &Entry{
		ID:     uuid.NewString(),
		Scene:  scene,
		Event:  event,
		Status: status,
		At:     time.Now(),
	}
}
