package plugin

import (
	"errors"
)

var (
	// ErrNilHost is returned when a scene plugin is constructed without a host.
	ErrNilHost = errors.New("scene plugin: host is nil")
	// ErrNilSystems is returned when the host exposes no systems registry.
	ErrNilSystems = errors.New("scene plugin: host has no systems")
	// ErrNilEvents is returned when the host's systems have no event source.
	ErrNilEvents = errors.New("scene plugin: systems have no event source")

	ErrEmptyKey       = errors.New("plugin key is empty")
	ErrNilFactory     = errors.New("plugin factory is nil")
	ErrDuplicateKey   = errors.New("plugin key is already registered")
	ErrPluginNotFound = errors.New("plugin not found")
	ErrNotBooted      = errors.New("plugin manager not booted")
	ErrAlreadyBooted  = errors.New("plugin manager already booted")
)
