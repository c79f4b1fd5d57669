package plugin

import (
	"fmt"

	"github.com/kiosk404/scenekit/pkg/logger"
)

// SlotConfig maps slot kind → desired plugin key.
// For example: {"recorder": "journal"} means only the "journal" plugin
// is installed into scenes for the "recorder" slot.
//
// Special values:
//   - "none": disable all plugins of this kind
//   - "": use the default plugin for this kind, or the first one installed
//     when the kind has no default
type SlotConfig map[string]string

// slotDefaults defines the default plugin for each slot kind.
var slotDefaults = map[string]string{
	"recorder": "journal",
	"stats":    "framestats",
}

// ResolveSlot determines whether a scene plugin should be installed based on
// its Kind and the slot configuration.
//
// Returns nil if the plugin is allowed; returns an error (with explanation)
// if the plugin should be skipped. Only one plugin per Kind is installed into
// a scene.
func ResolveSlot(def Definition, activeSlots map[string]string, config SlotConfig) error {
	kind := def.Kind
	if kind == "" || kind == "general" {
		return nil // No slot constraint.
	}

	desired := config[kind]
	if desired == "" {
		desired = slotDefaults[kind]
	}

	if desired == "none" {
		return fmt.Errorf("slot %q is disabled by configuration", kind)
	}

	if desired != "" && desired != def.Key {
		return fmt.Errorf("slot %q is assigned to %q, skipping %q", kind, desired, def.Key)
	}

	if occupant, occupied := activeSlots[kind]; occupied && occupant != def.Key {
		return fmt.Errorf("slot %q already occupied by %q, cannot load %q", kind, occupant, def.Key)
	}

	logger.Debug("[Plugin] slot %q assigned to plugin %q", kind, def.Key)
	return nil
}
