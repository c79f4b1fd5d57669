package scene

// Lifecycle notifications emitted on a scene's event source. Every event
// passes the emitting *Systems as its first argument.
const (
	// EventBoot fires once, after plugins are installed into the scene.
	EventBoot = "boot"
	// EventStart fires when the scene starts. Args: sys.
	EventStart = "start"
	// EventReady fires right after start. Args: sys, data.
	EventReady = "ready"
	// EventCreate fires once the scene's Create callback has run. Args: sys.
	EventCreate = "create"

	// Per-frame notifications. Args: sys, time, delta (milliseconds).
	EventPreUpdate  = "preupdate"
	EventUpdate     = "update"
	EventPostUpdate = "postupdate"

	// EventResize args: sys, width, height.
	EventResize = "resize"

	// Pause/sleep notifications. Args: sys, data.
	EventPause  = "pause"
	EventResume = "resume"
	EventSleep  = "sleep"
	EventWake   = "wake"

	// Transition notifications. Args: sys, other scene key, duration.
	EventTransitionInit     = "transitioninit"
	EventTransitionStart    = "transitionstart"
	EventTransitionComplete = "transitioncomplete"
	EventTransitionOut      = "transitionout"

	// EventShutdown args: sys, data.
	EventShutdown = "shutdown"
	// EventDestroy fires once before the event source is torn down. Args: sys.
	EventDestroy = "destroy"
)

// LifecycleEvents lists the notifications a plugin may subscribe to from its
// boot hook, in rough emission order.
var LifecycleEvents = []string{
	EventStart,
	EventReady,
	EventCreate,
	EventPreUpdate,
	EventUpdate,
	EventPostUpdate,
	EventResize,
	EventPause,
	EventResume,
	EventSleep,
	EventWake,
	EventTransitionInit,
	EventTransitionStart,
	EventTransitionComplete,
	EventTransitionOut,
	EventShutdown,
	EventDestroy,
}

// IsFrameEvent reports whether event fires on every step.
func IsFrameEvent(event string) bool {
	switch event {
	case EventPreUpdate, EventUpdate, EventPostUpdate:
		return true
	}
	return false
}
