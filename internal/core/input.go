package core

// Action is a semantic command from the viewer, independent of the key
// that produced it.
type Action int

const (
	ActionNone      Action = iota
	ActionPause            // P, Space - pause/unpause the simulation
	ActionRestart          // R - start a fresh run
	ActionQuit             // Q, Ctrl+C - exit
	ActionNextLevel        // N - skip to the next campaign level
	ActionFail             // F - force the current level to fail
	ActionSpawn            // S - spawn a random formation now
	ActionFaster           // + - double the simulation speed
	ActionSlower           // - - halve the simulation speed
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	case ActionNextLevel:
		return "NextLevel"
	case ActionFail:
		return "Fail"
	case ActionSpawn:
		return "Spawn"
	case ActionFaster:
		return "Faster"
	case ActionSlower:
		return "Slower"
	default:
		return "Unknown"
	}
}

// InputFrame holds the actions triggered during one simulation tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	clear(f.Actions)
}
