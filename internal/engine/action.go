package engine

// Action is a single movement intent, decoupled from the key that produced it.
type Action int

const (
	ActionNone Action = iota
	ActionMoveLeft
	ActionMoveRight
	ActionMoveDown
	ActionFlipClockwise
	ActionFlipCounterclockwise
	ActionHardDrop
	ActionHold
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionMoveLeft:
		return "MoveLeft"
	case ActionMoveRight:
		return "MoveRight"
	case ActionMoveDown:
		return "MoveDown"
	case ActionFlipClockwise:
		return "FlipClockwise"
	case ActionFlipCounterclockwise:
		return "FlipCounterclockwise"
	case ActionHardDrop:
		return "HardDrop"
	case ActionHold:
		return "Hold"
	default:
		return "Unknown"
	}
}

// Apply invokes the control method matching a.
// Returns false for ActionNone and unknown actions.
func Apply(c Controls, a Action) bool {
	switch a {
	case ActionMoveLeft:
		c.MoveLeft()
	case ActionMoveRight:
		c.MoveRight()
	case ActionMoveDown:
		c.MoveDown()
	case ActionFlipClockwise:
		c.FlipClockwise()
	case ActionFlipCounterclockwise:
		c.FlipCounterclockwise()
	case ActionHardDrop:
		c.HardDrop()
	case ActionHold:
		c.Hold()
	default:
		return false
	}
	return true
}
