package xboxjoy

import "fmt"

// Handle identifies one physical device within a driver.
type Handle string

// Layout holds the control counts of a gamepad. It is queried once at
// connect time and does not change while the handle is open.
type Layout struct {
	Model   string
	Buttons int
	Axes    int
	Hats    int
}

func (l Layout) count(kind Kind) int {
	switch kind {
	case ButtonKind:
		return l.Buttons
	case AxisKind:
		return l.Axes
	case HatKind:
		return l.Hats
	default:
		return 0
	}
}

// Hat is a d-pad direction. Both components are in {-1, 0, 1}; positive Y
// points up.
type Hat struct {
	X, Y int8
}

// Centered reports whether the hat is at rest.
func (h Hat) Centered() bool {
	return h.X == 0 && h.Y == 0
}

func (h Hat) String() string {
	return fmt.Sprintf("(%d, %d)", h.X, h.Y)
}

// Snapshot is the full raw state of a gamepad for one tick. Drivers hand
// out fresh slices each tick; nothing mutates a snapshot afterwards.
type Snapshot struct {
	Buttons []bool
	Axes    []float64
	Hats    []Hat
}

// NewSnapshot returns the all released, all zero state for layout.
func NewSnapshot(layout Layout) Snapshot {
	return Snapshot{
		Buttons: make([]bool, layout.Buttons),
		Axes:    make([]float64, layout.Axes),
		Hats:    make([]Hat, layout.Hats),
	}
}
