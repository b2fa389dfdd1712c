package xboxjoy

import (
	"fmt"
	"math"
)

// AxisClass selects the threshold policy applied to an axis.
type AxisClass uint8

const (
	// StickAxis rests at 0 and reports when |value| > Deadzone.
	StickAxis AxisClass = iota
	// TriggerAxis rests near -1 and reports when value > TriggerThreshold.
	TriggerAxis
)

func (c AxisClass) String() string {
	if c == TriggerAxis {
		return "trigger"
	}
	return "stick"
}

const (
	DefaultDeadzone         = 0.1
	DefaultTriggerThreshold = -0.9
)

// DiffConfig holds the axis noise thresholds used by Diff.
type DiffConfig struct {
	Deadzone         float64
	TriggerThreshold float64

	// Classes maps axis index to class. Axes missing from the map use
	// Fallback.
	Classes  map[int]AxisClass
	Fallback AxisClass
}

// DefaultDiffConfig returns the Xbox layout: both sticks (axes 0, 1, 3 and
// 4) are stick axes, everything else is treated as a trigger.
func DefaultDiffConfig() DiffConfig {
	return DiffConfig{
		Deadzone:         DefaultDeadzone,
		TriggerThreshold: DefaultTriggerThreshold,
		Classes: map[int]AxisClass{
			0: StickAxis,
			1: StickAxis,
			3: StickAxis,
			4: StickAxis,
		},
		Fallback: TriggerAxis,
	}
}

// ClassOf returns the class of axis i.
func (c DiffConfig) ClassOf(i int) AxisClass {
	if class, ok := c.Classes[i]; ok {
		return class
	}
	return c.Fallback
}

func (c DiffConfig) pastThreshold(i int, value float64) bool {
	if c.ClassOf(i) == TriggerAxis {
		return value > c.TriggerThreshold
	}
	return math.Abs(value) > c.Deadzone
}

// Diff compares two consecutive snapshots and returns the events for the
// current tick: button transitions, then axes past their threshold, then
// non-centered hats, each in ascending index order. Buttons are
// edge-triggered; axes and hats fire on every tick the condition holds.
//
// Both snapshots must come from the same layout.
func Diff(previous, current Snapshot, cfg DiffConfig) ([]InputEvent, error) {
	if err := sameRanges(previous, current); err != nil {
		return nil, err
	}

	var events []InputEvent

	for i, pressed := range current.Buttons {
		if pressed == previous.Buttons[i] {
			continue
		}
		t := ButtonReleased
		if pressed {
			t = ButtonPressed
		}
		events = append(events, InputEvent{Type: t, Index: i})
	}

	for i, value := range current.Axes {
		if cfg.pastThreshold(i, value) {
			events = append(events, InputEvent{Type: AxisMoved, Index: i, Value: value})
		}
	}

	for i, hat := range current.Hats {
		if !hat.Centered() {
			events = append(events, InputEvent{Type: HatMoved, Index: i, Hat: hat})
		}
	}

	return events, nil
}

func sameRanges(previous, current Snapshot) error {
	switch {
	case len(previous.Buttons) != len(current.Buttons):
		return fmt.Errorf(errLayoutMismatch, ErrInvariantViolation, ButtonKind, len(previous.Buttons), len(current.Buttons))
	case len(previous.Axes) != len(current.Axes):
		return fmt.Errorf(errLayoutMismatch, ErrInvariantViolation, AxisKind, len(previous.Axes), len(current.Axes))
	case len(previous.Hats) != len(current.Hats):
		return fmt.Errorf(errLayoutMismatch, ErrInvariantViolation, HatKind, len(previous.Hats), len(current.Hats))
	}
	return nil
}
