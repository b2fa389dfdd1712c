package xboxjoy

import (
	"fmt"
	"strconv"
)

// Names maps control indices to display names. Missing entries render as
// "{Kind} {index}".
type Names struct {
	Buttons map[int]string
	Axes    map[int]string
	Hats    map[int]string
}

// XboxNames returns the names of an Xbox 360 style pad as reported by SDL.
func XboxNames() Names {
	return Names{
		Buttons: map[int]string{
			0:  "A",
			1:  "B",
			2:  "X",
			3:  "Y",
			4:  "LB",
			5:  "RB",
			6:  "Back",
			7:  "Start",
			8:  "Xbox",
			9:  "Left Stick",
			10: "Right Stick",
		},
		Axes: map[int]string{
			0: "Left Stick X",
			1: "Left Stick Y",
			2: "Left Trigger",
			3: "Right Stick X",
			4: "Right Stick Y",
			5: "Right Trigger",
		},
		Hats: map[int]string{
			0: "D-pad",
		},
	}
}

// Name returns the display name of a control.
func (n Names) Name(kind Kind, index int) string {
	var table map[int]string
	switch kind {
	case ButtonKind:
		table = n.Buttons
	case AxisKind:
		table = n.Axes
	case HatKind:
		table = n.Hats
	}
	if name, ok := table[index]; ok {
		return name
	}
	return fmt.Sprintf("%s %d", kind, index)
}

// Merge returns n with the entries of other laid over it.
func (n Names) Merge(other Names) Names {
	return Names{
		Buttons: mergeNames(n.Buttons, other.Buttons),
		Axes:    mergeNames(n.Axes, other.Axes),
		Hats:    mergeNames(n.Hats, other.Hats),
	}
}

func mergeNames(base, over map[int]string) map[int]string {
	dest := make(map[int]string, len(base)+len(over))
	for k, v := range base {
		dest[k] = v
	}
	for k, v := range over {
		dest[k] = v
	}
	return dest
}

// Describe renders an event as a log line, e.g. "A pressed" or
// "Left Stick X moved: 0.5".
func (n Names) Describe(ev InputEvent) string {
	name := n.Name(ev.Kind(), ev.Index)
	switch ev.Type {
	case ButtonPressed:
		return name + " pressed"
	case ButtonReleased:
		return name + " released"
	case AxisMoved:
		return name + " moved: " + strconv.FormatFloat(ev.Value, 'g', -1, 64)
	case HatMoved:
		return name + " moved: " + ev.Hat.String()
	default:
		return ev.String()
	}
}
