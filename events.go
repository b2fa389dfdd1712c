package xboxjoy

import "fmt"

// Kind is the class of control an event or a handler belongs to.
type Kind uint8

const (
	ButtonKind Kind = iota
	AxisKind
	HatKind
)

func (k Kind) String() string {
	switch k {
	case ButtonKind:
		return "Button"
	case AxisKind:
		return "Axis"
	case HatKind:
		return "Hat"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

type EventType uint8

const (
	ButtonPressed EventType = iota
	ButtonReleased
	AxisMoved
	HatMoved
)

func (t EventType) String() string {
	switch t {
	case ButtonPressed:
		return "ButtonPressed"
	case ButtonReleased:
		return "ButtonReleased"
	case AxisMoved:
		return "AxisMoved"
	case HatMoved:
		return "HatMoved"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// InputEvent is produced by Diff. Value is set for AxisMoved, Hat for
// HatMoved.
type InputEvent struct {
	Type  EventType
	Index int
	Value float64
	Hat   Hat
}

// Kind returns the control class the event is routed by.
func (e InputEvent) Kind() Kind {
	switch e.Type {
	case AxisMoved:
		return AxisKind
	case HatMoved:
		return HatKind
	default:
		return ButtonKind
	}
}

func (e InputEvent) String() string {
	switch e.Type {
	case AxisMoved:
		return fmt.Sprintf("%s(%d, %g)", e.Type, e.Index, e.Value)
	case HatMoved:
		return fmt.Sprintf("%s(%d, %s)", e.Type, e.Index, e.Hat)
	default:
		return fmt.Sprintf("%s(%d)", e.Type, e.Index)
	}
}

type DeviceEventType uint8

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceEvent reports hotplug activity from drivers that track it.
type DeviceEvent struct {
	Type   DeviceEventType
	Handle Handle
}
