package xboxjoy

import (
	"fmt"

	"go.uber.org/zap"
)

// Handler is invoked for each dispatched event it is mapped to. A returned
// error or a panic is reported as a *HandlerFailure and does not stop
// dispatch.
type Handler func(ev InputEvent) error

// ButtonAction adapts a plain callback to a Handler.
func ButtonAction(f func()) Handler {
	return func(InputEvent) error {
		f()
		return nil
	}
}

// AxisAction adapts a callback receiving the axis value to a Handler.
func AxisAction(f func(value float64)) Handler {
	return func(ev InputEvent) error {
		f(ev.Value)
		return nil
	}
}

// HatAction adapts a callback receiving the hat direction to a Handler.
func HatAction(f func(h Hat)) Handler {
	return func(ev InputEvent) error {
		f(ev.Hat)
		return nil
	}
}

func noop(InputEvent) error { return nil }

// Dispatcher owns the action table of one controller. It is not safe for
// concurrent use.
type Dispatcher struct {
	logger *zap.SugaredLogger
	layout Layout

	// one slot per index; nil means unmapped
	buttons []Handler
	axes    []Handler
	hats    []Handler
}

func NewDispatcher(layout Layout, logger *zap.SugaredLogger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Dispatcher{
		logger:  logger.Named("dispatcher"),
		layout:  layout,
		buttons: make([]Handler, layout.Buttons),
		axes:    make([]Handler, layout.Axes),
		hats:    make([]Handler, layout.Hats),
	}
}

func (d *Dispatcher) table(kind Kind) []Handler {
	switch kind {
	case ButtonKind:
		return d.buttons
	case AxisKind:
		return d.axes
	case HatKind:
		return d.hats
	default:
		return nil
	}
}

// Remap sets the handler for (kind, index), replacing any previous one. A
// nil handler restores the no-op default.
func (d *Dispatcher) Remap(kind Kind, index int, h Handler) error {
	t := d.table(kind)
	if index < 0 || index >= len(t) {
		return fmt.Errorf(errIndexOutOfRange, ErrIndexOutOfRange, kind, index, d.layout.count(kind))
	}
	t[index] = h
	return nil
}

func (d *Dispatcher) lookup(ev InputEvent) Handler {
	t := d.table(ev.Kind())
	if ev.Index < 0 || ev.Index >= len(t) || t[ev.Index] == nil {
		return noop
	}
	return t[ev.Index]
}

// Dispatch invokes the handler of every event in order and returns how many
// of them failed. Failures are logged and never abort the remaining events.
func (d *Dispatcher) Dispatch(events []InputEvent) (failed int) {
	for _, ev := range events {
		if err := invoke(d.lookup(ev), ev); err != nil {
			failed++
			d.logger.Errorw("Handler failed", "event", ev.String(), "error", err)
		}
	}
	return failed
}

func invoke(h Handler, ev InputEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerFailure{Event: ev, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if herr := h(ev); herr != nil {
		return &HandlerFailure{Event: ev, Err: herr}
	}
	return nil
}
