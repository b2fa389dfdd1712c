package xboxjoy

import (
	"errors"
	"testing"
)

func TestConnectQueriesLayoutOnce(t *testing.T) {
	d := newFakeDriver()
	d.add("pad0", xboxLayout)

	c, err := Connect(d, "pad0")
	if err != nil {
		t.Fatal(err)
	}
	if c.Layout() != xboxLayout {
		t.Errorf("layout %+v, want %+v", c.Layout(), xboxLayout)
	}
	if c.Handle() != "pad0" {
		t.Errorf("handle %q", c.Handle())
	}
}

func TestConnectUnknownDevice(t *testing.T) {
	d := newFakeDriver()
	if _, err := Connect(d, "pad9"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestConnectAllNoDevice(t *testing.T) {
	_, err := ConnectAll(newFakeDriver())
	if !errors.Is(err, ErrNoDeviceConnected) {
		t.Errorf("expected ErrNoDeviceConnected, got %v", err)
	}
}

func TestConnectAll(t *testing.T) {
	d := newFakeDriver()
	d.add("pad0", xboxLayout)
	d.add("pad2", Layout{Buttons: 4, Axes: 2})

	controllers, err := ConnectAll(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(controllers) != 2 || controllers[0].Handle() != "pad0" || controllers[1].Handle() != "pad2" {
		t.Errorf("unexpected controllers %v", controllers)
	}
}

func TestUpdateDispatchesAndTracksState(t *testing.T) {
	pressed := rest()
	pressed.Buttons[0] = true
	pressed.Axes[0] = 0.5
	pressed.Hats[0] = Hat{Y: -1}

	d := newFakeDriver()
	d.add("pad0", xboxLayout, rest(), pressed, pressed, rest())

	c, err := Connect(d, "pad0")
	if err != nil {
		t.Fatal(err)
	}

	var jumps, axis, hat int
	var released bool
	if err = c.RemapButton(0, func() { jumps++ }); err != nil {
		t.Fatal(err)
	}
	_ = c.RemapAxis(0, func(float64) { axis++ })
	_ = c.RemapHat(0, func(Hat) { hat++ })

	for i := 0; i < 4; i++ {
		if i == 3 {
			_ = c.Remap(ButtonKind, 0, func(ev InputEvent) error {
				released = ev.Type == ButtonReleased
				return nil
			})
		}
		if err = c.Update(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if i == 1 {
			if !c.Button(0) || c.Axis(0) != 0.5 || c.Hat(0) != (Hat{Y: -1}) {
				t.Errorf("state not tracked after tick %d", i)
			}
		}
	}

	// button is edge-triggered, axis and hat fire on both held ticks
	if jumps != 1 || axis != 2 || hat != 2 || !released {
		t.Errorf("jumps=%d axis=%d hat=%d released=%v", jumps, axis, hat, released)
	}
	if d.pumps != 4 {
		t.Errorf("expected 4 pumps, got %d", d.pumps)
	}
}

func TestUpdateEchoesEvents(t *testing.T) {
	logger, logs := observedLogger()

	cur := rest()
	cur.Buttons[0] = true
	cur.Axes[2] = 0.5

	d := newFakeDriver()
	d.add("pad0", xboxLayout, cur)

	c, err := Connect(d, "pad0", WithLogger(logger), WithEcho(true))
	if err != nil {
		t.Fatal(err)
	}
	if err = c.Update(); err != nil {
		t.Fatal(err)
	}

	for _, msg := range []string{"A pressed", "Left Trigger moved: 0.5"} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Errorf("expected log line %q", msg)
		}
	}
}

func TestUpdateLayoutMismatch(t *testing.T) {
	d := newFakeDriver()
	d.add("pad0", xboxLayout, NewSnapshot(Layout{Buttons: 2}))

	c, err := Connect(d, "pad0")
	if err != nil {
		t.Fatal(err)
	}
	if err = c.Update(); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
}

func TestUpdateReadError(t *testing.T) {
	readErr := errors.New("unplugged")
	d := newFakeDriver()
	d.add("pad0", xboxLayout)
	d.readErr["pad0"] = readErr

	c, err := Connect(d, "pad0")
	if err != nil {
		t.Fatal(err)
	}
	if err = c.Update(); !errors.Is(err, readErr) {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestCloseOnce(t *testing.T) {
	d := newFakeDriver()
	d.add("pad0", xboxLayout)

	c, err := Connect(d, "pad0")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err = c.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if n := d.closeCount("pad0"); n != 1 {
		t.Errorf("driver Close called %d times", n)
	}
	if err = c.Update(); !errors.Is(err, ErrControllerClosed) {
		t.Errorf("expected ErrControllerClosed, got %v", err)
	}
}

func TestAccessorDefaults(t *testing.T) {
	d := newFakeDriver()
	d.add("pad0", xboxLayout)

	c, err := Connect(d, "pad0")
	if err != nil {
		t.Fatal(err)
	}
	if c.Button(99) || c.Axis(-1) != 0 || !c.Hat(3).Centered() {
		t.Error("unknown indices should read as rest state")
	}
}
