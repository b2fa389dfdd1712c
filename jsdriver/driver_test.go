package jsdriver

import (
	"errors"
	"testing"

	"github.com/0xcafed00d/joystick"

	xboxjoy "github.com/anjp3030/xboxjoy-controller"
)

type fakeJoystick struct {
	state  joystick.State
	axes   int
	closed int
}

func (f *fakeJoystick) AxisCount() int { return f.axes }
func (f *fakeJoystick) ButtonCount() int { return 11 }
func (f *fakeJoystick) Name() string { return "Fake Pad" }
func (f *fakeJoystick) Read() (joystick.State, error) { return f.state, nil }
func (f *fakeJoystick) Close() { f.closed++ }

func newFake(ids ...int) (*Driver, map[int]*fakeJoystick) {
	return newFakeWith(nil, ids...)
}

func newFakeWith(opts []Option, ids ...int) (*Driver, map[int]*fakeJoystick) {
	pads := map[int]*fakeJoystick{}
	for _, id := range ids {
		pads[id] = &fakeJoystick{axes: 6}
	}
	d := NewWithOpener(nil, func(id int) (joystick.Joystick, error) {
		if js, ok := pads[id]; ok {
			return js, nil
		}
		return nil, errors.New("no such joystick")
	}, opts...)
	return d, pads
}

func TestEnumerate(t *testing.T) {
	d, pads := newFake(0, 2)

	handles, err := d.Enumerate()
	if err != nil {
		t.Fatal(err)
	}
	if len(handles) != 2 || handles[0] != "joystick0" || handles[1] != "joystick2" {
		t.Errorf("handles %v", handles)
	}
	// pads opened only to probe them are released again
	if pads[0].closed != 1 || pads[2].closed != 1 {
		t.Errorf("close counts after probe %d %d", pads[0].closed, pads[2].closed)
	}

	// a pad opened by Layout is reported without being closed by the probe
	if _, err = d.Layout("joystick0"); err != nil {
		t.Fatal(err)
	}
	if again, _ := d.Enumerate(); len(again) != 2 {
		t.Errorf("second enumerate gave %v", again)
	}
	if pads[0].closed != 1 || pads[2].closed != 2 {
		t.Errorf("close counts after second probe %d %d", pads[0].closed, pads[2].closed)
	}
}

func TestLayoutAndSnapshot(t *testing.T) {
	d, pads := newFake(1)
	pads[1].state = joystick.State{
		Buttons:  1<<0 | 1<<7,
		AxisData: []int{32767, -32767, 0, 40000, 0},
	}

	layout, err := d.Layout("joystick1")
	if err != nil {
		t.Fatal(err)
	}
	if layout.Buttons != 11 || layout.Axes != 6 || layout.Hats != 0 || layout.Model != "Fake Pad" {
		t.Errorf("layout %+v", layout)
	}

	s, err := d.ReadSnapshot("joystick1")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Buttons[0] || !s.Buttons[7] || s.Buttons[1] {
		t.Errorf("buttons %v", s.Buttons)
	}
	// AxisData is one short of AxisCount, the missing axis reads as 0
	want := []float64{1, -1, 0, 1, 0, 0}
	for i := range want {
		if s.Axes[i] != want[i] {
			t.Errorf("axes %v, want %v", s.Axes, want)
			break
		}
	}
}

func TestUnknownHandle(t *testing.T) {
	d, _ := newFake()
	for _, h := range []xboxjoy.Handle{"joystick3", "sdl0", "joystickX"} {
		if _, err := d.Layout(h); !errors.Is(err, xboxjoy.ErrDeviceNotFound) {
			t.Errorf("Layout(%s): expected ErrDeviceNotFound, got %v", h, err)
		}
	}
}

func TestCloseAndShutdown(t *testing.T) {
	d, pads := newFake(0, 1)
	for _, h := range []xboxjoy.Handle{"joystick0", "joystick1"} {
		if _, err := d.Layout(h); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.Close("joystick0"); err != nil {
		t.Fatal(err)
	}
	if err := d.Close("joystick0"); !errors.Is(err, xboxjoy.ErrDeviceNotFound) {
		t.Errorf("second close: %v", err)
	}
	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if pads[0].closed != 1 || pads[1].closed != 1 {
		t.Errorf("close counts %d %d", pads[0].closed, pads[1].closed)
	}
	if _, err := d.Enumerate(); !errors.Is(err, xboxjoy.ErrDriverClosed) {
		t.Errorf("expected ErrDriverClosed, got %v", err)
	}
}

func TestControllerOverDriver(t *testing.T) {
	d, pads := newFake(0)

	c, err := xboxjoy.Connect(d, "joystick0")
	if err != nil {
		t.Fatal(err)
	}
	pressed := 0
	_ = c.RemapButton(2, func() { pressed++ })

	pads[0].state.Buttons = 1 << 2
	if err = c.Update(); err != nil {
		t.Fatal(err)
	}
	if err = c.Update(); err != nil {
		t.Fatal(err)
	}
	if pressed != 1 {
		t.Errorf("pressed %d times", pressed)
	}
	if err = c.Close(); err != nil {
		t.Fatal(err)
	}
	if pads[0].closed != 1 {
		t.Error("pad not closed")
	}
}

// xpadAtRest is an 8-axis Xbox pad as the joystick package reports it on
// Linux: triggers at -32767 and the d-pad as axes 6 and 7.
func xpadAtRest() *fakeJoystick {
	return &fakeJoystick{
		axes:  8,
		state: joystick.State{AxisData: []int{0, 0, -32767, 0, 0, -32767, 0, 0}},
	}
}

func TestDpadAxesFoldIntoHat(t *testing.T) {
	d, pads := newFake()
	pads[0] = xpadAtRest()

	layout, err := d.Layout("joystick0")
	if err != nil {
		t.Fatal(err)
	}
	if layout.Axes != 6 || layout.Hats != 1 {
		t.Fatalf("layout %+v, want 6 axes and 1 hat", layout)
	}

	pads[0].state.AxisData = []int{0, 0, -32767, 0, 0, -32767, -32767, -32767}
	s, err := d.ReadSnapshot("joystick0")
	if err != nil {
		t.Fatal(err)
	}
	if s.Hats[0] != (xboxjoy.Hat{X: -1, Y: 1}) {
		t.Errorf("hat %v, want left and up", s.Hats[0])
	}
	if len(s.Axes) != 6 || s.Axes[2] != -1 || s.Axes[5] != -1 {
		t.Errorf("axes %v", s.Axes)
	}
}

func TestPadAtRestIsSilent(t *testing.T) {
	d, pads := newFake()
	pads[0] = xpadAtRest()

	c, err := xboxjoy.Connect(d, "joystick0")
	if err != nil {
		t.Fatal(err)
	}

	var fired []int
	for i := 0; i < c.Layout().Axes; i++ {
		if err = c.RemapAxis(i, func(float64) { fired = append(fired, i) }); err != nil {
			t.Fatal(err)
		}
	}
	hats := 0
	if err = c.RemapHat(0, func(xboxjoy.Hat) { hats++ }); err != nil {
		t.Fatal(err)
	}

	for tick := 0; tick < 3; tick++ {
		if err = c.Update(); err != nil {
			t.Fatal(err)
		}
	}
	if len(fired) != 0 || hats != 0 {
		t.Errorf("pad at rest fired axes %v and %d hat events", fired, hats)
	}
}

func TestWithoutHatMapper(t *testing.T) {
	d, pads := newFakeWith([]Option{WithHatMapper(nil)})
	pads[0] = xpadAtRest()

	layout, err := d.Layout("joystick0")
	if err != nil {
		t.Fatal(err)
	}
	if layout.Axes != 8 || layout.Hats != 0 {
		t.Errorf("layout %+v, want 8 axes and no hats", layout)
	}
}

func TestHatMapperOutOfRange(t *testing.T) {
	mapper := func(int) []HatAxes { return []HatAxes{{X: 4, Y: 9}} }
	d, pads := newFakeWith([]Option{WithHatMapper(mapper)}, 0)

	layout, err := d.Layout("joystick0")
	if err != nil {
		t.Fatal(err)
	}
	if pads[0].axes != 6 || layout.Axes != 6 || layout.Hats != 0 {
		t.Errorf("layout %+v", layout)
	}
}
