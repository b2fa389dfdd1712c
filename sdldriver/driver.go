// Package sdldriver reads gamepads through the SDL2 joystick subsystem.
package sdldriver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	xboxjoy "github.com/anjp3030/xboxjoy-controller"
)

const handlePrefix = "sdl"

// Driver owns SDL's joystick subsystem. All SDL calls are serialised.
type Driver struct {
	sync.Mutex
	logger *zap.SugaredLogger
	open   map[xboxjoy.Handle]*sdl.Joystick
	closed bool
}

// New initialises the SDL joystick subsystem.
func New(logger *zap.SugaredLogger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if err := sdl.Init(sdl.INIT_JOYSTICK); err != nil {
		return nil, fmt.Errorf("init sdl joystick: %w", err)
	}
	return &Driver{
		logger: logger.Named("sdl"),
		open:   map[xboxjoy.Handle]*sdl.Joystick{},
	}, nil
}

func (d *Driver) Enumerate() ([]xboxjoy.Handle, error) {
	d.Lock()
	defer d.Unlock()
	if d.closed {
		return nil, xboxjoy.ErrDriverClosed
	}

	var handles []xboxjoy.Handle
	for i := 0; i < sdl.NumJoysticks(); i++ {
		handles = append(handles, xboxjoy.Handle(handlePrefix+strconv.Itoa(i)))
	}
	return handles, nil
}

// joystick must be called with the lock held.
func (d *Driver) joystick(h xboxjoy.Handle) (*sdl.Joystick, error) {
	if d.closed {
		return nil, xboxjoy.ErrDriverClosed
	}
	if joy, ok := d.open[h]; ok {
		return joy, nil
	}

	index, err := parseHandle(h)
	if err != nil || index >= sdl.NumJoysticks() {
		return nil, fmt.Errorf("%w: handle '%s'", xboxjoy.ErrDeviceNotFound, h)
	}

	joy := sdl.JoystickOpen(index)
	if joy == nil {
		if err = sdl.GetError(); err == nil {
			err = errors.New("unknown sdl error")
		}
		return nil, fmt.Errorf("open %s: %w", h, err)
	}
	d.open[h] = joy
	d.logger.Debugw("Opened joystick", "handle", string(h), "name", joy.Name())
	return joy, nil
}

func parseHandle(h xboxjoy.Handle) (int, error) {
	s, ok := strings.CutPrefix(string(h), handlePrefix)
	if !ok {
		return 0, fmt.Errorf("not an sdl handle: %q", h)
	}
	return strconv.Atoi(s)
}

func (d *Driver) Layout(h xboxjoy.Handle) (xboxjoy.Layout, error) {
	d.Lock()
	defer d.Unlock()

	joy, err := d.joystick(h)
	if err != nil {
		return xboxjoy.Layout{}, err
	}
	return xboxjoy.Layout{
		Model:   joy.Name(),
		Buttons: joy.NumButtons(),
		Axes:    joy.NumAxes(),
		Hats:    joy.NumHats(),
	}, nil
}

// Pump refreshes the state of every open joystick.
func (d *Driver) Pump() {
	d.Lock()
	defer d.Unlock()
	if !d.closed {
		sdl.JoystickUpdate()
	}
}

func (d *Driver) ReadSnapshot(h xboxjoy.Handle) (xboxjoy.Snapshot, error) {
	d.Lock()
	defer d.Unlock()

	joy, err := d.joystick(h)
	if err != nil {
		return xboxjoy.Snapshot{}, err
	}
	if !joy.Attached() {
		return xboxjoy.Snapshot{}, fmt.Errorf("%w: handle '%s' detached", xboxjoy.ErrDeviceNotFound, h)
	}

	s := xboxjoy.Snapshot{
		Buttons: make([]bool, joy.NumButtons()),
		Axes:    make([]float64, joy.NumAxes()),
		Hats:    make([]xboxjoy.Hat, joy.NumHats()),
	}
	for i := range s.Buttons {
		s.Buttons[i] = joy.Button(i) != 0
	}
	for i := range s.Axes {
		s.Axes[i] = axisValue(joy.Axis(i))
	}
	for i := range s.Hats {
		s.Hats[i] = hatValue(joy.Hat(i))
	}
	return s, nil
}

func (d *Driver) Close(h xboxjoy.Handle) error {
	d.Lock()
	defer d.Unlock()

	joy, ok := d.open[h]
	if !ok {
		return fmt.Errorf("%w: handle '%s'", xboxjoy.ErrDeviceNotFound, h)
	}
	joy.Close()
	delete(d.open, h)
	return nil
}

// Shutdown closes every open joystick and quits SDL.
func (d *Driver) Shutdown() error {
	d.Lock()
	defer d.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	for _, joy := range d.open {
		joy.Close()
	}
	d.open = nil
	sdl.QuitSubSystem(sdl.INIT_JOYSTICK)
	sdl.Quit()
	return nil
}

func axisValue(v int16) float64 {
	if v < 0 {
		return float64(v) / 32768
	}
	return float64(v) / 32767
}

func hatValue(v byte) (h xboxjoy.Hat) {
	if v&sdl.HAT_UP != 0 {
		h.Y = 1
	}
	if v&sdl.HAT_DOWN != 0 {
		h.Y = -1
	}
	if v&sdl.HAT_RIGHT != 0 {
		h.X = 1
	}
	if v&sdl.HAT_LEFT != 0 {
		h.X = -1
	}
	return h
}
