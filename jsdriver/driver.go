// Package jsdriver reads gamepads through github.com/0xcafed00d/joystick,
// which works on Linux, Windows and macOS. The library reports a d-pad as a
// pair of axes; the driver folds configured pairs back into hats.
package jsdriver

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/0xcafed00d/joystick"
	"go.uber.org/zap"

	xboxjoy "github.com/anjp3030/xboxjoy-controller"
)

const (
	handlePrefix = "joystick"

	// MaxDevices is how many joystick ids Enumerate probes.
	MaxDevices = 8

	axisMax = 32767
)

// Opener matches joystick.Open.
type Opener func(id int) (joystick.Joystick, error)

// HatAxes names the two raw axes that make up one hat.
type HatAxes struct {
	X, Y int
}

// HatMapper picks the hat axis pairs of a pad from its raw axis count.
type HatMapper func(axisCount int) []HatAxes

// DefaultHatMapper treats axes 6 and 7 of an 8-axis pad as the d-pad, which
// is how xpad and XInput style pads report it.
func DefaultHatMapper(axisCount int) []HatAxes {
	if axisCount == 8 {
		return []HatAxes{{X: 6, Y: 7}}
	}
	return nil
}

type Option func(d *Driver)

// WithHatMapper replaces DefaultHatMapper. A nil mapper reports every axis
// as an axis.
func WithHatMapper(m HatMapper) Option {
	return func(d *Driver) {
		d.hatMapper = m
	}
}

// device is an open joystick with its raw axes split into plain axes and hats.
type device struct {
	js   joystick.Joystick
	axes []int
	hats []HatAxes
}

func (d *Driver) newDevice(js joystick.Joystick) *device {
	p := &device{js: js}
	count := js.AxisCount()
	if d.hatMapper != nil {
		for _, ha := range d.hatMapper(count) {
			if ha.X < 0 || ha.X >= count || ha.Y < 0 || ha.Y >= count || ha.X == ha.Y {
				d.logger.Warnw("Ignoring hat axes outside the pad", "x", ha.X, "y", ha.Y, "axes", count)
				continue
			}
			p.hats = append(p.hats, ha)
		}
	}
	for i := 0; i < count; i++ {
		if !slices.ContainsFunc(p.hats, func(ha HatAxes) bool { return ha.X == i || ha.Y == i }) {
			p.axes = append(p.axes, i)
		}
	}
	return p
}

func (p *device) layout() xboxjoy.Layout {
	return xboxjoy.Layout{
		Model:   p.js.Name(),
		Buttons: p.js.ButtonCount(),
		Axes:    len(p.axes),
		Hats:    len(p.hats),
	}
}

type Driver struct {
	sync.Mutex
	logger    *zap.SugaredLogger
	open      Opener
	hatMapper HatMapper
	pads      map[xboxjoy.Handle]*device
	closed    bool
}

func New(logger *zap.SugaredLogger, opts ...Option) *Driver {
	return NewWithOpener(logger, joystick.Open, opts...)
}

// NewWithOpener builds a driver on a custom open function.
func NewWithOpener(logger *zap.SugaredLogger, open Opener, opts ...Option) *Driver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	d := &Driver{
		logger:    logger.Named("joystick"),
		open:      open,
		hatMapper: DefaultHatMapper,
		pads:      map[xboxjoy.Handle]*device{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enumerate probes ids [0, MaxDevices). Pads opened only for the probe are
// closed again; Layout or ReadSnapshot reopens them on demand.
func (d *Driver) Enumerate() ([]xboxjoy.Handle, error) {
	d.Lock()
	defer d.Unlock()
	if d.closed {
		return nil, xboxjoy.ErrDriverClosed
	}

	var handles []xboxjoy.Handle
	for id := 0; id < MaxDevices; id++ {
		h := handleOf(id)
		if _, ok := d.pads[h]; ok {
			handles = append(handles, h)
			continue
		}
		js, err := d.open(id)
		if err != nil {
			continue
		}
		d.logger.Debugw("Found joystick", "handle", string(h), "name", js.Name())
		js.Close()
		handles = append(handles, h)
	}
	return handles, nil
}

func handleOf(id int) xboxjoy.Handle {
	return xboxjoy.Handle(handlePrefix + strconv.Itoa(id))
}

// pad must be called with the lock held.
func (d *Driver) pad(h xboxjoy.Handle) (*device, error) {
	if d.closed {
		return nil, xboxjoy.ErrDriverClosed
	}
	if p, ok := d.pads[h]; ok {
		return p, nil
	}

	id, err := strconv.Atoi(strings.TrimPrefix(string(h), handlePrefix))
	if err != nil || !strings.HasPrefix(string(h), handlePrefix) {
		return nil, fmt.Errorf("%w: handle '%s'", xboxjoy.ErrDeviceNotFound, h)
	}
	js, err := d.open(id)
	if err != nil {
		return nil, fmt.Errorf("%w: handle '%s': %v", xboxjoy.ErrDeviceNotFound, h, err)
	}
	p := d.newDevice(js)
	d.pads[h] = p
	d.logger.Debugw("Opened joystick", "handle", string(h), "layout", p.layout())
	return p, nil
}

func (d *Driver) Layout(h xboxjoy.Handle) (xboxjoy.Layout, error) {
	d.Lock()
	defer d.Unlock()

	p, err := d.pad(h)
	if err != nil {
		return xboxjoy.Layout{}, err
	}
	return p.layout(), nil
}

// Pump is a no-op; the joystick package keeps its state current itself.
func (d *Driver) Pump() {}

func (d *Driver) ReadSnapshot(h xboxjoy.Handle) (xboxjoy.Snapshot, error) {
	d.Lock()
	p, err := d.pad(h)
	d.Unlock()
	if err != nil {
		return xboxjoy.Snapshot{}, err
	}

	state, err := p.js.Read()
	if err != nil {
		return xboxjoy.Snapshot{}, fmt.Errorf("read %s: %w", h, err)
	}
	return p.snapshotOf(state), nil
}

func (p *device) snapshotOf(state joystick.State) xboxjoy.Snapshot {
	s := xboxjoy.Snapshot{
		Buttons: make([]bool, p.js.ButtonCount()),
		Axes:    make([]float64, len(p.axes)),
		Hats:    make([]xboxjoy.Hat, len(p.hats)),
	}
	for i := range s.Buttons {
		if i < 32 {
			s.Buttons[i] = state.Buttons&(1<<uint(i)) != 0
		}
	}
	raw := func(i int) int {
		if i < len(state.AxisData) {
			return state.AxisData[i]
		}
		return 0
	}
	for i, src := range p.axes {
		s.Axes[i] = axisValue(raw(src))
	}
	// raw d-pad y grows downwards, hats report up as +1
	for i, ha := range p.hats {
		s.Hats[i] = xboxjoy.Hat{X: sign(raw(ha.X)), Y: -sign(raw(ha.Y))}
	}
	return s
}

func axisValue(v int) float64 {
	f := float64(v) / axisMax
	switch {
	case f > 1:
		return 1
	case f < -1:
		return -1
	default:
		return f
	}
}

func sign(v int) int8 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func (d *Driver) Close(h xboxjoy.Handle) error {
	d.Lock()
	defer d.Unlock()

	p, ok := d.pads[h]
	if !ok {
		return fmt.Errorf("%w: handle '%s'", xboxjoy.ErrDeviceNotFound, h)
	}
	p.js.Close()
	delete(d.pads, h)
	return nil
}

func (d *Driver) Shutdown() error {
	d.Lock()
	defer d.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	for _, p := range d.pads {
		p.js.Close()
	}
	d.pads = nil
	return nil
}
