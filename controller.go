package xboxjoy

import (
	"fmt"

	"go.uber.org/zap"
)

// Controller is one connected gamepad. Update, Remap and Close must be
// called from the goroutine that owns the controller.
type Controller struct {
	logger     *zap.SugaredLogger
	driver     Driver
	handle     Handle
	layout     Layout
	diffConfig DiffConfig
	names      Names
	echo       bool
	dispatcher *Dispatcher
	previous   Snapshot
	closed     bool
}

type options struct {
	logger     *zap.SugaredLogger
	diffConfig DiffConfig
	names      Names
	echo       bool
}

type Option func(o *options)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithDiffConfig(cfg DiffConfig) Option {
	return func(o *options) {
		o.diffConfig = cfg
	}
}

func WithNames(names Names) Option {
	return func(o *options) {
		o.names = names
	}
}

// WithEcho logs every event at info level, e.g. "A pressed".
func WithEcho(echo bool) Option {
	return func(o *options) {
		o.echo = echo
	}
}

func newOptions(opts []Option) options {
	o := options{
		diffConfig: DefaultDiffConfig(),
		names:      XboxNames(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}
	return o
}

// Connect opens the device behind h and queries its layout.
func Connect(driver Driver, h Handle, opts ...Option) (*Controller, error) {

	o := newOptions(opts)
	c := &Controller{
		logger:     o.logger.With("handle", string(h)),
		driver:     driver,
		handle:     h,
		diffConfig: o.diffConfig,
		names:      o.names,
		echo:       o.echo,
	}

	layout, err := driver.Layout(h)
	if err != nil {
		_ = driver.Close(h)
		return nil, fmt.Errorf("query layout of %s: %w", h, err)
	}

	c.layout = layout
	c.previous = NewSnapshot(layout)
	c.dispatcher = NewDispatcher(layout, c.logger)

	c.logger.Infow("Connected controller",
		"model", layout.Model,
		"buttons", layout.Buttons,
		"axes", layout.Axes,
		"hats", layout.Hats)

	return c, nil
}

// ConnectAll connects every device the driver enumerates. Devices that fail
// to connect are skipped with a warning.
func ConnectAll(driver Driver, opts ...Option) (controllers []*Controller, err error) {

	handles, err := driver.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}

	for _, h := range handles {
		c, cerr := Connect(driver, h, opts...)
		if cerr != nil {
			newOptions(opts).logger.Warnw("Skipping controller", "handle", string(h), "error", cerr)
			continue
		}
		controllers = append(controllers, c)
	}

	if len(controllers) == 0 {
		return nil, ErrNoDeviceConnected
	}
	return controllers, nil
}

func (c *Controller) Handle() Handle {
	return c.handle
}

func (c *Controller) Layout() Layout {
	return c.layout
}

// SetDiffConfig replaces the thresholds used from the next Update on.
func (c *Controller) SetDiffConfig(cfg DiffConfig) {
	c.diffConfig = cfg
}

// Remap replaces the handler for (kind, index).
func (c *Controller) Remap(kind Kind, index int, h Handler) error {
	return c.dispatcher.Remap(kind, index, h)
}

func (c *Controller) RemapButton(index int, action func()) error {
	return c.Remap(ButtonKind, index, ButtonAction(action))
}

func (c *Controller) RemapAxis(index int, action func(value float64)) error {
	return c.Remap(AxisKind, index, AxisAction(action))
}

func (c *Controller) RemapHat(index int, action func(h Hat)) error {
	return c.Remap(HatKind, index, HatAction(action))
}

// Update runs one tick: pump the driver, read a snapshot, diff it against
// the previous one and dispatch the resulting events.
func (c *Controller) Update() error {

	if c.closed {
		return fmt.Errorf(errControllerClosed, ErrControllerClosed, c.handle)
	}

	c.driver.Pump()

	current, err := c.driver.ReadSnapshot(c.handle)
	if err != nil {
		return fmt.Errorf("read snapshot of %s: %w", c.handle, err)
	}

	events, err := Diff(c.previous, current, c.diffConfig)
	if err != nil {
		return fmt.Errorf("diff snapshot of %s: %w", c.handle, err)
	}

	if c.echo {
		for _, ev := range events {
			c.logger.Info(c.names.Describe(ev))
		}
	}

	c.dispatcher.Dispatch(events)
	c.previous = current
	return nil
}

// Button returns the last seen state of button i, false if unknown.
func (c *Controller) Button(i int) bool {
	if i < 0 || i >= len(c.previous.Buttons) {
		return false
	}
	return c.previous.Buttons[i]
}

// Axis returns the last seen value of axis i, 0 if unknown.
func (c *Controller) Axis(i int) float64 {
	if i < 0 || i >= len(c.previous.Axes) {
		return 0
	}
	return c.previous.Axes[i]
}

// Hat returns the last seen direction of hat i, centered if unknown.
func (c *Controller) Hat(i int) Hat {
	if i < 0 || i >= len(c.previous.Hats) {
		return Hat{}
	}
	return c.previous.Hats[i]
}

// Close releases the device. Only the first call reaches the driver.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.driver.Close(c.handle); err != nil {
		return fmt.Errorf("close %s: %w", c.handle, err)
	}
	c.logger.Debug("Closed controller")
	return nil
}
