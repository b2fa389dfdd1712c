//go:build linux

package xboxjoy

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// LinuxDriver reads gamepads through the kernel joystick API
// (/dev/input/js*). Devices are opened on first use and read without
// blocking; connects and disconnects are reported on DeviceEvents.
type LinuxDriver struct {
	sync.RWMutex
	logger   *zap.SugaredLogger
	notifier *notifyLinux
	devices  map[Handle]*gamepadLinux
	closed   bool
}

func NewLinuxDriver(logger *zap.SugaredLogger) (*LinuxDriver, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger = logger.Named("linux")

	notifier, err := linuxNotifier(logger)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", inputPath, err)
	}

	return &LinuxDriver{
		logger:   logger,
		notifier: notifier,
		devices:  map[Handle]*gamepadLinux{},
	}, nil
}

func (d *LinuxDriver) Enumerate() ([]Handle, error) {
	d.RLock()
	defer d.RUnlock()
	if d.closed {
		return nil, ErrDriverClosed
	}
	return d.notifier.gamepads(), nil
}

func (d *LinuxDriver) DeviceEvents() <-chan DeviceEvent {
	return d.notifier.events
}

// device returns the open gamepad for h, opening it if needed.
func (d *LinuxDriver) device(h Handle) (*gamepadLinux, error) {
	d.Lock()
	defer d.Unlock()

	if d.closed {
		return nil, ErrDriverClosed
	}
	if gp, ok := d.devices[h]; ok {
		return gp, nil
	}
	if !d.notifier.isPresent(h) {
		return nil, fmt.Errorf(errDeviceNotFound, ErrDeviceNotFound, h)
	}

	gp, err := newLinuxGamepad(h, filepath.Join(inputPath, string(h)))
	if err != nil {
		return nil, err
	}
	d.devices[h] = gp

	d.logger.Debugw("Opened joystick",
		"handle", string(h),
		"model", gp.layout.Model,
		"version", fmt.Sprintf("%#x", gp.version))

	return gp, nil
}

func (d *LinuxDriver) Layout(h Handle) (Layout, error) {
	gp, err := d.device(h)
	if err != nil {
		return Layout{}, err
	}
	return gp.layout, nil
}

// Pump is a no-op: pending events are drained by ReadSnapshot.
func (d *LinuxDriver) Pump() {}

// ReadSnapshot drains pending events under the read lock, so Close and
// Shutdown wait for an in-flight read before releasing the fd.
func (d *LinuxDriver) ReadSnapshot(h Handle) (Snapshot, error) {
	if _, err := d.device(h); err != nil {
		return Snapshot{}, err
	}

	d.RLock()
	defer d.RUnlock()

	if d.closed {
		return Snapshot{}, ErrDriverClosed
	}
	gp, ok := d.devices[h]
	if !ok {
		return Snapshot{}, fmt.Errorf(errDeviceNotFound, ErrDeviceNotFound, h)
	}
	if err := gp.drain(); err != nil {
		return Snapshot{}, err
	}
	return gp.snapshot(), nil
}

func (d *LinuxDriver) Close(h Handle) error {
	d.Lock()
	defer d.Unlock()

	gp, ok := d.devices[h]
	if !ok {
		return fmt.Errorf(errDeviceNotFound, ErrDeviceNotFound, h)
	}
	delete(d.devices, h)
	return gp.close()
}

// Shutdown closes every open device and stops watching for hotplug.
func (d *LinuxDriver) Shutdown() error {
	d.Lock()
	defer d.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	for h, gp := range d.devices {
		if err := gp.close(); err != nil {
			d.logger.Warnw("Failed to close joystick", "handle", string(h), "error", err)
		}
	}
	d.devices = nil
	d.notifier.stop()
	return nil
}
