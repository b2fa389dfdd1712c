//go:build !linux

package xboxjoy

import "go.uber.org/zap"

// LinuxDriver is only available on Linux.
type LinuxDriver struct{}

func NewLinuxDriver(*zap.SugaredLogger) (*LinuxDriver, error) {
	return nil, ErrOsNotSupported
}

func (d *LinuxDriver) Enumerate() ([]Handle, error) { return nil, ErrOsNotSupported }
func (d *LinuxDriver) DeviceEvents() <-chan DeviceEvent { return nil }
func (d *LinuxDriver) Layout(Handle) (Layout, error) { return Layout{}, ErrOsNotSupported }
func (d *LinuxDriver) Pump() {}
func (d *LinuxDriver) ReadSnapshot(Handle) (Snapshot, error) { return Snapshot{}, ErrOsNotSupported }
func (d *LinuxDriver) Close(Handle) error { return ErrOsNotSupported }
func (d *LinuxDriver) Shutdown() error { return nil }
