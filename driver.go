package xboxjoy

// Driver is the device layer the controller reads from. A driver value is
// the driver context: it is initialised by its constructor and torn down by
// Shutdown, after which no other method may be called.
//
// Calls for distinct handles may come from distinct goroutines; calls for
// one handle always come from the same goroutine.
type Driver interface {
	// Enumerate lists the currently connected devices.
	Enumerate() ([]Handle, error)

	// Layout returns the control counts of the device.
	Layout(h Handle) (Layout, error)

	// Pump processes pending driver events so that the next ReadSnapshot
	// sees current state.
	Pump()

	// ReadSnapshot returns the current state of the device.
	ReadSnapshot(h Handle) (Snapshot, error)

	// Close releases the device.
	Close(h Handle) error

	// Shutdown releases the driver itself.
	Shutdown() error
}

// Hotplugger is implemented by drivers that watch for devices coming and
// going.
type Hotplugger interface {
	DeviceEvents() <-chan DeviceEvent
}
