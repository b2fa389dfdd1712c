package xboxjoy

import (
	"fmt"
	"sync"
)

// fakeDriver replays scripted snapshots. The last frame of a device repeats
// once the script runs out.
type fakeDriver struct {
	sync.Mutex
	layouts  map[Handle]Layout
	frames   map[Handle][]Snapshot
	readErr  map[Handle]error
	reads    map[Handle]int
	closes   map[Handle]int
	pumps    int
	onRead   func(h Handle, n int)
	shutdown bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		layouts: map[Handle]Layout{},
		frames:  map[Handle][]Snapshot{},
		readErr: map[Handle]error{},
		reads:   map[Handle]int{},
		closes:  map[Handle]int{},
	}
}

func (d *fakeDriver) add(h Handle, layout Layout, frames ...Snapshot) {
	d.Lock()
	defer d.Unlock()
	d.layouts[h] = layout
	d.frames[h] = frames
}

func (d *fakeDriver) Enumerate() (handles []Handle, err error) {
	d.Lock()
	defer d.Unlock()
	for _, h := range []Handle{"pad0", "pad1", "pad2", "pad3"} {
		if _, ok := d.layouts[h]; ok {
			handles = append(handles, h)
		}
	}
	return handles, nil
}

func (d *fakeDriver) Layout(h Handle) (Layout, error) {
	d.Lock()
	defer d.Unlock()
	l, ok := d.layouts[h]
	if !ok {
		return Layout{}, fmt.Errorf(errDeviceNotFound, ErrDeviceNotFound, h)
	}
	return l, nil
}

func (d *fakeDriver) Pump() {
	d.Lock()
	d.pumps++
	d.Unlock()
}

func (d *fakeDriver) ReadSnapshot(h Handle) (Snapshot, error) {
	d.Lock()
	n := d.reads[h]
	d.reads[h] = n + 1
	err := d.readErr[h]
	frames := d.frames[h]
	layout := d.layouts[h]
	hook := d.onRead
	d.Unlock()

	if hook != nil {
		hook(h, n)
	}
	if err != nil {
		return Snapshot{}, err
	}
	if len(frames) == 0 {
		return NewSnapshot(layout), nil
	}
	if n >= len(frames) {
		n = len(frames) - 1
	}
	return frames[n], nil
}

func (d *fakeDriver) Close(h Handle) error {
	d.Lock()
	defer d.Unlock()
	d.closes[h]++
	return nil
}

func (d *fakeDriver) Shutdown() error {
	d.Lock()
	defer d.Unlock()
	d.shutdown = true
	return nil
}

func (d *fakeDriver) closeCount(h Handle) int {
	d.Lock()
	defer d.Unlock()
	return d.closes[h]
}

func (d *fakeDriver) readCount(h Handle) int {
	d.Lock()
	defer d.Unlock()
	return d.reads[h]
}
