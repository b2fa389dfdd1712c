//go:build linux

package xboxjoy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	gpName    = 0x80006a13 + (128 << 16)
	gpAxes    = 0x80016a11 /* get number of axes */
	gpButtons = 0x80016a12
	gpVersion = 0x80046a01
	gpAxesMap = 0x80406a32
	// gpCorrectionValues = 0x80406a22
)

const (
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80

	jsEventSize = 8
	absHat0X    = 0x10
	absHat3Y    = 0x17
	jsAxisMax   = 32767
)

// axisSlot says where a raw joystick axis lands in the snapshot. The
// kernel reports d-pads as a pair of ABS_HATnX/ABS_HATnY axes; those are
// folded into hats.
type axisSlot struct {
	hat   bool
	index int
	y     bool
}

type gamepadLinux struct {
	fd      int
	id      Handle
	path    string
	layout  Layout
	version int32
	slots   []axisSlot
	state   Snapshot
	buf     []byte
}

type eventLinux struct {
	Timestamp uint32
	Value     int16
	Type      uint8
	Index     uint8
}

func newLinuxGamepad(id Handle, path string) (*gamepadLinux, error) {

	fd, err := openPersistent(path)
	if err != nil {
		return nil, err
	}

	gp := &gamepadLinux{
		fd:   fd,
		id:   id,
		path: path,
		buf:  make([]byte, 64*jsEventSize),
	}

	var (
		buttons uint8
		axes    uint8
		axesMap [64]uint8
	)

	if err = ioctlStr(fd, gpName, &gp.layout.Model); err == nil {
		err = ioctl(fd, gpButtons, unsafe.Pointer(&buttons))
	}
	if err == nil {
		err = ioctl(fd, gpAxes, unsafe.Pointer(&axes))
	}
	if err == nil {
		err = ioctl(fd, gpVersion, unsafe.Pointer(&gp.version))
	}
	if err == nil {
		err = ioctl(fd, gpAxesMap, unsafe.Pointer(&axesMap))
	}
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("query %s: %w", path, err)
	}

	gp.layout.Buttons = int(buttons)
	gp.slots, gp.layout.Axes, gp.layout.Hats = mapAxes(axesMap[:axes])
	gp.state = NewSnapshot(gp.layout)

	return gp, nil
}

// drain applies every pending js_event to the tracked state. The fd is
// non-blocking, so this returns once the kernel queue is empty.
func (g *gamepadLinux) drain() error {
	for {
		n, err := unix.Read(g.fd, g.buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				return nil
			}
			return fmt.Errorf("read %s: %w", g.path, err)
		}
		if n == 0 {
			return nil
		}
		for off := 0; off+jsEventSize <= n; off += jsEventSize {
			g.apply(decodeEvent(g.buf[off : off+jsEventSize]))
		}
	}
}

func decodeEvent(src []byte) eventLinux {
	return eventLinux{
		Timestamp: binary.LittleEndian.Uint32(src[0:4]),
		Value:     int16(binary.LittleEndian.Uint16(src[4:6])),
		Type:      src[6],
		Index:     src[7],
	}
}

func (g *gamepadLinux) apply(e eventLinux) {
	switch e.Type &^ jsEventInit {
	case jsEventButton:
		if int(e.Index) < len(g.state.Buttons) {
			g.state.Buttons[e.Index] = e.Value != 0
		}
	case jsEventAxis:
		if int(e.Index) >= len(g.slots) {
			return
		}
		slot := g.slots[e.Index]
		if !slot.hat {
			g.state.Axes[slot.index] = normaliseAxis(e.Value)
			return
		}
		if slot.y {
			// kernel Y grows downwards, hats report up as positive
			g.state.Hats[slot.index].Y = -sign(e.Value)
		} else {
			g.state.Hats[slot.index].X = sign(e.Value)
		}
	}
}

// snapshot copies the tracked state so callers never alias it.
func (g *gamepadLinux) snapshot() Snapshot {
	return Snapshot{
		Buttons: append([]bool(nil), g.state.Buttons...),
		Axes:    append([]float64(nil), g.state.Axes...),
		Hats:    append([]Hat(nil), g.state.Hats...),
	}
}

func (g *gamepadLinux) close() error {
	return unix.Close(g.fd)
}

func ioctl(fd int, infoType int, dest unsafe.Pointer) (err error) {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		uintptr(fd),
		uintptr(infoType),
		uintptr(dest),
	)
	if errno != 0 {
		return fmt.Errorf("ioctl error: %w", errno)
	}
	return
}

func ioctlStr(fd int, infoType int, dest *string) (err error) {
	info := make([]byte, 128)
	if err = ioctl(fd, infoType, unsafe.Pointer(&info[0])); err != nil {
		return
	}
	*dest = escapeString(info)
	return
}
