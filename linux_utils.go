//go:build linux

package xboxjoy

import (
	"bytes"
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// linuxEventType is an enumeration of possible entries under /dev/input.
type linuxEventType uint8

const (
	irrelevantEventType linuxEventType = iota
	gamepadEventType
)

func extractFromBytes(src []byte) (t linuxEventType, name string, ok bool) {
	switch {
	case len(src) >= 2 && bytes.Equal(src[:2], []byte{'j', 's'}):
		return gamepadEventType, escapeString(src), true
	default:
		return irrelevantEventType, "", false
	}
}

func escapeString(src []byte) string {
	n := 0
	for _, b := range src {
		if b != 0 {
			src[n] = b
			n++
		}
	}
	return string(src[:n])
}

// mapAxes splits the raw axes of a joystick into plain axes and hats,
// keeping the kernel order within each group.
func mapAxes(codes []uint8) (slots []axisSlot, axes, hats int) {
	for _, code := range codes {
		if code >= absHat0X && code <= absHat3Y {
			hat := int(code-absHat0X) / 2
			slots = append(slots, axisSlot{hat: true, index: hat, y: (code-absHat0X)%2 == 1})
			if hat+1 > hats {
				hats = hat + 1
			}
			continue
		}
		slots = append(slots, axisSlot{index: axes})
		axes++
	}
	return
}

func normaliseAxis(v int16) float64 {
	f := float64(v) / jsAxisMax
	if f < -1 {
		return -1
	}
	return f
}

func sign(v int16) int8 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// openPersistent opens a joystick node non-blocking. udev may still be
// fixing permissions right after the node appears, so EACCES is retried.
func openPersistent(path string) (fd int, err error) {

	for i := 0; i < 5; i++ {
		if fd, err = unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0); err != nil {
			if errors.Is(err, unix.EACCES) {
				if i == 4 {
					return
				}
				timer := time.NewTimer(200 * time.Millisecond)
				<-timer.C
				timer.Stop()
				continue
			} else {
				return
			}
		}
		break
	}
	return
}
