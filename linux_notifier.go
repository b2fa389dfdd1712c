//go:build linux

package xboxjoy

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const (
	inputPath = "/dev/input"

	// how long a poll on the inotify fd may block before ctx is re-checked
	notifyPollTimeoutMs = 200
)

// notifyLinux tracks which joystick nodes exist under /dev/input.
type notifyLinux struct {
	sync.RWMutex
	logger     *zap.SugaredLogger
	ctx        context.Context
	cancelFunc context.CancelFunc
	done       chan struct{}
	fd         int
	present    map[Handle]bool
	events     chan DeviceEvent
}

// linuxNotifier scans inputPath and starts watching it for joystick nodes
// being created or removed.
func linuxNotifier(logger *zap.SugaredLogger) (nl *notifyLinux, err error) {

	nl = &notifyLinux{
		logger:  logger,
		done:    make(chan struct{}),
		present: map[Handle]bool{},
		events:  make(chan DeviceEvent, 16),
	}

	// Create a new context with a cancel function for stopping the notification system.
	nl.ctx, nl.cancelFunc = context.WithCancel(context.Background())

	nl.fd, err = unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("inotify_init1", err)
	}

	if _, err = unix.InotifyAddWatch(nl.fd, inputPath, unix.IN_CREATE|unix.IN_DELETE|unix.IN_ATTRIB); err != nil {
		_ = unix.Close(nl.fd)
		return nil, os.NewSyscallError("inotify_add_watch", err)
	}

	var current []os.DirEntry
	if current, err = os.ReadDir(inputPath); err != nil {
		_ = unix.Close(nl.fd)
		return nil, err
	}
	for _, entry := range current {
		if t, name, ok := extractFromBytes([]byte(entry.Name())); ok && t == gamepadEventType {
			nl.present[Handle(name)] = true
		}
	}

	go nl.watch()

	return nl, nil
}

func (nl *notifyLinux) watch() {
	defer close(nl.done)
	defer func() { _ = unix.Close(nl.fd) }()

	buf := make([]byte, 4096)
	fds := []unix.PollFd{{Fd: int32(nl.fd), Events: unix.POLLIN}}

	for {
		select {
		case <-nl.ctx.Done():
			return
		default:
		}

		n, err := unix.Poll(fds, notifyPollTimeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			nl.logger.Warnw("Poll on inotify failed", "error", err)
			return
		}
		if n == 0 {
			continue
		}

		n, err = unix.Read(nl.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			nl.logger.Warnw("Read from inotify failed", "error", err)
			return
		}

		var offset uint32
		for offset+unix.SizeofInotifyEvent <= uint32(n) {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			nameBytes := buf[offset+unix.SizeofInotifyEvent : offset+unix.SizeofInotifyEvent+event.Len]
			nl.handleEvent(event.Mask, nameBytes)
			offset += unix.SizeofInotifyEvent + event.Len
		}
	}
}

// handleEvent is called for every event received from the inotify system.
func (nl *notifyLinux) handleEvent(mask uint32, bt []byte) {

	t, name, ok := extractFromBytes(bt)
	if !ok || t != gamepadEventType {
		return
	}
	h := Handle(name)

	switch {
	case mask&(unix.IN_CREATE|unix.IN_ATTRIB) != 0:
		nl.Lock()
		known := nl.present[h]
		nl.present[h] = true
		nl.Unlock()
		if !known {
			nl.publish(DeviceEvent{Type: DeviceConnected, Handle: h})
		}
	case mask&unix.IN_DELETE != 0:
		nl.Lock()
		delete(nl.present, h)
		nl.Unlock()
		nl.publish(DeviceEvent{Type: DeviceDisconnected, Handle: h})
	}
}

func (nl *notifyLinux) publish(ev DeviceEvent) {
	nl.logger.Debugw("Device event", "handle", string(ev.Handle), "type", ev.Type.String())
	select {
	case nl.events <- ev:
	default:
		nl.logger.Warnw("Dropped device event", "handle", string(ev.Handle), "type", ev.Type.String())
	}
}

// gamepads returns the joystick nodes currently present, sorted.
func (nl *notifyLinux) gamepads() (handles []Handle) {
	nl.RLock()
	defer nl.RUnlock()
	for h := range nl.present {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return
}

func (nl *notifyLinux) isPresent(h Handle) bool {
	nl.RLock()
	defer nl.RUnlock()
	return nl.present[h]
}

// stop stops the notification system and waits for the watcher to exit.
func (nl *notifyLinux) stop() {
	nl.cancelFunc()
	<-nl.done
}
