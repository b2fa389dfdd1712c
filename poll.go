package xboxjoy

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultPollInterval is the tick period used when none is given.
const DefaultPollInterval = 100 * time.Millisecond

type pollOptions struct {
	reload func() <-chan DiffConfig
}

type PollOption func(o *pollOptions)

// WithReload makes the loop apply diff configs received from the channel
// returned by subscribe. Each loop calls subscribe once, so PollAll gets one
// channel per controller. The new config takes effect between ticks.
func WithReload(subscribe func() <-chan DiffConfig) PollOption {
	return func(o *pollOptions) {
		o.reload = subscribe
	}
}

// Poll runs c.Update once per interval until ctx is cancelled or Update
// fails. Cancellation is only observed between ticks. The controller is
// closed on every return path, panics included.
func Poll(ctx context.Context, c *Controller, interval time.Duration, opts ...PollOption) (err error) {

	var o pollOptions
	for _, opt := range opts {
		opt(&o)
	}

	var reload <-chan DiffConfig
	if o.reload != nil {
		reload = o.reload()
	}

	if interval <= 0 {
		interval = DefaultPollInterval
	}

	defer func() {
		if cerr := c.Close(); cerr != nil {
			c.logger.Warnw("Failed to close controller", "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Debugw("Polling controller", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Polling stopped")
			return nil
		default:
		}

		if err = c.Update(); err != nil {
			c.logger.Errorw("Controller loop terminated", "error", err)
			return err
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				c.logger.Debug("Polling stopped")
				return nil
			case cfg, ok := <-reload:
				if !ok {
					reload = nil
					continue
				}
				c.SetDiffConfig(cfg)
				c.logger.Debug("Applied reloaded diff config")
			case <-ticker.C:
				break wait
			}
		}
	}
}

// PollAll runs one Poll loop per controller, each on its own goroutine,
// and waits for all of them. Controllers share no state, so a failing one
// does not stop the others.
func PollAll(ctx context.Context, controllers []*Controller, interval time.Duration, opts ...PollOption) error {

	wg := sync.WaitGroup{}
	errs := make([]error, len(controllers))

	for i, c := range controllers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = Poll(ctx, c, interval, opts...)
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}
