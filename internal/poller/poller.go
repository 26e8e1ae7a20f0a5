// Package poller keeps a simulation record fresh while the backend is still
// working on it.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/user/twinsim/internal/normalize"
	"github.com/user/twinsim/internal/types"
)

// DefaultInterval is the delay between fetches of an unfinished simulation.
const DefaultInterval = 5 * time.Second

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("poller already started")

// Fetcher loads the raw record of a simulation.
type Fetcher interface {
	GetSimulation(ctx context.Context, id string) (json.RawMessage, error)
}

// Controller re-fetches one simulation on a fixed interval until it reaches a
// terminal status or Stop is called. At most one fetch is in flight at a time,
// whether it was triggered by the schedule or by Refresh.
type Controller struct {
	fetcher  Fetcher
	id       string
	interval time.Duration
	onUpdate func(types.Simulation)

	flight singleflight.Group
	done   chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	cron    *cron.Cron
	current types.Simulation
	loaded  bool
	err     error
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval overrides DefaultInterval. The schedule has one second
// resolution; shorter intervals are rounded up.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithOnUpdate registers a callback run after every successful fetch with the
// normalized record.
func WithOnUpdate(fn func(types.Simulation)) Option {
	return func(c *Controller) { c.onUpdate = fn }
}

// New creates a Controller for the simulation id. Nothing is fetched until
// Start.
func New(fetcher Fetcher, id string, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		id:       id,
		interval: DefaultInterval,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start fetches the simulation once and, if it is still pending or running,
// schedules further fetches. A failed first fetch is returned and nothing is
// scheduled. The schedule lives until the status turns terminal, Stop is
// called, or ctx is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	sim, err := c.fetch(ctx)
	if err != nil {
		c.stop(false)
		return err
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{})))
	c.cron.Schedule(cron.Every(c.interval), cron.FuncJob(func() { c.tick(ctx) }))
	c.cron.Start()
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			c.Stop()
		case <-c.done:
		}
	}()

	slog.Info("polling simulation", "simulation_id", c.id, "status", string(sim.Status), "interval", c.interval)
	return nil
}

func (c *Controller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := c.fetch(ctx); err != nil && ctx.Err() == nil {
		slog.Warn("simulation poll failed", "simulation_id", c.id, "error", err)
	}
}

// Refresh fetches the simulation now, outside the schedule. If a fetch is
// already in flight its result is shared instead of issuing another request.
// Once a terminal record has been seen it is returned without a fetch.
func (c *Controller) Refresh(ctx context.Context) (types.Simulation, error) {
	c.mu.Lock()
	if c.loaded && c.current.Status.Terminal() {
		sim := c.current
		c.mu.Unlock()
		return sim, nil
	}
	c.mu.Unlock()
	return c.fetch(ctx)
}

// fetch loads and stores the record. A terminal status ends polling whichever
// path observed it.
func (c *Controller) fetch(ctx context.Context) (types.Simulation, error) {
	v, err, _ := c.flight.Do(c.id, func() (any, error) {
		raw, err := c.fetcher.GetSimulation(ctx, c.id)
		if err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return nil, err
		}
		sim := normalize.Simulation(raw)

		c.mu.Lock()
		c.current = sim
		c.loaded = true
		c.err = nil
		c.mu.Unlock()

		if c.onUpdate != nil {
			c.onUpdate(sim)
		}
		return sim, nil
	})
	if err != nil {
		return types.Simulation{}, err
	}
	sim := v.(types.Simulation)
	if sim.Status.Terminal() && c.stop(false) {
		slog.Info("simulation finished", "simulation_id", c.id, "status", string(sim.Status))
	}
	return sim, nil
}

// Stop cancels the schedule and any in-flight fetch, and waits for a running
// tick to return. It is safe to call more than once.
func (c *Controller) Stop() {
	c.stop(true)
}

// stop ends polling and reports whether this call did it. wait must be false
// when called from inside a tick, since the scheduler would otherwise wait for
// the caller itself. Only the first call has any effect.
func (c *Controller) stop(wait bool) bool {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return false
	}
	c.stopped = true
	cancel, sched := c.cancel, c.cron
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sched != nil {
		stopped := sched.Stop()
		if wait {
			<-stopped.Done()
		}
	}
	close(c.done)
	return true
}

// Done is closed once polling has ended for any reason.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Current returns the latest record and whether any fetch has succeeded.
func (c *Controller) Current() (types.Simulation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.loaded
}

// Err returns the error of the most recent fetch, or nil if it succeeded.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// cronLogger routes scheduler messages to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("poller: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("poller: "+msg, append(keysAndValues, "error", err)...)
}
