// Package monitor watches server sessions, reports when they start and
// stop, and optionally restarts servers that stop.
//
// Restarts are capped: a server that has been restarted MaxRestarts times
// within Window is left stopped until it is started by other means.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"scsm/internal/index"
	"scsm/pkg/logging"
)

const subsystem = "Monitor"

const (
	DefaultInterval    = time.Second
	DefaultMaxRestarts = 3
	DefaultWindow      = 30 * time.Second
)

// now is a variable to allow faking the clock in tests
var now = time.Now

// Server is what the monitor needs from a server.
type Server interface {
	Running(ctx context.Context) bool
	Start(ctx context.Context, debug bool) error
}

// EventKind classifies monitor events.
type EventKind string

const (
	EventRunning       EventKind = "Running"
	EventStopped       EventKind = "Stopped"
	EventRestarting    EventKind = "Restarting"
	EventRestartFailed EventKind = "RestartFailed"
	EventRestartLimit  EventKind = "RestartLimit"
)

// Event is one state change of a watched session.
type Event struct {
	Session string
	Kind    EventKind
	Err     error
}

// Options configure a Monitor. Zero values pick the defaults.
type Options struct {
	Restart     bool
	Interval    time.Duration
	MaxRestarts int
	Window      time.Duration

	// Notify enables sd_notify READY, STATUS and WATCHDOG messages.
	Notify bool

	// Index, when set, is rebuilt whenever its descriptor files change.
	Index *index.Index

	// Reload, when set, resolves a session's server again after the index
	// was rebuilt, so edited start and stop options apply to the next
	// restart.
	Reload func(ctx context.Context, session string) (Server, error)

	// OnEvent receives every event from the poll goroutine.
	OnEvent func(Event)
}

type tracked struct {
	server   Server
	running  bool
	restarts []time.Time
}

// Monitor polls a fixed set of sessions.
type Monitor struct {
	opts Options

	// mu guards the tracked servers against reloads from the watcher.
	mu       sync.Mutex
	sessions map[string]*tracked
	order    []string
	notifier *notifier
}

// New creates a monitor for servers keyed by session name.
func New(servers map[string]Server, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxRestarts <= 0 {
		opts.MaxRestarts = DefaultMaxRestarts
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}

	m := &Monitor{
		opts:     opts,
		sessions: make(map[string]*tracked, len(servers)),
		notifier: &notifier{enabled: opts.Notify},
	}
	for name, s := range servers {
		m.sessions[name] = &tracked{server: s}
		m.order = append(m.order, name)
	}
	sort.Strings(m.order)
	return m
}

// Run polls until ctx is cancelled. Cancellation is a normal exit.
func (m *Monitor) Run(ctx context.Context) error {
	if len(m.sessions) == 0 {
		return nil
	}
	logging.Info(subsystem, "monitoring %d sessions", len(m.sessions))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.poll(ctx)
	})
	if m.opts.Index != nil {
		w := index.NewWatcher(m.opts.Index, 0, func(err error) {
			if err == nil {
				m.Reload(ctx)
			}
		})
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	if interval := m.notifier.watchdogInterval(); interval > 0 {
		g.Go(func() error {
			return m.notifier.watchdog(ctx, interval)
		})
	}

	m.notifier.ready()
	err := g.Wait()
	m.notifier.stopping()
	return err
}

func (m *Monitor) poll(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		m.Check(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Reload replaces every tracked server with a fresh one from
// Options.Reload. Servers that fail to resolve keep their old definition.
func (m *Monitor) Reload(ctx context.Context) {
	if m.opts.Reload == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range m.order {
		s, err := m.opts.Reload(ctx, name)
		if err != nil {
			logging.Warn(subsystem, "keeping old definition of %s: %v", name, err)
			continue
		}
		m.sessions[name].server = s
		logging.Debug(subsystem, "reloaded %s", name)
	}
}

// Check runs one poll over every session.
func (m *Monitor) Check(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	for _, name := range m.order {
		if m.check(ctx, name) {
			changed = true
		}
	}
	if changed {
		m.notifier.status(m.summary())
	}
}

func (m *Monitor) check(ctx context.Context, name string) bool {
	t := m.sessions[name]
	running := t.server.Running(ctx)
	if running == t.running {
		return false
	}
	t.running = running

	if running {
		m.emit(Event{Session: name, Kind: EventRunning})
		return true
	}
	m.emit(Event{Session: name, Kind: EventStopped})
	if m.opts.Restart {
		m.restart(ctx, name, t)
	}
	return true
}

func (m *Monitor) restart(ctx context.Context, name string, t *tracked) {
	cutoff := now().Add(-m.opts.Window)
	recent := t.restarts[:0]
	for _, at := range t.restarts {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	t.restarts = recent

	if len(t.restarts) >= m.opts.MaxRestarts {
		m.emit(Event{
			Session: name,
			Kind:    EventRestartLimit,
			Err:     fmt.Errorf("restarted %d times in %s", len(t.restarts), m.opts.Window),
		})
		return
	}

	t.restarts = append(t.restarts, now())
	m.emit(Event{Session: name, Kind: EventRestarting})
	if err := t.server.Start(ctx, false); err != nil {
		m.emit(Event{Session: name, Kind: EventRestartFailed, Err: err})
	}
}

func (m *Monitor) emit(e Event) {
	if e.Err != nil {
		logging.Warn(subsystem, "%s: %s: %v", e.Session, e.Kind, e.Err)
	} else {
		logging.Info(subsystem, "%s: %s", e.Session, e.Kind)
	}
	if m.opts.OnEvent != nil {
		m.opts.OnEvent(e)
	}
}

func (m *Monitor) summary() string {
	running := 0
	for _, t := range m.sessions {
		if t.running {
			running++
		}
	}
	return fmt.Sprintf("%d/%d servers running", running, len(m.sessions))
}
