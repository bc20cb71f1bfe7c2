package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Signal is the platform connectivity signal: a boolean plus change
// notifications. The sync coordinator binds to it.
type Signal interface {
	IsOnline() bool
	// OnChange registers a callback fired on every online/offline
	// transition. The returned function unregisters it.
	OnChange(fn func(online bool)) (unsubscribe func())
}

// DefaultProbeInterval is how often the monitor probes the remote.
const DefaultProbeInterval = 5 * time.Second

// Monitor derives the connectivity signal by probing the remote
// endpoint. Transitions are edge-triggered: callbacks fire only when
// the boolean actually flips.
type Monitor struct {
	ping     func(ctx context.Context) error
	interval time.Duration

	mu        sync.Mutex
	online    bool
	listeners map[int]func(online bool)
	nextID    int
	stop      chan struct{}
}

// NewMonitor creates a monitor over the given probe. The monitor starts
// online; the first failed probe flips it.
func NewMonitor(ping func(ctx context.Context) error, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Monitor{
		ping:      ping,
		interval:  interval,
		online:    true,
		listeners: make(map[int]func(online bool)),
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *Monitor) OnChange(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// SetOnline forces the signal. Used by tests and by callers that learn
// about connectivity out of band (a failed push, for instance).
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(online bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	if online {
		log.Info("Connectivity restored")
	} else {
		log.Warn("Connectivity lost")
	}
	for _, fn := range listeners {
		fn(online)
	}
}

// Check runs a single probe and updates the signal.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	err := m.ping(probeCtx)
	m.SetOnline(err == nil)
	return err == nil
}

// Start launches the periodic probe loop. Stop releases it.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

// Stop halts the probe loop.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}
