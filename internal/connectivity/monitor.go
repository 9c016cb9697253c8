// Package connectivity holds the advisory online/offline signal that both
// patient coordinators consult on every operation.
//
// The signal is never probed from the network. It starts online unless told
// otherwise, so a platform that cannot report reachability does not strand
// every write in the offline queue; a successful remote write is the only hard
// proof of connectivity.
package connectivity

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Listener is invoked after each state transition with the new state.
type Listener func(online bool)

// Status is a point-in-time view of the signal.
type Status struct {
	Online    bool      `json:"online"`
	ChangedAt time.Time `json:"changed_at"`
}

// Monitor is safe for concurrent use. Listeners run synchronously on the
// goroutine that changed the state, outside the monitor's lock.
type Monitor struct {
	mu        sync.RWMutex
	online    bool
	changedAt time.Time
	nextID    int
	listeners map[int]Listener
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Monitor)

// WithInitial sets the starting state. The default is online.
func WithInitial(online bool) Option {
	return func(m *Monitor) {
		m.online = online
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides time.Now for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

func New(opts ...Option) *Monitor {
	m := &Monitor{
		online:    true,
		listeners: make(map[int]Listener),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.changedAt = m.now()
	return m
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{Online: m.online, ChangedAt: m.changedAt}
}

// SetOnline records a new state. Listeners are notified only on change.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.changedAt = m.now()
	listeners := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("connectivity changed", zap.Bool("online", online))
	for _, l := range listeners {
		l(online)
	}
}

// Toggle flips the state and returns the new value.
func (m *Monitor) Toggle() bool {
	m.mu.Lock()
	online := !m.online
	m.online = online
	m.changedAt = m.now()
	listeners := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("connectivity toggled", zap.Bool("online", online))
	for _, l := range listeners {
		l(online)
	}
	return online
}

// Subscribe registers l and returns a function that removes it. The returned
// function is idempotent.
func (m *Monitor) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Monitor) snapshotLocked() []Listener {
	out := make([]Listener, 0, len(m.listeners))
	for i := 0; i < m.nextID; i++ {
		if l, ok := m.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}
