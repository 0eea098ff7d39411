// Package netwatch tracks whether the server of record is reachable and
// notifies subscribers on every online/offline transition.
package netwatch

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Pinger probes the server of record.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the read side of a Monitor, consumed by the sync engines, the
// POS session and the reconciler.
type Status interface {
	Online() bool
	// Subscribe registers fn for mode transitions. The returned function
	// removes the subscription; fn is not invoked for transitions that
	// start after it returns.
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Monitor probes a Pinger periodically. It starts offline until the first
// successful probe.
type Monitor struct {
	pinger       Pinger
	log          logging.Logger
	probeTimeout time.Duration

	mu     sync.Mutex
	mode   Mode
	subs   map[int]func(bool)
	nextID int
}

// NewMonitor returns a Monitor over p. A nil p is allowed for monitors that
// are only driven by SetOnline.
func NewMonitor(p Pinger, log logging.Logger) *Monitor {
	if log == nil {
		log = logging.NewNop()
	}
	return &Monitor{
		pinger:       p,
		log:          log,
		probeTimeout: 3 * time.Second,
		mode:         ModeOffline,
		subs:         make(map[int]func(bool)),
	}
}

func (m *Monitor) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

func (m *Monitor) Online() bool {
	return m.Mode() == ModeOnline
}

func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// SetOnline switches the mode and notifies subscribers if it changed.
func (m *Monitor) SetOnline(online bool) {
	mode := ModeOffline
	if online {
		mode = ModeOnline
	}

	m.mu.Lock()
	if m.mode == mode {
		m.mu.Unlock()
		return
	}
	m.mode = mode
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	for _, fn := range subs {
		fn(online)
	}
}

// Check probes the server once and updates the mode.
func (m *Monitor) Check(ctx context.Context) bool {
	if m.pinger == nil {
		return m.Online()
	}
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	err := m.pinger.Ping(ctx)
	cancel()

	if err != nil {
		m.log.Debug(ctx, "ping failed", "error", err)
	}
	m.SetOnline(err == nil)
	return err == nil
}

// Start probes immediately and then every interval until ctx is done.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	m.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

var _ Status = (*Monitor)(nil)
