package netstate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ferux/pushcenter/internal/pubsub"
)

// DefaultInterval between reachability probes.
const DefaultInterval = time.Second * 30

// Pinger checks that the relay answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor periodically pings the relay and remembers whether it answered. It is meant for
// display; the core relies on Signal only.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	subs     *pubsub.Core
	logger   zerolog.Logger

	mu        sync.RWMutex
	reachable bool
	checked   bool
	checkedAt time.Time
	lastErr   error
}

// NewMonitor creates monitor. subs may be nil.
func NewMonitor(p Pinger, interval time.Duration, subs *pubsub.Core, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Monitor{
		pinger:   p,
		interval: interval,
		subs:     subs,
		logger:   logger.With().Str("pkg", "netstate").Logger(),
	}
}

// Run probes immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.Check(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Check pings the relay once and returns the new state.
func (m *Monitor) Check(ctx context.Context) bool {
	err := m.pinger.Ping(ctx)
	reachable := err == nil

	m.mu.Lock()
	changed := !m.checked || m.reachable != reachable
	m.reachable = reachable
	m.checked = true
	m.checkedAt = time.Now()
	m.lastErr = err
	m.mu.Unlock()

	if !changed {
		return reachable
	}

	if reachable {
		m.logger.Debug().Msg("relay came back online")
	} else {
		m.logger.Debug().Err(err).Msg("relay went offline")
	}

	m.subs.Notify(pubsub.TopicReachability, reachable)

	return reachable
}

// Status is the last observed reachability.
type Status struct {
	Reachable bool
	Checked   bool
	CheckedAt time.Time
	Err       error
}

// Status returns the last observed state.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Status{
		Reachable: m.reachable,
		Checked:   m.checked,
		CheckedAt: m.checkedAt,
		Err:       m.lastErr,
	}
}

// Online implements Signal using the last observation. Before the first check it reports
// online.
func (m *Monitor) Online() bool {
	s := m.Status()
	return !s.Checked || s.Reachable
}
