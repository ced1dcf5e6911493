// Package netstate answers "are we online right now" without doing I/O at
// the moment of asking. A background monitor probes connectivity and
// publishes the latest state; callers read it synchronously before deciding
// whether a network fetch or a non-essential prefetch is worth attempting.
package netstate

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Transport classifies the current network path by cost, mirroring the
// metered/unmetered distinction mobile platforms expose.
type Transport int

const (
	TransportUnknown Transport = iota
	TransportUnmetered
	TransportMetered
)

func (t Transport) String() string {
	switch t {
	case TransportUnmetered:
		return "unmetered"
	case TransportMetered:
		return "metered"
	default:
		return "unknown"
	}
}

// State is a point-in-time connectivity snapshot.
type State struct {
	Connected bool
	Transport Transport
}

// Oracle reports current network reachability. Current must be fast and
// must not block on I/O.
type Oracle interface {
	Current() State
}

// Static is an Oracle with a fixed answer. Useful in tests and for
// deployments that are always online.
type Static struct {
	State State
}

func (s Static) Current() State {
	return s.State
}

// Online is a Static oracle reporting an unmetered connection.
var Online = Static{State: State{Connected: true, Transport: TransportUnmetered}}

// Monitor probes a well-known address in the background and caches the
// result, so Current is a single atomic load.
type Monitor struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	state atomic.Value // State
	stop  chan struct{}
	done  chan struct{}
}

// NewMonitor creates a Monitor probing addr (host:port) every interval.
func NewMonitor(addr string, interval time.Duration, logger *zap.Logger) *Monitor {
	if addr == "" {
		addr = "1.1.1.1:443"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	m := &Monitor{
		addr:     addr,
		interval: interval,
		timeout:  5 * time.Second,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	m.state.Store(State{Connected: true, Transport: TransportUnmetered})
	return m
}

// Start begins probing. The first probe runs immediately.
func (m *Monitor) Start() {
	go func() {
		defer close(m.done)

		m.probe()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.probe()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop halts probing and waits for the probe loop to exit.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

// Current returns the most recently observed state.
func (m *Monitor) Current() State {
	return m.state.Load().(State)
}

func (m *Monitor) probe() {
	conn, err := net.DialTimeout("tcp", m.addr, m.timeout)
	connected := err == nil
	if conn != nil {
		_ = conn.Close()
	}

	prev := m.Current()
	next := State{Connected: connected, Transport: TransportUnmetered}
	m.state.Store(next)

	if prev.Connected != connected && m.logger != nil {
		m.logger.Info("connectivity changed",
			zap.Bool("connected", connected),
			zap.String("probe_addr", m.addr),
		)
	}
}
