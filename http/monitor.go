package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/universalpocket/pocket"
)

// Ensure Monitor implements pocket.ConnectivityMonitor at compile time.
var _ pocket.ConnectivityMonitor = (*Monitor)(nil)

// DefaultProbeURL is probed to detect connectivity. The generate_204
// endpoint returns an empty response and is built for exactly this.
const DefaultProbeURL = "https://clients3.google.com/generate_204"

// DefaultProbeInterval spaces connectivity probes.
const DefaultProbeInterval = 30 * time.Second

// Monitor tracks connectivity by periodically probing a well-known
// endpoint. It starts optimistic (online) and notifies subscribers on
// every transition. SetOnline allows callers with a better signal (or
// tests) to override the probe.
type Monitor struct {
	client   *http.Client
	probeURL string
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	online bool
	subs   map[int]func(bool)
	nextID int

	cancel context.CancelFunc
	done   chan struct{}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithProbeURL overrides the probe endpoint.
func WithProbeURL(url string) MonitorOption {
	return func(m *Monitor) { m.probeURL = url }
}

// WithProbeInterval overrides the probe cadence.
func WithProbeInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.interval = d }
}

// WithMonitorLogger sets the logger. Defaults to slog.Default().
func WithMonitorLogger(logger *slog.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = logger }
}

// NewMonitor creates a Monitor in the online state. Call Start to begin
// probing; without it the monitor is a manual switch driven by SetOnline.
func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		probeURL: DefaultProbeURL,
		interval: DefaultProbeInterval,
		logger:   slog.Default(),
		online:   true,
		subs:     make(map[int]func(bool)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.client = &http.Client{Timeout: 5 * time.Second}
	return m
}

// Start launches the background probe loop.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.SetOnline(m.probe(ctx))
			}
		}
	}()
}

// Close stops the probe loop.
func (m *Monitor) Close() error {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
	return nil
}

// probe reports whether the probe endpoint is reachable.
func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a transition callback and returns an unsubscribe
// function. Callbacks run synchronously on the goroutine that observed
// the transition.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// SetOnline records the connectivity state, notifying subscribers when it
// changes.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.logger.Info("connectivity changed", "online", online)
	for _, fn := range subs {
		fn(online)
	}
}
