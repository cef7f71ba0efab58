package mock

import (
	"sync"

	"github.com/universalpocket/pocket"
)

var _ pocket.ConnectivityMonitor = (*ConnectivityMonitor)(nil)

// ConnectivityMonitor is a controllable pocket.ConnectivityMonitor for
// tests. SetOnline flips the state and notifies subscribers on
// transitions, mimicking a real signal source.
type ConnectivityMonitor struct {
	mu     sync.Mutex
	online bool
	subs   map[int]func(bool)
	nextID int
}

// NewConnectivityMonitor returns a monitor in the given initial state.
func NewConnectivityMonitor(online bool) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		online: online,
		subs:   make(map[int]func(bool)),
	}
}

func (m *ConnectivityMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *ConnectivityMonitor) Subscribe(fn func(online bool)) func() {
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

// SetOnline sets the state, invoking subscribers synchronously when it
// changes.
func (m *ConnectivityMonitor) SetOnline(online bool) {
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

	for _, fn := range subs {
		fn(online)
	}
}
