package pocket

// ConnectivityMonitor supplies online/offline state and transition
// notifications. The save orchestrator subscribes once at construction and
// drains its offline queue on each transition to online.
type ConnectivityMonitor interface {
	// Online reports the current connectivity state.
	Online() bool

	// Subscribe registers a callback invoked on every state transition.
	// The returned function removes the subscription.
	Subscribe(fn func(online bool)) (unsubscribe func())
}
