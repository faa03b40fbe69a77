package reactive

// Listener is anything that can be notified when a dependency changes.
// This interface is implemented by reactions and memos; host frameworks
// may implement it directly on their component instances.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// For a Reaction this fires its callback; for a Memo it invalidates
	// the cached value.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during subscription and batch processing.
	ID() uint64
}

// sourceTracker is implemented by listeners that remember which signals
// they subscribed to, so the subscriptions can be severed later.
// Reaction and Memo implement it; ad-hoc test listeners need not.
type sourceTracker interface {
	addSource(source *signalBase)
}
