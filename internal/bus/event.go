package bus

import "time"

// Event kinds published by the console. Subscribers filter by namespace
// prefix, e.g. "store." receives every row-store change notification.
const (
	// KindMessagesChanged fires whenever the backend reports any insert,
	// update or delete on the messages table. The payload is the operation
	// name (INSERT/UPDATE/DELETE); consumers are expected to ignore it and
	// refetch wholesale.
	KindMessagesChanged = "store.messages_changed"

	// KindPhaseChanged fires on every session phase transition.
	KindPhaseChanged = "session.phase_changed"

	// KindIdleWarning fires when the inactivity warning timer elapses.
	KindIdleWarning = "session.idle_warning"

	// KindIdleLogout fires when the inactivity hard-logout timer elapses.
	KindIdleLogout = "session.idle_logout"
)

// Event is a single notification delivered through the bus.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}
