package session

import (
	"fmt"
	"slices"
	"sync"

	"github.com/miccroten/mtadmin/internal/bus"
)

// Phase represents the console's session lifecycle state.
type Phase string

const (
	SignedOut  Phase = "SIGNED_OUT"
	SigningIn  Phase = "SIGNING_IN"
	Active     Phase = "ACTIVE"
	IdleWarned Phase = "IDLE_WARNED"
)

// validTransitions defines allowed phase transitions. There is no
// IdleWarned→Active edge: the inactivity window is fixed from dashboard
// activation, never reset by activity.
var validTransitions = map[Phase][]Phase{
	SignedOut:  {SigningIn},
	SigningIn:  {Active, SignedOut},
	Active:     {IdleWarned, SignedOut},
	IdleWarned: {SignedOut},
}

// Machine tracks and enforces session phase transitions, publishing each
// change on the bus.
type Machine struct {
	mu      sync.RWMutex
	current Phase
	bus     *bus.Bus
}

// NewMachine creates a phase machine starting in SignedOut.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: SignedOut,
		bus:     b,
	}
}

// Current returns the current phase.
func (m *Machine) Current() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new phase. Returns an error if the
// transition is not allowed.
func (m *Machine) Transition(to Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid session transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind: bus.KindPhaseChanged,
			Payload: PhaseChange{
				From: from,
				To:   to,
			},
		})
	}
	return nil
}

// PhaseChange is the payload for phase change events.
type PhaseChange struct {
	From Phase
	To   Phase
}
