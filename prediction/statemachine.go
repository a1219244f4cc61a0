package prediction

import "fmt"

// State is a client-predicted entity's lifecycle stage:
// Predicting -> Rolling-Back -> Predicting (on correction), or
// Predicting -> Despawn-Pending -> Despawned (once the server confirms removal).
type State int

const (
	Predicting State = iota
	RollingBack
	DespawnPending
	Despawned
)

func (s State) String() string {
	switch s {
	case Predicting:
		return "predicting"
	case RollingBack:
		return "rolling_back"
	case DespawnPending:
		return "despawn_pending"
	case Despawned:
		return "despawned"
	default:
		return "unknown"
	}
}

// transitions enumerates every legal move; anything absent is rejected.
var transitions = map[State]map[State]bool{
	Predicting:      {RollingBack: true, DespawnPending: true},
	RollingBack:     {Predicting: true, DespawnPending: true},
	DespawnPending:  {Despawned: true, Predicting: true},
	Despawned:       {},
}

// Machine tracks one predicted entity's lifecycle state.
type Machine struct {
	state State
}

// NewMachine starts a predicted entity in the Predicting state.
func NewMachine() *Machine {
	return &Machine{state: Predicting}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	return m.state
}

// Transition moves to a new state, rejecting illegal transitions so a bug
// upstream surfaces immediately instead of corrupting prediction state.
func (m *Machine) Transition(to State) error {
	if !transitions[m.state][to] {
		return fmt.Errorf("prediction: illegal transition %s -> %s", m.state, to)
	}
	m.state = to
	return nil
}
