package generation

import "fmt"

// State of a generation batch.
type State string

const (
	StateValidating State = "validating"
	StateGenerating State = "generating"
	StateVerifying  State = "verifying"
	StateFinalizing State = "finalizing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateValidating: {StateGenerating, StateFailed},
	StateGenerating: {StateVerifying, StateFailed},
	StateVerifying:  {StateFinalizing, StateFailed},
	StateFinalizing: {StateSucceeded, StateFailed},
}

func (s State) Terminal() bool { return s == StateSucceeded || s == StateFailed }

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// machine tracks a batch's state. It is owned by the goroutine running
// Generate and is not safe for concurrent use.
type machine struct {
	state   State
	history []State
	onMove  func(from, to State)
}

func newMachine(onMove func(from, to State)) *machine {
	return &machine{state: StateValidating, history: []State{StateValidating}, onMove: onMove}
}

func (m *machine) moveTo(next State) error {
	if !canTransition(m.state, next) {
		return fmt.Errorf("illegal batch transition %s -> %s", m.state, next)
	}
	from := m.state
	m.state = next
	m.history = append(m.history, next)
	if m.onMove != nil {
		m.onMove(from, next)
	}
	return nil
}
