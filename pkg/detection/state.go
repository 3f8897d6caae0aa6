package detection

import (
	"fmt"

	"github.com/menta2k/focuscrop/pkg/types"
)

// State is a step of the detection chain
type State int

const (
	StateIdle State = iota
	StateAwaitingFace
	StateAwaitingObject
	StateAwaitingAttention
	StateResolved
	StateGeometricFallback
)

var stateNames = map[State]string{
	StateIdle:              "idle",
	StateAwaitingFace:      "awaiting_face",
	StateAwaitingObject:    "awaiting_object",
	StateAwaitingAttention: "awaiting_attention",
	StateResolved:          "resolved",
	StateGeometricFallback: "geometric_fallback",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition can leave s
func (s State) Terminal() bool {
	return s == StateResolved || s == StateGeometricFallback
}

// Event drives a state transition
type Event int

const (
	EventStart Event = iota
	EventAccepted
	EventRejected
	EventGlobalTimeout
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventAccepted:
		return "accepted"
	case EventRejected:
		return "rejected"
	case EventGlobalTimeout:
		return "global_timeout"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// AwaitingState returns the state in which method m is being waited on
func AwaitingState(m types.Method) (State, bool) {
	switch m {
	case types.MethodFace:
		return StateAwaitingFace, true
	case types.MethodObject:
		return StateAwaitingObject, true
	case types.MethodAttention:
		return StateAwaitingAttention, true
	default:
		return StateIdle, false
	}
}

// Method returns the detector method an awaiting state waits on
func (s State) Method() (types.Method, bool) {
	switch s {
	case StateAwaitingFace:
		return types.MethodFace, true
	case StateAwaitingObject:
		return types.MethodObject, true
	case StateAwaitingAttention:
		return types.MethodAttention, true
	default:
		return types.MethodGeometric, false
	}
}

// Transition is the chain's transition table. It is total: every state and
// event pair has an answer, and pairs that make no sense leave the state
// unchanged. order is the fallback order of detector methods.
func Transition(s State, e Event, order []types.Method) State {
	if s.Terminal() {
		return s
	}
	if e == EventGlobalTimeout {
		return StateGeometricFallback
	}

	switch s {
	case StateIdle:
		if e == EventStart {
			return awaitingAt(order, 0)
		}
		return s
	default:
		m, _ := s.Method()
		switch e {
		case EventAccepted:
			return StateResolved
		case EventRejected:
			return awaitingAt(order, indexOf(order, m)+1)
		default:
			return s
		}
	}
}

func awaitingAt(order []types.Method, i int) State {
	for ; i >= 0 && i < len(order); i++ {
		if s, ok := AwaitingState(order[i]); ok {
			return s
		}
	}
	return StateGeometricFallback
}

// indexOf returns the position of m in order. A method missing from order
// returns len(order) so that rejecting it ends the chain.
func indexOf(order []types.Method, m types.Method) int {
	for i, o := range order {
		if o == m {
			return i
		}
	}
	return len(order)
}
