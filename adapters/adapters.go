// Package adapters contains the data-flow adapters that translate backend
// state into UI-observable state. Control flow is uniform: a UI event calls
// an adapter method, the adapter mutates the backend, the backend pushes a
// new snapshot, and the adapter republishes derived view state. Adapters
// never retry; each failure is local and terminal until the next call.
package adapters

// Phase is the lifecycle position of an adapter's published state.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// MarshalText lets Phase render as its name in JSON responses.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
