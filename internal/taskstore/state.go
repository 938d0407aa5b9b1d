package taskstore

// State is the lifecycle of a Store.
type State int

const (
	// StateEmpty: nothing loaded yet.
	StateEmpty State = iota
	// StateLoading: LoadAll in flight.
	StateLoading
	// StateReady: collection reflects the last successful server response.
	StateReady
	// StateBusy: a mutation is in flight.
	StateBusy
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	}
	return "unknown"
}
