package store

// Phase is the state of the catalog screen.
//
//	Loading -> Populated | Empty | Failed
//
// Populated and Empty are the two faces of Ready. Leaving Ready or Failed
// takes an explicit refetch.
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhasePopulated Phase = "populated"
	PhaseEmpty     Phase = "empty"
	PhaseFailed    Phase = "failed"
)

// Ready reports whether the phase shows a computed view.
func (p Phase) Ready() bool {
	return p == PhasePopulated || p == PhaseEmpty
}

// PhaseOf maps a fetch status and the emptiness of the computed view to a
// screen phase.
func PhaseOf(status Status, viewEmpty bool) Phase {
	switch status {
	case StatusSuccess:
		if viewEmpty {
			return PhaseEmpty
		}
		return PhasePopulated
	case StatusError:
		return PhaseFailed
	default:
		return PhaseLoading
	}
}
