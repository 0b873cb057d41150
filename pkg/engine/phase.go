package engine

// Phase is one step of the apply pipeline. The order of the pipeline is a
// hard invariant (position before velocity before everything else), so the
// sequence is modeled explicitly instead of being implied by control flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseNormalizing
	PhaseApplyingPosition
	PhaseSettlingDelay
	PhaseApplyingVelocity
	PhaseApplyingRemainder
	PhaseDisconnecting
	PhaseDone
	PhaseConnectionFailed
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseNormalizing:
		return "normalizing"
	case PhaseApplyingPosition:
		return "applying_position"
	case PhaseSettlingDelay:
		return "settling_delay"
	case PhaseApplyingVelocity:
		return "applying_velocity"
	case PhaseApplyingRemainder:
		return "applying_remainder"
	case PhaseDisconnecting:
		return "disconnecting"
	case PhaseDone:
		return "done"
	case PhaseConnectionFailed:
		return "connection_failed"
	default:
		return "unknown"
	}
}

// phaseTransitions lists the legal successors of each phase.
var phaseTransitions = map[Phase][]Phase{
	PhaseIdle:              {PhaseConnecting},
	PhaseConnecting:        {PhaseNormalizing, PhaseConnectionFailed},
	PhaseNormalizing:       {PhaseApplyingPosition},
	PhaseApplyingPosition:  {PhaseSettlingDelay},
	PhaseSettlingDelay:     {PhaseApplyingVelocity},
	PhaseApplyingVelocity:  {PhaseApplyingRemainder},
	PhaseApplyingRemainder: {PhaseDisconnecting},
	PhaseDisconnecting:     {PhaseDone},
	PhaseDone:              {PhaseConnecting},
	PhaseConnectionFailed:  {PhaseConnecting},
}

// CanTransition reports whether moving from one phase to another is legal.
func CanTransition(from, to Phase) bool {
	for _, n := range phaseTransitions[from] {
		if n == to {
			return true
		}
	}
	return false
}
