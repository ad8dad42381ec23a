package supervisor

// Phase is the lifecycle phase of a supervised job. Transitions only move
// forward: NotStarted -> Running -> Finished, and Finished is absorbing.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseFinished
)

var phaseNames = []string{
	"not started",
	"running",
	"finished",
}

func (p Phase) String() string {
	if int(p) < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}
