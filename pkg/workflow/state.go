package workflow

import "lintang/routeplanner/pkg/datastructure"

// CurrentLocationLabel is the source text shown once the device position seeded the source.
const CurrentLocationLabel = "Your Current Location"

// SessionState is everything the map needs to draw one search. Only Workflow mutates it;
// everybody else gets a copy from Snapshot.
type SessionState struct {
	SourceQuery      string
	DestinationQuery string

	Source      *datastructure.Coordinate
	Destination *datastructure.Coordinate

	// Route is nil whenever Source or Destination is nil.
	Route *datastructure.Route

	Loading bool
}

// Clone deep copies the state so the caller can keep it while the workflow moves on.
func (s SessionState) Clone() SessionState {
	cp := s
	cp.Source = datastructure.CopyCoordinate(s.Source)
	cp.Destination = datastructure.CopyCoordinate(s.Destination)
	if s.Route != nil {
		r := s.Route.Clone()
		cp.Route = &r
	}
	return cp
}

func (s SessionState) HasRoute() bool {
	return s.Source != nil && s.Destination != nil && s.Route != nil && len(s.Route.Geometry) > 0
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeRejected means the search was refused before any request was made.
	OutcomeRejected
	OutcomeLocated
	OutcomePositionUnavailable
	OutcomeResolved
	OutcomeNoRoute
	OutcomeFailed
	// OutcomeStale means a newer operation superseded this one and its result was dropped.
	OutcomeStale
	OutcomeSwapped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeLocated:
		return "located"
	case OutcomePositionUnavailable:
		return "position_unavailable"
	case OutcomeResolved:
		return "resolved"
	case OutcomeNoRoute:
		return "no_route"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	case OutcomeSwapped:
		return "swapped"
	default:
		return "none"
	}
}

// Result reports what an operation did, with the state right after it.
type Result struct {
	Outcome Outcome
	State   SessionState
}
