package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/osrm"
	"lintang/routeplanner/pkg/position"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MessageMissingEndpoints = "Please enter both source and destination."

type Geocoder interface {
	Resolve(ctx context.Context, query string) (datastructure.Coordinate, error)
}

type RouteResolver interface {
	Route(ctx context.Context, start, end *datastructure.Coordinate) (osrm.Result, error)
}

// Workflow turns two place names into a route. It is the only writer of its SessionState.
//
// Every search or swap takes a generation number. Edits, swaps and newer searches bump the
// generation, and a cycle only writes its results while its number is still the latest, so
// a slow response can never overwrite a newer one. Network calls run outside the lock.
type Workflow struct {
	geocoder Geocoder
	router   RouteResolver
	log      *zap.Logger

	mu         sync.Mutex
	state      SessionState
	generation uint64
	sourceRev  uint64
	listeners  []func(SessionState)
}

func New(geocoder Geocoder, router RouteResolver, log *zap.Logger) *Workflow {
	return &Workflow{
		geocoder: geocoder,
		router:   router,
		log:      log,
	}
}

// OnChange registers fn to receive a snapshot after every state change.
func (w *Workflow) OnChange(fn func(SessionState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

func (w *Workflow) Snapshot() SessionState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// update runs fn under the lock. When fn reports a change the listeners get the new state.
func (w *Workflow) update(fn func(s *SessionState) bool) (SessionState, bool) {
	w.mu.Lock()
	changed := fn(&w.state)
	snap := w.state.Clone()
	var listeners []func(SessionState)
	if changed {
		listeners = append(listeners, w.listeners...)
	}
	w.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return snap, changed
}

// invalidateLocked drops the route and every in-flight cycle. Caller holds w.mu.
func (w *Workflow) invalidateLocked(s *SessionState) {
	s.Route = nil
	s.Loading = false
	w.generation++
}

func (w *Workflow) SetSourceQuery(q string) SessionState {
	snap, _ := w.update(func(s *SessionState) bool {
		if s.SourceQuery == q {
			return false
		}
		s.SourceQuery = q
		s.Source = nil
		w.sourceRev++
		w.invalidateLocked(s)
		return true
	})
	return snap
}

func (w *Workflow) SetDestinationQuery(q string) SessionState {
	snap, _ := w.update(func(s *SessionState) bool {
		if s.DestinationQuery == q {
			return false
		}
		s.DestinationQuery = q
		s.Destination = nil
		w.invalidateLocked(s)
		return true
	})
	return snap
}

// Locate seeds the source with the device position. A failure leaves the source untouched.
// The position is dropped when the source was edited while the request was running.
func (w *Workflow) Locate(ctx context.Context, loc position.Locator) (Result, error) {
	w.mu.Lock()
	rev := w.sourceRev
	w.mu.Unlock()

	coord, err := loc.Locate(ctx)
	if err != nil {
		w.log.Warn("error getting location", zap.Error(err))
		if domain.CodeOf(err) == nil {
			err = domain.WrapErrorf(err, domain.ErrPositionUnavailable, "position unavailable")
		}
		return Result{Outcome: OutcomePositionUnavailable, State: w.Snapshot()}, err
	}

	snap, applied := w.update(func(s *SessionState) bool {
		if w.sourceRev != rev {
			return false
		}
		s.Source = &coord
		s.SourceQuery = CurrentLocationLabel
		w.sourceRev++
		w.invalidateLocked(s)
		return true
	})
	if !applied {
		return Result{Outcome: OutcomeStale, State: snap}, nil
	}
	w.log.Debug("source seeded from device position", zap.Float64("lat", coord.Lat), zap.Float64("lon", coord.Lon))
	return Result{Outcome: OutcomeLocated, State: snap}, nil
}

// UseCurrentLocation switches the source back to the device position.
func (w *Workflow) UseCurrentLocation(ctx context.Context, loc position.Locator) (Result, error) {
	w.SetSourceQuery(CurrentLocationLabel)
	return w.Locate(ctx, loc)
}

// Search resolves the source (unless already resolved) and the destination, then fetches the
// route between them. Both texts must be non-empty, otherwise nothing is requested.
func (w *Workflow) Search(ctx context.Context) (Result, error) {
	var (
		gen                 uint64
		source, destination *datastructure.Coordinate
		srcQuery, dstQuery  string
		rejected            bool
	)
	snap, _ := w.update(func(s *SessionState) bool {
		srcQuery = strings.TrimSpace(s.SourceQuery)
		dstQuery = strings.TrimSpace(s.DestinationQuery)
		if srcQuery == "" || dstQuery == "" {
			rejected = true
			return false
		}
		w.generation++
		gen = w.generation
		source = datastructure.CopyCoordinate(s.Source)
		destination = datastructure.CopyCoordinate(s.Destination)
		s.Loading = true
		return true
	})
	if rejected {
		return Result{Outcome: OutcomeRejected, State: snap}, domain.WrapErrorf(nil, domain.ErrValidation, MessageMissingEndpoints)
	}
	log := w.cycleLogger(gen)

	if source == nil {
		if srcQuery == CurrentLocationLabel {
			return w.fail(log, gen, "source", domain.WrapErrorf(nil, domain.ErrPositionUnavailable, "current location is not available"))
		}
		coord, err := w.geocoder.Resolve(ctx, srcQuery)
		if err != nil {
			return w.fail(log, gen, "source", err)
		}
		snap, ok := w.update(func(s *SessionState) bool {
			if gen != w.generation {
				return false
			}
			s.Source = datastructure.CopyCoordinate(&coord)
			return true
		})
		if !ok {
			return Result{Outcome: OutcomeStale, State: snap}, nil
		}
		source = &coord
	}

	// the current-location label is never geocoded, on either side
	var dest datastructure.Coordinate
	switch {
	case dstQuery == CurrentLocationLabel && destination != nil:
		dest = *destination
	case dstQuery == CurrentLocationLabel:
		return w.fail(log, gen, "destination", domain.WrapErrorf(nil, domain.ErrPositionUnavailable, "current location is not available"))
	default:
		coord, err := w.geocoder.Resolve(ctx, dstQuery)
		if err != nil {
			return w.fail(log, gen, "destination", err)
		}
		dest = coord
	}
	snap, ok := w.update(func(s *SessionState) bool {
		if gen != w.generation {
			return false
		}
		if s.Destination == nil || *s.Destination != dest {
			s.Route = nil
		}
		s.Destination = datastructure.CopyCoordinate(&dest)
		return true
	})
	if !ok {
		return Result{Outcome: OutcomeStale, State: snap}, nil
	}

	return w.route(ctx, log, gen, source, &dest)
}

// Swap exchanges source and destination, texts and coordinates together in one step, and
// re-routes when both coordinates are known.
func (w *Workflow) Swap(ctx context.Context) (Result, error) {
	var (
		gen      uint64
		src, dst *datastructure.Coordinate
	)
	snap, _ := w.update(func(s *SessionState) bool {
		s.SourceQuery, s.DestinationQuery = s.DestinationQuery, s.SourceQuery
		s.Source, s.Destination = s.Destination, s.Source
		w.sourceRev++
		w.invalidateLocked(s)
		gen = w.generation
		src = datastructure.CopyCoordinate(s.Source)
		dst = datastructure.CopyCoordinate(s.Destination)
		s.Loading = src != nil && dst != nil
		return true
	})
	if src == nil || dst == nil {
		return Result{Outcome: OutcomeSwapped, State: snap}, nil
	}
	return w.route(ctx, w.cycleLogger(gen), gen, src, dst)
}

func (w *Workflow) cycleLogger(gen uint64) *zap.Logger {
	return w.log.With(zap.String("search_id", uuid.NewString()), zap.Uint64("generation", gen))
}

func (w *Workflow) route(ctx context.Context, log *zap.Logger, gen uint64, src, dst *datastructure.Coordinate) (Result, error) {
	res, err := w.router.Route(ctx, src, dst)
	if err != nil {
		return w.fail(log, gen, "route", err)
	}

	outcome := OutcomeNoRoute
	snap, ok := w.update(func(s *SessionState) bool {
		if gen != w.generation {
			return false
		}
		s.Loading = false
		if res.Outcome == osrm.OutcomeRouted && len(res.Route.Geometry) > 0 {
			r := res.Route.Clone()
			s.Route = &r
			outcome = OutcomeResolved
		} else {
			s.Route = nil
		}
		return true
	})
	if !ok {
		return Result{Outcome: OutcomeStale, State: snap}, nil
	}

	if outcome == OutcomeNoRoute {
		log.Info("no route found", zap.Stringer("router_outcome", res.Outcome))
	}
	return Result{Outcome: outcome, State: snap}, nil
}

// fail clears the loading flag of the current cycle and keeps every resolved value.
func (w *Workflow) fail(log *zap.Logger, gen uint64, stage string, err error) (Result, error) {
	snap, ok := w.update(func(s *SessionState) bool {
		if gen != w.generation {
			return false
		}
		s.Loading = false
		return true
	})
	if !ok {
		log.Debug("dropping failure of a superseded search", zap.String("stage", stage), zap.Error(err))
		return Result{Outcome: OutcomeStale, State: snap}, nil
	}

	fields := []zap.Field{zap.String("stage", stage), zap.Error(err)}
	if cause := errors.Unwrap(err); cause != nil {
		fields = append(fields, zap.NamedError("cause", cause))
	}
	log.Warn("route resolution failed", fields...)
	return Result{Outcome: OutcomeFailed, State: snap}, err
}
