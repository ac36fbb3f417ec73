package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/stp-explore/ilha-server/internal/events"
	"github.com/stp-explore/ilha-server/internal/routing"
)

// Position is a device position reported by the client.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type EndpointKind string

const (
	KindNone            EndpointKind = ""
	KindCatalog         EndpointKind = "catalog"
	KindCurrentPosition EndpointKind = "current_position"
)

type Slot string

const (
	SlotOrigin      Slot = "origin"
	SlotDestination Slot = "destination"
)

func ParseSlot(s string) (Slot, bool) {
	switch s {
	case string(SlotOrigin):
		return SlotOrigin, true
	case string(SlotDestination):
		return SlotDestination, true
	}
	return "", false
}

// EndpointSelection is one endpoint slot of a plan. An unresolved slot has
// KindNone and a zero coordinate.
type EndpointSelection struct {
	Kind       EndpointKind       `json:"kind"`
	LocationID string             `json:"location_id,omitempty"`
	Coord      routing.Coordinate `json:"coord"`
}

func (e EndpointSelection) Resolved() bool {
	return e.Kind != KindNone
}

// Session is the state machine of one route plan. All fields behind mu;
// gateway and provider I/O happens with the lock released, and completions
// are sequence checked so a slow early response never overwrites a newer one.
type Session struct {
	ID      string
	planner *Planner

	mu          sync.Mutex
	origin      EndpointSelection
	destination EndpointSelection
	mode        routing.Mode
	position    *Position
	route       *routing.Route
	lastError   string
	listener    Listener

	pendingResolutions int
	pendingComputes    int
	originGen          uint64
	destinationGen     uint64
	routeSeq           uint64
}

// Snapshot is a point-in-time copy of the session state for the API layer.
type Snapshot struct {
	ID                string            `json:"id"`
	Origin            EndpointSelection `json:"origin"`
	Destination       EndpointSelection `json:"destination"`
	Mode              routing.Mode      `json:"mode"`
	ResolvingPosition bool              `json:"resolving_position"`
	ComputingRoute    bool              `json:"computing_route"`
	Position          *Position         `json:"position,omitempty"`
	Route             *routing.Route    `json:"route,omitempty"`
	LastError         string            `json:"last_error,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := Snapshot{
		ID:                s.ID,
		Origin:            s.origin,
		Destination:       s.destination,
		Mode:              s.mode,
		ResolvingPosition: s.pendingResolutions > 0,
		ComputingRoute:    s.pendingComputes > 0,
		LastError:         s.lastError,
	}
	if s.position != nil {
		position := *s.position
		snapshot.Position = &position
	}
	if s.route != nil {
		route := *s.route
		snapshot.Route = &route
	}
	return snapshot
}

// SetListener attaches the single push subscriber for this session,
// replacing any previous one. A nil listener detaches.
func (s *Session) SetListener(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = listener
}

func (s *Session) SelectOrigin(id string) error {
	return s.selectCatalog(SlotOrigin, id)
}

func (s *Session) SelectDestination(id string) error {
	return s.selectCatalog(SlotDestination, id)
}

func (s *Session) selectCatalog(slot Slot, id string) error {
	location, ok := s.planner.catalog.ByID(id)
	if !ok {
		return &ValidationError{Message: fmt.Sprintf("unknown location id %q", id)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.slot(slot) = EndpointSelection{
		Kind:       KindCatalog,
		LocationID: location.Slug,
		Coord:      routing.Coordinate{Lng: location.Lng, Lat: location.Lat},
	}
	s.bumpGen(slot)
	s.clearRouteLocked()
	s.lastError = ""
	return nil
}

// UseCurrentPosition asks the attached client for its position and, on
// success, points the slot at it. The slot keeps its previous value while
// the resolution is pending and on failure. A selection made while the
// resolution is in flight wins over the late reply.
func (s *Session) UseCurrentPosition(ctx context.Context, slot Slot) (Position, error) {
	s.mu.Lock()
	gen := s.bumpGen(slot)
	s.pendingResolutions++
	s.mu.Unlock()

	position, err := s.planner.positions.CurrentPosition(ctx, s.ID)

	s.mu.Lock()
	s.pendingResolutions--
	if err != nil {
		geoErr := &GeolocationError{Err: err}
		if s.gen(slot) == gen {
			s.lastError = geoErr.Error()
		}
		s.mu.Unlock()
		s.planner.metrics.IncrementGeolocationResolutions("error")
		return Position{}, geoErr
	}
	if s.gen(slot) != gen {
		s.mu.Unlock()
		s.planner.metrics.IncrementGeolocationResolutions("superseded")
		return Position{}, ErrSuperseded
	}
	s.position = &position
	*s.slot(slot) = EndpointSelection{
		Kind:  KindCurrentPosition,
		Coord: routing.Coordinate{Lng: position.Lng, Lat: position.Lat},
	}
	s.clearRouteLocked()
	s.lastError = ""
	listener := s.listener
	s.mu.Unlock()

	s.planner.metrics.IncrementGeolocationResolutions("success")
	s.planner.bus.Publish(events.CurrentLocationEvent{
		PlanID: s.ID,
		Lat:    position.Lat,
		Lng:    position.Lng,
	})
	if listener != nil {
		listener.CurrentLocationChange(s.ID, position)
	}
	return position, nil
}

func (s *Session) SetMode(mode routing.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.clearRouteLocked()
}

// ComputeRoute calls the routing gateway for the current endpoints and mode.
// Overlapping calls are permitted; the call issued last wins and earlier
// callers get ErrSuperseded.
func (s *Session) ComputeRoute(ctx context.Context) (routing.Route, error) {
	s.mu.Lock()
	if !s.origin.Resolved() || !s.destination.Resolved() {
		s.mu.Unlock()
		return routing.Route{}, &ValidationError{Message: "missing origin or destination"}
	}
	s.routeSeq++
	seq := s.routeSeq
	s.pendingComputes++
	origin := s.origin.Coord
	destination := s.destination.Coord
	mode := s.mode
	s.mu.Unlock()

	route, err := s.planner.gateway.ComputeRoute(ctx, origin, destination, mode)

	s.mu.Lock()
	s.pendingComputes--
	if seq != s.routeSeq {
		s.mu.Unlock()
		s.planner.metrics.IncrementRouteComputations(string(mode), "superseded")
		return routing.Route{}, ErrSuperseded
	}
	if err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		s.planner.metrics.IncrementRouteComputations(string(mode), "error")
		return routing.Route{}, err
	}
	s.route = &route
	s.lastError = ""
	listener := s.listener
	s.mu.Unlock()

	s.planner.metrics.IncrementRouteComputations(string(mode), "success")
	s.planner.bus.Publish(events.RouteCalculatedEvent{
		PlanID:          s.ID,
		Mode:            string(mode),
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
	})
	if listener != nil {
		listener.RouteCalculated(s.ID, route)
	}
	return route, nil
}

// ApplyInitialDestination pre-fills the destination from a share link.
// Applying the same destination twice is a no-op, so a client that replays
// its entry URL does not lose state.
func (s *Session) ApplyInitialDestination(id string) error {
	location, ok := s.planner.catalog.ByID(id)
	if !ok {
		return &ValidationError{Message: fmt.Sprintf("unknown location id %q", id)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destination.Kind == KindCatalog && s.destination.LocationID == location.Slug {
		return nil
	}
	s.destination = EndpointSelection{
		Kind:       KindCatalog,
		LocationID: location.Slug,
		Coord:      routing.Coordinate{Lng: location.Lng, Lat: location.Lat},
	}
	s.bumpGen(SlotOrigin)
	s.bumpGen(SlotDestination)
	s.clearRouteLocked()
	return nil
}

// clearRouteLocked drops the stored route and invalidates in-flight
// computations. Callers hold mu.
func (s *Session) clearRouteLocked() {
	s.route = nil
	s.routeSeq++
}

func (s *Session) slot(slot Slot) *EndpointSelection {
	if slot == SlotOrigin {
		return &s.origin
	}
	return &s.destination
}

func (s *Session) bumpGen(slot Slot) uint64 {
	if slot == SlotOrigin {
		s.originGen++
		return s.originGen
	}
	s.destinationGen++
	return s.destinationGen
}

func (s *Session) gen(slot Slot) uint64 {
	if slot == SlotOrigin {
		return s.originGen
	}
	return s.destinationGen
}
