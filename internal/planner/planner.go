package planner

import (
	"context"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/stp-explore/ilha-server/internal/catalog"
	"github.com/stp-explore/ilha-server/internal/events"
	"github.com/stp-explore/ilha-server/internal/metrics"
	"github.com/stp-explore/ilha-server/internal/routing"
)

// RouteComputer is the slice of the routing gateway the planner needs.
type RouteComputer interface {
	ComputeRoute(ctx context.Context, origin routing.Coordinate, destination routing.Coordinate, mode routing.Mode) (routing.Route, error)
}

// PositionProvider resolves the device position of the client attached to a
// plan. Implemented by the websocket layer via a get_position round trip.
type PositionProvider interface {
	CurrentPosition(ctx context.Context, planID string) (Position, error)
}

// Listener receives push notifications for a single plan. At most one
// listener is attached per session, by the session's websocket.
type Listener interface {
	RouteCalculated(planID string, route routing.Route)
	CurrentLocationChange(planID string, position Position)
}

// Planner owns every live planning session and the shared dependencies the
// sessions act through.
type Planner struct {
	catalog   *catalog.Store
	gateway   RouteComputer
	positions PositionProvider
	metrics   *metrics.Metrics
	bus       *events.EventBus
	sessions  *xsync.MapOf[string, *Session]
}

func NewPlanner(cat *catalog.Store, gateway RouteComputer, positions PositionProvider, metrics *metrics.Metrics, bus *events.EventBus) *Planner {
	return &Planner{
		catalog:   cat,
		gateway:   gateway,
		positions: positions,
		metrics:   metrics,
		bus:       bus,
		sessions:  xsync.NewMapOf[string, *Session](),
	}
}

func (p *Planner) CreateSession() *Session {
	session := &Session{
		ID:      uuid.New().String(),
		planner: p,
		mode:    routing.ModeDriving,
	}
	p.sessions.Store(session.ID, session)
	p.metrics.IncrementPlanSessions()
	return session
}

func (p *Planner) GetSession(id string) (*Session, bool) {
	return p.sessions.Load(id)
}

func (p *Planner) HasSession(id string) bool {
	_, ok := p.sessions.Load(id)
	return ok
}

func (p *Planner) DeleteSession(id string) bool {
	_, loaded := p.sessions.LoadAndDelete(id)
	if loaded {
		p.metrics.DecrementPlanSessions()
		p.bus.Publish(events.PlanClosedEvent{PlanID: id})
	}
	return loaded
}
