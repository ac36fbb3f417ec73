package events

type EventType string

const (
	EventTypeRouteCalculated EventType = "route_calculated"
	EventTypeCurrentLocation EventType = "current_location"
	EventTypePlanClosed      EventType = "plan_closed"
)

type Event interface {
	GetType() EventType
}

type RouteCalculatedEvent struct {
	PlanID          string  `json:"plan_id"`
	Mode            string  `json:"mode"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (e RouteCalculatedEvent) GetType() EventType {
	return EventTypeRouteCalculated
}

type CurrentLocationEvent struct {
	PlanID string  `json:"plan_id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

func (e CurrentLocationEvent) GetType() EventType {
	return EventTypeCurrentLocation
}

type PlanClosedEvent struct {
	PlanID string `json:"plan_id"`
}

func (e PlanClosedEvent) GetType() EventType {
	return EventTypePlanClosed
}

type EventBus struct {
	eventQueue chan Event
}

func NewEventBus() *EventBus {
	return &EventBus{
		eventQueue: make(chan Event, 100),
	}
}

func (eb *EventBus) GetChannel() chan Event {
	return eb.eventQueue
}

// Publish never blocks. Events are dropped when the queue is full or when
// no consumer is attached, so a nil or undrained bus cannot stall a session.
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	select {
	case eb.eventQueue <- event:
	default:
	}
}
