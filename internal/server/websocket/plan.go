package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorillaWebsocket "github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/stp-explore/ilha-server/internal/metrics"
	"github.com/stp-explore/ilha-server/internal/planner"
	"github.com/stp-explore/ilha-server/internal/routing"
	"github.com/stp-explore/ilha-server/internal/server/apimodels"
	"github.com/stp-explore/ilha-server/internal/utils"
	"github.com/stp-explore/ilha-server/internal/websocket"
)

var (
	ErrNotConnected     = errors.New("no connected client")
	ErrPermissionDenied = errors.New("position permission denied")
)

const positionTimeout = 30 * time.Second

type bidiChannel struct {
	open     bool
	inbound  chan apimodels.PositionRequest
	outbound chan apimodels.PositionResponse
}

type plan struct {
	bidiChannel    *bidiChannel
	channelWatcher *utils.ChannelWatcher[apimodels.PositionResponse]
	writer         websocket.Writer
}

// PlanSocket owns one websocket per plan. It answers the planner's position
// requests through a get_position round trip with the attached client, and
// pushes planner notifications back out.
type PlanSocket struct {
	websocket.Websocket
	connectedClients *xsync.Counter
	plans            *xsync.MapOf[string, *plan]
	planner          *planner.Planner
	metrics          *metrics.Metrics
}

func CreatePlanSocket(metrics *metrics.Metrics) *PlanSocket {
	return &PlanSocket{
		connectedClients: xsync.NewCounter(),
		plans:            xsync.NewMapOf[string, *plan](),
		metrics:          metrics,
	}
}

// SetPlanner breaks the construction cycle: the socket is the planner's
// position provider, so it exists before the planner does.
func (s *PlanSocket) SetPlanner(p *planner.Planner) {
	s.planner = p
}

// CurrentPosition implements planner.PositionProvider.
func (s *PlanSocket) CurrentPosition(ctx context.Context, planID string) (planner.Position, error) {
	active, loaded := s.plans.Load(planID)
	if !loaded || !active.bidiChannel.open {
		return planner.Position{}, ErrNotConnected
	}

	call := apimodels.PositionRequest{
		ID:   uuid.New().String(),
		Type: apimodels.MessageTypeGetPosition,
	}
	responseChan := make(chan apimodels.PositionResponse, 1)
	active.channelWatcher.Subscribe(call.ID, func(response apimodels.PositionResponse) {
		responseChan <- response
	})

	active.bidiChannel.inbound <- call

	ctx, cancel := context.WithTimeout(ctx, positionTimeout)
	defer cancel()
	select {
	case <-ctx.Done():
		active.channelWatcher.Unsubscribe(call.ID)
		return planner.Position{}, ctx.Err()
	case response := <-responseChan:
		if response.Denied {
			return planner.Position{}, ErrPermissionDenied
		}
		if response.Error != "" {
			return planner.Position{}, errors.New(response.Error)
		}
		return planner.Position{Lat: response.Lat, Lng: response.Lng}, nil
	}
}

// RouteCalculated implements planner.Listener.
func (s *PlanSocket) RouteCalculated(planID string, route routing.Route) {
	s.push(planID, apimodels.RouteCalculatedPush{
		Type:            apimodels.MessageTypeRouteCalculated,
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		Distance:        routing.FormatDistance(route.DistanceMeters),
		Duration:        routing.FormatDuration(route.DurationSeconds),
	})
}

// CurrentLocationChange implements planner.Listener.
func (s *PlanSocket) CurrentLocationChange(planID string, position planner.Position) {
	s.push(planID, apimodels.CurrentLocationPush{
		Type: apimodels.MessageTypeCurrentLocation,
		Lat:  position.Lat,
		Lng:  position.Lng,
	})
}

func (s *PlanSocket) push(planID string, payload any) {
	active, loaded := s.plans.Load(planID)
	if !loaded {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("Error marshalling push payload", "error", err)
		return
	}
	active.writer.WriteMessage(websocket.Message{
		Type: gorillaWebsocket.TextMessage,
		Data: data,
	})
}

func (s *PlanSocket) OnMessage(_ context.Context, _ *http.Request, _ websocket.Writer, msg []byte, msgType int, planID string) {
	active, loaded := s.plans.Load(planID)
	if !loaded {
		slog.Warn("Plan not connected", "plan", planID)
		return
	}

	var response apimodels.PositionResponse
	if err := json.Unmarshal(msg, &response); err != nil {
		slog.Warn("Error unmarshalling position response", "error", err)
		return
	}
	if response.ID == "" {
		slog.Warn("Unknown message type")
		slog.Info("Message", "type", msgType, "msg", msg)
		return
	}
	if active.bidiChannel.open {
		active.bidiChannel.outbound <- response
	}
}

func (s *PlanSocket) OnConnect(ctx context.Context, _ *http.Request, w websocket.Writer, planID string) {
	bidi := bidiChannel{
		open:     true,
		inbound:  make(chan apimodels.PositionRequest),
		outbound: make(chan apimodels.PositionResponse),
	}

	active := plan{
		bidiChannel:    &bidi,
		channelWatcher: utils.NewChannelWatcher(bidi.outbound),
		writer:         w,
	}
	go active.channelWatcher.WatchChannel(func(response apimodels.PositionResponse) string {
		return response.ID
	})
	s.plans.Store(planID, &active)
	s.connectedClients.Inc()
	s.metrics.IncrementPlanSockets(planID)

	if session, ok := s.planner.GetSession(planID); ok {
		session.SetListener(s)
	}

	slog.Info("Plan websocket connected", "plan", planID)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case call, more := <-bidi.inbound:
				if !more {
					return
				}
				jsonData, err := json.Marshal(call)
				if err != nil {
					slog.Warn("Error marshalling call data", "error", err)
					continue
				}
				w.WriteMessage(websocket.Message{
					Type: gorillaWebsocket.TextMessage,
					Data: jsonData,
				})
			}
		}
	}()
}

func (s *PlanSocket) OnDisconnect(_ context.Context, _ *http.Request, planID string) {
	s.connectedClients.Dec()
	s.metrics.DecrementPlanSockets(planID)
	slog.Info("Plan websocket disconnected", "plan", planID)

	if session, ok := s.planner.GetSession(planID); ok {
		session.SetListener(nil)
	}

	active, loaded := s.plans.LoadAndDelete(planID)
	if !loaded {
		return
	}
	active.bidiChannel.open = false
	close(active.bidiChannel.inbound)
	close(active.bidiChannel.outbound)
}
