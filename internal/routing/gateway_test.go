package routing_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stp-explore/ilha-server/internal/routing"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *routing.Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	gateway, err := routing.NewGateway(routing.GatewayConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return gateway
}

func TestComputeRoute(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody struct {
		Coordinates [][]float64 `json:"coordinates"`
		Radiuses    []int       `json:"radiuses"`
	}

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes":[{"summary":{"distance":1500,"duration":300},` +
			`"geometry":{"coordinates":[[6.73,0.33],[6.75,0.36],[6.80,0.40]]}}]}`))
	})

	origin := routing.Coordinate{Lng: 6.7273, Lat: 0.3302}
	destination := routing.Coordinate{Lng: 6.8042, Lat: 0.4031}
	route, err := gateway.ComputeRoute(context.Background(), origin, destination, routing.ModeWalking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v2/directions/foot-walking" {
		t.Errorf("path = %q, want foot-walking directions", gotPath)
	}
	if gotAuth != "test-key" {
		t.Errorf("Authorization = %q, want test-key", gotAuth)
	}
	if len(gotBody.Coordinates) != 2 {
		t.Fatalf("expected 2 coordinate pairs, got %d", len(gotBody.Coordinates))
	}
	// Longitude first on the wire.
	if gotBody.Coordinates[0][0] != origin.Lng || gotBody.Coordinates[0][1] != origin.Lat {
		t.Errorf("origin pair = %v, want [lng, lat]", gotBody.Coordinates[0])
	}
	if gotBody.Coordinates[1][0] != destination.Lng || gotBody.Coordinates[1][1] != destination.Lat {
		t.Errorf("destination pair = %v, want [lng, lat]", gotBody.Coordinates[1])
	}
	if len(gotBody.Radiuses) != 2 || gotBody.Radiuses[0] != -1 || gotBody.Radiuses[1] != -1 {
		t.Errorf("radiuses = %v, want [-1 -1]", gotBody.Radiuses)
	}

	if route.DistanceMeters != 1500 {
		t.Errorf("distance = %v, want 1500", route.DistanceMeters)
	}
	if route.DurationSeconds != 300 {
		t.Errorf("duration = %v, want 300", route.DurationSeconds)
	}
	if len(route.Coordinates) != 3 {
		t.Fatalf("expected 3 path points, got %d", len(route.Coordinates))
	}
	if route.Coordinates[0] != (routing.Coordinate{Lng: 6.73, Lat: 0.33}) {
		t.Errorf("first point = %+v, want near origin", route.Coordinates[0])
	}
	if route.Coordinates[2] != (routing.Coordinate{Lng: 6.80, Lat: 0.40}) {
		t.Errorf("last point = %+v, want near destination", route.Coordinates[2])
	}
}

func TestComputeRouteUpstreamError(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Unable to find a route between the given points"))
	})

	_, err := gateway.ComputeRoute(context.Background(),
		routing.Coordinate{}, routing.Coordinate{}, routing.ModeDriving)
	var computeErr *routing.ComputeError
	if !errors.As(err, &computeErr) {
		t.Fatalf("expected ComputeError, got %v", err)
	}
	if want := "Unable to find a route between the given points"; !strings.Contains(computeErr.Detail, want) {
		t.Errorf("detail = %q, want it to carry the upstream body", computeErr.Detail)
	}
}

func TestComputeRouteAuthRejected(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Access to this API has been disallowed"))
	})

	_, err := gateway.ComputeRoute(context.Background(),
		routing.Coordinate{}, routing.Coordinate{}, routing.ModeDriving)
	var authErr *routing.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestComputeRouteEmptyRoutes(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[]}`))
	})

	_, err := gateway.ComputeRoute(context.Background(),
		routing.Coordinate{}, routing.Coordinate{}, routing.ModeDriving)
	var computeErr *routing.ComputeError
	if !errors.As(err, &computeErr) {
		t.Fatalf("expected ComputeError, got %v", err)
	}
}

func TestComputeRouteMissingSummary(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[{"geometry":{"coordinates":[[6.73,0.33],[6.80,0.40]]}}]}`))
	})

	_, err := gateway.ComputeRoute(context.Background(),
		routing.Coordinate{}, routing.Coordinate{}, routing.ModeDriving)
	var computeErr *routing.ComputeError
	if !errors.As(err, &computeErr) {
		t.Fatalf("expected ComputeError, got %v", err)
	}
}

func TestNewGatewayMissingKey(t *testing.T) {
	t.Parallel()

	_, err := routing.NewGateway(routing.GatewayConfig{})
	var authErr *routing.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}
