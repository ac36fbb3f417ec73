package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openrouteservice.org"

	defaultTimeout = 10 * time.Second

	// The service snaps endpoints to the nearest routable point; -1 means
	// an unlimited search radius.
	unlimitedSnapRadius = -1
)

// Gateway calls the OpenRouteService directions endpoint. It performs no
// retries and no caching: every ComputeRoute call is one network round
// trip, and identical inputs may legitimately yield different routes if
// the upstream routing changes.
type Gateway struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// GatewayConfig carries the injected deployment settings. The credential is
// always explicit configuration, never a package-level constant.
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, &AuthError{Detail: "no API key configured"}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Gateway{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

type directionsRequest struct {
	Coordinates []Coordinate `json:"coordinates"`
	Radiuses    []int        `json:"radiuses"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance *float64 `json:"distance"`
			Duration *float64 `json:"duration"`
		} `json:"summary"`
		Geometry struct {
			Coordinates []Coordinate `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// ComputeRoute asks the directions service for a route between origin and
// destination using the given travel mode. Coordinates go over the wire
// longitude-first.
func (g *Gateway) ComputeRoute(ctx context.Context, origin, destination Coordinate, mode Mode) (Route, error) {
	payload, err := json.Marshal(directionsRequest{
		Coordinates: []Coordinate{origin, destination},
		Radiuses:    []int{unlimitedSnapRadius, unlimitedSnapRadius},
	})
	if err != nil {
		return Route{}, &ComputeError{Detail: "marshal request", Err: err}
	}

	url := fmt.Sprintf("%s/v2/directions/%s", g.baseURL, mode.profile())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Route{}, &ComputeError{Detail: "create request", Err: err}
	}
	req.Header.Set("Authorization", g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Route{}, &ComputeError{Detail: "directions request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		return Route{}, &AuthError{Detail: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return Route{}, &ComputeError{
			Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Route{}, &ComputeError{Detail: "malformed response", Err: err}
	}

	if len(decoded.Routes) == 0 {
		return Route{}, &ComputeError{Detail: "malformed response: no routes returned"}
	}
	first := decoded.Routes[0]
	if first.Summary.Distance == nil || first.Summary.Duration == nil {
		return Route{}, &ComputeError{Detail: "malformed response: missing summary"}
	}
	if len(first.Geometry.Coordinates) < 2 {
		return Route{}, &ComputeError{Detail: "malformed response: missing geometry"}
	}

	return Route{
		Coordinates:     first.Geometry.Coordinates,
		DistanceMeters:  *first.Summary.Distance,
		DurationSeconds: *first.Summary.Duration,
	}, nil
}
