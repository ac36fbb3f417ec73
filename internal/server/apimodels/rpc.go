package apimodels

// Wire messages for the plan websocket. The server issues get_position
// requests; the client answers with a position or a denial. Everything else
// flowing client-ward is a push event.

const (
	MessageTypeGetPosition     = "get_position"
	MessageTypePosition        = "position"
	MessageTypeRouteCalculated = "route_calculated"
	MessageTypeCurrentLocation = "current_location"
)

type PositionRequest struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type PositionResponse struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Denied bool    `json:"denied,omitempty"`
	Error  string  `json:"error,omitempty"`
}

type RouteCalculatedPush struct {
	Type            string  `json:"type"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Distance        string  `json:"distance"`
	Duration        string  `json:"duration"`
}

type CurrentLocationPush struct {
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}
