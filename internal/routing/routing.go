package routing

import (
	"encoding/json"
	"fmt"
)

// Coordinate is a WGS-84 point. It marshals to a [lng, lat] JSON pair
// because the directions API is longitude-first.
type Coordinate struct {
	Lng float64
	Lat float64
}

// MarshalJSON encodes the coordinate as [lng, lat].
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lng, c.Lat})
}

// UnmarshalJSON decodes a [lng, lat] pair.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected 2 coordinate components, got %d", len(pair))
	}
	c.Lng = pair[0]
	c.Lat = pair[1]
	return nil
}

// Mode is a travel profile understood by the directions service.
type Mode string

const (
	ModeDriving Mode = "driving"
	ModeWalking Mode = "walking"
	ModeCycling Mode = "cycling"
)

// ParseMode maps a wire value to a Mode, defaulting to driving for the
// empty string.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeDriving, ModeWalking, ModeCycling:
		return Mode(s), true
	case "":
		return ModeDriving, true
	default:
		return "", false
	}
}

// profile returns the OpenRouteService profile name for the mode.
func (m Mode) profile() string {
	switch m {
	case ModeWalking:
		return "foot-walking"
	case ModeCycling:
		return "cycling-regular"
	default:
		return "driving-car"
	}
}

// Route is the normalized result of one directions call. Coordinates run
// start to end; the first and last points approximate the requested
// endpoints within the service's snapping tolerance.
type Route struct {
	Coordinates     []Coordinate `json:"coordinates"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
}
