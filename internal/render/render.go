package render

import (
	"github.com/stp-explore/ilha-server/internal/catalog"
	"github.com/stp-explore/ilha-server/internal/db/models"
	"github.com/stp-explore/ilha-server/internal/planner"
	"github.com/stp-explore/ilha-server/internal/routing"
)

// Map display defaults. The client draws the model verbatim, so display
// axis order is [lat, lng] throughout.
const (
	defaultZoom    = 10
	fitPaddingPx   = 50
	pathColor      = "#3b82f6"
	pathWeight     = 4
	pathOpacity    = 0.8
	startColor     = "#10b981"
	endColor       = "#ef4444"
	userColor      = "#3b82f6"
	fallbackColor  = "#6b7280"
	islandLat      = 0.3302
	islandLng      = 6.7273
)

var categoryColors = map[models.Category]string{
	models.CategoryNature:   "#10b981",
	models.CategoryCulture:  "#f59e0b",
	models.CategoryLeisure:  "#3b82f6",
	models.CategoryCommerce: "#8b5cf6",
	models.CategoryFood:     "#ef4444",
}

type MarkerKind string

const (
	MarkerKindCatalog MarkerKind = "catalog"
	MarkerKindStart   MarkerKind = "start"
	MarkerKindEnd     MarkerKind = "end"
	MarkerKindUser    MarkerKind = "user"
)

// LatLng is a display coordinate, latitude first.
type LatLng [2]float64

type Marker struct {
	Kind       MarkerKind `json:"kind"`
	Position   LatLng     `json:"position"`
	Color      string     `json:"color"`
	LocationID string     `json:"location_id,omitempty"`
	Label      string     `json:"label,omitempty"`
}

type Path struct {
	Positions []LatLng `json:"positions"`
	Color     string   `json:"color"`
	Weight    int      `json:"weight"`
	Opacity   float64  `json:"opacity"`
}

type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
	PaddingPx int    `json:"padding_px"`
}

type Summary struct {
	Distance        string  `json:"distance"`
	Duration        string  `json:"duration"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type MapModel struct {
	Center  LatLng   `json:"center"`
	Zoom    int      `json:"zoom"`
	Markers []Marker `json:"markers"`
	Path    *Path    `json:"path,omitempty"`
	Fit     *Bounds  `json:"fit,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

// BuildMap assembles the renderable map for one plan. It is a pure function
// of its inputs; route and pos may be nil. Fit is only present when a route
// exists so the client never recenters on unrelated state changes.
func BuildMap(cat *catalog.Store, route *routing.Route, pos *planner.Position) MapModel {
	model := MapModel{
		Center: LatLng{islandLat, islandLng},
		Zoom:   defaultZoom,
	}

	for _, location := range cat.All() {
		color, ok := categoryColors[location.Category]
		if !ok {
			color = fallbackColor
		}
		model.Markers = append(model.Markers, Marker{
			Kind:       MarkerKindCatalog,
			Position:   LatLng{location.Lat, location.Lng},
			Color:      color,
			LocationID: location.Slug,
			Label:      location.Name,
		})
	}

	if pos != nil {
		model.Markers = append(model.Markers, Marker{
			Kind:     MarkerKindUser,
			Position: LatLng{pos.Lat, pos.Lng},
			Color:    userColor,
			Label:    "Sua Localização",
		})
	}

	if route != nil && len(route.Coordinates) > 0 {
		path := &Path{
			Positions: make([]LatLng, len(route.Coordinates)),
			Color:     pathColor,
			Weight:    pathWeight,
			Opacity:   pathOpacity,
		}
		for i, coord := range route.Coordinates {
			path.Positions[i] = LatLng{coord.Lat, coord.Lng}
		}
		model.Path = path
		model.Markers = append(model.Markers,
			Marker{
				Kind:     MarkerKindStart,
				Position: path.Positions[0],
				Color:    startColor,
			},
			Marker{
				Kind:     MarkerKindEnd,
				Position: path.Positions[len(path.Positions)-1],
				Color:    endColor,
			},
		)
		model.Fit = fitBounds(path.Positions)
		model.Summary = &Summary{
			Distance:        routing.FormatDistance(route.DistanceMeters),
			Duration:        routing.FormatDuration(route.DurationSeconds),
			DistanceMeters:  route.DistanceMeters,
			DurationSeconds: route.DurationSeconds,
		}
	}

	return model
}

func fitBounds(positions []LatLng) *Bounds {
	bounds := &Bounds{
		SouthWest: positions[0],
		NorthEast: positions[0],
		PaddingPx: fitPaddingPx,
	}
	for _, position := range positions[1:] {
		if position[0] < bounds.SouthWest[0] {
			bounds.SouthWest[0] = position[0]
		}
		if position[1] < bounds.SouthWest[1] {
			bounds.SouthWest[1] = position[1]
		}
		if position[0] > bounds.NorthEast[0] {
			bounds.NorthEast[0] = position[0]
		}
		if position[1] > bounds.NorthEast[1] {
			bounds.NorthEast[1] = position[1]
		}
	}
	return bounds
}
