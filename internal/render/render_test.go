package render_test

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stp-explore/ilha-server/internal/catalog"
	"github.com/stp-explore/ilha-server/internal/db/models"
	"github.com/stp-explore/ilha-server/internal/planner"
	"github.com/stp-explore/ilha-server/internal/render"
	"github.com/stp-explore/ilha-server/internal/routing"
	"github.com/stp-explore/ilha-server/internal/utils"
	"gorm.io/gorm"
)

func loadStore(t *testing.T) *catalog.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "render.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.AutoMigrate(&models.Location{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store, err := catalog.Load(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store
}

func markersOfKind(model render.MapModel, kind render.MarkerKind) []render.Marker {
	var matched []render.Marker
	for _, marker := range model.Markers {
		if marker.Kind == kind {
			matched = append(matched, marker)
		}
	}
	return matched
}

func TestBuildMapWithoutRoute(t *testing.T) {
	t.Parallel()
	store := loadStore(t)
	model := render.BuildMap(store, nil, nil)

	if model.Center != (render.LatLng{0.3302, 6.7273}) {
		t.Errorf("unexpected center %v", model.Center)
	}
	if model.Zoom != 10 {
		t.Errorf("unexpected zoom %d", model.Zoom)
	}
	if model.Path != nil || model.Fit != nil || model.Summary != nil {
		t.Error("expected no path, fit or summary without a route")
	}
	if len(markersOfKind(model, render.MarkerKindCatalog)) != store.Len() {
		t.Errorf("expected one marker per catalog location")
	}
	if len(markersOfKind(model, render.MarkerKindUser)) != 0 {
		t.Error("expected no user marker without a position")
	}
}

func TestBuildMapCategoryColors(t *testing.T) {
	t.Parallel()
	model := render.BuildMap(loadStore(t), nil, nil)
	colors := map[string]string{}
	for _, marker := range markersOfKind(model, render.MarkerKindCatalog) {
		colors[marker.LocationID] = marker.Color
	}
	if colors["lagoa-azul"] != "#10b981" {
		t.Errorf("expected nature green, got %q", colors["lagoa-azul"])
	}
	if colors["forte-sao-sebastiao"] != "#f59e0b" {
		t.Errorf("expected culture amber, got %q", colors["forte-sao-sebastiao"])
	}
	if colors["mercado-municipal"] != "#8b5cf6" {
		t.Errorf("expected commerce violet, got %q", colors["mercado-municipal"])
	}
}

func TestBuildMapRoundTrip(t *testing.T) {
	t.Parallel()
	origin := routing.Coordinate{Lng: 6.73, Lat: 0.33}
	destination := routing.Coordinate{Lng: 6.80, Lat: 0.40}
	route := &routing.Route{
		Coordinates:     []routing.Coordinate{origin, {Lng: 6.76, Lat: 0.36}, destination},
		DistanceMeters:  1500,
		DurationSeconds: 300,
	}
	position := &planner.Position{Lat: 0.34, Lng: 6.73}

	model := render.BuildMap(loadStore(t), route, position)

	if model.Path == nil {
		t.Fatal("expected a path")
	}
	first := model.Path.Positions[0]
	last := model.Path.Positions[len(model.Path.Positions)-1]
	// Path is in display order, so the route endpoints must come back out
	// within road snapping distance of the requested coordinates.
	if d := utils.Haversine(first[0], first[1], origin.Lat, origin.Lng); d > 1 {
		t.Errorf("path start %v is %f m from the origin", first, d)
	}
	if d := utils.Haversine(last[0], last[1], destination.Lat, destination.Lng); d > 1 {
		t.Errorf("path end %v is %f m from the destination", last, d)
	}
	if model.Path.Color != "#3b82f6" || model.Path.Weight != 4 || model.Path.Opacity != 0.8 {
		t.Errorf("unexpected path style %+v", model.Path)
	}

	starts := markersOfKind(model, render.MarkerKindStart)
	ends := markersOfKind(model, render.MarkerKindEnd)
	if len(starts) != 1 || starts[0].Position != first {
		t.Errorf("unexpected start markers %+v", starts)
	}
	if len(ends) != 1 || ends[0].Position != last {
		t.Errorf("unexpected end markers %+v", ends)
	}
	users := markersOfKind(model, render.MarkerKindUser)
	if len(users) != 1 || users[0].Position != (render.LatLng{0.34, 6.73}) {
		t.Errorf("unexpected user markers %+v", users)
	}

	if model.Fit == nil {
		t.Fatal("expected fit bounds with a route")
	}
	if model.Fit.SouthWest != (render.LatLng{0.33, 6.73}) || model.Fit.NorthEast != (render.LatLng{0.40, 6.80}) {
		t.Errorf("unexpected bounds %+v", model.Fit)
	}
	if model.Fit.PaddingPx != 50 {
		t.Errorf("unexpected padding %d", model.Fit.PaddingPx)
	}

	if model.Summary == nil {
		t.Fatal("expected a summary with a route")
	}
	if model.Summary.Distance != "1.5 km" {
		t.Errorf("expected distance \"1.5 km\", got %q", model.Summary.Distance)
	}
	if model.Summary.Duration != "5 min" {
		t.Errorf("expected duration \"5 min\", got %q", model.Summary.Duration)
	}
}
