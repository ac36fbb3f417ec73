package utils_test

import (
	"math"
	"testing"

	"github.com/stp-explore/ilha-server/internal/utils"
)

type coords struct {
	lat float64
	lng float64
}

var (
	equator      = coords{0, 6.52}
	tenthNorth   = coords{0.1, 6.52}
	tenthEast    = coords{0, 6.62}
	tenthDiag    = coords{0.1, 6.62}
	saoTome      = coords{0.3365, 6.7273}
	santoAntonio = coords{1.6369, 7.4178}
)

func TestHaversine(t *testing.T) {
	t.Parallel()

	// Identical points
	if dist := utils.Haversine(saoTome.lat, saoTome.lng, saoTome.lat, saoTome.lng); dist != 0 {
		t.Errorf("expected 0 meters between identical points, got %f", dist)
	}

	// A tenth of a degree of latitude is R * Δφ exactly
	dist := math.Round(utils.Haversine(equator.lat, equator.lng, tenthNorth.lat, tenthNorth.lng))
	if dist != 11119 {
		t.Errorf("expected 11119 meters for 0.1 degrees of latitude, got %f", dist)
	}

	// A tenth of a degree of longitude on the equator is the same arc
	dist = math.Round(utils.Haversine(equator.lat, equator.lng, tenthEast.lat, tenthEast.lng))
	if dist != 11119 {
		t.Errorf("expected 11119 meters for 0.1 degrees of longitude on the equator, got %f", dist)
	}

	// Diagonal of the two arcs above
	raw := utils.Haversine(equator.lat, equator.lng, tenthDiag.lat, tenthDiag.lng)
	if math.Abs(raw-15725.3) > 1 {
		t.Errorf("expected about 15725 meters on the diagonal, got %f", raw)
	}

	// Symmetry: São Tomé city to Santo António (Príncipe) both ways
	there := utils.Haversine(saoTome.lat, saoTome.lng, santoAntonio.lat, santoAntonio.lng)
	back := utils.Haversine(santoAntonio.lat, santoAntonio.lng, saoTome.lat, saoTome.lng)
	if math.Round(there) != math.Round(back) {
		t.Errorf("expected symmetric distances, got %f and %f", there, back)
	}
	// The islands are roughly 160 km apart
	if there < 150000 || there > 180000 {
		t.Errorf("expected 150-180 km between the islands, got %f", there)
	}
}
