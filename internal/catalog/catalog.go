package catalog

import (
	"fmt"
	"sort"

	"github.com/stp-explore/ilha-server/internal/db/models"
	"github.com/stp-explore/ilha-server/internal/utils"
	"gorm.io/gorm"
)

// Store is an immutable in-memory snapshot of the location catalog. It is
// built once at startup and never mutated, so reads need no locking.
type Store struct {
	locations []models.Location
	bySlug    map[string]models.Location
}

// Load seeds the catalog table from the embedded fixture when it is empty,
// then reads every row into a snapshot. Rows that violate the catalog
// invariants fail the load.
func Load(db *gorm.DB) (*Store, error) {
	count, err := models.CountLocations(db)
	if err != nil {
		return nil, fmt.Errorf("failed to count locations: %w", err)
	}
	if count == 0 {
		if err := seed(db); err != nil {
			return nil, fmt.Errorf("failed to seed locations: %w", err)
		}
	}

	locations, err := models.ListLocations(db)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	store := &Store{
		locations: locations,
		bySlug:    make(map[string]models.Location, len(locations)),
	}
	for _, location := range locations {
		if err := validate(location); err != nil {
			return nil, err
		}
		if _, exists := store.bySlug[location.Slug]; exists {
			return nil, fmt.Errorf("duplicate location id %q", location.Slug)
		}
		store.bySlug[location.Slug] = location
	}
	return store, nil
}

func validate(location models.Location) error {
	if location.Slug == "" {
		return fmt.Errorf("location %q has no id", location.Name)
	}
	if location.Lat < -90 || location.Lat > 90 {
		return fmt.Errorf("location %q has latitude %f out of range", location.Slug, location.Lat)
	}
	if location.Lng < -180 || location.Lng > 180 {
		return fmt.Errorf("location %q has longitude %f out of range", location.Slug, location.Lng)
	}
	if !location.Category.Valid() {
		return fmt.Errorf("location %q has unknown category %q", location.Slug, location.Category)
	}
	return nil
}

// ByID looks up a location by its public id.
func (s *Store) ByID(id string) (models.Location, bool) {
	location, ok := s.bySlug[id]
	return location, ok
}

// All returns every location in seed order.
func (s *Store) All() []models.Location {
	return s.locations
}

// Len returns the number of locations in the snapshot.
func (s *Store) Len() int {
	return len(s.locations)
}

// Categories returns the catalog categories in display order.
func (s *Store) Categories() []models.Category {
	return models.Categories()
}

// Near returns up to limit locations ordered by distance from the given
// point. A non-positive limit returns the whole catalog ordered by distance.
func (s *Store) Near(lat, lng float64, limit int) []models.Location {
	ordered := make([]models.Location, len(s.locations))
	copy(ordered, s.locations)
	sort.SliceStable(ordered, func(i, j int) bool {
		di := utils.Haversine(lat, lng, ordered[i].Lat, ordered[i].Lng)
		dj := utils.Haversine(lat, lng, ordered[j].Lat, ordered[j].Lng)
		return di < dj
	})
	if limit > 0 && limit < len(ordered) {
		ordered = ordered[:limit]
	}
	return ordered
}
