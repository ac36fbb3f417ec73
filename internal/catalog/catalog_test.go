package catalog_test

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stp-explore/ilha-server/internal/catalog"
	"github.com/stp-explore/ilha-server/internal/db/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.AutoMigrate(&models.Location{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return db
}

func TestLoadSeedsEmptyDatabase(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	store, err := catalog.Load(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() == 0 {
		t.Fatal("expected seeded catalog, got empty store")
	}

	location, ok := store.ByID("lagoa-azul")
	if !ok {
		t.Fatal("expected lagoa-azul in seeded catalog")
	}
	if location.Category != models.CategoryNature {
		t.Errorf("expected category %q, got %q", models.CategoryNature, location.Category)
	}
	if location.Hours.Valid() {
		t.Error("expected lagoa-azul to have no opening hours")
	}

	// A second load must reuse the existing rows, not seed again.
	again, err := catalog.Load(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Len() != store.Len() {
		t.Errorf("expected %d locations after reload, got %d", store.Len(), again.Len())
	}
}

func TestByIDUnknown(t *testing.T) {
	t.Parallel()
	store, err := catalog.Load(openTestDB(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.ByID("atlantis"); ok {
		t.Error("expected unknown id to miss")
	}
}

func TestAllPreservesSeedOrder(t *testing.T) {
	t.Parallel()
	store, err := catalog.Load(openTestDB(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := store.All()
	if len(all) == 0 {
		t.Fatal("expected locations")
	}
	if all[0].Slug != "forte-sao-sebastiao" {
		t.Errorf("expected forte-sao-sebastiao first, got %q", all[0].Slug)
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()
	store, err := catalog.Load(openTestDB(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.Category{
		models.CategoryNature,
		models.CategoryCulture,
		models.CategoryLeisure,
		models.CategoryCommerce,
		models.CategoryFood,
	}
	got := store.Categories()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected category %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestNearOrdersByDistance(t *testing.T) {
	t.Parallel()
	store, err := catalog.Load(openTestDB(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// From the fort in the capital the two closest neighbors are the
	// municipal market and the cathedral.
	near := store.Near(0.3356, 6.7329, 3)
	if len(near) != 3 {
		t.Fatalf("expected 3 locations, got %d", len(near))
	}
	want := []string{"forte-sao-sebastiao", "mercado-municipal", "catedral-sao-tome"}
	for i := range want {
		if near[i].Slug != want[i] {
			t.Errorf("expected %q at %d, got %q", want[i], i, near[i].Slug)
		}
	}

	all := store.Near(0.3356, 6.7329, 0)
	if len(all) != store.Len() {
		t.Errorf("expected non-positive limit to return the whole catalog, got %d", len(all))
	}
}

func TestLoadRejectsInvalidRows(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	bad := models.Location{
		Slug:     "fora-do-mapa",
		Name:     "Fora do Mapa",
		Category: models.CategoryNature,
		Lat:      95,
		Lng:      6.7,
	}
	if err := db.Create(&bad).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := catalog.Load(db); err == nil {
		t.Error("expected load to reject out of range latitude")
	}

	db = openTestDB(t)
	bad = models.Location{
		Slug:     "categoria-estranha",
		Name:     "Categoria Estranha",
		Category: "Mistério",
		Lat:      0.3,
		Lng:      6.7,
	}
	if err := db.Create(&bad).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := catalog.Load(db); err == nil {
		t.Error("expected load to reject unknown category")
	}
}
