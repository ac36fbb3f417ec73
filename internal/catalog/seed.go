package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/stp-explore/ilha-server/internal/db/models"
	"gorm.io/gorm"
)

//go:embed locations.json
var seedLocations []byte

func seed(db *gorm.DB) error {
	var locations []models.Location
	if err := json.Unmarshal(seedLocations, &locations); err != nil {
		return fmt.Errorf("failed to parse seed fixture: %w", err)
	}
	if len(locations) == 0 {
		return fmt.Errorf("seed fixture is empty")
	}
	return db.Create(&locations).Error
}
