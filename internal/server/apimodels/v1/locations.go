package v1

import (
	"github.com/stp-explore/ilha-server/internal/db/models"
)

type LocationsResponse struct {
	Locations []models.Location `json:"locations"`
}

type CategoriesResponse struct {
	Categories []models.Category `json:"categories"`
}
