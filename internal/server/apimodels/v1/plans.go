package v1

import (
	"github.com/stp-explore/ilha-server/internal/planner"
	"github.com/stp-explore/ilha-server/internal/render"
)

type CreatePlanRequest struct {
	// Optional destination pre-fill, e.g. from a shared location link.
	Destination string `json:"destination"`
}

type EndpointRequest struct {
	LocationID      string `json:"location_id"`
	CurrentPosition bool   `json:"current_position"`
}

type ModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type PlanResponse struct {
	Plan planner.Snapshot `json:"plan"`
	Map  render.MapModel  `json:"map"`
}
