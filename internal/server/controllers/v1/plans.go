package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stp-explore/ilha-server/internal/catalog"
	"github.com/stp-explore/ilha-server/internal/planner"
	"github.com/stp-explore/ilha-server/internal/render"
	"github.com/stp-explore/ilha-server/internal/routing"
	apimodels "github.com/stp-explore/ilha-server/internal/server/apimodels/v1"
)

func plannerFromContext(c *gin.Context) (*planner.Planner, bool) {
	p, ok := c.MustGet("planner").(*planner.Planner)
	if !ok {
		slog.Error("Failed to get planner from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return nil, false
	}
	return p, true
}

func sessionFromContext(c *gin.Context) (*planner.Session, bool) {
	p, ok := plannerFromContext(c)
	if !ok {
		return nil, false
	}
	session, ok := p.GetSession(c.Param("plan_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return nil, false
	}
	return session, true
}

func planResponse(c *gin.Context, session *planner.Session) apimodels.PlanResponse {
	snapshot := session.Snapshot()
	cat, _ := c.MustGet("catalog").(*catalog.Store)
	return apimodels.PlanResponse{
		Plan: snapshot,
		Map:  render.BuildMap(cat, snapshot.Route, snapshot.Position),
	}
}

// respondPlanError translates the planning error taxonomy to HTTP. The
// session survives every failure, so clients just read the response and
// carry on.
func respondPlanError(c *gin.Context, err error) {
	var validationErr *planner.ValidationError
	var geoErr *planner.GeolocationError
	var authErr *routing.AuthError
	var computeErr *routing.ComputeError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, planner.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "superseded"})
	case errors.As(err, &geoErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": geoErr.Error(), "code": "geolocation"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": authErr.Error(), "code": "routing_auth"})
	case errors.As(err, &computeErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": computeErr.Error(), "code": "routing"})
	default:
		slog.Error("Unexpected planning error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
	}
}

func POSTPlan(c *gin.Context) {
	p, ok := plannerFromContext(c)
	if !ok {
		return
	}

	var req apimodels.CreatePlanRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	session := p.CreateSession()
	if req.Destination != "" {
		if err := session.ApplyInitialDestination(req.Destination); err != nil {
			p.DeleteSession(session.ID)
			respondPlanError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, planResponse(c, session))
}

func GETPlan(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, planResponse(c, session))
}

func DELETEPlan(c *gin.Context) {
	p, ok := plannerFromContext(c)
	if !ok {
		return
	}
	if !p.DeleteSession(c.Param("plan_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func PUTPlanOrigin(c *gin.Context) {
	putEndpoint(c, planner.SlotOrigin)
}

func PUTPlanDestination(c *gin.Context) {
	putEndpoint(c, planner.SlotDestination)
}

func putEndpoint(c *gin.Context, slot planner.Slot) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var req apimodels.EndpointRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	switch {
	case req.CurrentPosition:
		if _, err := session.UseCurrentPosition(c.Request.Context(), slot); err != nil {
			respondPlanError(c, err)
			return
		}
	case req.LocationID != "":
		var err error
		if slot == planner.SlotOrigin {
			err = session.SelectOrigin(req.LocationID)
		} else {
			err = session.SelectDestination(req.LocationID)
		}
		if err != nil {
			respondPlanError(c, err)
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id or current_position is required"})
		return
	}

	c.JSON(http.StatusOK, planResponse(c, session))
}

func PUTPlanMode(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var req apimodels.ModeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode is required"})
		return
	}
	mode, ok := routing.ParseMode(req.Mode)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode"})
		return
	}

	session.SetMode(mode)
	c.JSON(http.StatusOK, planResponse(c, session))
}

func POSTPlanRoute(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	if _, err := session.ComputeRoute(c.Request.Context()); err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, planResponse(c, session))
}
