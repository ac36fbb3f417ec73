package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stp-explore/ilha-server/internal/config"
	"github.com/stp-explore/ilha-server/internal/planner"
	controllersV1 "github.com/stp-explore/ilha-server/internal/server/controllers/v1"
	websocketControllers "github.com/stp-explore/ilha-server/internal/server/websocket"
	"github.com/stp-explore/ilha-server/internal/websocket"
)

func applyRoutes(r *gin.Engine, config *config.Config, p *planner.Planner, planSocket *websocketControllers.PlanSocket) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	apiV1 := r.Group("/v1")
	v1(apiV1)

	// Plan websocket
	wsV1 := r.Group("/ws/v1")
	wsV1.GET("/plans/:plan_id", websocket.CreateHandler(planSocket, config, p))

	r.NoRoute(func(c *gin.Context) {
		slog.Warn("Not Found", "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})
}

func v1(group *gin.RouterGroup) {
	group.GET("/locations", controllersV1.GETLocations)
	group.GET("/locations/categories", controllersV1.GETLocationCategories)
	group.GET("/locations/near", controllersV1.GETLocationsNear)
	group.GET("/locations/:id", controllersV1.GETLocation)
	group.GET("/locations/:id/image", controllersV1.GETLocationImage)

	group.POST("/plans", controllersV1.POSTPlan)
	group.GET("/plans/:plan_id", controllersV1.GETPlan)
	group.DELETE("/plans/:plan_id", controllersV1.DELETEPlan)
	group.PUT("/plans/:plan_id/origin", controllersV1.PUTPlanOrigin)
	group.PUT("/plans/:plan_id/destination", controllersV1.PUTPlanDestination)
	group.PUT("/plans/:plan_id/mode", controllersV1.PUTPlanMode)
	group.POST("/plans/:plan_id/route", controllersV1.POSTPlanRoute)
}
