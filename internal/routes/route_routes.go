package routes

import (
	"github.com/gin-gonic/gin"

	"caretransit/internal/controllers"
	"caretransit/internal/middleware"
)

// RouteRoutes mounts route construction and execution for dispatchers
// and admins.
func RouteRoutes(r *gin.Engine, ctrl *controllers.RouteController) {
	routes := r.Group("/routes")
	routes.Use(middleware.RequireAuthWithRole("admin", "dispatcher"))
	{
		routes.POST("", ctrl.Create)
		routes.GET("", ctrl.List)
		routes.GET("/:id", ctrl.Get)
		routes.DELETE("/:id", ctrl.Delete)
		routes.PUT("/:id/status", ctrl.UpdateStatus)

		routes.POST("/:id/stops", ctrl.InsertStops)
		routes.PUT("/:id/stops/reorder", ctrl.Reorder)
		routes.DELETE("/:id/stops", ctrl.RemoveStops)
		routes.POST("/:id/stops/:stopId/cancel", ctrl.CancelStop)
	}
}
