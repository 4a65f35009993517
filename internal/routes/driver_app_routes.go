package routes

import (
	"github.com/gin-gonic/gin"

	"caretransit/internal/controllers"
	"caretransit/internal/middleware"
)

// DriverAppRoutes mounts the driver-facing endpoints: the day view and
// stop execution updates.
func DriverAppRoutes(r *gin.Engine, ctrl *controllers.RouteController) {
	driver := r.Group("/driver")
	driver.Use(middleware.RequireAuthWithRole("driver"))
	{
		driver.GET("/routes", ctrl.DriverDay)
		driver.POST("/routes/:id/stops/:stopId/execution", ctrl.RecordStopExecution)
	}
}
