package routes

import (
	"github.com/gin-gonic/gin"

	"caretransit/internal/controllers"
	"caretransit/internal/middleware"
)

// FleetRoutes mounts driver and vehicle administration.
func FleetRoutes(r *gin.Engine) {
	drivers := r.Group("/drivers")
	drivers.Use(middleware.RequireAuthWithRole("admin", "dispatcher"))
	{
		drivers.GET("", controllers.ListDrivers)
		drivers.GET("/:id", controllers.GetDriver)
		drivers.PUT("/:id/status", controllers.UpdateDriverStatus)
	}

	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.RequireAuthWithRole("admin", "dispatcher"))
	{
		vehicles.POST("", controllers.CreateVehicle)
		vehicles.GET("", controllers.ListVehicles)
		vehicles.GET("/:id", controllers.GetVehicle)
		vehicles.PUT("/:id", controllers.UpdateVehicle)
	}
}
