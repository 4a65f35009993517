package routes

import (
	"github.com/gin-gonic/gin"

	"caretransit/internal/controllers"
	"caretransit/internal/middleware"
)

// ChildrenRoutes mounts guardian, child and schedule administration.
func ChildrenRoutes(r *gin.Engine) {
	children := r.Group("/children")
	children.Use(middleware.RequireAuthWithRole("admin", "dispatcher"))
	{
		children.POST("", controllers.CreateChild)
		children.GET("", controllers.ListChildren)
		children.GET("/:id", controllers.GetChild)
		children.PUT("/:id/status", controllers.UpdateChildStatus)
		children.POST("/:id/schedules", controllers.CreateSchedule)
	}

	guardians := r.Group("/guardians")
	guardians.Use(middleware.RequireAuthWithRole("admin", "dispatcher"))
	{
		guardians.GET("", controllers.ListGuardians)
	}
}
