package routes

import (
	"github.com/gin-gonic/gin"

	"caretransit/internal/controllers"
	"caretransit/internal/middleware"
)

// SeriesRoutes mounts recurring route series management.
func SeriesRoutes(r *gin.Engine, ctrl *controllers.SeriesController) {
	series := r.Group("/series")
	series.Use(middleware.RequireAuthWithRole("admin", "dispatcher"))
	{
		series.POST("", ctrl.Create)
		series.GET("", ctrl.List)
		series.GET("/:id", ctrl.Get)
		series.POST("/:id/children", ctrl.AddChild)
		series.POST("/:id/cancel", ctrl.Cancel)
		series.POST("/materialize", ctrl.Materialize)
	}
}
