package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"caretransit/internal/controllers"
	"caretransit/internal/middleware"
)

// Controllers bundles the handler sets the router mounts.
type Controllers struct {
	Routes *controllers.RouteController
	Series *controllers.SeriesController
}

// SetupRouter builds the Gin engine with all route groups mounted. The
// caller starts the server.
func SetupRouter(ctrl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r)
	RouteRoutes(r, ctrl.Routes)
	SeriesRoutes(r, ctrl.Series)
	FleetRoutes(r)
	ChildrenRoutes(r)
	DriverAppRoutes(r, ctrl.Routes)

	return r
}
