package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caretransit/internal/services"
)

// writeServiceError maps the service error taxonomy onto HTTP codes:
// structural problems are 400, missing entities 404, every kind of
// conflict 409, anything else 500.
func writeServiceError(c *gin.Context, err error) {
	var structural *services.StructuralError
	var notFound *services.NotFoundError
	var state *services.StateConflictError
	var scheduling *services.SchedulingConflictError
	var capacity *services.CapacityError
	var seriesConflict *services.SeriesConflictError

	switch {
	case errors.As(err, &structural):
		c.JSON(http.StatusBadRequest, gin.H{"error": structural.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &state):
		c.JSON(http.StatusConflict, gin.H{"error": state.Error()})
	case errors.As(err, &scheduling):
		c.JSON(http.StatusConflict, gin.H{
			"error":      scheduling.Error(),
			"resource":   scheduling.Resource,
			"route_id":   scheduling.RouteID,
			"route_name": scheduling.RouteName,
		})
	case errors.As(err, &capacity):
		c.JSON(http.StatusConflict, gin.H{
			"error":      capacity.Error(),
			"constraint": capacity.Violation.Constraint,
			"required":   capacity.Violation.Required,
			"available":  capacity.Violation.Available,
		})
	case errors.As(err, &seriesConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":                  seriesConflict.Error(),
			"single_route_conflicts": seriesConflict.SingleRouteConflicts,
			"series_conflicts":       seriesConflict.SeriesConflicts,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
