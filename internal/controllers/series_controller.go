package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"caretransit/internal/config"
	"caretransit/internal/middleware"
	"caretransit/internal/models"
	"caretransit/internal/services"
)

// SeriesController exposes recurring route series: creation, child
// assignment with conflict resolution, materialization and
// cancellation.
type SeriesController struct {
	series       *services.SeriesService
	materializer *services.MaterializationService
}

func NewSeriesController(series *services.SeriesService, materializer *services.MaterializationService) *SeriesController {
	return &SeriesController{series: series, materializer: materializer}
}

// Create stores a new recurring series.
func (sc *SeriesController) Create(c *gin.Context) {
	var input struct {
		Name            string  `json:"name" binding:"required"`
		RecurrenceWeeks int     `json:"recurrence_weeks" binding:"required"`
		StartDate       string  `json:"start_date" binding:"required"`
		EndDate         *string `json:"end_date"`
		DriverID        *uint   `json:"driver_id"`
		VehicleID       uint    `json:"vehicle_id" binding:"required"`
		StartTime       string  `json:"start_time" binding:"required"`
		EndTime         string  `json:"end_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}

	series := &models.RouteSeries{
		Name:            input.Name,
		CompanyID:       middleware.CompanyID(c),
		RecurrenceWeeks: input.RecurrenceWeeks,
		StartDate:       startDate,
		VehicleID:       models.VehicleID(input.VehicleID),
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
	}
	if input.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *input.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		series.EndDate = &endDate
	}
	if input.DriverID != nil {
		id := models.DriverID(*input.DriverID)
		series.DriverID = &id
	}

	if err := sc.series.CreateSeries(c.Request.Context(), series); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": series})
}

// Get returns one series with its child assignments.
func (sc *SeriesController) Get(c *gin.Context) {
	seriesID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var series models.RouteSeries
	err := config.DB.
		Preload("Schedules").
		Where("company_id = ?", middleware.CompanyID(c)).
		First(&series, seriesID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "series not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": series})
}

// List returns the company's series.
func (sc *SeriesController) List(c *gin.Context) {
	var series []models.RouteSeries
	if err := config.DB.Where("company_id = ?", middleware.CompanyID(c)).Find(&series).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing series: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": series})
}

// AddChild attaches a child's schedule to the series. When later
// occurrences conflict the granted window is capped and reported; when
// the first occurrence conflicts the whole request is rejected with the
// full conflict breakdown.
func (sc *SeriesController) AddChild(c *gin.Context) {
	seriesID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		ChildID       uint    `json:"child_id" binding:"required"`
		ScheduleID    uint    `json:"schedule_id" binding:"required"`
		PickupOrder   int     `json:"pickup_order" binding:"required"`
		DropoffOrder  int     `json:"dropoff_order" binding:"required"`
		EffectiveFrom string  `json:"effective_from" binding:"required"`
		EffectiveTo   *string `json:"effective_to"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, err := time.Parse("2006-01-02", input.EffectiveFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "effective_from must be YYYY-MM-DD"})
		return
	}

	cmd := &services.AddChildToSeriesCommand{
		CompanyID:     middleware.CompanyID(c),
		SeriesID:      models.SeriesID(seriesID),
		ChildID:       models.ChildID(input.ChildID),
		ScheduleID:    models.ScheduleID(input.ScheduleID),
		PickupOrder:   input.PickupOrder,
		DropoffOrder:  input.DropoffOrder,
		EffectiveFrom: from,
	}
	if input.EffectiveTo != nil {
		to, err := time.Parse("2006-01-02", *input.EffectiveTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "effective_to must be YYYY-MM-DD"})
			return
		}
		cmd.EffectiveTo = &to
	}

	result, err := sc.series.AddChild(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := gin.H{
		"effective_from":    result.EffectiveFrom.Format("2006-01-02"),
		"routes_updated":    result.RoutesUpdated,
		"conflict_resolved": result.ConflictResolved,
	}
	if result.EffectiveTo != nil {
		resp["effective_to"] = result.EffectiveTo.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, resp)
}

// Materialize generates concrete routes for the company's active series
// over a date range.
func (sc *SeriesController) Materialize(c *gin.Context) {
	var input struct {
		From  string `json:"from" binding:"required"`
		To    string `json:"to" binding:"required"`
		Force bool   `json:"force"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, err := time.Parse("2006-01-02", input.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", input.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to precedes from"})
		return
	}

	report, err := sc.materializer.MaterializeRange(c.Request.Context(), middleware.CompanyID(c), from, to, input.Force)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"materialized": report.Materialized,
		"skipped":      report.Skipped,
	})
}

// Cancel flags a series cancelled; materialized occurrences stay.
func (sc *SeriesController) Cancel(c *gin.Context) {
	seriesID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := sc.series.Cancel(c.Request.Context(), middleware.CompanyID(c), models.SeriesID(seriesID)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "series cancelled"})
}
