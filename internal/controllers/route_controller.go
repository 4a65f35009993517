package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"caretransit/internal/config"
	"caretransit/internal/geo"
	"caretransit/internal/middleware"
	"caretransit/internal/models"
	"caretransit/internal/services"
)

// RouteController exposes route construction and execution over HTTP.
// Mutations go through the services; list and detail reads hit the
// database directly.
type RouteController struct {
	routes      *services.RouteService
	coordinator *services.InsertionCoordinator
}

func NewRouteController(routes *services.RouteService, coordinator *services.InsertionCoordinator) *RouteController {
	return &RouteController{routes: routes, coordinator: coordinator}
}

// RouteResponse mirrors models.Route but carries the geometry as a
// GeoJSON string for API output.
type RouteResponse struct {
	ID           uint          `json:"id"`
	Name         string        `json:"name"`
	Date         string        `json:"date"`
	Status       string        `json:"status"`
	DriverID     *uint         `json:"driver_id,omitempty"`
	VehicleID    uint          `json:"vehicle_id"`
	PlannedStart time.Time     `json:"planned_start"`
	PlannedEnd   time.Time     `json:"planned_end"`
	SeriesID     *uint         `json:"series_id,omitempty"`
	Geometry     string        `json:"geometry,omitempty"`
	Stops        []models.Stop `json:"stops,omitempty"`
}

func toRouteResponse(route *models.Route) RouteResponse {
	jsonGeom, err := geo.WKBToGeoJSON(route.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route_id", route.ID).Warn("stored geometry unreadable")
	}
	resp := RouteResponse{
		ID:           route.ID,
		Name:         route.Name,
		Date:         route.Date.Format("2006-01-02"),
		Status:       route.Status,
		VehicleID:    uint(route.VehicleID),
		PlannedStart: route.PlannedStart,
		PlannedEnd:   route.PlannedEnd,
		Geometry:     jsonGeom,
		Stops:        route.Stops,
	}
	if route.DriverID != nil {
		id := uint(*route.DriverID)
		resp.DriverID = &id
	}
	if route.SeriesID != nil {
		id := uint(*route.SeriesID)
		resp.SeriesID = &id
	}
	return resp
}

type stopInput struct {
	ChildID     uint     `json:"child_id" binding:"required"`
	ScheduleID  uint     `json:"schedule_id" binding:"required"`
	Kind        string   `json:"kind" binding:"required"`
	Order       int      `json:"order"`
	PlannedTime string   `json:"planned_time"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

// Create validates and persists a new route with its ordered stops.
func (rc *RouteController) Create(c *gin.Context) {
	var input struct {
		Name         string      `json:"name" binding:"required"`
		Date         string      `json:"date" binding:"required"`
		DriverID     *uint       `json:"driver_id"`
		VehicleID    uint        `json:"vehicle_id" binding:"required"`
		PlannedStart time.Time   `json:"planned_start" binding:"required"`
		PlannedEnd   time.Time   `json:"planned_end" binding:"required"`
		Geometry     string      `json:"geometry"`
		Stops        []stopInput `json:"stops" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	var wkbGeom []byte
	if input.Geometry != "" {
		wkbGeom, err = geo.GeoJSONToWKB(input.Geometry)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
			return
		}
	}

	cmd := &services.CreateRouteCommand{
		CompanyID:    middleware.CompanyID(c),
		Name:         input.Name,
		Date:         date,
		VehicleID:    models.VehicleID(input.VehicleID),
		PlannedStart: input.PlannedStart,
		PlannedEnd:   input.PlannedEnd,
		Geometry:     wkbGeom,
	}
	if input.DriverID != nil {
		id := models.DriverID(*input.DriverID)
		cmd.DriverID = &id
	}
	for _, s := range input.Stops {
		def := services.StopDefinition{
			ChildID:    models.ChildID(s.ChildID),
			ScheduleID: models.ScheduleID(s.ScheduleID),
			Kind:       s.Kind,
			Order:      s.Order,
			Street:     s.Street,
			City:       s.City,
			Lat:        s.Lat,
			Lon:        s.Lon,
		}
		if s.PlannedTime != "" {
			t, err := time.Parse(time.RFC3339, s.PlannedTime)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "planned_time must be RFC3339"})
				return
			}
			def.PlannedTime = t
		}
		cmd.Stops = append(cmd.Stops, def)
	}

	result, err := rc.routes.CreateRoute(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"route_id":       result.RouteID,
		"status":         result.Status,
		"children_count": result.ChildrenCount,
	})
}

// Get returns one route with its stops sorted by driving order.
func (rc *RouteController) Get(c *gin.Context) {
	routeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var route models.Route
	err := config.DB.
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("stop_order ASC") }).
		Where("company_id = ?", middleware.CompanyID(c)).
		First(&route, routeID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRouteResponse(&route)})
}

// List returns the company's routes, optionally filtered by ?date=.
func (rc *RouteController) List(c *gin.Context) {
	query := config.DB.Where("company_id = ?", middleware.CompanyID(c))
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("date >= ? AND date < ?", date, date.AddDate(0, 0, 1))
	}
	var routes []models.Route
	if err := query.Order("planned_start ASC").Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing routes: " + err.Error()})
		return
	}
	out := make([]RouteResponse, len(routes))
	for i := range routes {
		out[i] = toRouteResponse(&routes[i])
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// InsertStops adds stops to an existing route. after_order anchors the
// insertion; when it is absent and the first stop has coordinates, the
// anchor is suggested by smallest detour.
func (rc *RouteController) InsertStops(c *gin.Context) {
	routeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Stops      []stopInput `json:"stops" binding:"required"`
		AfterOrder *int        `json:"after_order"`
		AtTail     bool        `json:"at_tail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	companyID := middleware.CompanyID(c)
	stops := make([]models.Stop, 0, len(input.Stops))
	for _, s := range input.Stops {
		stop := models.Stop{
			Kind:       s.Kind,
			ChildID:    models.ChildID(s.ChildID),
			ScheduleID: models.ScheduleID(s.ScheduleID),
			Street:     s.Street,
			City:       s.City,
			Lat:        s.Lat,
			Lon:        s.Lon,
		}
		if s.PlannedTime != "" {
			t, err := time.Parse(time.RFC3339, s.PlannedTime)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "planned_time must be RFC3339"})
				return
			}
			stop.PlannedTime = t
		}
		stops = append(stops, stop)
	}

	afterOrder := input.AfterOrder
	if afterOrder == nil && !input.AtTail && len(stops) > 0 && stops[0].Lat != nil && stops[0].Lon != nil {
		var existing []models.Stop
		if err := config.DB.
			Where("company_id = ? AND route_id = ? AND cancelled = false", companyID, routeID).
			Order("stop_order ASC").Find(&existing).Error; err == nil {
			afterOrder = geo.SuggestAnchor(existing, geo.Point{Lat: *stops[0].Lat, Lon: *stops[0].Lon})
		}
	}

	result, err := rc.routes.InsertStops(c.Request.Context(), rc.coordinator, companyID, models.RouteID(routeID), stops, afterOrder)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"strategy": result.Strategy,
		"stops":    result.Stops,
	})
}

// Reorder applies a full permutation of the route's active stops.
func (rc *RouteController) Reorder(c *gin.Context) {
	routeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Orders map[uint]int `json:"orders" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	byID := make(map[models.StopID]int, len(input.Orders))
	for id, pos := range input.Orders {
		byID[models.StopID(id)] = pos
	}
	stops, err := rc.routes.ReorderStops(c.Request.Context(), middleware.CompanyID(c), models.RouteID(routeID), byID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

// RemoveStops deletes stops from a planned route.
func (rc *RouteController) RemoveStops(c *gin.Context) {
	routeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		StopIDs []uint `json:"stop_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ids := make([]models.StopID, len(input.StopIDs))
	for i, id := range input.StopIDs {
		ids[i] = models.StopID(id)
	}
	stops, err := rc.routes.RemoveStops(c.Request.Context(), middleware.CompanyID(c), models.RouteID(routeID), ids)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

// UpdateStatus moves a route along its lifecycle.
func (rc *RouteController) UpdateStatus(c *gin.Context) {
	routeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	route, err := rc.routes.UpdateStatus(c.Request.Context(), middleware.CompanyID(c), models.RouteID(routeID), input.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRouteResponse(route)})
}

// RecordStopExecution marks a stop DONE or NO_SHOW.
func (rc *RouteController) RecordStopExecution(c *gin.Context) {
	routeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	stopID, ok := idParam(c, "stopId")
	if !ok {
		return
	}
	var input struct {
		Status     string     `json:"status" binding:"required"`
		ActualTime *time.Time `json:"actual_time"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actual := time.Now()
	if input.ActualTime != nil {
		actual = *input.ActualTime
	}
	stop, err := rc.routes.RecordStopExecution(c.Request.Context(), middleware.CompanyID(c),
		models.RouteID(routeID), models.StopID(stopID), input.Status, actual)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stop})
}

// CancelStop flags one stop cancelled without removing it.
func (rc *RouteController) CancelStop(c *gin.Context) {
	routeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	stopID, ok := idParam(c, "stopId")
	if !ok {
		return
	}
	err := rc.routes.CancelStop(c.Request.Context(), middleware.CompanyID(c), models.RouteID(routeID), models.StopID(stopID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stop cancelled"})
}

// Delete removes a PLANNED or CANCELLED route with its stops.
func (rc *RouteController) Delete(c *gin.Context) {
	routeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := rc.routes.Delete(c.Request.Context(), middleware.CompanyID(c), models.RouteID(routeID)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route deleted"})
}

// DriverDay returns the authenticated driver's routes for one date,
// stops included, for the driver app's day view.
func (rc *RouteController) DriverDay(c *gin.Context) {
	raw := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	var driver models.Driver
	if err := config.DB.Where("user_id = ?", middleware.UserID(c)).First(&driver).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "driver profile not found"})
		return
	}

	var routes []models.Route
	err = config.DB.
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("stop_order ASC") }).
		Where("company_id = ? AND driver_id = ? AND date >= ? AND date < ?",
			driver.CompanyID, driver.ID, date, date.AddDate(0, 0, 1)).
		Order("planned_start ASC").
		Find(&routes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing routes: " + err.Error()})
		return
	}
	out := make([]RouteResponse, len(routes))
	for i := range routes {
		out[i] = toRouteResponse(&routes[i])
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// idParam parses a numeric path parameter, writing the 400 itself.
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
