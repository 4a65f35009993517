package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caretransit/internal/config"
	"caretransit/internal/middleware"
	"caretransit/internal/models"
)

// CreateVehicle registers a vehicle with its capacity figures.
func CreateVehicle(c *gin.Context) {
	var input struct {
		Registration    string `json:"registration" binding:"required"`
		Seats           int    `json:"seats" binding:"required"`
		WheelchairSpots int    `json:"wheelchair_spots"`
		SpecialSeats    int    `json:"special_seats"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := models.Vehicle{
		Registration:    input.Registration,
		CompanyID:       middleware.CompanyID(c),
		Status:          models.VehicleAvailable,
		Seats:           input.Seats,
		WheelchairSpots: input.WheelchairSpots,
		SpecialSeats:    input.SpecialSeats,
	}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": vehicle})
}

// ListVehicles returns the company's vehicles.
func ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.DB.Where("company_id = ?", middleware.CompanyID(c)).Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

// GetVehicle returns one vehicle.
func GetVehicle(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var vehicle models.Vehicle
	if err := config.DB.Where("company_id = ?", middleware.CompanyID(c)).First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicle})
}

// UpdateVehicle changes capacity or status. A vehicle in maintenance or
// retired is refused by route validation.
func UpdateVehicle(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Registration    *string `json:"registration"`
		Status          *string `json:"status"`
		Seats           *int    `json:"seats"`
		WheelchairSpots *int    `json:"wheelchair_spots"`
		SpecialSeats    *int    `json:"special_seats"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Where("company_id = ?", middleware.CompanyID(c)).First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}

	if input.Registration != nil {
		vehicle.Registration = *input.Registration
	}
	if input.Status != nil {
		switch *input.Status {
		case models.VehicleAvailable, models.VehicleInMaintenance, models.VehicleRetired:
			vehicle.Status = *input.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle status"})
			return
		}
	}
	if input.Seats != nil {
		vehicle.Seats = *input.Seats
	}
	if input.WheelchairSpots != nil {
		vehicle.WheelchairSpots = *input.WheelchairSpots
	}
	if input.SpecialSeats != nil {
		vehicle.SpecialSeats = *input.SpecialSeats
	}

	if err := config.DB.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicle})
}
