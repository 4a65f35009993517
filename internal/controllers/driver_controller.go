package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caretransit/internal/config"
	"caretransit/internal/middleware"
	"caretransit/internal/models"
)

// ListDrivers returns the company's drivers.
func ListDrivers(c *gin.Context) {
	var drivers []models.Driver
	if err := config.DB.Where("company_id = ?", middleware.CompanyID(c)).Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing drivers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

// GetDriver returns one driver.
func GetDriver(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var driver models.Driver
	if err := config.DB.Where("company_id = ?", middleware.CompanyID(c)).First(&driver, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "driver not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": driver})
}

// UpdateDriverStatus moves a driver between ACTIVE, INACTIVE and
// ON_LEAVE. Only ACTIVE drivers can be assigned to routes.
func UpdateDriverStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
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
	switch input.Status {
	case models.DriverActive, models.DriverInactive, models.DriverOnLeave:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver status"})
		return
	}

	var driver models.Driver
	if err := config.DB.Where("company_id = ?", middleware.CompanyID(c)).First(&driver, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "driver not found"})
		return
	}
	driver.Status = input.Status
	if err := config.DB.Save(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating driver: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": driver})
}
