package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caretransit/internal/config"
	"caretransit/internal/middleware"
	"caretransit/internal/models"
)

// CreateChild registers a child under a guardian of the same company.
func CreateChild(c *gin.Context) {
	var input struct {
		GuardianID       uint   `json:"guardian_id" binding:"required"`
		Name             string `json:"name" binding:"required"`
		BirthDate        string `json:"birth_date"`
		NeedsWheelchair  bool   `json:"needs_wheelchair"`
		NeedsSpecialSeat bool   `json:"needs_special_seat"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	companyID := middleware.CompanyID(c)
	var guardian models.Guardian
	if err := config.DB.Where("company_id = ?", companyID).First(&guardian, input.GuardianID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guardian does not exist"})
		return
	}

	child := models.Child{
		CompanyID:        companyID,
		GuardianID:       input.GuardianID,
		Name:             input.Name,
		BirthDate:        input.BirthDate,
		Status:           models.ChildActive,
		NeedsWheelchair:  input.NeedsWheelchair,
		NeedsSpecialSeat: input.NeedsSpecialSeat,
	}
	if err := config.DB.Create(&child).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating child: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": child})
}

// ListChildren returns the company's children with their schedules.
func ListChildren(c *gin.Context) {
	var children []models.Child
	err := config.DB.Preload("Schedules").
		Where("company_id = ?", middleware.CompanyID(c)).
		Find(&children).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing children: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": children})
}

// GetChild returns one child with schedules.
func GetChild(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var child models.Child
	err := config.DB.Preload("Schedules").
		Where("company_id = ?", middleware.CompanyID(c)).
		First(&child, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": child})
}

// UpdateChildStatus activates or deactivates a child. Inactive children
// are refused by route validation and series assignment.
func UpdateChildStatus(c *gin.Context) {
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
	if input.Status != models.ChildActive && input.Status != models.ChildInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid child status"})
		return
	}

	var child models.Child
	if err := config.DB.Where("company_id = ?", middleware.CompanyID(c)).First(&child, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
		return
	}
	child.Status = input.Status
	if err := config.DB.Save(&child).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating child: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": child})
}

// CreateSchedule adds a weekly transport need to a child.
func CreateSchedule(c *gin.Context) {
	childID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Weekday     int    `json:"weekday"`
		PickupTime  string `json:"pickup_time" binding:"required"`
		DropoffTime string `json:"dropoff_time" binding:"required"`

		PickupStreet string   `json:"pickup_street"`
		PickupCity   string   `json:"pickup_city"`
		PickupLat    *float64 `json:"pickup_lat"`
		PickupLon    *float64 `json:"pickup_lon"`

		DropoffStreet string   `json:"dropoff_street"`
		DropoffCity   string   `json:"dropoff_city"`
		DropoffLat    *float64 `json:"dropoff_lat"`
		DropoffLon    *float64 `json:"dropoff_lon"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Weekday < 0 || input.Weekday > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be 0 (Sunday) to 6 (Saturday)"})
		return
	}

	companyID := middleware.CompanyID(c)
	var child models.Child
	if err := config.DB.Where("company_id = ?", companyID).First(&child, childID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
		return
	}

	schedule := models.Schedule{
		CompanyID:     companyID,
		ChildID:       models.ChildID(child.ID),
		Weekday:       input.Weekday,
		PickupTime:    input.PickupTime,
		DropoffTime:   input.DropoffTime,
		PickupStreet:  input.PickupStreet,
		PickupCity:    input.PickupCity,
		PickupLat:     input.PickupLat,
		PickupLon:     input.PickupLon,
		DropoffStreet: input.DropoffStreet,
		DropoffCity:   input.DropoffCity,
		DropoffLat:    input.DropoffLat,
		DropoffLon:    input.DropoffLon,
	}
	if err := config.DB.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating schedule: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": schedule})
}

// ListGuardians returns the company's guardians with their children.
func ListGuardians(c *gin.Context) {
	var guardians []models.Guardian
	err := config.DB.Preload("Children").
		Where("company_id = ?", middleware.CompanyID(c)).
		Find(&guardians).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing guardians: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": guardians})
}
