// internal/models/driver.go
package models

import (
	"gorm.io/gorm"
)

// Driver status values used by the route validation pipeline.
const (
	DriverActive   = "ACTIVE"
	DriverInactive = "INACTIVE"
	DriverOnLeave  = "ON_LEAVE"
)

type Driver struct {
	gorm.Model
	UserID        uint      `json:"user_id" gorm:"unique"` // Foreign key to User
	User          User      `gorm:"foreignKey:UserID"`
	CompanyID     CompanyID `json:"company_id" gorm:"index"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	LicenseNumber string    `json:"license_number"`
	Status        string    `json:"status" gorm:"default:ACTIVE"` // ACTIVE, INACTIVE, ON_LEAVE
	// DO NOT include Email, Password, or Role here. They are in the User model.
}
