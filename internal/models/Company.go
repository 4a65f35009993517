// internal/models/company.go
package models

import (
	"gorm.io/gorm"
)

// Company represents a care-transportation provider. All operational
// data (children, drivers, vehicles, routes) is scoped to one company.
type Company struct {
	gorm.Model

	Name    string `json:"name" binding:"required"`
	Email   string `gorm:"unique;not null" json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	Drivers  []Driver  `gorm:"foreignKey:CompanyID" json:"drivers,omitempty"`
	Vehicles []Vehicle `gorm:"foreignKey:CompanyID" json:"vehicles,omitempty"`
}
