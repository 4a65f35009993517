package models

import (
	"gorm.io/gorm"
)

const (
	ChildActive   = "ACTIVE"
	ChildInactive = "INACTIVE"
)

// Child is a transported passenger. The two need flags feed the
// vehicle capacity check at route creation time.
type Child struct {
	gorm.Model
	CompanyID  CompanyID `json:"company_id" gorm:"index"`
	GuardianID uint      `json:"guardian_id" gorm:"index"`
	Name       string    `json:"name" binding:"required"`
	BirthDate  string    `json:"birth_date"`
	Status     string    `json:"status" gorm:"default:ACTIVE"` // ACTIVE, INACTIVE

	NeedsWheelchair  bool `json:"needs_wheelchair"`
	NeedsSpecialSeat bool `json:"needs_special_seat"`

	Schedules []Schedule `gorm:"foreignKey:ChildID" json:"schedules,omitempty"`
}
