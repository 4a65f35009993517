package models

import (
	"gorm.io/gorm"
)

// Guardian is the adult contact responsible for one or more children.
type Guardian struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"uniqueIndex"`
	CompanyID CompanyID `json:"company_id" gorm:"index"`
	Name      string    `json:"name" binding:"required"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`

	Children []Child `gorm:"foreignKey:GuardianID" json:"children,omitempty"`
}
