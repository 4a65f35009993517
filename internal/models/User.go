package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"unique"`
	Password  string    `json:"password"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"` // "admin", "dispatcher", "driver", "guardian"
	CompanyID CompanyID `json:"company_id" gorm:"index"`

	// Actor-specific relations
	Driver   *Driver   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"driver,omitempty"`
	Guardian *Guardian `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"guardian,omitempty"`
}
