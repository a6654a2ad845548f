package model

import (
	"time"
)

type UserRole string

const (
	Pilot    UserRole = "pilot"
	Trainer  UserRole = "trainer"
	Examiner UserRole = "examiner"
	Admin    UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('pilot','trainer','examiner','admin');default:'pilot'" json:"role"`
	JalID     string    `gorm:"size:20;index" json:"jalId"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
