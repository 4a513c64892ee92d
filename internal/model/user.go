package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Username string    `gorm:"size:100;unique;not null" json:"username"`
	Password string    `gorm:"size:100;not null" json:"-"`
	LastSeen time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
