package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"type:varchar(320);not null;uniqueIndex:ux_users_email" json:"email"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }
