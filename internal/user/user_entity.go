package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name            string         `gorm:"column:name;type:varchar(255);not null"`
	Email           string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Password        string         `gorm:"column:password;type:text;not null"`
	Role            string         `gorm:"column:role;type:varchar(32);not null;index"`
	IsActive        bool           `gorm:"column:is_active;not null"`
	ActiveSessionID *string        `gorm:"column:active_session_id;type:varchar(64)"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string {
	return "users"
}
