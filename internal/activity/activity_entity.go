package activity

import (
	"time"

	"github.com/google/uuid"
)

type ActivityLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ActorID   *uuid.UUID `gorm:"type:uuid;index"`
	Action    string     `gorm:"size:64;not null;index"`
	Entity    string     `gorm:"size:64;not null"`
	EntityID  string     `gorm:"size:64"`
	Message   string     `gorm:"type:text"`
	Meta      string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"index"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
