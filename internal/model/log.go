package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogModel struct {
	ID    string `gorm:"type:uuid;primary_key"`
	Event string `gorm:"size:50;not null;index"`
	// Nullable; system events such as the expiry sweep have no actor
	UserID    *string `gorm:"type:uuid;index"`
	Details   string  `gorm:"size:1000"`
	CreatedAt time.Time
}

func (LogModel) TableName() string {
	return "logs"
}

func (l *LogModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
