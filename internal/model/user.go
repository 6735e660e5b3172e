package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	ID           string     `gorm:"type:uuid;primary_key"`
	TelegramID   int64      `gorm:"uniqueIndex;not null"`
	Username     string     `gorm:"size:100"`
	Strikes      int        `gorm:"default:0;not null"`
	Paused       bool       `gorm:"default:false;not null"`
	BannedUntil  *time.Time
	LastActiveAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
