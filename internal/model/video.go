package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoModel struct {
	ID              string `gorm:"type:uuid;primary_key"`
	OwnerID         string `gorm:"type:uuid;not null;index"`
	Title           string `gorm:"size:100;not null"`
	ThumbnailFileID string `gorm:"size:255;not null"`
	Duration        int    `gorm:"not null"`
	Link            string `gorm:"size:500"`
	Active          bool   `gorm:"default:true;not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (VideoModel) TableName() string {
	return "videos"
}

func (v *VideoModel) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
