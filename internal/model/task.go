package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskModel struct {
	ID                 string `gorm:"type:uuid;primary_key"`
	// One task ever per (viewer, video) pair
	VideoID            string `gorm:"type:uuid;not null;index;uniqueIndex:idx_tasks_viewer_video"`
	AssignedTo         string `gorm:"type:uuid;not null;index;uniqueIndex:idx_tasks_viewer_video"`
	AssignedAt         time.Time
	ProofFileID        string     `gorm:"size:255"`
	ProofUploadedAt    *time.Time `gorm:"index"`
	ProofArchiveURL    string     `gorm:"size:500"`
	Verified           bool       `gorm:"default:false;not null"`
	VerificationResult string     `gorm:"size:20"`
	VerifiedAt         *time.Time
	// Nullable; Postgres rejects '' for a UUID column
	ReviewerID         *string `gorm:"type:uuid"`
	ReviewerMsg        string  `gorm:"size:500"`
	Expired            bool    `gorm:"default:false;not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (TaskModel) TableName() string {
	return "tasks"
}

func (t *TaskModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
