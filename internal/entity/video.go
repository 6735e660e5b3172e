package entity

import "time"

const (
	MaxTitleLength  = 100
	MaxDurationSecs = 300
	MaxActiveVideos = 5
)

// Video is an uploaded promotion target. Soft-deleted via Active, never
// removed from the table.
type Video struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	ThumbnailFileID string    `json:"thumbnail_file_id"`
	Duration        int       `json:"duration"`
	Link            string    `json:"link,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
