package entity

import "time"

// Log event kinds recorded in the audit trail.
const (
	EventUserRegistered = "user_registered"
	EventVideoUploaded  = "video_uploaded"
	EventVideoRemoved   = "video_removed"
	EventTaskAssigned   = "task_assigned"
	EventTaskSkipped    = "task_skipped"
	EventProofSubmitted = "proof_submitted"
	EventProofAccepted  = "proof_accepted"
	EventProofRejected  = "proof_rejected"
	EventStrikeAdded    = "strike_added"
	EventStrikeRemoved  = "strike_removed"
	EventUserPaused     = "user_paused"
	EventUserResumed    = "user_resumed"
	EventTasksExpired   = "tasks_expired"
)

// LogEntry is an immutable audit record. It is written by every mutating
// operation and read only by the admin panel.
type LogEntry struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	UserID    string    `json:"user_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
