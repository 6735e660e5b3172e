package entity

import "time"

type VerificationResult string

const (
	ResultAccepted VerificationResult = "accepted"
	ResultRejected VerificationResult = "rejected"
)

// TaskState is the derived lifecycle state of a task. It is not stored; it
// follows from the proof, verification and expiry fields.
type TaskState string

const (
	StateAssigned         TaskState = "assigned"
	StateProofPending     TaskState = "proof_pending"
	StateVerifiedAccepted TaskState = "verified_accepted"
	StateVerifiedRejected TaskState = "verified_rejected"
	StateExpired          TaskState = "expired"
)

// Task links one video to one assigned viewer and tracks the proof and
// verification handshake. Tasks are history: they are flagged, never deleted.
type Task struct {
	ID                 string             `json:"id"`
	VideoID            string             `json:"video_id"`
	AssignedTo         string             `json:"assigned_to"`
	AssignedAt         time.Time          `json:"assigned_at"`
	ProofFileID        string             `json:"proof_file_id,omitempty"`
	ProofUploadedAt    *time.Time         `json:"proof_uploaded_at,omitempty"`
	ProofArchiveURL    string             `json:"proof_archive_url,omitempty"`
	Verified           bool               `json:"verified"`
	VerificationResult VerificationResult `json:"verification_result,omitempty"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	ReviewerID         string             `json:"reviewer_id,omitempty"`
	ReviewerMsg        string             `json:"reviewer_msg,omitempty"`
	Expired            bool               `json:"expired"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// State derives the lifecycle state from the stored flags. Rejection both
// records a verification and forces expiry; the verification wins when
// reporting state so the audit record stays visible.
func (t *Task) State() TaskState {
	if t.Verified {
		if t.VerificationResult == ResultAccepted {
			return StateVerifiedAccepted
		}
		return StateVerifiedRejected
	}
	if t.Expired {
		return StateExpired
	}
	if t.ProofUploadedAt != nil {
		return StateProofPending
	}
	return StateAssigned
}

// HasProof reports whether a proof attachment was submitted.
func (t *Task) HasProof() bool {
	return t.ProofUploadedAt != nil
}
