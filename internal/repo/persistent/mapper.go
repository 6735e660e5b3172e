package persistent

import (
	"viewswap/internal/entity"
	"viewswap/internal/model"
)

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:           m.ID,
		TelegramID:   m.TelegramID,
		Username:     m.Username,
		Strikes:      m.Strikes,
		Paused:       m.Paused,
		BannedUntil:  m.BannedUntil,
		LastActiveAt: m.LastActiveAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:           e.ID,
		TelegramID:   e.TelegramID,
		Username:     e.Username,
		Strikes:      e.Strikes,
		Paused:       e.Paused,
		BannedUntil:  e.BannedUntil,
		LastActiveAt: e.LastActiveAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func ToVideoEntity(m *model.VideoModel) *entity.Video {
	if m == nil {
		return nil
	}

	return &entity.Video{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		Title:           m.Title,
		ThumbnailFileID: m.ThumbnailFileID,
		Duration:        m.Duration,
		Link:            m.Link,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func ToVideoModel(e *entity.Video) *model.VideoModel {
	if e == nil {
		return nil
	}

	return &model.VideoModel{
		ID:              e.ID,
		OwnerID:         e.OwnerID,
		Title:           e.Title,
		ThumbnailFileID: e.ThumbnailFileID,
		Duration:        e.Duration,
		Link:            e.Link,
		Active:          e.Active,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// nullableID maps an optional entity id to a nullable UUID column value.
// Postgres rejects the empty string for UUID columns.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func idValue(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

func ToTaskEntity(m *model.TaskModel) *entity.Task {
	if m == nil {
		return nil
	}

	return &entity.Task{
		ID:                 m.ID,
		VideoID:            m.VideoID,
		AssignedTo:         m.AssignedTo,
		AssignedAt:         m.AssignedAt,
		ProofFileID:        m.ProofFileID,
		ProofUploadedAt:    m.ProofUploadedAt,
		ProofArchiveURL:    m.ProofArchiveURL,
		Verified:           m.Verified,
		VerificationResult: entity.VerificationResult(m.VerificationResult),
		VerifiedAt:         m.VerifiedAt,
		ReviewerID:         idValue(m.ReviewerID),
		ReviewerMsg:        m.ReviewerMsg,
		Expired:            m.Expired,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func ToTaskModel(e *entity.Task) *model.TaskModel {
	if e == nil {
		return nil
	}

	return &model.TaskModel{
		ID:                 e.ID,
		VideoID:            e.VideoID,
		AssignedTo:         e.AssignedTo,
		AssignedAt:         e.AssignedAt,
		ProofFileID:        e.ProofFileID,
		ProofUploadedAt:    e.ProofUploadedAt,
		ProofArchiveURL:    e.ProofArchiveURL,
		Verified:           e.Verified,
		VerificationResult: string(e.VerificationResult),
		VerifiedAt:         e.VerifiedAt,
		ReviewerID:         nullableID(e.ReviewerID),
		ReviewerMsg:        e.ReviewerMsg,
		Expired:            e.Expired,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func ToLogEntity(m *model.LogModel) *entity.LogEntry {
	if m == nil {
		return nil
	}

	return &entity.LogEntry{
		ID:        m.ID,
		Event:     m.Event,
		UserID:    idValue(m.UserID),
		Details:   m.Details,
		CreatedAt: m.CreatedAt,
	}
}
