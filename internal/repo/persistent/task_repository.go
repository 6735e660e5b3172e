package persistent

import (
	"errors"
	"time"

	"viewswap/internal/entity"
	"viewswap/internal/model"

	"gorm.io/gorm"
)

type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository
	Create(task *entity.Task) (*entity.Task, error)
	FindByID(id string) (*entity.Task, error)
	// ListCandidates returns, in stable enumeration order (video creation
	// order), the active videos not owned by the viewer and never before
	// assigned to them, each with its completed-view count.
	ListCandidates(viewerID string) ([]*entity.Candidate, error)
	SetProof(id, proofFileID string, uploadedAt time.Time) error
	SetArchiveURL(id, archiveURL string) error
	SetVerified(id string, result entity.VerificationResult, reviewerID, reviewerMsg string, verifiedAt time.Time) error
	SetExpired(id string) error
	FindOldestPendingReview(ownerID string) (*entity.Task, error)
	HasPendingReview(ownerID string) (bool, error)
	FindOpenForViewer(viewerID string) (*entity.Task, error)
	CountCompletedViews(videoID string) (int64, error)
	ExpireStaleProofs(cutoff time.Time) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx *gorm.DB) TaskRepository {
	if tx == nil {
		return r
	}
	return &taskRepository{db: tx}
}

func (r *taskRepository) Create(task *entity.Task) (*entity.Task, error) {
	m := ToTaskModel(task)
	if err := r.db.Create(m).Error; err != nil {
		return nil, err
	}
	return ToTaskEntity(m), nil
}

func (r *taskRepository) FindByID(id string) (*entity.Task, error) {
	var m model.TaskModel
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToTaskEntity(&m), nil
}

type candidateRow struct {
	model.VideoModel
	CompletedViews int64
}

func (r *taskRepository) ListCandidates(viewerID string) ([]*entity.Candidate, error) {
	var rows []candidateRow
	err := r.db.Model(&model.VideoModel{}).
		Select("videos.*, (SELECT COUNT(*) FROM tasks WHERE tasks.video_id = videos.id AND tasks.proof_uploaded_at IS NOT NULL) AS completed_views").
		Where("videos.active = ? AND videos.owner_id <> ?", true, viewerID).
		Where("NOT EXISTS (SELECT 1 FROM tasks WHERE tasks.video_id = videos.id AND tasks.assigned_to = ?)", viewerID).
		Order("videos.created_at ASC, videos.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]*entity.Candidate, len(rows))
	for i := range rows {
		candidates[i] = &entity.Candidate{
			Video:          ToVideoEntity(&rows[i].VideoModel),
			CompletedViews: rows[i].CompletedViews,
		}
	}
	return candidates, nil
}

func (r *taskRepository) SetProof(id, proofFileID string, uploadedAt time.Time) error {
	res := r.db.Model(&model.TaskModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"proof_file_id":     proofFileID,
		"proof_uploaded_at": uploadedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *taskRepository) SetArchiveURL(id, archiveURL string) error {
	return r.db.Model(&model.TaskModel{}).Where("id = ?", id).Update("proof_archive_url", archiveURL).Error
}

func (r *taskRepository) SetVerified(id string, result entity.VerificationResult, reviewerID, reviewerMsg string, verifiedAt time.Time) error {
	res := r.db.Model(&model.TaskModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"verified":            true,
		"verification_result": string(result),
		"verified_at":         verifiedAt,
		"reviewer_id":         nullableID(reviewerID),
		"reviewer_msg":        reviewerMsg,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *taskRepository) SetExpired(id string) error {
	res := r.db.Model(&model.TaskModel{}).Where("id = ?", id).Update("expired", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *taskRepository) FindOldestPendingReview(ownerID string) (*entity.Task, error) {
	var m model.TaskModel
	err := r.db.
		Joins("JOIN videos ON videos.id = tasks.video_id").
		Where("videos.owner_id = ?", ownerID).
		Where("tasks.proof_uploaded_at IS NOT NULL AND tasks.verified = ? AND tasks.expired = ?", false, false).
		Order("tasks.proof_uploaded_at ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToTaskEntity(&m), nil
}

func (r *taskRepository) HasPendingReview(ownerID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.TaskModel{}).
		Joins("JOIN videos ON videos.id = tasks.video_id").
		Where("videos.owner_id = ?", ownerID).
		Where("tasks.proof_uploaded_at IS NOT NULL AND tasks.verified = ? AND tasks.expired = ?", false, false).
		Count(&count).Error
	return count > 0, err
}

func (r *taskRepository) FindOpenForViewer(viewerID string) (*entity.Task, error) {
	var m model.TaskModel
	err := r.db.
		Where("assigned_to = ? AND proof_uploaded_at IS NULL AND verified = ? AND expired = ?", viewerID, false, false).
		Order("assigned_at ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToTaskEntity(&m), nil
}

func (r *taskRepository) CountCompletedViews(videoID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.TaskModel{}).
		Where("video_id = ? AND proof_uploaded_at IS NOT NULL", videoID).
		Count(&count).Error
	return count, err
}

func (r *taskRepository) ExpireStaleProofs(cutoff time.Time) (int64, error) {
	res := r.db.Model(&model.TaskModel{}).
		Where("proof_uploaded_at IS NOT NULL AND proof_uploaded_at <= ? AND verified = ? AND expired = ?", cutoff, false, false).
		Update("expired", true)
	return res.RowsAffected, res.Error
}
