package persistent

import (
	"errors"

	"viewswap/internal/entity"
	"viewswap/internal/model"

	"gorm.io/gorm"
)

type VideoRepository interface {
	WithTx(tx *gorm.DB) VideoRepository
	Create(video *entity.Video) (*entity.Video, error)
	FindByID(id string) (*entity.Video, error)
	ListActiveByOwner(ownerID string) ([]*entity.Video, error)
	CountActiveByOwner(ownerID string) (int64, error)
	Deactivate(id string) error
}

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) WithTx(tx *gorm.DB) VideoRepository {
	if tx == nil {
		return r
	}
	return &videoRepository{db: tx}
}

func (r *videoRepository) Create(video *entity.Video) (*entity.Video, error) {
	m := ToVideoModel(video)
	if err := r.db.Create(m).Error; err != nil {
		return nil, err
	}
	return ToVideoEntity(m), nil
}

func (r *videoRepository) FindByID(id string) (*entity.Video, error) {
	var m model.VideoModel
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToVideoEntity(&m), nil
}

func (r *videoRepository) ListActiveByOwner(ownerID string) ([]*entity.Video, error) {
	var models []model.VideoModel
	if err := r.db.Where("owner_id = ? AND active = ?", ownerID, true).
		Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	videos := make([]*entity.Video, len(models))
	for i := range models {
		videos[i] = ToVideoEntity(&models[i])
	}
	return videos, nil
}

func (r *videoRepository) CountActiveByOwner(ownerID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.VideoModel{}).Where("owner_id = ? AND active = ?", ownerID, true).Count(&count).Error
	return count, err
}

func (r *videoRepository) Deactivate(id string) error {
	res := r.db.Model(&model.VideoModel{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}
