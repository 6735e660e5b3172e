package persistent

import (
	"viewswap/internal/entity"
	"viewswap/internal/model"

	"gorm.io/gorm"
)

type LogRepository interface {
	WithTx(tx *gorm.DB) LogRepository
	Append(event, userID, details string) error
	List(limit, offset int) ([]*entity.LogEntry, error)
}

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) WithTx(tx *gorm.DB) LogRepository {
	if tx == nil {
		return r
	}
	return &logRepository{db: tx}
}

func (r *logRepository) Append(event, userID, details string) error {
	return r.db.Create(&model.LogModel{
		Event:   event,
		UserID:  nullableID(userID),
		Details: details,
	}).Error
}

func (r *logRepository) List(limit, offset int) ([]*entity.LogEntry, error) {
	var models []model.LogModel
	query := r.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]*entity.LogEntry, len(models))
	for i := range models {
		entries[i] = ToLogEntity(&models[i])
	}
	return entries, nil
}
