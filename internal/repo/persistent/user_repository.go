package persistent

import (
	"errors"
	"time"

	"viewswap/internal/entity"
	"viewswap/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(user *entity.User) (*entity.User, error)
	FindByID(id string) (*entity.User, error)
	FindByTelegramID(telegramID int64) (*entity.User, error)
	SetPaused(id string, paused bool) error
	AddStrike(id string) (int, error)
	RemoveStrike(id string) (int, error)
	ListByMinStrikes(minStrikes int) ([]*entity.User, error)
	TouchLastActive(id string, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	if tx == nil {
		return r
	}
	return &userRepository{db: tx}
}

func (r *userRepository) Create(user *entity.User) (*entity.User, error) {
	m := ToUserModel(user)
	if err := r.db.Create(m).Error; err != nil {
		return nil, err
	}
	return ToUserEntity(m), nil
}

func (r *userRepository) FindByID(id string) (*entity.User, error) {
	var m model.UserModel
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToUserEntity(&m), nil
}

func (r *userRepository) FindByTelegramID(telegramID int64) (*entity.User, error) {
	var m model.UserModel
	if err := r.db.Where("telegram_id = ?", telegramID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToUserEntity(&m), nil
}

func (r *userRepository) SetPaused(id string, paused bool) error {
	res := r.db.Model(&model.UserModel{}).Where("id = ?", id).Update("paused", paused)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *userRepository) AddStrike(id string) (int, error) {
	res := r.db.Model(&model.UserModel{}).Where("id = ?", id).
		UpdateColumn("strikes", clause.Expr{SQL: "strikes + ?", Vars: []interface{}{1}})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, entity.ErrNotFound
	}
	return r.strikeCount(id)
}

func (r *userRepository) RemoveStrike(id string) (int, error) {
	// Floored at zero
	res := r.db.Model(&model.UserModel{}).Where("id = ?", id).
		UpdateColumn("strikes", clause.Expr{SQL: "GREATEST(strikes - ?, 0)", Vars: []interface{}{1}})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, entity.ErrNotFound
	}
	return r.strikeCount(id)
}

func (r *userRepository) strikeCount(id string) (int, error) {
	var strikes int
	if err := r.db.Model(&model.UserModel{}).Select("strikes").Where("id = ?", id).Scan(&strikes).Error; err != nil {
		return 0, err
	}
	return strikes, nil
}

func (r *userRepository) ListByMinStrikes(minStrikes int) ([]*entity.User, error) {
	var models []model.UserModel
	if err := r.db.Where("strikes >= ?", minStrikes).Order("strikes DESC, created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]*entity.User, len(models))
	for i := range models {
		users[i] = ToUserEntity(&models[i])
	}
	return users, nil
}

func (r *userRepository) TouchLastActive(id string, at time.Time) error {
	return r.db.Model(&model.UserModel{}).Where("id = ?", id).Update("last_active_at", at).Error
}
