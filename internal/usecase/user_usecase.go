package usecase

import (
	"errors"
	"fmt"
	"time"

	"viewswap/internal/entity"
	"viewswap/internal/repo/persistent"
	"viewswap/pkg/logger"

	"gorm.io/gorm"
)

// ErrReviewInProgress is returned when an owner tries to pause while one of
// their videos has a proof awaiting their review.
var ErrReviewInProgress = errors.New("a proof on your video is awaiting review")

// VideoStatus pairs an active video with how many times it has actually
// been watched (tasks with proof uploaded, any verification outcome).
type VideoStatus struct {
	Video          *entity.Video `json:"video"`
	CompletedViews int64         `json:"completed_views"`
}

type UserStatus struct {
	User         *entity.User
	ActiveVideos int64
	Videos       []*VideoStatus
}

type UserUseCase interface {
	// Register finds or creates the user for a Telegram identity. Reports
	// whether the user was newly created.
	Register(telegramID int64, username string) (*entity.User, bool, error)
	FindByTelegramID(telegramID int64) (*entity.User, error)
	// Pause opts the user out of new task assignments. Refused while any of
	// their videos has an unresolved proof under review.
	Pause(userID string) error
	// Resume always succeeds.
	Resume(userID string) error
	Status(userID string) (*UserStatus, error)
}

type userUseCase struct {
	txm       persistent.TxManager
	userRepo  persistent.UserRepository
	videoRepo persistent.VideoRepository
	taskRepo  persistent.TaskRepository
	logRepo   persistent.LogRepository
	logger    *logger.Logger
}

func NewUserUseCase(
	txm persistent.TxManager,
	userRepo persistent.UserRepository,
	videoRepo persistent.VideoRepository,
	taskRepo persistent.TaskRepository,
	logRepo persistent.LogRepository,
	logger *logger.Logger,
) UserUseCase {
	return &userUseCase{
		txm:       txm,
		userRepo:  userRepo,
		videoRepo: videoRepo,
		taskRepo:  taskRepo,
		logRepo:   logRepo,
		logger:    logger,
	}
}

func (uc *userUseCase) Register(telegramID int64, username string) (*entity.User, bool, error) {
	var (
		user    *entity.User
		created bool
	)

	err := uc.txm.Transaction(func(tx *gorm.DB) error {
		users := uc.userRepo.WithTx(tx)

		existing, err := users.FindByTelegramID(telegramID)
		if err == nil {
			user = existing
			return users.TouchLastActive(existing.ID, time.Now().UTC())
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return err
		}

		user, err = users.Create(&entity.User{
			TelegramID:   telegramID,
			Username:     username,
			LastActiveAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		created = true
		return uc.logRepo.WithTx(tx).Append(entity.EventUserRegistered, user.ID, fmt.Sprintf("telegram %d", telegramID))
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

func (uc *userUseCase) FindByTelegramID(telegramID int64) (*entity.User, error) {
	return uc.userRepo.FindByTelegramID(telegramID)
}

func (uc *userUseCase) Pause(userID string) error {
	return uc.txm.Transaction(func(tx *gorm.DB) error {
		users := uc.userRepo.WithTx(tx)

		if _, err := users.FindByID(userID); err != nil {
			return err
		}

		// Owners may not ghost reviewers mid-review
		pending, err := uc.taskRepo.WithTx(tx).HasPendingReview(userID)
		if err != nil {
			return fmt.Errorf("failed to check reviews in progress: %w", err)
		}
		if pending {
			return ErrReviewInProgress
		}

		if err := users.SetPaused(userID, true); err != nil {
			return err
		}
		return uc.logRepo.WithTx(tx).Append(entity.EventUserPaused, userID, "")
	})
}

func (uc *userUseCase) Resume(userID string) error {
	return uc.txm.Transaction(func(tx *gorm.DB) error {
		users := uc.userRepo.WithTx(tx)

		if err := users.SetPaused(userID, false); err != nil {
			return err
		}
		return uc.logRepo.WithTx(tx).Append(entity.EventUserResumed, userID, "")
	})
}

func (uc *userUseCase) Status(userID string) (*UserStatus, error) {
	user, err := uc.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	videos, err := uc.videoRepo.ListActiveByOwner(userID)
	if err != nil {
		return nil, err
	}

	stats := make([]*VideoStatus, len(videos))
	for i, v := range videos {
		views, err := uc.taskRepo.CountCompletedViews(v.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count views for video %s: %w", v.ID, err)
		}
		stats[i] = &VideoStatus{Video: v, CompletedViews: views}
	}
	return &UserStatus{User: user, ActiveVideos: int64(len(videos)), Videos: stats}, nil
}
