package usecase

import (
	"fmt"
	"strings"

	"viewswap/internal/entity"
	"viewswap/internal/repo/persistent"
	"viewswap/pkg/logger"

	"gorm.io/gorm"
)

type VideoUseCase interface {
	// Upload creates an active video for the owner. Refused with
	// ErrCapacityExceeded when the owner already has the maximum of active
	// videos; the cap check and the insert share one transaction.
	Upload(ownerID, title, thumbnailFileID string, duration int, link string) (*entity.Video, error)
	// Remove soft-deletes one of the owner's videos.
	Remove(ownerID, videoID string) error
	ListActive(ownerID string) ([]*entity.Video, error)
	CountActive(ownerID string) (int64, error)
}

type videoUseCase struct {
	txm       persistent.TxManager
	videoRepo persistent.VideoRepository
	logRepo   persistent.LogRepository
	logger    *logger.Logger
	policy    Policy
}

func NewVideoUseCase(
	txm persistent.TxManager,
	videoRepo persistent.VideoRepository,
	logRepo persistent.LogRepository,
	logger *logger.Logger,
	policy Policy,
) VideoUseCase {
	return &videoUseCase{
		txm:       txm,
		videoRepo: videoRepo,
		logRepo:   logRepo,
		logger:    logger,
		policy:    policy,
	}
}

func (uc *videoUseCase) Upload(ownerID, title, thumbnailFileID string, duration int, link string) (*entity.Video, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > entity.MaxTitleLength {
		return nil, fmt.Errorf("%w: title must be 1-%d characters", entity.ErrInvalidState, entity.MaxTitleLength)
	}
	if thumbnailFileID == "" {
		return nil, fmt.Errorf("%w: thumbnail is mandatory", entity.ErrInvalidState)
	}
	if duration < 1 || duration > entity.MaxDurationSecs {
		return nil, fmt.Errorf("%w: duration must be 1-%d seconds", entity.ErrInvalidState, entity.MaxDurationSecs)
	}

	var video *entity.Video
	err := uc.txm.Transaction(func(tx *gorm.DB) error {
		videos := uc.videoRepo.WithTx(tx)

		count, err := videos.CountActiveByOwner(ownerID)
		if err != nil {
			return fmt.Errorf("failed to count active videos: %w", err)
		}
		if count >= int64(uc.policy.MaxVideos) {
			return fmt.Errorf("%w: %d active videos", entity.ErrCapacityExceeded, count)
		}

		video, err = videos.Create(&entity.Video{
			OwnerID:         ownerID,
			Title:           title,
			ThumbnailFileID: thumbnailFileID,
			Duration:        duration,
			Link:            link,
			Active:          true,
		})
		if err != nil {
			return fmt.Errorf("failed to create video: %w", err)
		}
		return uc.logRepo.WithTx(tx).Append(entity.EventVideoUploaded, ownerID, fmt.Sprintf("video %s %q", video.ID, title))
	})
	if err != nil {
		return nil, err
	}
	return video, nil
}

func (uc *videoUseCase) Remove(ownerID, videoID string) error {
	return uc.txm.Transaction(func(tx *gorm.DB) error {
		videos := uc.videoRepo.WithTx(tx)

		video, err := videos.FindByID(videoID)
		if err != nil {
			return err
		}
		if video.OwnerID != ownerID {
			return entity.ErrUnauthorized
		}
		if !video.Active {
			return entity.ErrInvalidState
		}

		if err := videos.Deactivate(video.ID); err != nil {
			return err
		}
		return uc.logRepo.WithTx(tx).Append(entity.EventVideoRemoved, ownerID, fmt.Sprintf("video %s", video.ID))
	})
}

func (uc *videoUseCase) ListActive(ownerID string) ([]*entity.Video, error) {
	return uc.videoRepo.ListActiveByOwner(ownerID)
}

func (uc *videoUseCase) CountActive(ownerID string) (int64, error) {
	return uc.videoRepo.CountActiveByOwner(ownerID)
}
