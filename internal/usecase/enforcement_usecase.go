package usecase

import (
	"fmt"

	"viewswap/internal/entity"
	"viewswap/internal/repo/persistent"
	"viewswap/pkg/logger"

	"gorm.io/gorm"
)

// EnforcementUseCase is the strike ledger. The ban itself is declarative:
// a user is banned from new tasks whenever Strikes >= the policy threshold,
// checked at request time, never stored.
type EnforcementUseCase interface {
	// Strike adds one strike and returns the new count. No upper bound.
	Strike(userID string) (int, error)
	// Unstrike removes one strike, floored at zero. Admin only; callers
	// authorize.
	Unstrike(userID string) (int, error)
	// IsBanned reports whether the user is currently blocked from new tasks.
	IsBanned(user *entity.User) bool
	// ListStrikable returns users at or above the given strike count.
	ListStrikable(minStrikes int) ([]*entity.User, error)
}

type enforcementUseCase struct {
	txm      persistent.TxManager
	userRepo persistent.UserRepository
	logRepo  persistent.LogRepository
	logger   *logger.Logger
	policy   Policy
}

func NewEnforcementUseCase(
	txm persistent.TxManager,
	userRepo persistent.UserRepository,
	logRepo persistent.LogRepository,
	logger *logger.Logger,
	policy Policy,
) EnforcementUseCase {
	return &enforcementUseCase{
		txm:      txm,
		userRepo: userRepo,
		logRepo:  logRepo,
		logger:   logger,
		policy:   policy,
	}
}

func (uc *enforcementUseCase) Strike(userID string) (int, error) {
	var strikes int
	err := uc.txm.Transaction(func(tx *gorm.DB) error {
		var err error
		strikes, err = uc.userRepo.WithTx(tx).AddStrike(userID)
		if err != nil {
			return err
		}
		return uc.logRepo.WithTx(tx).Append(entity.EventStrikeAdded, userID, fmt.Sprintf("strikes now %d", strikes))
	})
	if err != nil {
		return 0, err
	}
	return strikes, nil
}

func (uc *enforcementUseCase) Unstrike(userID string) (int, error) {
	var strikes int
	err := uc.txm.Transaction(func(tx *gorm.DB) error {
		var err error
		strikes, err = uc.userRepo.WithTx(tx).RemoveStrike(userID)
		if err != nil {
			return err
		}
		return uc.logRepo.WithTx(tx).Append(entity.EventStrikeRemoved, userID, fmt.Sprintf("strikes now %d", strikes))
	})
	if err != nil {
		return 0, err
	}
	return strikes, nil
}

func (uc *enforcementUseCase) IsBanned(user *entity.User) bool {
	return user.Strikes >= uc.policy.BanThreshold
}

func (uc *enforcementUseCase) ListStrikable(minStrikes int) ([]*entity.User, error) {
	return uc.userRepo.ListByMinStrikes(minStrikes)
}
