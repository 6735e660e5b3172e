package usecase

import (
	"time"

	"viewswap/internal/entity"
	"viewswap/internal/repo/persistent"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// stubTxManager runs the closure directly; the mocked repositories ignore the
// nil transaction handle.
type stubTxManager struct{}

func (stubTxManager) Transaction(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) WithTx(tx *gorm.DB) persistent.UserRepository { return m }

func (m *MockUserRepository) Create(user *entity.User) (*entity.User, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(id string) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByTelegramID(telegramID int64) (*entity.User, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) SetPaused(id string, paused bool) error {
	args := m.Called(id, paused)
	return args.Error(0)
}

func (m *MockUserRepository) AddStrike(id string) (int, error) {
	args := m.Called(id)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) RemoveStrike(id string) (int, error) {
	args := m.Called(id)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) ListByMinStrikes(minStrikes int) ([]*entity.User, error) {
	args := m.Called(minStrikes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastActive(id string, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

var _ persistent.UserRepository = (*MockUserRepository)(nil)

type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) WithTx(tx *gorm.DB) persistent.VideoRepository { return m }

func (m *MockVideoRepository) Create(video *entity.Video) (*entity.Video, error) {
	args := m.Called(video)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Video), args.Error(1)
}

func (m *MockVideoRepository) FindByID(id string) (*entity.Video, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Video), args.Error(1)
}

func (m *MockVideoRepository) ListActiveByOwner(ownerID string) ([]*entity.Video, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Video), args.Error(1)
}

func (m *MockVideoRepository) CountActiveByOwner(ownerID string) (int64, error) {
	args := m.Called(ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVideoRepository) Deactivate(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

var _ persistent.VideoRepository = (*MockVideoRepository)(nil)

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) WithTx(tx *gorm.DB) persistent.TaskRepository { return m }

func (m *MockTaskRepository) Create(task *entity.Task) (*entity.Task, error) {
	args := m.Called(task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByID(id string) (*entity.Task, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Task), args.Error(1)
}

func (m *MockTaskRepository) ListCandidates(viewerID string) ([]*entity.Candidate, error) {
	args := m.Called(viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Candidate), args.Error(1)
}

func (m *MockTaskRepository) SetProof(id, proofFileID string, uploadedAt time.Time) error {
	args := m.Called(id, proofFileID, uploadedAt)
	return args.Error(0)
}

func (m *MockTaskRepository) SetArchiveURL(id, archiveURL string) error {
	args := m.Called(id, archiveURL)
	return args.Error(0)
}

func (m *MockTaskRepository) SetVerified(id string, result entity.VerificationResult, reviewerID, reviewerMsg string, verifiedAt time.Time) error {
	args := m.Called(id, result, reviewerID, reviewerMsg, verifiedAt)
	return args.Error(0)
}

func (m *MockTaskRepository) SetExpired(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockTaskRepository) FindOldestPendingReview(ownerID string) (*entity.Task, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Task), args.Error(1)
}

func (m *MockTaskRepository) HasPendingReview(ownerID string) (bool, error) {
	args := m.Called(ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) FindOpenForViewer(viewerID string) (*entity.Task, error) {
	args := m.Called(viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Task), args.Error(1)
}

func (m *MockTaskRepository) CountCompletedViews(videoID string) (int64, error) {
	args := m.Called(videoID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) ExpireStaleProofs(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

var _ persistent.TaskRepository = (*MockTaskRepository)(nil)

type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) WithTx(tx *gorm.DB) persistent.LogRepository { return m }

func (m *MockLogRepository) Append(event, userID, details string) error {
	args := m.Called(event, userID, details)
	return args.Error(0)
}

func (m *MockLogRepository) List(limit, offset int) ([]*entity.LogEntry, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.LogEntry), args.Error(1)
}

var _ persistent.LogRepository = (*MockLogRepository)(nil)
