package archive

import (
	"context"
	"testing"

	"viewswap/internal/entity"
	"viewswap/pkg/logger"
	"viewswap/pkg/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDownloader struct {
	mock.Mock
}

func (m *mockDownloader) GetFile(ctx context.Context, fileID string) (*telegram.File, error) {
	args := m.Called(fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telegram.File), args.Error(1)
}

func (m *mockDownloader) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	args := m.Called(filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) UploadBytes(key string, data []byte, contentType string) (string, error) {
	args := m.Called(key, data, contentType)
	return args.String(0), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) SetArchiveURL(id, archiveURL string) error {
	args := m.Called(id, archiveURL)
	return args.Error(0)
}

func TestArchiveProof_Success(t *testing.T) {
	downloader := new(mockDownloader)
	store := new(mockBlobStore)

	downloader.On("GetFile", "file-abc").Return(&telegram.File{FileID: "file-abc", FilePath: "photos/file_1.jpg"}, nil)
	downloader.On("DownloadFile", "photos/file_1.jpg").Return([]byte("jpeg-bytes"), nil)
	store.On("UploadBytes", "proofs/task-1.jpg", []byte("jpeg-bytes"), "image/jpeg").
		Return("https://bucket.s3.amazonaws.com/proofs/task-1.jpg", nil)

	repo := new(mockRecorder)
	repo.On("SetArchiveURL", "task-1", "https://bucket.s3.amazonaws.com/proofs/task-1.jpg").Return(nil)

	a := NewArchiver(downloader, store, repo, logger.New())
	a.ArchiveProof(&entity.Task{ID: "task-1", ProofFileID: "file-abc"})

	downloader.AssertExpectations(t)
	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestArchiveProof_DownloadFailureIsSilent(t *testing.T) {
	downloader := new(mockDownloader)
	store := new(mockBlobStore)
	repo := new(mockRecorder)

	downloader.On("GetFile", "file-abc").Return(nil, assert.AnError)

	a := NewArchiver(downloader, store, repo, logger.New())
	a.ArchiveProof(&entity.Task{ID: "task-1", ProofFileID: "file-abc"})

	store.AssertNotCalled(t, "UploadBytes", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SetArchiveURL", mock.Anything, mock.Anything)
}

func TestArchiveProof_NoProofIsNoop(t *testing.T) {
	downloader := new(mockDownloader)
	a := NewArchiver(downloader, new(mockBlobStore), new(mockRecorder), logger.New())

	a.ArchiveProof(&entity.Task{ID: "task-1"})
	a.ArchiveProof(nil)

	downloader.AssertNotCalled(t, "GetFile", mock.Anything)
}
