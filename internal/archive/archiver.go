package archive

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"viewswap/internal/entity"
	"viewswap/pkg/logger"
	"viewswap/pkg/telegram"
)

// FileDownloader fetches an attachment from the Telegram file API.
type FileDownloader interface {
	GetFile(ctx context.Context, fileID string) (*telegram.File, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

// BlobStore persists proof attachments in object storage.
type BlobStore interface {
	UploadBytes(key string, data []byte, contentType string) (string, error)
}

// ArchiveRecorder stores the archive location on the task. Satisfied by
// persistent.TaskRepository.
type ArchiveRecorder interface {
	SetArchiveURL(id, archiveURL string) error
}

// Archiver copies submitted proof screenshots out of Telegram into S3 so they
// survive Telegram's file retention. Telegram keeps the file id valid long
// enough for review; the archive copy is for audit.
type Archiver struct {
	downloader FileDownloader
	store      BlobStore
	recorder   ArchiveRecorder
	logger     *logger.Logger
	timeout    time.Duration
}

func NewArchiver(downloader FileDownloader, store BlobStore, recorder ArchiveRecorder, logger *logger.Logger) *Archiver {
	return &Archiver{
		downloader: downloader,
		store:      store,
		recorder:   recorder,
		logger:     logger,
		timeout:    60 * time.Second,
	}
}

// ArchiveProof is best effort: a failure leaves the task without an archive
// URL but never blocks the submission that triggered it.
func (a *Archiver) ArchiveProof(task *entity.Task) {
	if task == nil || task.ProofFileID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	file, err := a.downloader.GetFile(ctx, task.ProofFileID)
	if err != nil {
		a.logger.Error("Failed to resolve proof file for task %s: %v", task.ID, err)
		return
	}
	data, err := a.downloader.DownloadFile(ctx, file.FilePath)
	if err != nil {
		a.logger.Error("Failed to download proof for task %s: %v", task.ID, err)
		return
	}

	ext := filepath.Ext(file.FilePath)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("proofs/%s%s", task.ID, ext)
	url, err := a.store.UploadBytes(key, data, contentType)
	if err != nil {
		a.logger.Error("Failed to archive proof for task %s: %v", task.ID, err)
		return
	}

	if err := a.recorder.SetArchiveURL(task.ID, url); err != nil {
		a.logger.Error("Failed to record archive URL for task %s: %v", task.ID, err)
		return
	}
	a.logger.Info("Archived proof for task %s to %s", task.ID, key)
}
