package usecase

import (
	"errors"
	"fmt"
	"time"

	"viewswap/internal/entity"
	"viewswap/internal/repo/persistent"
	"viewswap/pkg/logger"
	"viewswap/pkg/queue"

	"gorm.io/gorm"
)

// Request-time refusals surfaced to the viewer as guidance, not failures.
var (
	ErrPaused          = errors.New("user is paused")
	ErrBanned          = errors.New("user is banned by strikes")
	ErrMustReviewFirst = errors.New("user has a proof to review first")
	ErrTaskInFlight    = errors.New("user already has an open task")
	ErrNoCandidates    = errors.New("no eligible videos available")
)

// ProofArchiver copies a submitted proof attachment to durable storage.
// Best effort, invoked after the submission has committed.
type ProofArchiver interface {
	ArchiveProof(task *entity.Task)
}

type TaskUseCase interface {
	// RequestTask assigns the fairest eligible video to the viewer and
	// returns the new task with its video.
	RequestTask(viewerID string) (*entity.Task, *entity.Video, error)
	// SkipTask expires a task the viewer declined before starting. No strike.
	SkipTask(viewerID, taskID string) error
	// SubmitProof attaches a proof to the viewer's open task and notifies
	// the video owner.
	SubmitProof(viewerID, proofFileID string) (*entity.Task, error)
	// TaskForReview returns the oldest unreviewed proof on the owner's
	// videos, or (nil, nil, nil) when there is none.
	TaskForReview(ownerID string) (*entity.Task, *entity.Video, error)
	// OpenTaskFor returns the viewer's task still awaiting their proof, or
	// (nil, nil, nil) when there is none.
	OpenTaskFor(viewerID string) (*entity.Task, *entity.Video, error)
	ReviewAccept(ownerID, taskID string) error
	ReviewReject(ownerID, taskID, reviewerMsg string) error
	// ExpireStaleProofs force-expires unverified proofs older than the
	// policy TTL. Idempotent.
	ExpireStaleProofs() (int64, error)
}

type taskUseCase struct {
	txm         persistent.TxManager
	userRepo    persistent.UserRepository
	videoRepo   persistent.VideoRepository
	taskRepo    persistent.TaskRepository
	logRepo     persistent.LogRepository
	queueClient *queue.Client
	archiver    ProofArchiver
	logger      *logger.Logger
	policy      Policy
	now         func() time.Time
}

func NewTaskUseCase(
	txm persistent.TxManager,
	userRepo persistent.UserRepository,
	videoRepo persistent.VideoRepository,
	taskRepo persistent.TaskRepository,
	logRepo persistent.LogRepository,
	queueClient *queue.Client,
	archiver ProofArchiver,
	logger *logger.Logger,
	policy Policy,
) TaskUseCase {
	return &taskUseCase{
		txm:         txm,
		userRepo:    userRepo,
		videoRepo:   videoRepo,
		taskRepo:    taskRepo,
		logRepo:     logRepo,
		queueClient: queueClient,
		archiver:    archiver,
		logger:      logger,
		policy:      policy,
		now:         time.Now,
	}
}

func (uc *taskUseCase) RequestTask(viewerID string) (*entity.Task, *entity.Video, error) {
	var (
		task  *entity.Task
		video *entity.Video
	)

	err := uc.txm.Transaction(func(tx *gorm.DB) error {
		users := uc.userRepo.WithTx(tx)
		tasks := uc.taskRepo.WithTx(tx)

		viewer, err := users.FindByID(viewerID)
		if err != nil {
			return err
		}
		if viewer.Paused {
			return ErrPaused
		}
		if viewer.Strikes >= uc.policy.BanThreshold {
			return ErrBanned
		}

		// The viewer must clear their own review queue before taking more work
		pending, err := tasks.HasPendingReview(viewer.ID)
		if err != nil {
			return fmt.Errorf("failed to check pending reviews: %w", err)
		}
		if pending {
			return ErrMustReviewFirst
		}

		if _, err := tasks.FindOpenForViewer(viewer.ID); err == nil {
			return ErrTaskInFlight
		} else if !errors.Is(err, entity.ErrNotFound) {
			return err
		}

		candidates, err := tasks.ListCandidates(viewer.ID)
		if err != nil {
			return fmt.Errorf("failed to list candidates: %w", err)
		}
		best := PickCandidate(candidates)
		if best == nil {
			return ErrNoCandidates
		}

		task, err = tasks.Create(&entity.Task{
			VideoID:    best.Video.ID,
			AssignedTo: viewer.ID,
			AssignedAt: uc.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		video = best.Video

		if err := users.TouchLastActive(viewer.ID, uc.now().UTC()); err != nil {
			return err
		}
		return uc.logRepo.WithTx(tx).Append(entity.EventTaskAssigned, viewer.ID, fmt.Sprintf("task %s video %s", task.ID, video.ID))
	})
	if err != nil {
		return nil, nil, err
	}
	return task, video, nil
}

// PickCandidate applies the fairness rule to an enumeration-ordered candidate
// list: minimum completed-view count, first occurrence on ties.
func PickCandidate(candidates []*entity.Candidate) *entity.Candidate {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.CompletedViews < best.CompletedViews {
			best = c
		}
	}
	return best
}

func (uc *taskUseCase) SkipTask(viewerID, taskID string) error {
	return uc.txm.Transaction(func(tx *gorm.DB) error {
		tasks := uc.taskRepo.WithTx(tx)

		task, err := tasks.FindByID(taskID)
		if err != nil {
			return err
		}
		if task.AssignedTo != viewerID {
			return entity.ErrUnauthorized
		}
		if task.State() != entity.StateAssigned {
			return entity.ErrInvalidState
		}

		if err := tasks.SetExpired(task.ID); err != nil {
			return err
		}
		return uc.logRepo.WithTx(tx).Append(entity.EventTaskSkipped, viewerID, fmt.Sprintf("task %s", task.ID))
	})
}

func (uc *taskUseCase) SubmitProof(viewerID, proofFileID string) (*entity.Task, error) {
	var task *entity.Task

	err := uc.txm.Transaction(func(tx *gorm.DB) error {
		tasks := uc.taskRepo.WithTx(tx)

		open, err := tasks.FindOpenForViewer(viewerID)
		if err != nil {
			return err
		}
		if open.State() != entity.StateAssigned {
			return entity.ErrInvalidState
		}

		uploadedAt := uc.now().UTC()
		if err := tasks.SetProof(open.ID, proofFileID, uploadedAt); err != nil {
			return err
		}
		open.ProofFileID = proofFileID
		open.ProofUploadedAt = &uploadedAt
		task = open

		return uc.logRepo.WithTx(tx).Append(entity.EventProofSubmitted, viewerID, fmt.Sprintf("task %s", open.ID))
	})
	if err != nil {
		return nil, err
	}

	// The transition is committed; notification and archive are best effort
	uc.notifyOwner(task)
	if uc.archiver != nil {
		go uc.archiver.ArchiveProof(task)
	}
	return task, nil
}

func (uc *taskUseCase) notifyOwner(task *entity.Task) {
	if uc.queueClient == nil {
		return
	}
	go func() {
		video, err := uc.videoRepo.FindByID(task.VideoID)
		if err != nil {
			uc.logger.Error("Failed to resolve video %s for notification: %v", task.VideoID, err)
			return
		}
		owner, err := uc.userRepo.FindByID(video.OwnerID)
		if err != nil {
			uc.logger.Error("Failed to resolve owner %s for notification: %v", video.OwnerID, err)
			return
		}
		n := queue.Notification{
			Kind:       queue.KindProofSubmitted,
			ChatID:     owner.TelegramID,
			TaskID:     task.ID,
			VideoTitle: video.Title,
			Text:       fmt.Sprintf("You have a proof to review for \"%s\". Use /review to verify.", video.Title),
			Priority:   3,
		}
		if err := uc.queueClient.PublishNotification(n); err != nil {
			uc.logger.Error("Failed to publish proof_submitted notification for task %s: %v", task.ID, err)
		}
	}()
}

func (uc *taskUseCase) TaskForReview(ownerID string) (*entity.Task, *entity.Video, error) {
	task, err := uc.taskRepo.FindOldestPendingReview(ownerID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	video, err := uc.videoRepo.FindByID(task.VideoID)
	if err != nil {
		return nil, nil, err
	}
	return task, video, nil
}

func (uc *taskUseCase) OpenTaskFor(viewerID string) (*entity.Task, *entity.Video, error) {
	task, err := uc.taskRepo.FindOpenForViewer(viewerID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	video, err := uc.videoRepo.FindByID(task.VideoID)
	if err != nil {
		return nil, nil, err
	}
	return task, video, nil
}

func (uc *taskUseCase) ReviewAccept(ownerID, taskID string) error {
	var task *entity.Task

	err := uc.txm.Transaction(func(tx *gorm.DB) error {
		tasks := uc.taskRepo.WithTx(tx)

		found, err := tasks.FindByID(taskID)
		if err != nil {
			return err
		}
		video, err := uc.videoRepo.WithTx(tx).FindByID(found.VideoID)
		if err != nil {
			return err
		}
		if video.OwnerID != ownerID {
			return entity.ErrUnauthorized
		}
		if found.State() != entity.StateProofPending {
			return entity.ErrInvalidState
		}

		if err := tasks.SetVerified(found.ID, entity.ResultAccepted, ownerID, "", uc.now().UTC()); err != nil {
			return err
		}
		task = found
		return uc.logRepo.WithTx(tx).Append(entity.EventProofAccepted, ownerID, fmt.Sprintf("task %s", found.ID))
	})
	if err != nil {
		return err
	}

	uc.notifyViewer(task, queue.KindProofAccepted,
		"Your proof was accepted! You can now get the next task using /gettask.", 3)
	return nil
}

func (uc *taskUseCase) ReviewReject(ownerID, taskID, reviewerMsg string) error {
	var (
		task    *entity.Task
		strikes int
	)

	err := uc.txm.Transaction(func(tx *gorm.DB) error {
		tasks := uc.taskRepo.WithTx(tx)
		logs := uc.logRepo.WithTx(tx)

		found, err := tasks.FindByID(taskID)
		if err != nil {
			return err
		}
		video, err := uc.videoRepo.WithTx(tx).FindByID(found.VideoID)
		if err != nil {
			return err
		}
		if video.OwnerID != ownerID {
			return entity.ErrUnauthorized
		}
		if found.State() != entity.StateProofPending {
			return entity.ErrInvalidState
		}

		// Rejection has two effects: a verification record for audit, and a
		// forced expiry so the task drops out of fairness counts and the
		// review queue.
		if err := tasks.SetVerified(found.ID, entity.ResultRejected, ownerID, reviewerMsg, uc.now().UTC()); err != nil {
			return err
		}
		if err := tasks.SetExpired(found.ID); err != nil {
			return err
		}
		strikes, err = uc.userRepo.WithTx(tx).AddStrike(found.AssignedTo)
		if err != nil {
			return err
		}
		task = found

		if err := logs.Append(entity.EventProofRejected, ownerID, fmt.Sprintf("task %s", found.ID)); err != nil {
			return err
		}
		return logs.Append(entity.EventStrikeAdded, found.AssignedTo, fmt.Sprintf("strikes now %d", strikes))
	})
	if err != nil {
		return err
	}

	uc.notifyViewer(task, queue.KindProofRejected,
		fmt.Sprintf("Your proof was rejected and you received a strike (%d of %d). Please check the requirements.", strikes, uc.policy.BanThreshold), 5)
	return nil
}

func (uc *taskUseCase) notifyViewer(task *entity.Task, kind, text string, priority int) {
	if uc.queueClient == nil {
		return
	}
	go func() {
		viewer, err := uc.userRepo.FindByID(task.AssignedTo)
		if err != nil {
			uc.logger.Error("Failed to resolve viewer %s for notification: %v", task.AssignedTo, err)
			return
		}
		n := queue.Notification{
			Kind:     kind,
			ChatID:   viewer.TelegramID,
			TaskID:   task.ID,
			Text:     text,
			Priority: priority,
		}
		if err := uc.queueClient.PublishNotification(n); err != nil {
			uc.logger.Error("Failed to publish %s notification for task %s: %v", kind, task.ID, err)
		}
	}()
}

func (uc *taskUseCase) ExpireStaleProofs() (int64, error) {
	cutoff := uc.now().UTC().Add(-uc.policy.ProofTTL)
	count, err := uc.taskRepo.ExpireStaleProofs(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale proofs: %w", err)
	}
	if count > 0 {
		if err := uc.logRepo.Append(entity.EventTasksExpired, "", fmt.Sprintf("%d stale proofs expired", count)); err != nil {
			uc.logger.Error("Failed to log sweep result: %v", err)
		}
	}
	return count, nil
}
