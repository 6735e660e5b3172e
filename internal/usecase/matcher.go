package usecase

import (
	"fmt"

	"viewswap/internal/entity"
	"viewswap/internal/repo/persistent"
)

// Matcher selects the next video a viewer should be assigned. Read-only.
type Matcher interface {
	// NextVideoFor returns the eligible candidate with the fewest completed
	// views, or nil when no candidate exists. Eligibility excludes the
	// viewer's own videos and any video ever assigned to them before,
	// regardless of how that task ended.
	NextVideoFor(viewerID string) (*entity.Candidate, error)
}

type matcher struct {
	taskRepo persistent.TaskRepository
}

func NewMatcher(taskRepo persistent.TaskRepository) Matcher {
	return &matcher{taskRepo: taskRepo}
}

func (m *matcher) NextVideoFor(viewerID string) (*entity.Candidate, error) {
	candidates, err := m.taskRepo.ListCandidates(viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	// Fairness: fewest completed views wins; ties go to the earliest
	// enumerated candidate, which the repository keeps in creation order.
	return PickCandidate(candidates), nil
}
