package sweep

import (
	"context"
	"time"

	"viewswap/pkg/logger"
)

// TaskExpirer force-expires overdue proofs. Satisfied by the task use case.
type TaskExpirer interface {
	ExpireStaleProofs() (int64, error)
}

// Sweeper runs the proof expiry pass on a fixed interval. The pass itself is
// idempotent, so overlapping deployments or restarts are harmless.
type Sweeper struct {
	expirer  TaskExpirer
	interval time.Duration
	logger   *logger.Logger
}

func NewSweeper(expirer TaskExpirer, interval time.Duration, logger *logger.Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled. Blocks; run it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	count, err := s.expirer.ExpireStaleProofs()
	if err != nil {
		s.logger.Error("Proof expiry sweep failed: %v", err)
		return
	}
	if count > 0 {
		s.logger.Info("Proof expiry sweep expired %d tasks", count)
	}
}
