package usecase

import (
	"time"

	"viewswap/pkg/config"
)

// Policy carries the tunable task-exchange rules.
type Policy struct {
	// ProofTTL is how long an unverified proof may wait before the sweep
	// force-expires it.
	ProofTTL time.Duration
	// BanThreshold is the strike count at which new task requests are
	// refused. Evaluated at request time only.
	BanThreshold int
	// MaxVideos caps simultaneously active videos per owner.
	MaxVideos int
}

func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		ProofTTL:     cfg.ProofTTL,
		BanThreshold: cfg.BanThreshold,
		MaxVideos:    cfg.MaxVideos,
	}
}

func DefaultPolicy() Policy {
	return Policy{
		ProofTTL:     4 * time.Hour,
		BanThreshold: 4,
		MaxVideos:    5,
	}
}
