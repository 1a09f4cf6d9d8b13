package cleanup

import (
	"context"
	"time"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/rs/zerolog/log"
)

const defaultGraceWindow = 10 * time.Minute

// cleanupService sweeps pending player rows whose buy-in attempt was
// abandoned, usually a closed tab mid-flow. The status guard in the store
// means a row promoted to deposited is never touched, no matter how old.
type cleanupService struct {
	store ledger.Store
	grace time.Duration
}

func (cs *cleanupService) sweepStalePending(ctx context.Context) (int64, error) {
	grace := cs.grace
	if grace <= 0 {
		grace = defaultGraceWindow
	}
	cutoff := time.Now().UTC().Add(-grace)

	deleted, err := cs.store.DeleteStalePendingPlayers(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("swept stale pending players")
	}
	return deleted, nil
}
