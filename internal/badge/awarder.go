package badge

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/questboard/internal/model"
)

// Store records earned badges.  Award must report a duplicate (user, badge)
// pair as AwardAlreadyEarned with a nil error.
type Store interface {
	Award(ctx context.Context, userID, badgeID uint64, at time.Time) (model.AwardOutcome, error)
}

// Awarder inserts candidate badges and reports which ones this pass earned.
type Awarder struct {
	store  Store
	logger *slog.Logger
}

func NewAwarder(store Store, logger *slog.Logger) *Awarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Awarder{store: store, logger: logger}
}

// Award attempts every candidate.  Failures are logged and skipped so they are
// retried by the next evaluation; they never fail the caller.
func (a *Awarder) Award(ctx context.Context, userID uint64, candidates []model.Badge, at time.Time) []model.Badge {
	var earned []model.Badge
	for _, b := range candidates {
		outcome, err := a.store.Award(ctx, userID, b.ID, at)
		switch outcome {
		case model.AwardInserted:
			earned = append(earned, b)
		case model.AwardAlreadyEarned:
			a.logger.Debug("badge already earned",
				slog.Uint64("user_id", userID),
				slog.Uint64("badge_id", b.ID))
		default:
			a.logger.Warn("badge award failed",
				slog.Uint64("user_id", userID),
				slog.Uint64("badge_id", b.ID),
				slog.String("badge", b.Name),
				slog.Any("error", err))
		}
	}
	return earned
}
