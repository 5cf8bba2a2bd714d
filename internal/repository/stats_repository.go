package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/questboard/internal/model"
)

// StatsRepo provides data access to the user_stats table, one row per user.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a new StatsRepo bound to the provided database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

const statsColumns = `user_id, experience, coins, level, current_streak, longest_streak,
       last_activity_date, quests_completed, equipped_avatar, updated_at`

// Get returns the user's stats or ErrNotFound.
func (r *StatsRepo) Get(ctx context.Context, userID uint64) (model.UserStats, error) {
	var (
		s      model.UserStats
		avatar sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT `+statsColumns+` FROM user_stats WHERE user_id = ?`, userID).Scan(
		&s.UserID, &s.Experience, &s.Coins, &s.Level, &s.CurrentStreak, &s.LongestStreak,
		&s.LastActivityDate, &s.QuestsCompleted, &avatar, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserStats{}, ErrNotFound
	}
	if err != nil {
		return model.UserStats{}, err
	}
	if avatar.Valid {
		a := avatar.String
		s.EquippedAvatar = &a
	}
	return s, nil
}

// GetOrCreate returns the user's stats, creating the zero-initialized row when
// it does not exist yet.
func (r *StatsRepo) GetOrCreate(ctx context.Context, userID uint64) (model.UserStats, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO user_stats (user_id, level, updated_at) VALUES (?, 1, UTC_TIMESTAMP())
         ON DUPLICATE KEY UPDATE user_id = user_id`, userID); err != nil {
		return model.UserStats{}, err
	}
	return r.Get(ctx, userID)
}

// Save upserts the progression counters.  equipped_avatar belongs to the shop
// and is left untouched on update.
func (r *StatsRepo) Save(ctx context.Context, s model.UserStats) error {
	const q = `INSERT INTO user_stats
        (user_id, experience, coins, level, current_streak, longest_streak, last_activity_date, quests_completed, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            experience = VALUES(experience),
            coins = VALUES(coins),
            level = VALUES(level),
            current_streak = VALUES(current_streak),
            longest_streak = VALUES(longest_streak),
            last_activity_date = VALUES(last_activity_date),
            quests_completed = VALUES(quests_completed),
            updated_at = VALUES(updated_at)`
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		s.UserID, s.Experience, s.Coins, s.Level, s.CurrentStreak, s.LongestStreak,
		s.LastActivityDate, s.QuestsCompleted, updated.UTC())
	return err
}
