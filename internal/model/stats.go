package model

import (
	"time"

	"github.com/iliyamo/questboard/internal/calendar"
)

// UserStats mirrors the `user_stats` table: one row per user holding the
// progression counters.  Level is a cache of the level derived from
// Experience and is recomputed on every write.
type UserStats struct {
	UserID           uint64        // user_stats.user_id
	Experience       int           // user_stats.experience
	Coins            int           // user_stats.coins
	Level            int           // user_stats.level
	CurrentStreak    int           // user_stats.current_streak
	LongestStreak    int           // user_stats.longest_streak
	LastActivityDate calendar.Date // user_stats.last_activity_date (nullable)
	QuestsCompleted  int           // user_stats.quests_completed
	EquippedAvatar   *string       // user_stats.equipped_avatar (nullable, cosmetic)
	UpdatedAt        time.Time     // user_stats.updated_at
}

// NewUserStats returns the zero-initialized row created on first login.
func NewUserStats(userID uint64) UserStats {
	return UserStats{UserID: userID, Level: 1}
}

// StatsSnapshot is the read model handed to the presentation layer.
type StatsSnapshot struct {
	Experience      int `json:"experience"`
	Coins           int `json:"coins"`
	Level           int `json:"level"`
	ProgressPercent int `json:"progress_percent"`
	CurrentStreak   int `json:"current_streak"`
	LongestStreak   int `json:"longest_streak"`
}
