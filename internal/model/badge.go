package model

import "time"

// BadgeKind selects which statistic a badge threshold is compared against.
type BadgeKind string

const (
	BadgeKindStreak     BadgeKind = "streak"
	BadgeKindQuestCount BadgeKind = "quest_count"
	BadgeKindWeekly     BadgeKind = "weekly"
	BadgeKindLevel      BadgeKind = "level"
)

// Valid reports whether k is a known kind.
func (k BadgeKind) Valid() bool {
	switch k {
	case BadgeKindStreak, BadgeKindQuestCount, BadgeKindWeekly, BadgeKindLevel:
		return true
	}
	return false
}

// Badge is a row of the global, read-only `badges` catalog.
type Badge struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Kind        BadgeKind `json:"kind"`
	Threshold   int       `json:"threshold"`
}

// EarnedBadge records that a user unlocked a badge.  Rows are append-only and
// unique per (UserID, BadgeID).
type EarnedBadge struct {
	UserID   uint64    `json:"user_id"`
	BadgeID  uint64    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// BadgeStatus is a catalog entry annotated for one user.
type BadgeStatus struct {
	Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// AwardOutcome is the tagged result of one badge insert attempt.
type AwardOutcome int

const (
	AwardFailed AwardOutcome = iota
	AwardInserted
	AwardAlreadyEarned
)

func (o AwardOutcome) String() string {
	switch o {
	case AwardInserted:
		return "inserted"
	case AwardAlreadyEarned:
		return "already_earned"
	default:
		return "failed"
	}
}
