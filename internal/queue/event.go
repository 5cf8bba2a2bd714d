// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// QuestCompletedQueue is the durable queue completion events are routed to.
const QuestCompletedQueue = "quest.completed"

// QuestCompletedEvent is published after a completion that granted a reward.
// It carries enough state for downstream consumers to log, notify or run
// analytics without querying the primary database.
type QuestCompletedEvent struct {
	EventID       string   `json:"event_id"`
	UserID        uint64   `json:"user_id"`
	QuestID       uint64   `json:"quest_id"`
	QuestTitle    string   `json:"quest_title"`
	Category      string   `json:"category"`
	Experience    int      `json:"experience"`
	Coins         int      `json:"coins"`
	TotalXP       int      `json:"total_experience"`
	Level         int      `json:"level"`
	CurrentStreak int      `json:"current_streak"`
	NewBadges     []string `json:"new_badges"`
	ActivityDate  string   `json:"activity_date"`
	CompletedAt   string   `json:"completed_at"`
}
