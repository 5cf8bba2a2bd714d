package quest

import (
	"context"
	"time"

	"github.com/iliyamo/questboard/internal/badge"
	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/model"
	"github.com/iliyamo/questboard/internal/queue"
)

// QuestStore persists quests.  Missing or foreign rows are reported as
// repository.ErrNotFound and unique key collisions as repository.ErrDuplicate.
type QuestStore interface {
	Create(ctx context.Context, q *model.Quest) error
	GetForOwner(ctx context.Context, id, ownerID uint64) (model.Quest, error)
	MarkCompleted(ctx context.Context, id, ownerID uint64, at time.Time) (bool, error)
	Delete(ctx context.Context, id, ownerID uint64) error
	ListByOwner(ctx context.Context, ownerID uint64, f model.QuestFilter) ([]model.Quest, error)
	CountCompletedSince(ctx context.Context, ownerID uint64, since time.Time) (int, error)
	ExistsForTemplate(ctx context.Context, templateID uint64, resetDate calendar.Date) (bool, error)
}

// TemplateStore persists recurring quest templates.
type TemplateStore interface {
	Create(ctx context.Context, t *model.QuestTemplate) error
	ListByOwner(ctx context.Context, ownerID uint64, activeOnly bool) ([]model.QuestTemplate, error)
	ListActive(ctx context.Context, ownerID uint64, category model.Category) ([]model.QuestTemplate, error)
	Deactivate(ctx context.Context, id, ownerID uint64) error
}

// StatsStore persists one stats row per user.
type StatsStore interface {
	GetOrCreate(ctx context.Context, userID uint64) (model.UserStats, error)
	Save(ctx context.Context, s model.UserStats) error
}

// BadgeStore exposes the catalog and the per-user earned set.
type BadgeStore interface {
	badge.Store
	Catalog(ctx context.Context) ([]model.Badge, error)
	Earned(ctx context.Context, userID uint64) ([]model.EarnedBadge, error)
}

// EventPublisher announces effective completions.  Publishing is best effort.
type EventPublisher interface {
	PublishQuestCompleted(ctx context.Context, ev queue.QuestCompletedEvent) error
}

// SnapshotCache holds the last-known-good stats snapshot per user and day.
type SnapshotCache interface {
	Get(ctx context.Context, userID uint64, day calendar.Date) (model.StatsSnapshot, bool)
	Put(ctx context.Context, userID uint64, day calendar.Date, snap model.StatsSnapshot)
}

type noopPublisher struct{}

func (noopPublisher) PublishQuestCompleted(context.Context, queue.QuestCompletedEvent) error {
	return nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, uint64, calendar.Date) (model.StatsSnapshot, bool) {
	return model.StatsSnapshot{}, false
}

func (noopCache) Put(context.Context, uint64, calendar.Date, model.StatsSnapshot) {}
