// Package quest owns quest entities and is where a completion turns into
// experience, coins, streak days and badges.
package quest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/questboard/internal/badge"
	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/model"
	"github.com/iliyamo/questboard/internal/progression"
	"github.com/iliyamo/questboard/internal/queue"
	"github.com/iliyamo/questboard/internal/repository"
	"github.com/iliyamo/questboard/internal/session"
	"github.com/iliyamo/questboard/internal/streak"
)

const maxTitleLen = 200

// Deps are the collaborators of a Service.  Events, Cache, Clock and Logger
// are optional.
type Deps struct {
	Quests    QuestStore
	Templates TemplateStore
	Stats     StatsStore
	Badges    BadgeStore
	Events    EventPublisher
	Cache     SnapshotCache
	Clock     calendar.Clock
	Logger    *slog.Logger
}

// Service is the quest lifecycle manager.  It keeps no per-user state of its
// own; every call names its owner through a session.Session.
type Service struct {
	quests    QuestStore
	templates TemplateStore
	stats     StatsStore
	badges    BadgeStore
	awarder   *badge.Awarder
	events    EventPublisher
	cache     SnapshotCache
	clock     calendar.Clock
	logger    *slog.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		quests:    d.Quests,
		templates: d.Templates,
		stats:     d.Stats,
		badges:    d.Badges,
		events:    d.Events,
		cache:     d.Cache,
		clock:     d.Clock,
		logger:    d.Logger,
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	if s.cache == nil {
		s.cache = noopCache{}
	}
	if s.clock == nil {
		s.clock = calendar.RealClock{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.awarder = badge.NewAwarder(d.Badges, s.logger)
	return s
}

// NewQuest is the user-supplied part of a quest.
type NewQuest struct {
	Title       string
	Description string
	Category    string
	DueDate     *time.Time
}

// ListFilter narrows List.  An empty Category matches every category.
type ListFilter struct {
	Category         string
	IncludeCompleted bool
}

// Completion is the aggregated result of Complete.
type Completion struct {
	Quest            model.Quest
	Reward           model.Reward
	NewBadges        []model.Badge
	Stats            model.StatsSnapshot
	AlreadyCompleted bool
}

// Create validates and stores a new quest owned by the session's user.
func (s *Service) Create(ctx context.Context, sess session.Session, in NewQuest) (model.Quest, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Quest{}, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if len([]rune(title)) > maxTitleLen {
		return model.Quest{}, &ValidationError{Field: "title", Message: "is too long"}
	}
	category := model.CategoryOneTime
	if strings.TrimSpace(in.Category) != "" {
		c, ok := model.ParseCategory(in.Category)
		if !ok {
			return model.Quest{}, &ValidationError{Field: "category", Message: "unknown category " + in.Category}
		}
		category = c
	}

	now := s.clock.Now()
	q := model.Quest{
		OwnerID:     sess.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		DueDate:     in.DueDate,
		CreatedAt:   now.UTC(),
		ResetDate:   calendar.In(now, sess.Loc()),
	}
	if err := s.quests.Create(ctx, &q); err != nil {
		return model.Quest{}, s.storeErr("create quest", err)
	}
	return q, nil
}

// Complete marks a quest done and applies its reward.  It is effective at
// most once per quest: repeating it, or losing a race to a concurrent
// completion, succeeds with a zero reward and leaves the stats untouched.
func (s *Service) Complete(ctx context.Context, sess session.Session, id uint64) (Completion, error) {
	q, err := s.quests.GetForOwner(ctx, id, sess.UserID)
	if err != nil {
		return Completion{}, s.lookupErr("quest", id, "get quest", err)
	}
	if q.Completed {
		return Completion{Quest: q, AlreadyCompleted: true}, nil
	}

	now := s.clock.Now()
	today := calendar.In(now, sess.Loc())
	marked, err := s.quests.MarkCompleted(ctx, q.ID, sess.UserID, now)
	if err != nil {
		return Completion{}, s.storeErr("mark quest completed", err)
	}
	if !marked {
		if cur, err := s.quests.GetForOwner(ctx, id, sess.UserID); err == nil {
			q = cur
		} else {
			q.Completed = true
		}
		return Completion{Quest: q, AlreadyCompleted: true}, nil
	}
	completedAt := now.UTC()
	q.Completed = true
	q.CompletedAt = &completedAt

	stats, err := s.stats.GetOrCreate(ctx, sess.UserID)
	if err != nil {
		return Completion{}, s.storeErr("load stats", err)
	}
	reward := progression.RewardForCategory(q.Category)
	stats.Experience += reward.Experience
	stats.Coins += reward.Coins
	stats.Level = progression.LevelForExperience(stats.Experience)
	stats.QuestsCompleted++

	res := streak.Advance(streak.State{
		Current:      stats.CurrentStreak,
		Longest:      stats.LongestStreak,
		LastActivity: stats.LastActivityDate,
	}, today)
	stats.CurrentStreak = res.State.Current
	stats.LongestStreak = res.State.Longest
	stats.LastActivityDate = res.State.LastActivity
	stats.UpdatedAt = now

	if err := s.stats.Save(ctx, stats); err != nil {
		// The quest stays completed; the reward is lost.  There is no
		// ledger to roll back against, so log enough to repair it by hand.
		return Completion{}, s.storeErr("save stats", err,
			slog.Uint64("user_id", sess.UserID),
			slog.Uint64("quest_id", q.ID),
			slog.Int("lost_experience", reward.Experience),
			slog.Int("lost_coins", reward.Coins))
	}

	newBadges := s.evaluateBadges(ctx, sess, stats, today, now)
	snap := snapshotFor(stats, today)
	s.cache.Put(ctx, sess.UserID, today, snap)
	s.publishCompleted(ctx, sess, q, reward, stats, newBadges, today, now)

	s.logger.Info("quest completed",
		slog.Uint64("user_id", sess.UserID),
		slog.Uint64("quest_id", q.ID),
		slog.Int("experience", reward.Experience),
		slog.Int("coins", reward.Coins),
		slog.Int("level", stats.Level),
		slog.Int("streak", stats.CurrentStreak),
		slog.Int("new_badges", len(newBadges)))

	return Completion{Quest: q, Reward: reward, NewBadges: newBadges, Stats: snap}, nil
}

// Delete removes a quest.  Rewards already granted are kept.
func (s *Service) Delete(ctx context.Context, sess session.Session, id uint64) error {
	if err := s.quests.Delete(ctx, id, sess.UserID); err != nil {
		return s.lookupErr("quest", id, "delete quest", err)
	}
	return nil
}

// List returns the session user's quests matching f.
func (s *Service) List(ctx context.Context, sess session.Session, f ListFilter) ([]model.Quest, error) {
	filter := model.QuestFilter{IncludeCompleted: f.IncludeCompleted}
	if strings.TrimSpace(f.Category) != "" {
		c, ok := model.ParseCategory(f.Category)
		if !ok {
			return nil, &ValidationError{Field: "category", Message: "unknown category " + f.Category}
		}
		filter.Category = &c
	}
	quests, err := s.quests.ListByOwner(ctx, sess.UserID, filter)
	if err != nil {
		return nil, s.storeErr("list quests", err)
	}
	return quests, nil
}

// Snapshot returns the user's progression read model as of today.
func (s *Service) Snapshot(ctx context.Context, sess session.Session) (model.StatsSnapshot, error) {
	today := sess.Today(s.clock)
	if snap, ok := s.cache.Get(ctx, sess.UserID, today); ok {
		return snap, nil
	}
	stats, err := s.stats.GetOrCreate(ctx, sess.UserID)
	if err != nil {
		return model.StatsSnapshot{}, s.storeErr("load stats", err)
	}
	snap := snapshotFor(stats, today)
	s.cache.Put(ctx, sess.UserID, today, snap)
	return snap, nil
}

// EnsureStats creates the zero-initialized stats row for a user who has none.
func (s *Service) EnsureStats(ctx context.Context, userID uint64) error {
	if _, err := s.stats.GetOrCreate(ctx, userID); err != nil {
		return s.storeErr("ensure stats", err)
	}
	return nil
}

// Catalog returns every badge, earned or not.
func (s *Service) Catalog(ctx context.Context) ([]model.Badge, error) {
	catalog, err := s.badges.Catalog(ctx)
	if err != nil {
		return nil, s.storeErr("load badge catalog", err)
	}
	return catalog, nil
}

// Badges returns the whole catalog annotated with the session user's
// earned state.
func (s *Service) Badges(ctx context.Context, sess session.Session) ([]model.BadgeStatus, error) {
	catalog, err := s.badges.Catalog(ctx)
	if err != nil {
		return nil, s.storeErr("load badge catalog", err)
	}
	earned, err := s.badges.Earned(ctx, sess.UserID)
	if err != nil {
		return nil, s.storeErr("load earned badges", err)
	}
	at := make(map[uint64]time.Time, len(earned))
	for _, e := range earned {
		at[e.BadgeID] = e.EarnedAt
	}
	out := make([]model.BadgeStatus, 0, len(catalog))
	for _, b := range catalog {
		st := model.BadgeStatus{Badge: b}
		if t, ok := at[b.ID]; ok {
			t := t
			st.Earned = true
			st.EarnedAt = &t
		}
		out = append(out, st)
	}
	return out, nil
}

// evaluateBadges never fails the completion: read errors skip evaluation for
// this pass and award errors are absorbed by the Awarder.
func (s *Service) evaluateBadges(ctx context.Context, sess session.Session, stats model.UserStats, today calendar.Date, now time.Time) []model.Badge {
	catalog, err := s.badges.Catalog(ctx)
	if err != nil {
		s.logger.Warn("badge evaluation skipped", slog.String("step", "catalog"), slog.Any("error", err))
		return nil
	}
	earnedRows, err := s.badges.Earned(ctx, sess.UserID)
	if err != nil {
		s.logger.Warn("badge evaluation skipped", slog.String("step", "earned"), slog.Any("error", err))
		return nil
	}
	weekly, err := s.quests.CountCompletedSince(ctx, sess.UserID, today.AddDays(-6).StartIn(sess.Loc()))
	if err != nil {
		s.logger.Warn("badge evaluation skipped", slog.String("step", "weekly count"), slog.Any("error", err))
		return nil
	}
	earned := make(map[uint64]struct{}, len(earnedRows))
	for _, e := range earnedRows {
		earned[e.BadgeID] = struct{}{}
	}
	candidates := badge.Evaluate(catalog, badge.Input{
		Stats:                stats,
		CompletedQuestCount:  stats.QuestsCompleted,
		WeeklyCompletedCount: weekly,
		Earned:               earned,
	})
	if len(candidates) == 0 {
		return nil
	}
	return s.awarder.Award(ctx, sess.UserID, candidates, now)
}

func (s *Service) publishCompleted(ctx context.Context, sess session.Session, q model.Quest, reward model.Reward,
	stats model.UserStats, newBadges []model.Badge, today calendar.Date, now time.Time) {
	names := make([]string, 0, len(newBadges))
	for _, b := range newBadges {
		names = append(names, b.Name)
	}
	ev := queue.QuestCompletedEvent{
		EventID:       uuid.NewString(),
		UserID:        sess.UserID,
		QuestID:       q.ID,
		QuestTitle:    q.Title,
		Category:      string(q.Category),
		Experience:    reward.Experience,
		Coins:         reward.Coins,
		TotalXP:       stats.Experience,
		Level:         stats.Level,
		CurrentStreak: stats.CurrentStreak,
		NewBadges:     names,
		ActivityDate:  today.String(),
		CompletedAt:   now.UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishQuestCompleted(ctx, ev); err != nil {
		s.logger.Warn("publish quest completed failed",
			slog.Uint64("quest_id", q.ID),
			slog.Any("error", err))
	}
}

func snapshotFor(stats model.UserStats, today calendar.Date) model.StatsSnapshot {
	snap := progression.Snapshot(stats)
	snap.CurrentStreak = streak.Current(streak.State{
		Current:      stats.CurrentStreak,
		Longest:      stats.LongestStreak,
		LastActivity: stats.LastActivityDate,
	}, today)
	return snap
}

func (s *Service) lookupErr(kind string, id uint64, op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return s.storeErr(op, err)
}

func (s *Service) storeErr(op string, err error, attrs ...any) error {
	args := append([]any{slog.String("op", op), slog.Any("error", err)}, attrs...)
	s.logger.Error("store call failed", args...)
	return &StoreError{Op: op, Err: err}
}
