package quest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/model"
	"github.com/iliyamo/questboard/internal/queue"
	"github.com/iliyamo/questboard/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories.  It honors
// the same owner filtering and unique keys.
type memStore struct {
	mu        sync.Mutex
	nextID    uint64
	quests    map[uint64]model.Quest
	templates map[uint64]model.QuestTemplate
	stats     map[uint64]model.UserStats
	catalog   []model.Badge
	earned    map[uint64][]model.EarnedBadge

	failSave   error
	failAward  error
	saveCalls  int
	markRacers int

	// hideInstances makes ExistsForTemplate report false so Create is the
	// only guard against duplicate instances.
	hideInstances bool
}

func newMemStore() *memStore {
	return &memStore{
		quests:    map[uint64]model.Quest{},
		templates: map[uint64]model.QuestTemplate{},
		stats:     map[uint64]model.UserStats{},
		earned:    map[uint64][]model.EarnedBadge{},
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

// quest store

func (m *memStore) Create(_ context.Context, q *model.Quest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.TemplateID != nil {
		for _, ex := range m.quests {
			if ex.TemplateID != nil && *ex.TemplateID == *q.TemplateID && ex.ResetDate.Equal(q.ResetDate) {
				return repository.ErrDuplicate
			}
		}
	}
	q.ID = m.id()
	m.quests[q.ID] = *q
	return nil
}

func (m *memStore) GetForOwner(_ context.Context, id, ownerID uint64) (model.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quests[id]
	if !ok || q.OwnerID != ownerID {
		return model.Quest{}, repository.ErrNotFound
	}
	return q, nil
}

func (m *memStore) MarkCompleted(_ context.Context, id, ownerID uint64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quests[id]
	if m.markRacers > 0 {
		// Simulate another session completing the quest between read and write.
		m.markRacers--
		q.Completed = true
		m.quests[id] = q
	}
	if !ok || q.OwnerID != ownerID || q.Completed {
		return false, nil
	}
	t := at.UTC()
	q.Completed = true
	q.CompletedAt = &t
	m.quests[id] = q
	return true, nil
}

func (m *memStore) Delete(_ context.Context, id, ownerID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quests[id]
	if !ok || q.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.quests, id)
	return nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID uint64, f model.QuestFilter) ([]model.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Quest{}
	for _, q := range m.quests {
		if q.OwnerID != ownerID {
			continue
		}
		if f.Category != nil && q.Category != *f.Category {
			continue
		}
		if !f.IncludeCompleted && q.Completed {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CountCompletedSince(_ context.Context, ownerID uint64, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.quests {
		if q.OwnerID == ownerID && q.Completed && q.CompletedAt != nil && !q.CompletedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ExistsForTemplate(_ context.Context, templateID uint64, resetDate calendar.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideInstances {
		return false, nil
	}
	for _, q := range m.quests {
		if q.TemplateID != nil && *q.TemplateID == templateID && q.ResetDate.Equal(resetDate) {
			return true, nil
		}
	}
	return false, nil
}

// stats store

func (m *memStore) GetOrCreate(_ context.Context, userID uint64) (model.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		s = model.NewUserStats(userID)
		m.stats[userID] = s
	}
	return s, nil
}

func (m *memStore) Save(_ context.Context, s model.UserStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.failSave != nil {
		return m.failSave
	}
	m.stats[s.UserID] = s
	return nil
}

// badge store

func (m *memStore) Catalog(context.Context) ([]model.Badge, error) {
	return m.catalog, nil
}

func (m *memStore) Earned(_ context.Context, userID uint64) ([]model.EarnedBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.EarnedBadge(nil), m.earned[userID]...), nil
}

func (m *memStore) Award(_ context.Context, userID, badgeID uint64, at time.Time) (model.AwardOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAward != nil {
		return model.AwardFailed, m.failAward
	}
	for _, e := range m.earned[userID] {
		if e.BadgeID == badgeID {
			return model.AwardAlreadyEarned, nil
		}
	}
	m.earned[userID] = append(m.earned[userID], model.EarnedBadge{UserID: userID, BadgeID: badgeID, EarnedAt: at})
	return model.AwardInserted, nil
}

// templateStore shares memStore's maps but needs distinct method names, so it
// is a thin adapter.
type templateStore struct{ m *memStore }

func (t templateStore) Create(_ context.Context, tpl *model.QuestTemplate) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	tpl.ID = t.m.id()
	t.m.templates[tpl.ID] = *tpl
	return nil
}

func (t templateStore) ListByOwner(_ context.Context, ownerID uint64, activeOnly bool) ([]model.QuestTemplate, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	out := []model.QuestTemplate{}
	for _, tpl := range t.m.templates {
		if tpl.OwnerID == ownerID && (!activeOnly || tpl.IsActive) {
			out = append(out, tpl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t templateStore) ListActive(ctx context.Context, ownerID uint64, category model.Category) ([]model.QuestTemplate, error) {
	all, _ := t.ListByOwner(ctx, ownerID, true)
	out := []model.QuestTemplate{}
	for _, tpl := range all {
		if tpl.Category == category {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (t templateStore) Deactivate(_ context.Context, id, ownerID uint64) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	tpl, ok := t.m.templates[id]
	if !ok || tpl.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	tpl.IsActive = false
	t.m.templates[id] = tpl
	return nil
}

type recordingPublisher struct {
	events []queue.QuestCompletedEvent
}

func (p *recordingPublisher) PublishQuestCompleted(_ context.Context, ev queue.QuestCompletedEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type mapCache struct {
	entries map[string]model.StatsSnapshot
}

func (c *mapCache) Get(_ context.Context, userID uint64, day calendar.Date) (model.StatsSnapshot, bool) {
	s, ok := c.entries[cacheKey(userID, day)]
	return s, ok
}

func (c *mapCache) Put(_ context.Context, userID uint64, day calendar.Date, snap model.StatsSnapshot) {
	c.entries[cacheKey(userID, day)] = snap
}

func cacheKey(userID uint64, day calendar.Date) string {
	return fmt.Sprintf("%d:%s", userID, day)
}
