package quest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/model"
	"github.com/iliyamo/questboard/internal/repository"
	"github.com/iliyamo/questboard/internal/session"
)

// NewTemplate is the user-supplied part of a recurring quest template.
type NewTemplate struct {
	Title       string
	Description string
	Category    string
}

// CreateTemplate stores an active daily or weekly template.
func (s *Service) CreateTemplate(ctx context.Context, sess session.Session, in NewTemplate) (model.QuestTemplate, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.QuestTemplate{}, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if len([]rune(title)) > maxTitleLen {
		return model.QuestTemplate{}, &ValidationError{Field: "title", Message: "is too long"}
	}
	c, ok := model.ParseCategory(in.Category)
	if !ok || !c.Recurring() {
		return model.QuestTemplate{}, &ValidationError{Field: "category", Message: "must be daily or weekly"}
	}
	t := model.QuestTemplate{
		OwnerID:     sess.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    c,
		IsActive:    true,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.templates.Create(ctx, &t); err != nil {
		return model.QuestTemplate{}, s.storeErr("create template", err)
	}
	return t, nil
}

// ListTemplates returns the user's templates.
func (s *Service) ListTemplates(ctx context.Context, sess session.Session, includeInactive bool) ([]model.QuestTemplate, error) {
	ts, err := s.templates.ListByOwner(ctx, sess.UserID, !includeInactive)
	if err != nil {
		return nil, s.storeErr("list templates", err)
	}
	return ts, nil
}

// DeactivateTemplate retires a template.  Instances already materialized are
// left alone.
func (s *Service) DeactivateTemplate(ctx context.Context, sess session.Session, id uint64) error {
	if err := s.templates.Deactivate(ctx, id, sess.UserID); err != nil {
		return s.lookupErr("template", id, "deactivate template", err)
	}
	return nil
}

// ResetDaily materializes today's instance of every active daily template
// that does not have one yet, and returns how many were created.  Calling it
// again on the same local day creates nothing.
func (s *Service) ResetDaily(ctx context.Context, sess session.Session) (int, error) {
	today := sess.Today(s.clock)
	return s.materialize(ctx, sess, model.CategoryDaily, today, today.EndIn(sess.Loc()))
}

// ResetWeekly is ResetDaily for weekly templates.  The period is keyed on the
// Monday of the current local week and instances are due at the end of
// Sunday.
func (s *Service) ResetWeekly(ctx context.Context, sess session.Session) (int, error) {
	start := sess.Today(s.clock).WeekStart()
	return s.materialize(ctx, sess, model.CategoryWeekly, start, start.AddDays(6).EndIn(sess.Loc()))
}

func (s *Service) materialize(ctx context.Context, sess session.Session, category model.Category, period calendar.Date, due time.Time) (int, error) {
	templates, err := s.templates.ListActive(ctx, sess.UserID, category)
	if err != nil {
		return 0, s.storeErr("list active templates", err)
	}
	created := 0
	for _, t := range templates {
		exists, err := s.quests.ExistsForTemplate(ctx, t.ID, period)
		if err != nil {
			return created, s.storeErr("check template instance", err)
		}
		if exists {
			continue
		}
		templateID := t.ID
		dueAt := due.UTC()
		q := model.Quest{
			OwnerID:     sess.UserID,
			Title:       t.Title,
			Description: t.Description,
			Category:    t.Category,
			DueDate:     &dueAt,
			CreatedAt:   s.clock.Now().UTC(),
			TemplateID:  &templateID,
			ResetDate:   period,
			IsRecurring: true,
		}
		if err := s.quests.Create(ctx, &q); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// A concurrent reset won the unique (template_id, reset_date) key.
				continue
			}
			return created, s.storeErr("create template instance", err)
		}
		created++
	}
	if created > 0 {
		s.logger.Info("recurring quests materialized",
			slog.Uint64("user_id", sess.UserID),
			slog.String("category", string(category)),
			slog.String("period", period.String()),
			slog.Int("created", created))
	}
	return created, nil
}
