package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/model"
)

// QuestRepo provides data access to the quests table.  Every read and write
// is filtered by owner_id so one account can never observe or mutate another
// account's quests.  Timestamps are stored in UTC.
type QuestRepo struct {
	db *sql.DB
}

// NewQuestRepo returns a new QuestRepo bound to the provided database.
func NewQuestRepo(db *sql.DB) *QuestRepo { return &QuestRepo{db: db} }

const questColumns = `id, owner_id, title, description, category, due_date, completed,
       completed_at, created_at, template_id, reset_date, is_recurring`

// Create inserts q and fills in its generated ID.  An instance that collides
// with an existing (template_id, reset_date) pair yields ErrDuplicate.
func (r *QuestRepo) Create(ctx context.Context, q *model.Quest) error {
	const ins = `INSERT INTO quests
        (owner_id, title, description, category, due_date, completed, created_at, template_id, reset_date, is_recurring)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, ins,
		q.OwnerID, q.Title, q.Description, string(q.Category), nullTime(q.DueDate), q.Completed,
		q.CreatedAt.UTC(), nullUint(q.TemplateID), q.ResetDate, q.IsRecurring)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	q.ID = uint64(id)
	return nil
}

// GetForOwner returns the quest when it exists and belongs to ownerID.
func (r *QuestRepo) GetForOwner(ctx context.Context, id, ownerID uint64) (model.Quest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+questColumns+` FROM quests WHERE id = ? AND owner_id = ?`, id, ownerID)
	q, err := scanQuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Quest{}, ErrNotFound
	}
	return q, err
}

// MarkCompleted flips completed to true.  The update only matches an
// uncompleted row, so it reports false when another request completed the
// quest first.
func (r *QuestRepo) MarkCompleted(ctx context.Context, id, ownerID uint64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quests SET completed = 1, completed_at = ? WHERE id = ? AND owner_id = ? AND completed = 0`,
		at.UTC(), id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes the quest or returns ErrNotFound.
func (r *QuestRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quests WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns the owner's quests, newest first.
func (r *QuestRepo) ListByOwner(ctx context.Context, ownerID uint64, f model.QuestFilter) ([]model.Quest, error) {
	var (
		where = []string{"owner_id = ?"}
		args  = []interface{}{ownerID}
	)
	if f.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*f.Category))
	}
	if !f.IncludeCompleted {
		where = append(where, "completed = 0")
	}
	q := `SELECT ` + questColumns + ` FROM quests WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	quests := []model.Quest{}
	for rows.Next() {
		qu, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, qu)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quests, nil
}

// CountCompletedSince counts the owner's quests completed at or after since.
func (r *QuestRepo) CountCompletedSince(ctx context.Context, ownerID uint64, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quests WHERE owner_id = ? AND completed = 1 AND completed_at >= ?`,
		ownerID, since.UTC()).Scan(&n)
	return n, err
}

// ExistsForTemplate reports whether an instance of templateID was already
// materialized for resetDate.
func (r *QuestRepo) ExistsForTemplate(ctx context.Context, templateID uint64, resetDate calendar.Date) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quests WHERE template_id = ? AND reset_date = ?`,
		templateID, resetDate).Scan(&n)
	return n > 0, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuest(s rowScanner) (model.Quest, error) {
	var (
		q           model.Quest
		category    string
		dueDate     sql.NullTime
		completedAt sql.NullTime
		templateID  sql.NullInt64
	)
	err := s.Scan(&q.ID, &q.OwnerID, &q.Title, &q.Description, &category, &dueDate, &q.Completed,
		&completedAt, &q.CreatedAt, &templateID, &q.ResetDate, &q.IsRecurring)
	if err != nil {
		return model.Quest{}, err
	}
	q.Category = model.Category(category)
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		q.DueDate = &t
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		q.CompletedAt = &t
	}
	if templateID.Valid {
		id := uint64(templateID.Int64)
		q.TemplateID = &id
	}
	return q, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullUint(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
