package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/questboard/internal/model"
)

// TemplateRepo provides data access to the quest_templates table.  Templates
// are never deleted; Deactivate clears is_active instead.
type TemplateRepo struct {
	db *sql.DB
}

// NewTemplateRepo returns a new TemplateRepo bound to the provided database.
func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

const templateColumns = `id, owner_id, title, description, category, is_active, created_at`

// Create inserts t and fills in its generated ID.
func (r *TemplateRepo) Create(ctx context.Context, t *model.QuestTemplate) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO quest_templates (owner_id, title, description, category, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.Title, t.Description, string(t.Category), t.IsActive, t.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListByOwner returns the owner's templates, optionally only active ones.
func (r *TemplateRepo) ListByOwner(ctx context.Context, ownerID uint64, activeOnly bool) ([]model.QuestTemplate, error) {
	q := `SELECT ` + templateColumns + ` FROM quest_templates WHERE owner_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY id`
	return r.list(ctx, q, ownerID)
}

// ListActive returns the owner's active templates of one category.
func (r *TemplateRepo) ListActive(ctx context.Context, ownerID uint64, category model.Category) ([]model.QuestTemplate, error) {
	return r.list(ctx,
		`SELECT `+templateColumns+` FROM quest_templates WHERE owner_id = ? AND category = ? AND is_active = 1 ORDER BY id`,
		ownerID, string(category))
}

// Deactivate soft-deletes the template.  The DSN sets clientFoundRows so an
// already inactive template still counts as matched.
func (r *TemplateRepo) Deactivate(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quest_templates SET is_active = 0 WHERE id = ? AND owner_id = ?`, id, ownerID)
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

func (r *TemplateRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.QuestTemplate, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.QuestTemplate{}
	for rows.Next() {
		var (
			t        model.QuestTemplate
			category string
		)
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &category, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Category = model.Category(category)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
