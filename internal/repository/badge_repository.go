package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/questboard/internal/model"
)

// BadgeRepo provides access to the global badges catalog and the per-user
// earned_badges table.  earned_badges has a primary key on
// (user_id, badge_id); Award relies on it for idempotence.
type BadgeRepo struct {
	db *sql.DB
}

// NewBadgeRepo returns a new BadgeRepo bound to the provided database.
func NewBadgeRepo(db *sql.DB) *BadgeRepo { return &BadgeRepo{db: db} }

// Catalog returns every badge ordered by id.
func (r *BadgeRepo) Catalog(ctx context.Context) ([]model.Badge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, icon, kind, threshold FROM badges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Badge{}
	for rows.Next() {
		var (
			b    model.Badge
			kind string
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &kind, &b.Threshold); err != nil {
			return nil, err
		}
		b.Kind = model.BadgeKind(kind)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts the badge or updates the existing row with the same name,
// filling in b.ID either way.
func (r *BadgeRepo) Upsert(ctx context.Context, b *model.Badge) error {
	const q = `INSERT INTO badges (name, description, icon, kind, threshold) VALUES (?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            id = LAST_INSERT_ID(id),
            description = VALUES(description),
            icon = VALUES(icon),
            kind = VALUES(kind),
            threshold = VALUES(threshold)`
	res, err := r.db.ExecContext(ctx, q, b.Name, b.Description, b.Icon, string(b.Kind), b.Threshold)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Earned lists the badges a user has unlocked, oldest first.
func (r *BadgeRepo) Earned(ctx context.Context, userID uint64) ([]model.EarnedBadge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, badge_id, earned_at FROM earned_badges WHERE user_id = ? ORDER BY earned_at, badge_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.EarnedBadge{}
	for rows.Next() {
		var e model.EarnedBadge
		if err := rows.Scan(&e.UserID, &e.BadgeID, &e.EarnedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Award records that userID earned badgeID.  A duplicate pair is reported as
// AwardAlreadyEarned without an error; any other failure as AwardFailed.
func (r *BadgeRepo) Award(ctx context.Context, userID, badgeID uint64, at time.Time) (model.AwardOutcome, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO earned_badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)`,
		userID, badgeID, at.UTC())
	switch {
	case err == nil:
		return model.AwardInserted, nil
	case isDuplicate(err):
		return model.AwardAlreadyEarned, nil
	default:
		return model.AwardFailed, err
	}
}
