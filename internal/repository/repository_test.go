package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/model"
)

var dupErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

func TestQuestRepo_MarkCompletedOnlyOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewQuestRepo(db)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	stmt := regexp.QuoteMeta(`UPDATE quests SET completed = 1, completed_at = ? WHERE id = ? AND owner_id = ? AND completed = 0`)
	mock.ExpectExec(stmt).WithArgs(at, 5, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(stmt).WithArgs(at, 5, 1).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkCompleted(context.Background(), 5, 1, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkCompleted(context.Background(), 5, 1, at)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestRepo_GetForOwnerNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM quests WHERE id = ? AND owner_id = ?`)).
		WithArgs(9, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewQuestRepo(db).GetForOwner(context.Background(), 9, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuestRepo_GetForOwnerScansNullables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	created := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "category", "due_date",
		"completed", "completed_at", "created_at", "template_id", "reset_date", "is_recurring"}).
		AddRow(3, 1, "Floss", "", "daily", nil, false, nil, created, int64(4), "2026-03-09", true)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM quests WHERE id = ? AND owner_id = ?`)).WithArgs(3, 1).WillReturnRows(rows)

	q, err := NewQuestRepo(db).GetForOwner(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryDaily, q.Category)
	assert.Nil(t, q.DueDate)
	assert.Nil(t, q.CompletedAt)
	require.NotNil(t, q.TemplateID)
	assert.Equal(t, uint64(4), *q.TemplateID)
	assert.True(t, q.ResetDate.Equal(calendar.New(2026, 3, 9)))
	assert.True(t, q.IsRecurring)
}

func TestQuestRepo_CreateDuplicateInstance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quests`)).WillReturnError(dupErr)

	tid := uint64(4)
	err = NewQuestRepo(db).Create(context.Background(), &model.Quest{
		OwnerID: 1, Title: "Floss", Category: model.CategoryDaily, TemplateID: &tid,
		ResetDate: calendar.New(2026, 3, 10), IsRecurring: true,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestQuestRepo_ListByOwnerBuildsFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE owner_id = ? AND category = ? AND completed = 0 ORDER BY created_at DESC, id DESC`)).
		WithArgs(1, "weekly").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c := model.CategoryWeekly
	quests, err := NewQuestRepo(db).ListByOwner(context.Background(), 1, model.QuestFilter{Category: &c})
	require.NoError(t, err)
	assert.Empty(t, quests)
	assert.NotNil(t, quests)
}

func TestQuestRepo_DeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM quests`)).WithArgs(7, 1).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewQuestRepo(db).Delete(context.Background(), 7, 1), ErrNotFound)
}

func TestBadgeRepo_AwardOutcomes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBadgeRepo(db)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stmt := regexp.QuoteMeta(`INSERT INTO earned_badges`)

	mock.ExpectExec(stmt).WithArgs(1, 6, at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(stmt).WithArgs(1, 6, at).WillReturnError(dupErr)
	mock.ExpectExec(stmt).WithArgs(1, 6, at).WillReturnError(errors.New("lock wait timeout"))

	out, err := repo.Award(context.Background(), 1, 6, at)
	require.NoError(t, err)
	assert.Equal(t, model.AwardInserted, out)

	out, err = repo.Award(context.Background(), 1, 6, at)
	require.NoError(t, err)
	assert.Equal(t, model.AwardAlreadyEarned, out)

	out, err = repo.Award(context.Background(), 1, 6, at)
	require.Error(t, err)
	assert.Equal(t, model.AwardFailed, out)
}

func TestBadgeRepo_UpsertFillsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO badges`)).
		WithArgs("On Fire", "Keep a 7 day streak.", "🔥", "streak", 7).
		WillReturnResult(sqlmock.NewResult(6, 2))

	b := model.Badge{Name: "On Fire", Description: "Keep a 7 day streak.", Icon: "🔥", Kind: model.BadgeKindStreak, Threshold: 7}
	require.NoError(t, NewBadgeRepo(db).Upsert(context.Background(), &b))
	assert.Equal(t, uint64(6), b.ID)
}

func TestStatsRepo_GetOrCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	updated := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_stats (user_id, level, updated_at)`)).
		WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_stats WHERE user_id = ?`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "experience", "coins", "level", "current_streak",
			"longest_streak", "last_activity_date", "quests_completed", "equipped_avatar", "updated_at"}).
			AddRow(1, 0, 0, 1, 0, 0, nil, 0, nil, updated))

	s, err := NewStatsRepo(db).GetOrCreate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Level)
	assert.True(t, s.LastActivityDate.IsZero())
	assert.Nil(t, s.EquippedAvatar)
}

func TestTemplateRepo_DeactivateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quest_templates SET is_active = 0`)).
		WithArgs(3, 1).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewTemplateRepo(db).Deactivate(context.Background(), 3, 1), ErrNotFound)
}

func TestTokenRepo_ValidateRefreshExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM refresh_tokens WHERE token_hash=?`)).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(1, now.Add(-time.Hour), nil))

	_, err = (&TokenRepo{DB: db}).ValidateRefresh(context.Background(), "abc", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_CreateStoresTimezone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (email, password_hash, role, timezone) VALUES (?,?,?,?)")).
		WithArgs("ann@example.com", sqlmock.AnyArg(), model.RolePlayer, "Asia/Tokyo").
		WillReturnResult(sqlmock.NewResult(12, 1))

	id, err := NewUserRepo(db).Create(context.Background(), " Ann@Example.com ", "secret", model.RolePlayer, "Asia/Tokyo", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByIDScansTimezone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "timezone", "created_at", "updated_at"}).
		AddRow(12, "ann@example.com", "hash", model.RolePlayer, true, "Pacific/Niue", at, at)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).WithArgs(12).WillReturnRows(rows)

	u, err := NewUserRepo(db).GetByID(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "Pacific/Niue", u.Timezone)
	assert.True(t, u.IsActive)
}

func TestUserRepo_SetTimezone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	stmt := regexp.QuoteMeta("UPDATE users SET timezone=? WHERE id=?")

	mock.ExpectExec(stmt).WithArgs("Europe/Paris", 12).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(stmt).WithArgs("Europe/Paris", 99).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepo(db)
	require.NoError(t, repo.SetTimezone(context.Background(), 12, "Europe/Paris"))
	assert.ErrorIs(t, repo.SetTimezone(context.Background(), 99, "Europe/Paris"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
