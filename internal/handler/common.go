package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/questboard/internal/middleware"
	"github.com/iliyamo/questboard/internal/model"
	"github.com/iliyamo/questboard/internal/quest"
	"github.com/iliyamo/questboard/internal/session"
)

// TimezoneHeader names a zone for accounts whose token carries none.
const TimezoneHeader = "X-Timezone"

const requestTimeout = 5 * time.Second

// QuestService is the part of quest.Service the HTTP layer drives.
type QuestService interface {
	Create(ctx context.Context, sess session.Session, in quest.NewQuest) (model.Quest, error)
	Complete(ctx context.Context, sess session.Session, id uint64) (quest.Completion, error)
	Delete(ctx context.Context, sess session.Session, id uint64) error
	List(ctx context.Context, sess session.Session, f quest.ListFilter) ([]model.Quest, error)
	Snapshot(ctx context.Context, sess session.Session) (model.StatsSnapshot, error)
	Catalog(ctx context.Context) ([]model.Badge, error)
	Badges(ctx context.Context, sess session.Session) ([]model.BadgeStatus, error)

	CreateTemplate(ctx context.Context, sess session.Session, in quest.NewTemplate) (model.QuestTemplate, error)
	ListTemplates(ctx context.Context, sess session.Session, includeInactive bool) ([]model.QuestTemplate, error)
	DeactivateTemplate(ctx context.Context, sess session.Session, id uint64) error
	ResetDaily(ctx context.Context, sess session.Session) (int, error)
	ResetWeekly(ctx context.Context, sess session.Session) (int, error)
}

// getUserID reads the subject JWTAuth stored in the context.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get(middleware.CtxUserID).(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// sessionFrom builds the per-request session.  A valid tz claim is the
// account's stored zone and always wins, so a user's days never shift between
// requests.  Only without one is a valid X-Timezone header used, then def.
func sessionFrom(c echo.Context, def *time.Location) (session.Session, error) {
	uid, err := getUserID(c)
	if err != nil {
		return session.Session{}, err
	}
	claim, _ := c.Get(middleware.CtxTimezone).(string)
	header := strings.TrimSpace(c.Request().Header.Get(TimezoneHeader))
	loc := session.ResolveLocation(header, def)
	loc = session.ResolveLocation(claim, loc)
	return session.New(uid, loc), nil
}

func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// respondErr maps core errors onto HTTP statuses.  Store failures were
// already logged by the service and are reported generically.
func respondErr(c echo.Context, err error) error {
	var ve *quest.ValidationError
	switch {
	case errors.As(err, &ve):
		return fail(c, http.StatusBadRequest, ve.Error())
	case errors.Is(err, quest.ErrNotFound):
		return fail(c, http.StatusNotFound, err.Error())
	default:
		return fail(c, http.StatusInternalServerError, "internal error")
	}
}

// base carries what every user-scoped handler needs.
type base struct {
	Svc        QuestService
	DefaultLoc *time.Location
}

// begin resolves the session and a bounded context for one request.
func (b base) begin(c echo.Context) (session.Session, context.Context, context.CancelFunc, error) {
	sess, err := sessionFrom(c, b.DefaultLoc)
	if err != nil {
		return session.Session{}, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	return sess, ctx, cancel, nil
}
