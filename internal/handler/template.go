package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/questboard/internal/quest"
)

// TemplateHandler serves /v1/templates.
type TemplateHandler struct{ base }

func NewTemplateHandler(svc QuestService, defaultLoc *time.Location) *TemplateHandler {
	return &TemplateHandler{base{Svc: svc, DefaultLoc: defaultLoc}}
}

type createTemplateReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *TemplateHandler) Create(c echo.Context) error {
	var req createTemplateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	t, err := h.Svc.CreateTemplate(ctx, sess, quest.NewTemplate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "template": t})
}

// List handles GET /v1/templates?include_inactive=.
func (h *TemplateHandler) List(c echo.Context) error {
	includeInactive, _ := strconv.ParseBool(c.QueryParam("include_inactive"))
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	ts, err := h.Svc.ListTemplates(ctx, sess, includeInactive)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "templates": ts})
}

func (h *TemplateHandler) Deactivate(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid template id")
	}
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	if err := h.Svc.DeactivateTemplate(ctx, sess, id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Reset handles POST /v1/templates/reset, materializing both the daily and
// the weekly period.  Calling it again in the same period creates nothing.
func (h *TemplateHandler) Reset(c echo.Context) error {
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	daily, err := h.Svc.ResetDaily(ctx, sess)
	if err != nil {
		return respondErr(c, err)
	}
	weekly, err := h.Svc.ResetWeekly(ctx, sess)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"daily_created":  daily,
		"weekly_created": weekly,
	})
}
