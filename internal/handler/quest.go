package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/questboard/internal/model"
	"github.com/iliyamo/questboard/internal/quest"
)

// QuestHandler serves /v1/quests and /v1/stats.
type QuestHandler struct{ base }

func NewQuestHandler(svc QuestService, defaultLoc *time.Location) *QuestHandler {
	return &QuestHandler{base{Svc: svc, DefaultLoc: defaultLoc}}
}

type createQuestReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"due_date"`
}

type completeResp struct {
	Success          bool                `json:"success"`
	Quest            model.Quest         `json:"quest"`
	Reward           model.Reward        `json:"reward"`
	NewBadges        []model.Badge       `json:"new_badges"`
	AlreadyCompleted bool                `json:"already_completed"`
	Stats            *model.StatsSnapshot `json:"stats,omitempty"`
}

// Create handles POST /v1/quests.
func (h *QuestHandler) Create(c echo.Context) error {
	var req createQuestReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	q, err := h.Svc.Create(ctx, sess, quest.NewQuest{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "quest": q})
}

// Complete handles POST /v1/quests/:id/complete.  Completing twice is a
// success with a zero reward.
func (h *QuestHandler) Complete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid quest id")
	}
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	res, err := h.Svc.Complete(ctx, sess, id)
	if err != nil {
		return respondErr(c, err)
	}
	out := completeResp{
		Success:          true,
		Quest:            res.Quest,
		Reward:           res.Reward,
		NewBadges:        res.NewBadges,
		AlreadyCompleted: res.AlreadyCompleted,
	}
	if out.NewBadges == nil {
		out.NewBadges = []model.Badge{}
	}
	if !res.AlreadyCompleted {
		out.Stats = &res.Stats
	}
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /v1/quests/:id.
func (h *QuestHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid quest id")
	}
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	if err := h.Svc.Delete(ctx, sess, id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// List handles GET /v1/quests?category=&include_completed=.
func (h *QuestHandler) List(c echo.Context) error {
	include, _ := strconv.ParseBool(c.QueryParam("include_completed"))
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	quests, err := h.Svc.List(ctx, sess, quest.ListFilter{
		Category:         c.QueryParam("category"),
		IncludeCompleted: include,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "quests": quests})
}

// Stats handles GET /v1/stats.
func (h *QuestHandler) Stats(c echo.Context) error {
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	snap, err := h.Svc.Snapshot(ctx, sess)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}
