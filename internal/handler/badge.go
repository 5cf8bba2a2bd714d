package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/questboard/internal/model"
)

// BadgeWriter persists catalog entries; satisfied by repository.BadgeRepo.
type BadgeWriter interface {
	Upsert(ctx context.Context, b *model.Badge) error
}

// BadgeHandler serves the catalog, the caller's badge board and the admin
// catalog editor.
type BadgeHandler struct {
	base
	Writer BadgeWriter
	// Purge drops cached catalog responses after a write.  Optional.
	Purge  func(ctx context.Context) error
	Logger *slog.Logger
}

func NewBadgeHandler(svc QuestService, defaultLoc *time.Location, w BadgeWriter, purge func(context.Context) error, logger *slog.Logger) *BadgeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgeHandler{base: base{Svc: svc, DefaultLoc: defaultLoc}, Writer: w, Purge: purge, Logger: logger}
}

// Catalog handles the public GET /v1/badges.
func (h *BadgeHandler) Catalog(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	catalog, err := h.Svc.Catalog(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "badges": catalog})
}

// Mine handles GET /v1/me/badges.
func (h *BadgeHandler) Mine(c echo.Context) error {
	sess, ctx, cancel, err := h.begin(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	defer cancel()

	statuses, err := h.Svc.Badges(ctx, sess)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "badges": statuses})
}

type upsertBadgeReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Kind        string `json:"kind"`
	Threshold   int    `json:"threshold"`
}

// Upsert handles POST /v1/admin/badges.  Badges are keyed by name.
func (h *BadgeHandler) Upsert(c echo.Context) error {
	var req upsertBadgeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	b := model.Badge{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
		Kind:        model.BadgeKind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Threshold:   req.Threshold,
	}
	switch {
	case b.Name == "":
		return fail(c, http.StatusBadRequest, "name required")
	case !b.Kind.Valid():
		return fail(c, http.StatusBadRequest, "kind must be streak, quest_count, weekly or level")
	case b.Threshold < 1:
		return fail(c, http.StatusBadRequest, "threshold must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Writer.Upsert(ctx, &b); err != nil {
		h.Logger.Error("badge upsert failed", slog.String("badge", b.Name), slog.Any("error", err))
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	if h.Purge != nil {
		if err := h.Purge(ctx); err != nil {
			h.Logger.Warn("catalog cache purge failed", slog.Any("error", err))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "badge": b})
}
