package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/questboard/internal/config"
	"github.com/iliyamo/questboard/internal/middleware"
	"github.com/iliyamo/questboard/internal/model"
	"github.com/iliyamo/questboard/internal/repository"
	"github.com/iliyamo/questboard/internal/utils"
)

// StatsEnsurer creates the zero stats row on first login.
type StatsEnsurer interface {
	EnsureStats(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Stats  StatsEnsurer
	Logger *slog.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, s StatsEnsurer, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Stats: s, Logger: logger}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Timezone is an IANA zone name stored on the account.  Empty keeps the
	// stored zone.
	Timezone string `json:"timezone"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
	Timezone     string `json:"timezone"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	Success bool      `json:"success"`
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// validTimezone keeps unknown zone names out of tokens.
func validTimezone(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", true
	}
	if _, err := time.LoadLocation(name); err != nil {
		return "", false
	}
	return name, true
}

// adoptTimezone stores an explicitly requested zone on the account so every
// later token carries the same one.
func (h *AuthHandler) adoptTimezone(ctx context.Context, u *model.User, tz string) error {
	if tz == "" || tz == u.Timezone {
		return nil
	}
	if err := h.Users.SetTimezone(ctx, u.ID, tz); err != nil {
		h.Logger.Error("store timezone failed", slog.Uint64("user_id", u.ID), slog.Any("error", err))
		return err
	}
	u.Timezone = tz
	return nil
}

// issue creates an access and refresh pair and stores the refresh hash.  The
// access token carries the account's stored zone.
func (h *AuthHandler) issue(ctx context.Context, c echo.Context, status int, u model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Identity{UserID: u.ID, Role: u.Role, Timezone: u.Timezone}, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue access failed")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		h.Logger.Error("store refresh token failed", slog.Uint64("user_id", u.ID), slog.Any("error", err))
		return fail(c, http.StatusInternalServerError, "save refresh failed")
	}
	return c.JSON(status, authResp{
		Success: true,
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Register creates a PLAYER account, its stats row and a token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}
	tz, ok := validTimezone(req.Timezone)
	if !ok {
		return fail(c, http.StatusBadRequest, "unknown timezone")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, model.RolePlayer, tz, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusConflict, "email already exists")
		}
		h.Logger.Error("create user failed", slog.Any("error", err))
		return fail(c, http.StatusInternalServerError, "create user failed")
	}
	if err := h.Stats.EnsureStats(ctx, uid); err != nil {
		return fail(c, http.StatusInternalServerError, "create stats failed")
	}
	return h.issue(ctx, c, http.StatusCreated, model.User{ID: uid, Email: req.Email, Role: model.RolePlayer, Timezone: tz})
}

// Login verifies credentials and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email/password required")
	}
	tz, ok := validTimezone(req.Timezone)
	if !ok {
		return fail(c, http.StatusBadRequest, "unknown timezone")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	// Accounts created before stats existed get their row here.
	if err := h.Stats.EnsureStats(ctx, u.ID); err != nil {
		return fail(c, http.StatusInternalServerError, "load stats failed")
	}
	if err := h.adoptTimezone(ctx, &u, tz); err != nil {
		return fail(c, http.StatusInternalServerError, "save timezone failed")
	}
	return h.issue(ctx, c, http.StatusOK, u)
}

// Refresh rotates a valid refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	tz, ok := validTimezone(req.Timezone)
	if !ok {
		return fail(c, http.StatusBadRequest, "unknown timezone")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash, time.Now())
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid refresh")
		}
		return fail(c, http.StatusInternalServerError, "load user failed")
	}
	if err := h.adoptTimezone(ctx, &u, tz); err != nil {
		return fail(c, http.StatusInternalServerError, "save timezone failed")
	}
	return h.issue(ctx, c, http.StatusOK, u)
}

// Logout revokes the refresh token in the body, or every token of the bearer
// when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash, time.Now()); err != nil {
			return fail(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return fail(c, http.StatusInternalServerError, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return fail(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
	}
	id, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id.UserID); err != nil {
		return fail(c, http.StatusInternalServerError, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the caller's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"user_id":  c.Get(middleware.CtxUserID),
		"role":     c.Get(middleware.CtxRole),
		"timezone": c.Get(middleware.CtxTimezone),
	})
}
