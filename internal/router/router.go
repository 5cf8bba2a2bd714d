// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/questboard/internal/handler"
	"github.com/iliyamo/questboard/internal/middleware"
	"github.com/iliyamo/questboard/internal/model"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Quests    *handler.QuestHandler
	Templates *handler.TemplateHandler
	Badges    *handler.BadgeHandler
	Ready     echo.HandlerFunc
}

// Middlewares are the Redis-backed layers.  Both degrade to pass-through when
// Redis is unavailable.
type Middlewares struct {
	RateLimit    echo.MiddlewareFunc
	CatalogCache echo.MiddlewareFunc
}

// RegisterRoutes mounts probes, the auth endpoints, the public badge catalog
// and the authenticated /v1 API.
func RegisterRoutes(e *echo.Echo, h Handlers, mw Middlewares, jwtSecret string) {
	e.GET("/healthz", handler.Health)
	if h.Ready != nil {
		e.GET("/readyz", h.Ready)
	}

	a := e.Group("/v1/auth", mw.RateLimit)
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/logout", h.Auth.Logout)

	e.GET("/v1/badges", h.Badges.Catalog, mw.RateLimit, mw.CatalogCache)

	// JWTAuth runs before the limiter so buckets are keyed per user.
	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret), mw.RateLimit,
		middleware.RequireRole(model.RolePlayer, model.RoleAdmin))
	v1.GET("/me", h.Auth.Me)
	v1.GET("/me/badges", h.Badges.Mine)
	v1.GET("/stats", h.Quests.Stats)

	v1.POST("/quests", h.Quests.Create)
	v1.GET("/quests", h.Quests.List)
	v1.POST("/quests/:id/complete", h.Quests.Complete)
	v1.DELETE("/quests/:id", h.Quests.Delete)

	v1.POST("/templates", h.Templates.Create)
	v1.GET("/templates", h.Templates.List)
	v1.POST("/templates/reset", h.Templates.Reset)
	v1.DELETE("/templates/:id", h.Templates.Deactivate)

	admin := v1.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/badges", h.Badges.Upsert)
}
