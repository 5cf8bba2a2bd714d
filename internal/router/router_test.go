package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/questboard/internal/handler"
)

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, Handlers{
		Auth:      &handler.AuthHandler{},
		Quests:    handler.NewQuestHandler(nil, time.UTC),
		Templates: handler.NewTemplateHandler(nil, time.UTC),
		Badges:    handler.NewBadgeHandler(nil, time.UTC, nil, nil, nil),
	}, Middlewares{RateLimit: passThrough, CatalogCache: passThrough}, "secret")

	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/login",
		"GET /v1/badges",
		"GET /v1/stats",
		"POST /v1/quests",
		"POST /v1/quests/:id/complete",
		"DELETE /v1/quests/:id",
		"POST /v1/templates/reset",
		"DELETE /v1/templates/:id",
		"GET /v1/me/badges",
		"POST /v1/admin/badges",
	} {
		assert.True(t, have[want], want)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
