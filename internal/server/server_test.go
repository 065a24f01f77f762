package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/IdleCultivation_Go/internal/database/memory"
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/eventlog"
	"github.com/osse101/IdleCultivation_Go/internal/game"
	"github.com/osse101/IdleCultivation_Go/internal/handler"
	"github.com/osse101/IdleCultivation_Go/internal/middleware"
	"github.com/osse101/IdleCultivation_Go/internal/production"
)

const testUserID = "4f1c2f8e-9a53-4c1e-8d8a-2a9b6f0e7c31"

func newTestRouter(svc game.Service, draining bool) http.Handler {
	handler.InitValidator()
	return NewRouter(Options{
		APIKey:         testAPIKey,
		Version:        "test",
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		Draining:       func() bool { return draining },
	}, memory.NewStore(), svc)
}

func request(method, path, userID string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(HeaderAPIKey, testAPIKey)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	return req
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r := newTestRouter(&game.MockService{}, false)

	for _, path := range []string{"/healthz", "/readyz", "/version", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRouter_ReadinessWhileDraining(t *testing.T) {
	r := newTestRouter(&game.MockService{}, true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_GameRoutes(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		r := newTestRouter(&game.MockService{}, false)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cultivation/status", nil)
		req.Header.Set(middleware.HeaderUserID, testUserID)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("requires user", func(t *testing.T) {
		r := newTestRouter(&game.MockService{}, false)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, request(http.MethodGet, "/api/v1/cultivation/status", ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("status reaches the service", func(t *testing.T) {
		svc := &game.MockService{}
		svc.On("GetCultivationStatus", mock.Anything, testUserID).
			Return(&game.StatusResult{Outcome: domain.Succeed("ok")})
		r := newTestRouter(svc, false)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, request(http.MethodGet, "/api/v1/cultivation/status", testUserID))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, HeaderValueNoSniff, rec.Header().Get(HeaderContentType))
		svc.AssertExpectations(t)
	})

	t.Run("production kind from path", func(t *testing.T) {
		svc := &game.MockService{}
		svc.On("ListProduction", mock.Anything, testUserID, domain.KindAlchemy).
			Return(&production.SlotList{Outcome: domain.Succeed("ok")})
		r := newTestRouter(svc, false)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, request(http.MethodGet, "/api/v1/production/alchemy", testUserID))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("session listing needs no user", func(t *testing.T) {
		svc := &game.MockService{}
		svc.On("ListSessions", mock.Anything).
			Return(&game.SessionsResult{Outcome: domain.Succeed("ok"), Count: 1, UserIDs: []string{testUserID}})
		r := newTestRouter(svc, false)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, request(http.MethodGet, "/api/v1/sessions", ""))

		require.Equal(t, http.StatusOK, rec.Code)
		var body game.SessionsResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count)
	})
}

func TestRouter_PerUserRateLimit(t *testing.T) {
	svc := &game.MockService{}
	svc.On("GetCultivationStatus", mock.Anything, testUserID).
		Return(&game.StatusResult{Outcome: domain.Succeed("ok")})
	handler.InitValidator()
	r := NewRouter(Options{APIKey: testAPIKey, RateLimitRPS: 0.001, RateLimitBurst: 1}, memory.NewStore(), svc)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, request(http.MethodGet, "/api/v1/cultivation/status", testUserID))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, request(http.MethodGet, "/api/v1/cultivation/status", testUserID))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get(middleware.HeaderRetryAfter))
}

func TestRouter_EventHistory(t *testing.T) {
	ctx := context.Background()
	charID := "d2b7c6a1-3f0e-4e8a-b5a4-7c9e2f1d0a63"
	gameLog := memory.NewGameLog()
	require.NoError(t, gameLog.LogEvent(ctx, string(event.Breakthrough), &charID, map[string]interface{}{"success": true}, nil))

	handler.InitValidator()
	r := NewRouter(Options{
		APIKey:       testAPIKey,
		EventHistory: eventlog.NewService(gameLog),
	}, memory.NewStore(), &game.MockService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, request(http.MethodGet, "/api/v1/characters/"+charID+"/events", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var body handler.EventHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, string(event.Breakthrough), body.Events[0].EventType)

	t.Run("requires api key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/characters/"+charID+"/events", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderAPIKey, "secret")
	h.Set(HeaderAuthorization, "Bearer secret")
	h.Set("Accept", "application/json")

	got := redactHeaders(h)

	assert.Equal(t, RedactedValue, got.Get(HeaderAPIKey))
	assert.Equal(t, RedactedValue, got.Get(HeaderAuthorization))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "secret", h.Get(HeaderAPIKey), "original untouched")
}
