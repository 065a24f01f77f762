package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/IdleCultivation_Go/internal/handler"
	"github.com/osse101/IdleCultivation_Go/internal/repository"
)

const testCharacterID = "9a4e1c07-2b1f-4f39-9a55-1f4c0d3b7e42"

type stubHistory struct {
	entries   []repository.GameLogEntry
	err       error
	gotID     string
	gotLimit  int
	callCount int
}

func (s *stubHistory) RecentEvents(_ context.Context, characterID string, limit int) ([]repository.GameLogEntry, error) {
	s.callCount++
	s.gotID, s.gotLimit = characterID, limit
	return s.entries, s.err
}

func serveHistory(h handler.EventHistory, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/characters/{id}/events", handler.HandleRecentEvents(h))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleRecentEvents(t *testing.T) {
	base := "/characters/" + testCharacterID + "/events"

	t.Run("returns entries with requested limit", func(t *testing.T) {
		stub := &stubHistory{entries: []repository.GameLogEntry{{ID: 7, EventType: "cultivation.breakthrough"}}}
		rec := serveHistory(stub, base+"?limit=5")

		require.Equal(t, http.StatusOK, rec.Code)
		var body handler.EventHistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, testCharacterID, body.CharacterID)
		require.Len(t, body.Events, 1)
		assert.Equal(t, int64(7), body.Events[0].ID)
		assert.Equal(t, 5, stub.gotLimit)
	})

	t.Run("no limit defers to service default", func(t *testing.T) {
		stub := &stubHistory{}
		rec := serveHistory(stub, base)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, stub.gotLimit)
		assert.JSONEq(t, `{"character_id":"`+testCharacterID+`","events":[]}`, rec.Body.String())
	})

	rejects := []struct {
		name string
		path string
	}{
		{"non-uuid id", "/characters/bob/events"},
		{"non-numeric limit", base + "?limit=all"},
		{"zero limit", base + "?limit=0"},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubHistory{}
			rec := serveHistory(stub, tt.path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, stub.callCount)
		})
	}

	t.Run("storage failure", func(t *testing.T) {
		rec := serveHistory(&stubHistory{err: errors.New("db down")}, base)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), handler.ErrMsgHistoryUnavailable)
	})
}
