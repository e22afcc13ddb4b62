package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/platform/internal/apperrors"
	"github.com/talentmatch/platform/internal/match"
	"github.com/talentmatch/platform/internal/models"
)

type mockMatchService struct {
	getFunc     func(ctx context.Context, projectID string) (*models.MatchResult, bool, error)
	refreshFunc func(ctx context.Context, projectID string) (*models.MatchResult, error)
}

func (m *mockMatchService) GetMatches(ctx context.Context, projectID string) (*models.MatchResult, bool, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, projectID)
	}

	return nil, false, nil
}

func (m *mockMatchService) RefreshMatches(ctx context.Context, projectID string) (*models.MatchResult, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, projectID)
	}

	return nil, nil
}

func matchesRouter(svc MatchService) http.Handler {
	r := chi.NewRouter()
	h := NewMatchesHandler(svc)
	r.Get("/v1/projects/{id}/matches", h.Get)
	r.Post("/v1/projects/{id}/matches/refresh", h.Refresh)

	return r
}

func TestMatchesHandler_Get(t *testing.T) {
	t.Run("returns matches with cache flag", func(t *testing.T) {
		result := &models.MatchResult{
			ProjectID: "p1",
			Matches: []models.MatchEntry{
				{UserID: "u1", Name: "Alice", MatchPercentage: 88},
			},
			ComputedAt: time.Now().UTC(),
		}

		mock := &mockMatchService{
			getFunc: func(_ context.Context, projectID string) (*models.MatchResult, bool, error) {
				assert.Equal(t, "p1", projectID)
				return result, true, nil
			},
		}

		rec := httptest.NewRecorder()
		matchesRouter(mock).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/v1/projects/p1/matches", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body MatchesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "p1", body.ProjectID)
		assert.True(t, body.Cached)
		require.Len(t, body.Matches, 1)
		assert.Equal(t, "Alice", body.Matches[0].Name)
	})

	t.Run("unknown project returns 404", func(t *testing.T) {
		mock := &mockMatchService{
			getFunc: func(context.Context, string) (*models.MatchResult, bool, error) {
				return nil, false, apperrors.NewNotFoundError("project", "missing")
			},
		}

		rec := httptest.NewRecorder()
		matchesRouter(mock).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/v1/projects/nope/matches", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("not-live project returns 409", func(t *testing.T) {
		mock := &mockMatchService{
			getFunc: func(context.Context, string) (*models.MatchResult, bool, error) {
				return nil, false, match.ErrProjectNotLive
			},
		}

		rec := httptest.NewRecorder()
		matchesRouter(mock).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/v1/projects/p1/matches", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unexpected error returns 500", func(t *testing.T) {
		mock := &mockMatchService{
			getFunc: func(context.Context, string) (*models.MatchResult, bool, error) {
				return nil, false, errors.New("mongo down")
			},
		}

		rec := httptest.NewRecorder()
		matchesRouter(mock).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/v1/projects/p1/matches", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestMatchesHandler_Refresh(t *testing.T) {
	t.Run("recomputes and returns fresh result", func(t *testing.T) {
		mock := &mockMatchService{
			refreshFunc: func(_ context.Context, projectID string) (*models.MatchResult, error) {
				return &models.MatchResult{ProjectID: projectID, Matches: []models.MatchEntry{}}, nil
			},
		}

		rec := httptest.NewRecorder()
		matchesRouter(mock).ServeHTTP(rec,
			httptest.NewRequest(http.MethodPost, "/v1/projects/p1/matches/refresh", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body MatchesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Cached)
	})

	t.Run("not-live project returns 409", func(t *testing.T) {
		mock := &mockMatchService{
			refreshFunc: func(context.Context, string) (*models.MatchResult, error) {
				return nil, match.ErrProjectNotLive
			},
		}

		rec := httptest.NewRecorder()
		matchesRouter(mock).ServeHTTP(rec,
			httptest.NewRequest(http.MethodPost, "/v1/projects/p1/matches/refresh", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
