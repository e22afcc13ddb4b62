package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/platform/internal/apperrors"
	"github.com/talentmatch/platform/internal/models"
)

type mockProfileService struct {
	updateFunc    func(ctx context.Context, id string, updates map[string]any) (*models.UserProfile, error)
	setResumeFunc func(ctx context.Context, id, resumeText string) error
	deleteFunc    func(ctx context.Context, id string) error
}

func (m *mockProfileService) GetUser(_ context.Context, id string) (*models.UserProfile, error) {
	return &models.UserProfile{ID: id}, nil
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, id string, updates map[string]any) (*models.UserProfile, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}

	return &models.UserProfile{ID: id}, nil
}

func (m *mockProfileService) SetResume(ctx context.Context, id, resumeText string) error {
	if m.setResumeFunc != nil {
		return m.setResumeFunc(ctx, id, resumeText)
	}

	return nil
}

func (m *mockProfileService) DeleteUser(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}

	return nil
}

func profileRouter(svc ProfileService) http.Handler {
	r := chi.NewRouter()
	h := NewProfileHandler(svc)
	r.Get("/v1/users/{id}", h.Get)
	r.Patch("/v1/users/{id}", h.Update)
	r.Put("/v1/users/{id}/resume", h.SetResume)
	r.Delete("/v1/users/{id}", h.Delete)

	return r
}

func TestProfileHandler_Update(t *testing.T) {
	t.Run("passes updates through", func(t *testing.T) {
		var gotUpdates map[string]any

		mock := &mockProfileService{
			updateFunc: func(_ context.Context, id string, updates map[string]any) (*models.UserProfile, error) {
				gotUpdates = updates
				return &models.UserProfile{ID: id, Bio: "new"}, nil
			},
		}

		req := httptest.NewRequest(http.MethodPatch, "/v1/users/u1",
			strings.NewReader(`{"bio": "new", "skills": ["Go"]}`))
		rec := httptest.NewRecorder()
		profileRouter(mock).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "new", gotUpdates["bio"])
	})

	t.Run("invalid body returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/v1/users/u1", strings.NewReader("not json"))
		rec := httptest.NewRecorder()
		profileRouter(&mockProfileService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disallowed field returns 400", func(t *testing.T) {
		mock := &mockProfileService{
			updateFunc: func(context.Context, string, map[string]any) (*models.UserProfile, error) {
				return nil, apperrors.NewValidationError("email", `field "email" cannot be updated`)
			},
		}

		req := httptest.NewRequest(http.MethodPatch, "/v1/users/u1",
			strings.NewReader(`{"email": "x@y.z"}`))
		rec := httptest.NewRecorder()
		profileRouter(mock).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user returns 404", func(t *testing.T) {
		mock := &mockProfileService{
			updateFunc: func(context.Context, string, map[string]any) (*models.UserProfile, error) {
				return nil, apperrors.NewNotFoundError("user", "missing")
			},
		}

		req := httptest.NewRequest(http.MethodPatch, "/v1/users/ghost",
			strings.NewReader(`{"bio": "x"}`))
		rec := httptest.NewRecorder()
		profileRouter(mock).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProfileHandler_SetResume(t *testing.T) {
	var gotResume string

	mock := &mockProfileService{
		setResumeFunc: func(_ context.Context, _, resumeText string) error {
			gotResume = resumeText
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/v1/users/u1/resume",
		strings.NewReader(`{"resume_text": "Ten years of backend work."}`))
	rec := httptest.NewRecorder()
	profileRouter(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ten years of backend work.", gotResume)
}

func TestProfileHandler_Delete(t *testing.T) {
	t.Run("returns 204", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/v1/users/u1", nil)
		rec := httptest.NewRecorder()
		profileRouter(&mockProfileService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown user returns 404", func(t *testing.T) {
		mock := &mockProfileService{
			deleteFunc: func(context.Context, string) error {
				return apperrors.NewNotFoundError("user", "missing")
			},
		}

		req := httptest.NewRequest(http.MethodDelete, "/v1/users/ghost", nil)
		rec := httptest.NewRecorder()
		profileRouter(mock).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
