package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentmatch/platform/internal/api/response"
	"github.com/talentmatch/platform/internal/apperrors"
	"github.com/talentmatch/platform/internal/models"
)

// maxResumeBytes bounds the accepted resume text size.
const maxResumeBytes = 1 << 20

// ProfileService is the profile mutation boundary the handler exposes.
type ProfileService interface {
	GetUser(ctx context.Context, id string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, id string, updates map[string]any) (*models.UserProfile, error)
	SetResume(ctx context.Context, id, resumeText string) error
	DeleteUser(ctx context.Context, id string) error
}

// ProfileHandler handles HTTP requests for user profile mutation.
type ProfileHandler struct {
	service ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get handles GET /v1/users/{id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.respondUserError(w, r, userID, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// Update handles PATCH /v1/users/{id}. The body is a JSON object of field
// updates; unknown fields are rejected by the profile service.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, updates)
	if err != nil {
		h.respondUserError(w, r, userID, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// SetResumeRequest is the body for PUT /v1/users/{id}/resume.
type SetResumeRequest struct {
	ResumeText string `json:"resume_text"`
}

// SetResume handles PUT /v1/users/{id}/resume.
func (h *ProfileHandler) SetResume(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req SetResumeRequest

	body := io.LimitReader(r.Body, maxResumeBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.SetResume(r.Context(), userID, req.ResumeText); err != nil {
		h.respondUserError(w, r, userID, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /v1/users/{id}.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		h.respondUserError(w, r, userID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) respondUserError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.RespondNotFound(w, "User not found")
	case errors.Is(err, apperrors.ErrValidation):
		response.RespondBadRequest(w, err.Error())
	default:
		slog.ErrorContext(r.Context(), "profile request failed", "user_id", userID, "error", err)
		response.RespondInternalServerError(w, "Failed to process profile request")
	}
}
