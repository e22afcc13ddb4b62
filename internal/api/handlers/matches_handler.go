package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentmatch/platform/internal/api/response"
	"github.com/talentmatch/platform/internal/apperrors"
	"github.com/talentmatch/platform/internal/match"
	"github.com/talentmatch/platform/internal/models"
)

// MatchService is the match boundary the handler exposes over HTTP.
type MatchService interface {
	GetMatches(ctx context.Context, projectID string) (*models.MatchResult, bool, error)
	RefreshMatches(ctx context.Context, projectID string) (*models.MatchResult, error)
}

// MatchesHandler handles HTTP requests for project match shortlists.
type MatchesHandler struct {
	service MatchService
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(service MatchService) *MatchesHandler {
	return &MatchesHandler{service: service}
}

// MatchesResponse is the body for match endpoints.
type MatchesResponse struct {
	ProjectID string              `json:"project_id"`
	Matches   []models.MatchEntry `json:"matches"`
	Cached    bool                `json:"cached"`
}

// Get handles GET /v1/projects/{id}/matches.
func (h *MatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		response.RespondBadRequest(w, "Project id is required")
		return
	}

	result, cached, err := h.service.GetMatches(r.Context(), projectID)
	if err != nil {
		h.respondMatchError(w, r, projectID, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, MatchesResponse{
		ProjectID: result.ProjectID,
		Matches:   result.Matches,
		Cached:    cached,
	})
}

// Refresh handles POST /v1/projects/{id}/matches/refresh.
func (h *MatchesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		response.RespondBadRequest(w, "Project id is required")
		return
	}

	result, err := h.service.RefreshMatches(r.Context(), projectID)
	if err != nil {
		h.respondMatchError(w, r, projectID, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, MatchesResponse{
		ProjectID: result.ProjectID,
		Matches:   result.Matches,
		Cached:    false,
	})
}

func (h *MatchesHandler) respondMatchError(w http.ResponseWriter, r *http.Request, projectID string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.RespondNotFound(w, "Project not found")
	case errors.Is(err, match.ErrProjectNotLive):
		response.RespondConflict(w, "Project is not live")
	default:
		slog.ErrorContext(r.Context(), "match request failed", "project_id", projectID, "error", err)
		response.RespondInternalServerError(w, "Failed to compute matches")
	}
}
