package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentmatch/platform/internal/apperrors"
	"github.com/talentmatch/platform/internal/models"
)

const projectsCollection = "projects"

// ProjectsRepository handles data access for the projects collection.
type ProjectsRepository struct {
	col *mongo.Collection
}

// NewProjectsRepository creates a new projects repository.
func NewProjectsRepository(db *mongo.Database) *ProjectsRepository {
	return &ProjectsRepository{col: db.Collection(projectsCollection)}
}

// Create inserts a new project in pending status.
func (r *ProjectsRepository) Create(ctx context.Context, project *models.ProjectRequest) (*models.ProjectRequest, error) {
	now := time.Now().UTC()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	if project.Status == "" {
		project.Status = models.ProjectStatusPending
	}

	project.CreatedAt = now
	project.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, project); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return project, nil
}

// GetByID returns the project with the given id, or apperrors.ErrNotFound.
func (r *ProjectsRepository) GetByID(ctx context.Context, id string) (*models.ProjectRequest, error) {
	var project models.ProjectRequest

	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFoundError("project", fmt.Sprintf("project %s not found", id))
		}

		return nil, fmt.Errorf("get project %s: %w", id, err)
	}

	return &project, nil
}

// ListByFounder returns all projects owned by the founder, newest first.
func (r *ProjectsRepository) ListByFounder(ctx context.Context, founderID string) ([]*models.ProjectRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.col.Find(ctx, bson.M{"founder_id": founderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects for founder %s: %w", founderID, err)
	}
	defer cursor.Close(ctx)

	var projects []*models.ProjectRequest
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	return projects, nil
}

// CacheMatches stores a computed match result on the project. Last writer wins;
// concurrent recomputations persist equivalent results so the race is benign.
func (r *ProjectsRepository) CacheMatches(ctx context.Context, projectID string, result *models.MatchResult) error {
	now := time.Now().UTC()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": bson.M{
			"cached_matches":    result,
			"matches_cached_at": now,
			"updated_at":        now,
		}},
	)
	if err != nil {
		return fmt.Errorf("cache matches for project %s: %w", projectID, err)
	}

	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError("project", fmt.Sprintf("project %s not found", projectID))
	}

	return nil
}

// InvalidateMatches clears the cached match result so the next request recomputes.
func (r *ProjectsRepository) InvalidateMatches(ctx context.Context, projectID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{
			"$unset": bson.M{"cached_matches": "", "matches_cached_at": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("invalidate matches for project %s: %w", projectID, err)
	}

	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError("project", fmt.Sprintf("project %s not found", projectID))
	}

	return nil
}

// SetLive flips the project's live flag.
func (r *ProjectsRepository) SetLive(ctx context.Context, projectID string, live bool) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": bson.M{"live": live, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set live for project %s: %w", projectID, err)
	}

	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError("project", fmt.Sprintf("project %s not found", projectID))
	}

	return nil
}
