// Package repository handles document access for users and projects in MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/talentmatch/platform/internal/apperrors"
	"github.com/talentmatch/platform/internal/models"
)

// usersCollection is the canonical collection name for user profiles.
const usersCollection = "users"

// profileUpdateFields are the only user fields a profile update may touch.
var profileUpdateFields = map[string]bool{
	"name":               true,
	"bio":                true,
	"skills":             true,
	"professional_title": true,
	"experience_years":   true,
	"location":           true,
}

// UsersRepository handles data access for the users collection.
type UsersRepository struct {
	col *mongo.Collection
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *mongo.Database) *UsersRepository {
	return &UsersRepository{col: db.Collection(usersCollection)}
}

// Create inserts a new user profile, generating an id when none is set.
func (r *UsersRepository) Create(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error) {
	now := time.Now().UTC()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// GetByID returns the user with the given id, or apperrors.ErrNotFound.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var user models.UserProfile

	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user %s not found", id))
		}

		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	return &user, nil
}

// GetByIDs returns the users whose ids resolve, in no particular order. Ids with
// no matching document are silently absent from the result.
func (r *UsersRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.UserProfile
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	return users, nil
}

// ListAll returns every user profile. Used by the vector backfill.
func (r *UsersRepository) ListAll(ctx context.Context) ([]*models.UserProfile, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.UserProfile
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	return users, nil
}

// UpdateProfile applies the given field updates to a user. Only whitelisted
// profile fields are accepted; anything else fails validation before the write.
// Returns the list of fields actually updated.
func (r *UsersRepository) UpdateProfile(ctx context.Context, id string, updates map[string]any) ([]string, error) {
	if len(updates) == 0 {
		return nil, apperrors.NewValidationError("", "no fields to update")
	}

	set := bson.M{}
	fields := make([]string, 0, len(updates))

	for field, value := range updates {
		if !profileUpdateFields[field] {
			return nil, apperrors.NewValidationError(field, fmt.Sprintf("field %q cannot be updated", field))
		}

		set[field] = value
		fields = append(fields, field)
	}

	set["updated_at"] = time.Now().UTC()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}

	if res.MatchedCount == 0 {
		return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user %s not found", id))
	}

	return fields, nil
}

// SetResumeText replaces the user's resume text. An empty string clears it.
func (r *UsersRepository) SetResumeText(ctx context.Context, id, resumeText string) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}

	if resumeText == "" {
		update["$unset"] = bson.M{"resume_text": ""}
	} else {
		update["$set"].(bson.M)["resume_text"] = resumeText
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("set resume for user %s: %w", id, err)
	}

	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError("user", fmt.Sprintf("user %s not found", id))
	}

	return nil
}

// Delete removes the user document. Returns apperrors.ErrNotFound when absent.
func (r *UsersRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	if res.DeletedCount == 0 {
		return apperrors.NewNotFoundError("user", fmt.Sprintf("user %s not found", id))
	}

	return nil
}
