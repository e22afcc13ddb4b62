package models

import "time"

// UserProfile is a candidate or founder profile as stored in the users collection.
// The matching pipeline only reads it; mutation goes through the profile service.
type UserProfile struct {
	ID                string    `bson:"_id,omitempty" json:"id"`
	Email             string    `bson:"email" json:"email"`
	Name              string    `bson:"name" json:"name"`
	Role              string    `bson:"role" json:"role"` // "user" or "founder"
	Bio               string    `bson:"bio" json:"bio"`
	Skills            []string  `bson:"skills" json:"skills"`
	ProfessionalTitle string    `bson:"professional_title" json:"professional_title"`
	ExperienceYears   int       `bson:"experience_years" json:"experience_years"`
	Location          string    `bson:"location" json:"location"`
	ResumeText        *string   `bson:"resume_text,omitempty" json:"-"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

// HasResume reports whether the profile carries non-empty resume text.
func (u *UserProfile) HasResume() bool {
	return u.ResumeText != nil && *u.ResumeText != ""
}

// IsFounder reports whether the user has the founder role.
func (u *UserProfile) IsFounder() bool {
	return u.Role == "founder"
}
