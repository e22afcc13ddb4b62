package vectorindex

import (
	"fmt"
	"strings"

	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/textutil"
)

// resumeExcerptLimit bounds how much resume text contributes to the embedding input.
const resumeExcerptLimit = 1500

// ProfileText composes the embedding input for a user: bio, skills, title, location,
// experience and a resume excerpt. Any change to these fields requires re-embedding.
func ProfileText(u *models.UserProfile) string {
	var b strings.Builder

	if bio := strings.TrimSpace(u.Bio); bio != "" {
		b.WriteString(bio)
	}

	if len(u.Skills) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Skills: ")
		b.WriteString(strings.Join(u.Skills, ", "))
		b.WriteString(".")
	}

	if title := strings.TrimSpace(u.ProfessionalTitle); title != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString(".")
	}

	if loc := strings.TrimSpace(u.Location); loc != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Location: ")
		b.WriteString(loc)
		b.WriteString(".")
	}

	if u.ExperienceYears > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d years of experience.", u.ExperienceYears)
	}

	if u.HasResume() {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Resume: ")
		b.WriteString(textutil.Clip(strings.TrimSpace(*u.ResumeText), resumeExcerptLimit))
	}

	return b.String()
}
