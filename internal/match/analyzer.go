// Package match implements the candidate-matching pipeline: requirement
// extraction, vector retrieval, LLM re-ranking and shortlist reconciliation.
package match

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/talentmatch/platform/internal/gemini"
	"github.com/talentmatch/platform/internal/models"
)

// TextGenerator produces free-form model output for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Analyzer extracts structured team requirements from a project description.
type Analyzer struct {
	generator TextGenerator
	logger    *slog.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(generator TextGenerator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{generator: generator, logger: logger}
}

// Analyze asks the model what skills, roles and qualities the project needs.
// Transport and parse failures fall back to an empty RequirementSet; the
// pipeline downstream treats that as a valid, if uninformative, analysis.
func (a *Analyzer) Analyze(ctx context.Context, projectDescription string) models.RequirementSet {
	description := strings.TrimSpace(projectDescription)
	if description == "" {
		return models.RequirementSet{}
	}

	raw, err := a.generator.GenerateText(ctx, analyzePrompt(description))
	if err != nil {
		a.logger.WarnContext(ctx, "project analysis failed, using empty requirements", "error", err)
		return models.RequirementSet{}
	}

	body, ok := gemini.ExtractJSON(raw)
	if !ok {
		a.logger.WarnContext(ctx, "project analysis returned no parseable JSON")
		return models.RequirementSet{}
	}

	var reqs models.RequirementSet
	if err := json.Unmarshal([]byte(body), &reqs); err != nil {
		a.logger.WarnContext(ctx, "project analysis JSON did not match schema", "error", err)
		return models.RequirementSet{}
	}

	return reqs
}

func analyzePrompt(description string) string {
	return fmt.Sprintf(`You are an expert startup advisor.

Analyze this startup project description and identify:

1. Required technical skills
2. Required roles (e.g., SDE, Data Scientist, Business Analyst, Cloud Engineer, Security Expert, Data Engineer)
3. Key competencies needed
4. The founding mindset qualities that would complement the founder

Project Description:
%s

Respond ONLY in valid JSON format:

{
    "required_skills": ["skill1", "skill2"],
    "required_roles": ["role1", "role2"],
    "key_competencies": ["competency1", "competency2"],
    "founding_qualities": ["quality1", "quality2"]
}`, description)
}
