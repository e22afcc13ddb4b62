package match

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentmatch/platform/internal/models"
)

// scriptedGenerator returns queued responses in order, recording prompts.
type scriptedGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)

	if g.err != nil {
		return "", g.err
	}

	if len(g.responses) == 0 {
		return "", errors.New("no scripted response left")
	}

	resp := g.responses[0]
	g.responses = g.responses[1:]

	return resp, nil
}

func (g *scriptedGenerator) calls() int { return len(g.prompts) }

func TestAnalyzerParsesStructuredResponse(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{
		"required_skills": ["Go", "PostgreSQL"],
		"required_roles": ["Backend Engineer"],
		"key_competencies": ["API design"],
		"founding_qualities": ["ownership"]
	}`}}

	reqs := NewAnalyzer(gen, nil).Analyze(context.Background(), "A payments API startup")

	assert.Equal(t, []string{"Go", "PostgreSQL"}, reqs.RequiredSkills)
	assert.Equal(t, []string{"Backend Engineer"}, reqs.RequiredRoles)
	assert.False(t, reqs.IsEmpty())
}

func TestAnalyzerStripsCodeFences(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"Here is the analysis:\n```json\n{\"required_skills\": [\"Rust\"], \"required_roles\": [], \"key_competencies\": [], \"founding_qualities\": []}\n```",
	}}

	reqs := NewAnalyzer(gen, nil).Analyze(context.Background(), "A systems project")

	assert.Equal(t, []string{"Rust"}, reqs.RequiredSkills)
}

func TestAnalyzerFallsBackOnTransportFailure(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("provider unreachable")}

	reqs := NewAnalyzer(gen, nil).Analyze(context.Background(), "A project")

	assert.True(t, reqs.IsEmpty(), "transport failure must yield an empty requirement set, not an error")
}

func TestAnalyzerFallsBackOnGarbageResponse(t *testing.T) {
	for _, raw := range []string{
		"no json here at all",
		"{ \"required_skills\": [unterminated",
		"",
	} {
		gen := &scriptedGenerator{responses: []string{raw}}
		reqs := NewAnalyzer(gen, nil).Analyze(context.Background(), "A project")
		assert.True(t, reqs.IsEmpty(), "raw=%q", raw)
	}
}

func TestAnalyzerEmptyDescriptionSkipsProvider(t *testing.T) {
	gen := &scriptedGenerator{}

	reqs := NewAnalyzer(gen, nil).Analyze(context.Background(), "   ")

	assert.True(t, reqs.IsEmpty())
	assert.Zero(t, gen.calls(), "blank description must not hit the provider")
}

func TestAnalyzerPromptContainsDescription(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{}`}}

	NewAnalyzer(gen, nil).Analyze(context.Background(), "Marketplace for vintage synthesizers")

	assert.Len(t, gen.prompts, 1)
	assert.True(t, strings.Contains(gen.prompts[0], "Marketplace for vintage synthesizers"))
	assert.True(t, strings.Contains(gen.prompts[0], "required_skills"))
}

func TestRequirementSetIsEmpty(t *testing.T) {
	assert.True(t, models.RequirementSet{}.IsEmpty())
	assert.False(t, models.RequirementSet{RequiredRoles: []string{"SDE"}}.IsEmpty())
}
