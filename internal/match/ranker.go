package match

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/talentmatch/platform/internal/gemini"
	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/textutil"
)

// maxRankedCandidates bounds how many candidates a single ranking prompt covers.
const maxRankedCandidates = 10

// resumePromptLimit bounds the resume excerpt included per candidate.
const resumePromptLimit = 1500

// Ranker scores a candidate shortlist against a project using the generative model.
type Ranker struct {
	generator TextGenerator
	logger    *slog.Logger
}

// NewRanker creates a Ranker.
func NewRanker(generator TextGenerator, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Ranker{generator: generator, logger: logger}
}

// Rank returns candidate rankings sorted descending by match percentage.
// Candidates beyond the prompt bound are ignored. Transport or parse failure
// returns an empty list; the caller treats "no rankings" as "no matches".
// The returned candidate indices reference positions in the exact candidate
// slice passed here and must be validated against it before use.
func (r *Ranker) Rank(
	ctx context.Context,
	project *models.ProjectRequest,
	candidates []*models.UserProfile,
	reqs models.RequirementSet,
) []models.CandidateRanking {
	if len(candidates) == 0 {
		return nil
	}

	if len(candidates) > maxRankedCandidates {
		candidates = candidates[:maxRankedCandidates]
	}

	raw, err := r.generator.GenerateText(ctx, rankPrompt(project, candidates, reqs))
	if err != nil {
		r.logger.WarnContext(ctx, "candidate ranking failed", "project_id", project.ID, "error", err)
		return nil
	}

	rankings, err := parseRankings(raw)
	if err != nil {
		r.logger.WarnContext(ctx, "candidate ranking response unparseable", "project_id", project.ID, "error", err)
		return nil
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].MatchPercentage > rankings[j].MatchPercentage
	})

	return rankings
}

func rankPrompt(project *models.ProjectRequest, candidates []*models.UserProfile, reqs models.RequirementSet) string {
	var b strings.Builder

	b.WriteString(`You are an AI matching system for startup team formation.

Evaluate and rank candidates for the given startup project.

`)
	fmt.Fprintf(&b, "Project Title: %s\n", project.Title)
	fmt.Fprintf(&b, "Project Description: %s\n", project.Description)

	if !reqs.IsEmpty() {
		b.WriteString("\nThe project's requirements have already been analyzed. Score against these, do not re-derive them:\n")

		if len(reqs.RequiredSkills) > 0 {
			fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(reqs.RequiredSkills, ", "))
		}

		if len(reqs.RequiredRoles) > 0 {
			fmt.Fprintf(&b, "Required roles: %s\n", strings.Join(reqs.RequiredRoles, ", "))
		}

		if len(reqs.KeyCompetencies) > 0 {
			fmt.Fprintf(&b, "Key competencies: %s\n", strings.Join(reqs.KeyCompetencies, ", "))
		}

		if len(reqs.FoundingQualities) > 0 {
			fmt.Fprintf(&b, "Founding qualities: %s\n", strings.Join(reqs.FoundingQualities, ", "))
		}
	}

	b.WriteString("\nCandidates:\n")

	for i, c := range candidates {
		fmt.Fprintf(&b, "\nCandidate %d:\n", i)
		fmt.Fprintf(&b, "Name: %s\n", c.Name)
		fmt.Fprintf(&b, "Role: %s\n", c.Role)
		fmt.Fprintf(&b, "Professional title: %s\n", c.ProfessionalTitle)
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(c.Skills, ", "))
		fmt.Fprintf(&b, "Experience: %d years\n", c.ExperienceYears)
		fmt.Fprintf(&b, "Bio: %s\n", c.Bio)

		if c.HasResume() {
			fmt.Fprintf(&b, "Resume excerpt: %s\n", textutil.Clip(strings.TrimSpace(*c.ResumeText), resumePromptLimit))
		}
	}

	b.WriteString(`
Score each candidate on this weighted rubric:
- 40%: skill match against the required skills, including skills you can reasonably infer
- 20%: seniority fit for what the project needs
- 25%: domain and industry alignment
- 15%: execution signal (evidence of shipping, building, delivering)

Be discriminative: poor fits should score 20-40, strong fits 75-95. Avoid clustering scores.

For each candidate provide:

1. candidate_index (the number shown above)
2. match_percentage (0-100)
3. reasoning
4. strengths (array)
5. concerns (array)

Respond ONLY in valid JSON:

{
    "rankings": [
        {
            "candidate_index": 0,
            "match_percentage": 85,
            "reasoning": "Why they match",
            "strengths": ["..."],
            "concerns": ["..."]
        }
    ]
}

Sort rankings by match_percentage in descending order.
`)

	return b.String()
}

// rankingsEnvelope mirrors the expected response shape. Loose field types keep a
// model that returns "3" instead of 3 from discarding the whole response.
type rankingsEnvelope struct {
	Rankings []rawRanking `json:"rankings"`
}

type rawRanking struct {
	CandidateIndex  json.RawMessage `json:"candidate_index"`
	MatchPercentage json.Number     `json:"match_percentage"`
	Reasoning       string          `json:"reasoning"`
	Strengths       []string        `json:"strengths"`
	Concerns        []string        `json:"concerns"`
}

func parseRankings(raw string) ([]models.CandidateRanking, error) {
	body, ok := gemini.ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var envelope rankingsEnvelope

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode rankings: %w", err)
	}

	rankings := make([]models.CandidateRanking, 0, len(envelope.Rankings))

	for _, rr := range envelope.Rankings {
		rankings = append(rankings, models.CandidateRanking{
			CandidateIndex:  coerceIndex(rr.CandidateIndex),
			MatchPercentage: clampPercentage(rr.MatchPercentage),
			Reasoning:       rr.Reasoning,
			Strengths:       rr.Strengths,
			Concerns:        rr.Concerns,
		})
	}

	return rankings, nil
}

// coerceIndex accepts a bare integer or a quoted integer string; anything else
// becomes -1, which the orchestrator drops as out of range.
func coerceIndex(raw json.RawMessage) int {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return -1
	}

	s = strings.Trim(s, `"`)

	var idx int
	if _, err := fmt.Sscanf(s, "%d", &idx); err != nil {
		return -1
	}

	// Reject trailing garbage like "3.5".
	if fmt.Sprintf("%d", idx) != s {
		return -1
	}

	return idx
}

func clampPercentage(n json.Number) int {
	f, err := n.Float64()
	if err != nil {
		return 0
	}

	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return int(f)
	}
}
