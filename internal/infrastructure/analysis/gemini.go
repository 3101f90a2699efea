package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"jobpilot/internal/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Generator wraps the GenAI client for plain prompt/response calls.
type Generator struct {
	client    *genai.Client
	modelName string
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	return &Generator{client: client, modelName: model}, nil
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			b.WriteString(part.Text)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return out, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type geminiClient struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewGeminiClient(gen contentGenerator, log *zap.Logger, maxLogLength int) Client {
	if maxLogLength <= 0 {
		maxLogLength = 200
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &geminiClient{generator: gen, logger: log, maxLogLen: maxLogLength}
}

var instructions = map[string]string{
	TypeProfileAnalysis: `Analyze the professional profile below. Respond with a JSON object with keys:
"name", "headline", "skills" (array of {"name", "level", "relevance" 0..1}),
"experience" ({"total_years", "domains", "seniority", "management_experience", "industries"}),
"education" ({"highest_degree", "degree_level" 0..4, "fields", "prestigious_institutions"}), "summary".`,
	TypeJobAnalysis: `Analyze the job posting below. Respond with a JSON object with keys:
"required_skills" (array of {"name", "importance": "required" or "preferred"}),
"experience_requirements" ({"years", "seniority", "management", "domains"}),
"education_requirements" ({"degree_level" 0..4, "fields", "required"}), "summary".`,
	TypeJobMatching: `Score how well the profile fits the job, weighting skills, experience and education
by the criteria given. Respond with a JSON object with keys: "match_score" (integer 0..100),
"matching_skills", "missing_skills",
"experience_match" ({"has_required_years", "has_required_seniority", "has_domain_experience"}),
"education_match" ({"has_required_degree", "has_relevant_field"}), "summary".`,
}

func (c *geminiClient) AnalyzeProfile(ctx context.Context, in ProfileInput) (ProfileAnalysis, error) {
	raw, err := c.generate(ctx, TypeProfileAnalysis, in.Payload)
	if err != nil {
		return ProfileAnalysis{}, err
	}
	return decodeProfile(raw)
}

func (c *geminiClient) AnalyzeJob(ctx context.Context, in JobInput) (JobAnalysis, error) {
	raw, err := c.generate(ctx, TypeJobAnalysis, in)
	if err != nil {
		return JobAnalysis{}, err
	}
	return decodeJob(raw)
}

func (c *geminiClient) MatchJobToProfile(ctx context.Context, in MatchInput) (MatchResult, error) {
	raw, err := c.generate(ctx, TypeJobMatching, in)
	if err != nil {
		return MatchResult{}, err
	}
	return decodeMatch(raw)
}

func (c *geminiClient) generate(ctx context.Context, analysisType string, data any) ([]byte, error) {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", analysisType, err)
	}
	prompt := buildPrompt(analysisType, string(payload))

	c.logger.Debug("gemini request",
		zap.String("analysis_type", analysisType),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, c.maxLogLen)),
	)

	out, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		c.logger.Warn("gemini request failed", zap.String("analysis_type", analysisType), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}

	c.logger.Debug("gemini response",
		zap.String("analysis_type", analysisType),
		zap.String("response_preview", logger.TruncateForLog(out, c.maxLogLen)),
	)
	return []byte(extractJSON(out)), nil
}

func buildPrompt(analysisType, payload string) string {
	return instructions[analysisType] + "\nRespond with JSON only.\n\nInput:\n" + payload
}

// extractJSON strips markdown code fences some models wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

var _ Client = (*geminiClient)(nil)
