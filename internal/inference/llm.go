package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jonathan/candidate-matcher/internal/llm"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/prompts"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// LLMPredictor asks a generative model to judge a candidate from the same features the
// HTTP endpoint receives.
type LLMPredictor struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMPredictor creates a predictor over client using the lite model tier
func NewLLMPredictor(client llm.Client) *LLMPredictor {
	return &LLMPredictor{client: client, tier: llm.TierLite}
}

// llmResponse represents the expected JSON response from the model
type llmResponse struct {
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
}

// Available pings the configured model.
func (p *LLMPredictor) Available(ctx context.Context) (bool, error) {
	if p.client == nil {
		return false, nil
	}
	if err := p.client.Ping(ctx, p.tier); err != nil {
		return false, err
	}
	return true, nil
}

// Predict asks the model for a {score, reasons, confidence} judgement.
func (p *LLMPredictor) Predict(ctx context.Context, features Features) (*Prediction, error) {
	jsonResp, err := p.client.GenerateJSON(ctx, p.buildPrompt(features), p.tier)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var response llmResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(jsonResp)), &response); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w (content: %s)", err, logger.TruncateForLog(jsonResp, 200))
	}

	return sanitize(&Prediction{
		Score:      response.Score,
		Reasons:    response.Reasons,
		Confidence: response.Confidence,
	}), nil
}

func (p *LLMPredictor) buildPrompt(f Features) string {
	experienceRange := formatFloat(f.JobMinExperience) + "+"
	if f.JobMaxExperience < types.UnboundedExperience {
		experienceRange = formatFloat(f.JobMinExperience) + "-" + formatFloat(f.JobMaxExperience)
	}

	template := prompts.MustGet("matching.json", "predict-match")
	return prompts.Format(template, map[string]string{
		"ExperienceRange":    experienceRange,
		"JobEducation":       strconv.Itoa(f.JobEducationLevel),
		"RequiredMatched":    strconv.Itoa(f.RequiredSkillsMatch),
		"RequiredCount":      strconv.Itoa(f.RequiredSkillsCount),
		"PreferredMatched":   strconv.Itoa(f.PreferredSkillsMatch),
		"PreferredCount":     strconv.Itoa(f.PreferredSkillsCount),
		"Experience":         formatFloat(f.CandidateExperience),
		"CandidateEducation": strconv.Itoa(f.CandidateEducationLevel),
		"LocationMatch":      yesNo(f.LocationMatch),
		"JobTypeMatch":       yesNo(f.JobTypeMatch),
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(v int) string {
	if v == 1 {
		return "yes"
	}
	return "no"
}
