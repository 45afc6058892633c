package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-matcher/internal/llm"
)

type fakeLLMClient struct {
	response string
	err      error
	pingErr  error
	prompt   string
}

func (f *fakeLLMClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeLLMClient) Ping(context.Context, llm.ModelTier) error {
	return f.pingErr
}

func (f *fakeLLMClient) Close() error {
	return nil
}

func TestLLMPredictor_Available(t *testing.T) {
	ok, err := NewLLMPredictor(&fakeLLMClient{}).Available(t.Context())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewLLMPredictor(&fakeLLMClient{pingErr: errors.New("permission denied")}).Available(t.Context())
	assert.Error(t, err)
	assert.False(t, ok)

	ok, err = NewLLMPredictor(nil).Available(t.Context())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLLMPredictor_Predict(t *testing.T) {
	client := &fakeLLMClient{
		response: "```json\n{\"score\": 0.76, \"reasons\": [\"Meets most requirements\"], \"confidence\": 0.6}\n```",
	}
	features := Features{
		CandidateExperience: 4,
		JobMinExperience:    2,
		JobMaxExperience:    6,
		RequiredSkillsCount: 3,
		RequiredSkillsMatch: 2,
		LocationMatch:       1,
	}

	prediction, err := NewLLMPredictor(client).Predict(t.Context(), features)

	require.NoError(t, err)
	assert.InDelta(t, 0.76, prediction.Score, 1e-9)
	assert.Equal(t, []string{"Meets most requirements"}, prediction.Reasons)
	assert.InDelta(t, 0.6, prediction.Confidence, 1e-9)

	assert.Contains(t, client.prompt, "Experience: 2-6 years")
	assert.Contains(t, client.prompt, "Matched required skills: 2 of 3")
	assert.Contains(t, client.prompt, "Location matches: yes")
	assert.NotContains(t, client.prompt, "{{.")
}

func TestLLMPredictor_Predict_UnboundedRange(t *testing.T) {
	client := &fakeLLMClient{response: `{"score": 0.5}`}

	_, err := NewLLMPredictor(client).Predict(t.Context(), Features{JobMinExperience: 3, JobMaxExperience: 99})
	require.NoError(t, err)
	assert.Contains(t, client.prompt, "Experience: 3+ years")
}

func TestLLMPredictor_Predict_Errors(t *testing.T) {
	_, err := NewLLMPredictor(&fakeLLMClient{err: errors.New("quota exceeded")}).Predict(t.Context(), Features{})
	assert.ErrorContains(t, err, "LLM generation failed")

	_, err = NewLLMPredictor(&fakeLLMClient{response: "I think they are a good fit"}).Predict(t.Context(), Features{})
	assert.ErrorContains(t, err, "failed to parse LLM response")
}
