// Package llm wraps the generative model used as an alternative match predictor.
package llm

// ModelTier selects a model by cost and capability
type ModelTier string

const (
	// TierLite is for high-volume judgements such as per-candidate scoring
	TierLite ModelTier = "lite"
	// TierStandard is for judgements that need more reasoning
	TierStandard ModelTier = "standard"
)

// Config holds the model configuration for the predictor
type Config struct {
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature: 0.1, // low temperature keeps repeated runs stable
	}
}

// GetModel returns the model name for a tier, falling back to the lite model
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierLite]
}
