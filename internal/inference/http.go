package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/candidate-matcher/internal/schemas"
)

// StatusInService is the probe status that marks an endpoint as usable
const StatusInService = "InService"

const maxResponseBytes = 1 << 20

// HTTPPredictor calls a model serving endpoint exposing GET /status and POST /invocations
type HTTPPredictor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPredictor creates a predictor for the endpoint at baseURL
func NewHTTPPredictor(baseURL string, timeout time.Duration) *HTTPPredictor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPPredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

type invocationRequest struct {
	Instances []Features `json:"instances"`
}

type invocationResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Available probes GET {base}/status and reports whether the endpoint is InService.
func (p *HTTPPredictor) Available(ctx context.Context) (bool, error) {
	if p.baseURL == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/status", nil)
	if err != nil {
		return false, fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("status request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("status request returned HTTP %d", resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&status); err != nil {
		return false, fmt.Errorf("failed to decode status response: %w", err)
	}

	return status.Status == StatusInService, nil
}

// Predict posts {"instances":[features]} to {base}/invocations and returns the first prediction.
func (p *HTTPPredictor) Predict(ctx context.Context, features Features) (*Prediction, error) {
	body, err := json.Marshal(invocationRequest{Instances: []Features{features}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/invocations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build invocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invocation failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read invocation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invocation returned HTTP %d", resp.StatusCode)
	}

	if err := schemas.Validate(schemas.PredictionSchema, raw); err != nil {
		return nil, fmt.Errorf("invalid invocation response: %w", err)
	}

	var decoded invocationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode invocation response: %w", err)
	}

	prediction := decoded.Predictions[0]
	return sanitize(&prediction), nil
}
