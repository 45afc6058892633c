package inference

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEndpoint(t *testing.T, status string, invocation http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	})
	if invocation != nil {
		mux.HandleFunc("POST /invocations", invocation)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPPredictor_Available(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"in service", "InService", true},
		{"creating", "Creating", false},
		{"failed", "Failed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newEndpoint(t, tt.status, nil)
			p := NewHTTPPredictor(srv.URL, time.Second)

			ok, err := p.Available(t.Context())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestHTTPPredictor_Available_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ok, err := NewHTTPPredictor(srv.URL, time.Second).Available(t.Context())
	assert.Error(t, err)
	assert.False(t, ok)

	ok, err = NewHTTPPredictor("", time.Second).Available(t.Context())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPPredictor_Predict(t *testing.T) {
	var received invocationRequest
	srv := newEndpoint(t, StatusInService, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"predictions":[{"score":0.91,"reasons":["Strong skill overlap"]}]}`))
	})

	features := Features{CandidateExperience: 5, RequiredSkillsCount: 2, RequiredSkillsMatch: 2, JobMaxExperience: 99}
	prediction, err := NewHTTPPredictor(srv.URL+"/", time.Second).Predict(t.Context(), features)

	require.NoError(t, err)
	assert.InDelta(t, 0.91, prediction.Score, 1e-9)
	assert.Equal(t, []string{"Strong skill overlap"}, prediction.Reasons)
	assert.InDelta(t, DefaultConfidence, prediction.Confidence, 1e-9)
	require.Len(t, received.Instances, 1)
	assert.Equal(t, features, received.Instances[0])
}

func TestHTTPPredictor_Predict_ClampsScore(t *testing.T) {
	srv := newEndpoint(t, StatusInService, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[{"score":1.7,"confidence":0.5}]}`))
	})

	prediction, err := NewHTTPPredictor(srv.URL, time.Second).Predict(t.Context(), Features{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, prediction.Score)
	assert.Equal(t, []string{}, prediction.Reasons)
}

func TestHTTPPredictor_Predict_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"empty predictions", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"predictions":[]}`))
		}},
		{"wrong shape", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"predictions":[{"score":"high"}]}`))
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newEndpoint(t, StatusInService, tt.handler)

			prediction, err := NewHTTPPredictor(srv.URL, time.Second).Predict(t.Context(), Features{})
			assert.Error(t, err)
			assert.Nil(t, prediction)
		})
	}
}
