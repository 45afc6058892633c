package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/matching"
	"github.com/jonathan/candidate-matcher/internal/server/ratelimit"
	"github.com/jonathan/candidate-matcher/internal/types"
)

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeMatcher struct {
	err    error
	jobIDs []string
}

func (m *fakeMatcher) Match(ctx context.Context, jobID string) (*types.MatchResponse, error) {
	return m.MatchWithProgress(ctx, jobID, nil)
}

func (m *fakeMatcher) MatchWithProgress(_ context.Context, jobID string, progress matching.ProgressCallback) (*types.MatchResponse, error) {
	m.jobIDs = append(m.jobIDs, jobID)
	if progress != nil {
		progress(matching.ProgressEvent{Step: "corpus", Message: "Candidate pool loaded", JobID: jobID, Count: 2})
	}
	if m.err != nil {
		return nil, m.err
	}
	return &types.MatchResponse{
		RunID: jobID + "-run",
		JobID: jobID,
		MatchedCandidates: []types.MatchResult{
			{CandidateID: "c1", CandidateName: "Ada Lovelace", MatchScore: 0.9, MatchRank: 1, Source: types.OutcomeRule},
		},
		MatchCount: 1,
		Timestamp:  testTime,
		Persisted:  true,
	}, nil
}

type fakeRuns struct {
	runs       map[string]types.MatchRunRecord
	err        error
	lastLimit  int
	candidates []types.CandidateMatch
}

func (f *fakeRuns) GetMatchRun(_ context.Context, id string) (*types.MatchRunRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	run, ok := f.runs[id]
	if !ok {
		return nil, apperrors.NotFound("match run "+id+" not found", nil)
	}
	return &run, nil
}

func (f *fakeRuns) ListMatchRunsByJob(_ context.Context, jobID string, limit int) ([]types.MatchRunRecord, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	var out []types.MatchRunRecord
	for _, run := range f.runs {
		if run.JobID == jobID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (f *fakeRuns) ListMatchesForCandidate(_ context.Context, _ string, limit int) ([]types.CandidateMatch, error) {
	f.lastLimit = limit
	return f.candidates, f.err
}

type fakeHealth struct{ err error }

func (h fakeHealth) Ping(context.Context) error { return h.err }

func newTestServer(m Matcher, runs RunStore, health HealthChecker) *Server {
	return New(Config{Addr: ":0", RateLimit: ratelimit.NewConfig(0, 0)}, Deps{
		Matcher: m,
		Runs:    runs,
		Health:  health,
		Logger:  zap.NewNop(),
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeMatcher{}, nil, fakeHealth{})

	w := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	s := newTestServer(&fakeMatcher{}, nil, fakeHealth{err: errors.New("dial tcp: refused")})

	w := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestMatchEndpoint_Success(t *testing.T) {
	m := &fakeMatcher{}
	s := newTestServer(m, nil, nil)

	w := do(t, s, http.MethodPost, "/matches", `{"job_id": " job-1 "}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, 1, resp.MatchCount)
	require.Len(t, resp.MatchedCandidates, 1)
	assert.Equal(t, "c1", resp.MatchedCandidates[0].CandidateID)
	assert.Equal(t, []string{"job-1"}, m.jobIDs)
}

func TestMatchEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", `{"job_id":`},
		{"missing job id", `{}`},
		{"blank job id", `{"job_id": "   "}`},
		{"oversized job id", `{"job_id": "` + strings.Repeat("x", 129) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMatcher{}
			s := newTestServer(m, nil, nil)

			w := do(t, s, http.MethodPost, "/matches", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, string(apperrors.ErrTypeValidation), decodeError(t, w).Type)
			assert.Empty(t, m.jobIDs)
		})
	}
}

func TestMatchEndpoint_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    apperrors.ErrorType
	}{
		{"not found", apperrors.NotFound("job job-1 not found", nil), http.StatusNotFound, apperrors.ErrTypeNotFound},
		{"store unavailable", apperrors.StoreUnavailable("failed to load job", errors.New("timeout")), http.StatusServiceUnavailable, apperrors.ErrTypeStoreUnavailable},
		{"persistence", apperrors.Persistence("failed to save match run", errors.New("disk full")), http.StatusInternalServerError, apperrors.ErrTypePersistence},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeMatcher{err: tt.err}, nil, nil)

			w := do(t, s, http.MethodPost, "/jobs/job-1/matches", "")

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, string(tt.typ), resp.Type)
			assert.NotContains(t, resp.Error, "disk full")
			assert.NotContains(t, resp.Error, "timeout")
		})
	}
}

func TestJobMatchEndpoint_UsesPathID(t *testing.T) {
	m := &fakeMatcher{}
	s := newTestServer(m, nil, nil)

	w := do(t, s, http.MethodPost, "/jobs/job-42/matches", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"job-42"}, m.jobIDs)
}

func TestMatchStreamEndpoint(t *testing.T) {
	s := newTestServer(&fakeMatcher{}, nil, nil)

	w := do(t, s, http.MethodPost, "/matches/stream", `{"job_id":"job-1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	assert.Equal(t, []string{"step", "result", "complete"}, events)
	assert.Contains(t, w.Body.String(), `"run_id":"job-1-run"`)
}

func TestMatchStreamEndpoint_Error(t *testing.T) {
	s := newTestServer(&fakeMatcher{err: apperrors.NotFound("job job-1 not found", nil)}, nil, nil)

	w := do(t, s, http.MethodPost, "/matches/stream", `{"job_id":"job-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: error")
	assert.Contains(t, w.Body.String(), `"type":"NOT_FOUND"`)
	assert.NotContains(t, w.Body.String(), "event: complete")
}

func TestGetMatchRun(t *testing.T) {
	runs := &fakeRuns{runs: map[string]types.MatchRunRecord{
		"run-1": {ID: "run-1", JobID: "job-1", Timestamp: testTime, Strategy: types.OutcomeML, MatchCount: 0, MatchedCandidates: []types.MatchResult{}},
	}}
	s := newTestServer(&fakeMatcher{}, runs, nil)

	w := do(t, s, http.MethodGet, "/match-runs/run-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var run types.MatchRunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, types.OutcomeML, run.Strategy)

	w = do(t, s, http.MethodGet, "/match-runs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListJobRuns(t *testing.T) {
	runs := &fakeRuns{runs: map[string]types.MatchRunRecord{
		"run-1": {ID: "run-1", JobID: "job-1", Timestamp: testTime},
		"run-2": {ID: "run-2", JobID: "job-2", Timestamp: testTime},
	}}
	s := newTestServer(&fakeMatcher{}, runs, nil)

	w := do(t, s, http.MethodGet, "/jobs/job-1/match-runs?limit=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp MatchRunsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "run-1", resp.Runs[0].ID)
	assert.Equal(t, 5, runs.lastLimit)
}

func TestListJobRuns_InvalidLimit(t *testing.T) {
	s := newTestServer(&fakeMatcher{}, &fakeRuns{}, nil)

	for _, limit := range []string{"abc", "-1"} {
		w := do(t, s, http.MethodGet, "/jobs/job-1/match-runs?limit="+limit, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}

func TestCandidateMatches(t *testing.T) {
	runs := &fakeRuns{candidates: []types.CandidateMatch{
		{RunID: "run-1", JobID: "job-1", CandidateID: "c1", MatchScore: 0.8, MatchRank: 2, Timestamp: testTime},
	}}
	s := newTestServer(&fakeMatcher{}, runs, nil)

	w := do(t, s, http.MethodGet, "/candidates/c1/matches", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp CandidateMatchesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "c1", resp.CandidateID)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 2, resp.Matches[0].MatchRank)
	assert.Equal(t, 0, runs.lastLimit)
}

func TestHistoryEndpoints_WithoutStore(t *testing.T) {
	s := newTestServer(&fakeMatcher{}, nil, nil)

	for _, path := range []string{"/match-runs/run-1", "/jobs/job-1/match-runs", "/candidates/c1/matches"} {
		w := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(&fakeMatcher{}, nil, nil)

	w := do(t, s, http.MethodOptions, "/matches", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	s := New(Config{AllowedOrigins: []string{"https://recruit.example.com"}, RateLimit: ratelimit.NewConfig(0, 0)},
		Deps{Matcher: &fakeMatcher{}, Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://recruit.example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "https://recruit.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	s := newTestServer(&fakeMatcher{}, nil, nil)

	w := do(t, s, http.MethodGet, "/health", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	cfg := &ratelimit.Config{
		Enabled:         true,
		DefaultRate:     1,
		DefaultBurst:    100,
		EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/matches", Method: "POST", Rate: 0.001, Burst: 1}},
	}
	s := New(Config{RateLimit: cfg}, Deps{Matcher: &fakeMatcher{}, Logger: zap.NewNop()})

	w := do(t, s, http.MethodPost, "/matches", `{"job_id":"job-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = do(t, s, http.MethodPost, "/matches", `{"job_id":"job-1"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeMatcher{}, nil, nil)
	do(t, s, http.MethodGet, "/health", "")

	w := do(t, s, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "matcher_api_requests_total")
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", RateLimit: ratelimit.NewConfig(0, 0), ShutdownTimeout: time.Second},
		Deps{Matcher: &fakeMatcher{}, Logger: zap.NewNop()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
