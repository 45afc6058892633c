package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/matching"
	"github.com/jonathan/candidate-matcher/internal/types"
)

const maxBodyBytes = 1 << 16

// MatchRunsResponse is the body of GET /jobs/{id}/match-runs
type MatchRunsResponse struct {
	JobID string                 `json:"job_id"`
	Runs  []types.MatchRunRecord `json:"runs"`
	Count int                    `json:"count"`
}

// CandidateMatchesResponse is the body of GET /candidates/{id}/matches
type CandidateMatchesResponse struct {
	CandidateID string                 `json:"candidate_id"`
	Matches     []types.CandidateMatch `json:"matches"`
	Count       int                    `json:"count"`
}

// handleMatch runs a match for the job named in the body
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMatchRequest(w, r)
	if !ok {
		return
	}
	s.runMatch(w, r, req.JobID)
}

// handleJobMatch runs a match for the job in the path
func (s *Server) handleJobMatch(w http.ResponseWriter, r *http.Request) {
	s.runMatch(w, r, r.PathValue("id"))
}

func (s *Server) runMatch(w http.ResponseWriter, r *http.Request, jobID string) {
	response, err := s.matcher.Match(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// handleMatchStream runs a match and streams its progress via SSE
func (s *Server) handleMatchStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMatchRequest(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.writeError(w, r, apperrors.Internal(err.Error(), err))
		return
	}

	log := s.requestLogger(r)
	response, err := s.matcher.MatchWithProgress(r.Context(), req.JobID, func(event matching.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			log.Warn("failed to write SSE event", zap.Error(err))
		}
	})
	if err != nil {
		if apperrors.HTTPStatus(err) >= http.StatusInternalServerError {
			log.Error("streamed match run failed", zap.Error(err))
		}
		sse.WriteError(err)
		return
	}

	if err := sse.WriteEvent("result", response); err != nil {
		log.Warn("failed to write SSE result", zap.Error(err))
		return
	}
	sse.WriteComplete(response.RunID, "completed")
}

// decodeMatchRequest reads and validates a MatchRequest body, writing a 400 on failure.
func (s *Server) decodeMatchRequest(w http.ResponseWriter, r *http.Request) (types.MatchRequest, bool) {
	var req types.MatchRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			s.badRequest(w, "request body is required")
		} else {
			s.badRequest(w, "invalid request body: "+err.Error())
		}
		return req, false
	}
	if err := req.Validate(); err != nil {
		s.badRequest(w, "job_id is required and must be at most 128 characters")
		return req, false
	}
	return req, true
}

// handleGetMatchRun returns a persisted run
func (s *Server) handleGetMatchRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w, r) {
		return
	}
	run, err := s.runs.GetMatchRun(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// handleListJobRuns returns a job's run history
func (s *Server) handleListJobRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w, r) {
		return
	}
	limit, ok := s.parseLimit(w, r)
	if !ok {
		return
	}

	jobID := r.PathValue("id")
	runs, err := s.runs.ListMatchRunsByJob(r.Context(), jobID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, MatchRunsResponse{JobID: jobID, Runs: runs, Count: len(runs)})
}

// handleCandidateMatches returns the runs a candidate was ranked in
func (s *Server) handleCandidateMatches(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w, r) {
		return
	}
	limit, ok := s.parseLimit(w, r)
	if !ok {
		return
	}

	candidateID := r.PathValue("id")
	matches, err := s.runs.ListMatchesForCandidate(r.Context(), candidateID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, CandidateMatchesResponse{
		CandidateID: candidateID,
		Matches:     matches,
		Count:       len(matches),
	})
}

func (s *Server) requireRuns(w http.ResponseWriter, r *http.Request) bool {
	if s.runs != nil {
		return true
	}
	s.writeError(w, r, apperrors.StoreUnavailable("match history is not configured", nil))
	return false
}

// parseLimit reads the optional ?limit= query parameter; 0 means the store default.
func (s *Server) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		s.badRequest(w, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.requestLogger(r).Warn("health check failed", zap.Error(err))
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unavailable",
				"database": "unreachable",
			})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
