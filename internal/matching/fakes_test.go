package matching

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/inference"
	"github.com/jonathan/candidate-matcher/internal/types"
)

type memJobStore struct {
	jobs map[string]types.JobRecord
	err  error
}

func (s *memJobStore) GetJob(_ context.Context, id string) (*types.JobRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job "+id+" not found", nil)
	}
	return &job, nil
}

// pagedCandidateStore serves candidates in pages whose token is the next offset.
type pagedCandidateStore struct {
	candidates []types.CandidateRecord
	failOnPage int // 1-based page that fails, 0 for never
	calls      int
	queries    []types.CandidateQuery
}

func (s *pagedCandidateStore) ListCandidates(_ context.Context, q types.CandidateQuery) (*types.CandidatePage, error) {
	s.calls++
	s.queries = append(s.queries, q)
	if s.failOnPage == s.calls {
		return nil, errors.New("connection reset by peer")
	}

	offset := 0
	if q.PageToken != "" {
		var err error
		if offset, err = strconv.Atoi(q.PageToken); err != nil {
			return nil, err
		}
	}

	end := min(offset+q.PageSize, len(s.candidates))
	page := &types.CandidatePage{Candidates: s.candidates[offset:end]}
	if end < len(s.candidates) {
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

type memMatchStore struct {
	mu   sync.Mutex
	runs []*types.MatchRunRecord
	err  error
}

func (s *memMatchStore) SaveMatchRun(_ context.Context, run *types.MatchRunRecord) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

type recordingEvents struct {
	published []*types.MatchRunRecord
	err       error
}

func (e *recordingEvents) PublishMatchRun(_ context.Context, run *types.MatchRunRecord) error {
	e.published = append(e.published, run)
	return e.err
}

// scriptedPredictor scores by years of experience and fails for the listed experience values.
type scriptedPredictor struct {
	mu        sync.Mutex
	available bool
	probeErr  error
	failYears map[float64]bool
	probes    int
	calls     int
}

func (p *scriptedPredictor) Available(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes++
	return p.available, p.probeErr
}

func (p *scriptedPredictor) Predict(_ context.Context, f inference.Features) (*inference.Prediction, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.failYears[f.CandidateExperience] {
		return nil, errors.New("model invocation timed out")
	}
	return &inference.Prediction{
		Score:      f.CandidateExperience / 10,
		Reasons:    []string{"Model judgement"},
		Confidence: 0.9,
	}, nil
}

func floatPtr(f float64) *float64 { return &f }

func testJob() types.JobRecord {
	return types.JobRecord{
		ID:              "job-1",
		Title:           "Backend Engineer",
		RequiredSkills:  []types.Skill{{Name: "Go"}, {Name: "PostgreSQL"}},
		PreferredSkills: []types.Skill{{Name: "Docker"}},
		MinExperience:   floatPtr(3),
		MaxExperience:   floatPtr(8),
		EducationLevel:  "Bachelor's degree",
		Location:        "Tokyo",
		Type:            "full-time",
		Department:      "Engineering",
	}
}

func candidate(id, first string, years float64, skills ...string) types.CandidateRecord {
	rec := types.CandidateRecord{
		ID:                  id,
		FirstName:           first,
		LastName:            "Tester",
		YearsOfExperience:   years,
		Education:           "Master of Science",
		Location:            "Tokyo",
		PreferredJobType:    "full-time",
		PreferredDepartment: "Engineering",
		Status:              types.CandidateStatusActive,
	}
	for _, s := range skills {
		rec.Skills = append(rec.Skills, types.Skill{Name: s})
	}
	return rec
}

// testCandidates returns a pool where c1 and c3 tie at 1.0, c5 scores about 0.673,
// c2 falls under the threshold and c4 is inactive.
func testCandidates() []types.CandidateRecord {
	weak := candidate("c2", "Weak", 0, "Excel")
	weak.Education = ""
	weak.Location = "Osaka"
	weak.PreferredJobType = "part-time"
	weak.PreferredDepartment = "Sales"

	inactive := candidate("c4", "Inactive", 5, "Go", "PostgreSQL", "Docker")
	inactive.Status = "inactive"

	medium := candidate("c5", "Medium", 4, "Go")
	medium.Education = "Bachelor of Arts"
	medium.Location = "Osaka"

	return []types.CandidateRecord{
		candidate("c1", "Perfect", 5, "Go", "PostgreSQL", "Docker"),
		weak,
		candidate("c3", "Twin", 5, "GO", " postgresql ", "docker"),
		inactive,
		medium,
	}
}
