package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// DefaultPageSize is used when a candidate query gives no page size
const DefaultPageSize = 100

// ListCandidates returns one page of candidates ordered by ID. The page token is the
// last ID of the previous page, so pages stay stable while candidates are added.
func (db *DB) ListCandidates(ctx context.Context, q types.CandidateQuery) (*types.CandidatePage, error) {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, first_name, last_name, skills, years_of_experience, education,
		        location, preferred_job_type, preferred_department, status
		 FROM candidates
		 WHERE ($1 = '' OR status = $1) AND id > $2
		 ORDER BY id
		 LIMIT $3`,
		q.Status, q.PageToken, size+1,
	)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to list candidates", err)
	}
	defer rows.Close()

	candidates := make([]types.CandidateRecord, 0, size)
	for rows.Next() {
		var c types.CandidateRecord
		var skillsJSON []byte
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &skillsJSON, &c.YearsOfExperience,
			&c.Education, &c.Location, &c.PreferredJobType, &c.PreferredDepartment, &c.Status); err != nil {
			return nil, apperrors.StoreUnavailable("failed to scan candidate", err)
		}
		if c.Skills, err = decodeSkills(skillsJSON); err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.ID, err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("failed to iterate candidates", err)
	}

	return paginate(candidates, size), nil
}

// paginate trims a size+1 result set to one page and derives the next token
func paginate(candidates []types.CandidateRecord, size int) *types.CandidatePage {
	page := &types.CandidatePage{Candidates: candidates}
	if len(candidates) > size {
		page.Candidates = candidates[:size]
		page.NextToken = candidates[size-1].ID
	}
	return page
}

// UpsertCandidate creates or replaces a candidate, assigning a UUID when the ID is empty.
func (db *DB) UpsertCandidate(ctx context.Context, c *types.CandidateRecord) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = types.CandidateStatusActive
	}

	skillsJSON, err := encodeSkills(c.Skills)
	if err != nil {
		return "", fmt.Errorf("failed to marshal skills: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO candidates (id, first_name, last_name, skills, years_of_experience, education,
		                         location, preferred_job_type, preferred_department, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		     first_name = $2, last_name = $3, skills = $4, years_of_experience = $5,
		     education = $6, location = $7, preferred_job_type = $8,
		     preferred_department = $9, status = $10, updated_at = NOW()`,
		c.ID, c.FirstName, c.LastName, skillsJSON, c.YearsOfExperience, c.Education,
		c.Location, c.PreferredJobType, c.PreferredDepartment, c.Status,
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert candidate: %w", err)
	}
	return c.ID, nil
}
