package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// GetJob retrieves a job by ID. A missing job is an apperrors NOT_FOUND error.
func (db *DB) GetJob(ctx context.Context, id string) (*types.JobRecord, error) {
	var job types.JobRecord
	var requiredJSON, preferredJSON, valuesJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, required_skills, preferred_skills, min_experience, max_experience,
		        education_level, location, employment_type, department, company_values
		 FROM jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.Title, &requiredJSON, &preferredJSON, &job.MinExperience, &job.MaxExperience,
		&job.EducationLevel, &job.Location, &job.Type, &job.Department, &valuesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("job %s not found", id), nil)
		}
		return nil, apperrors.StoreUnavailable("failed to get job", err)
	}

	if job.RequiredSkills, err = decodeSkills(requiredJSON); err != nil {
		return nil, fmt.Errorf("job %s required skills: %w", id, err)
	}
	if job.PreferredSkills, err = decodeSkills(preferredJSON); err != nil {
		return nil, fmt.Errorf("job %s preferred skills: %w", id, err)
	}
	if job.CompanyValues, err = decodeValues(valuesJSON); err != nil {
		return nil, fmt.Errorf("job %s company values: %w", id, err)
	}

	return &job, nil
}

// UpsertJob creates or replaces a job, assigning a UUID when the ID is empty.
func (db *DB) UpsertJob(ctx context.Context, job *types.JobRecord) (string, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	requiredJSON, err := encodeSkills(job.RequiredSkills)
	if err != nil {
		return "", fmt.Errorf("failed to marshal required skills: %w", err)
	}
	preferredJSON, err := encodeSkills(job.PreferredSkills)
	if err != nil {
		return "", fmt.Errorf("failed to marshal preferred skills: %w", err)
	}
	values := job.CompanyValues
	if values == nil {
		values = []string{}
	}
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal company values: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, required_skills, preferred_skills, min_experience, max_experience,
		                   education_level, location, employment_type, department, company_values)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		     title = $2, required_skills = $3, preferred_skills = $4,
		     min_experience = $5, max_experience = $6, education_level = $7,
		     location = $8, employment_type = $9, department = $10, company_values = $11,
		     updated_at = NOW()`,
		job.ID, job.Title, requiredJSON, preferredJSON, job.MinExperience, job.MaxExperience,
		job.EducationLevel, job.Location, job.Type, job.Department, valuesJSON,
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert job: %w", err)
	}
	return job.ID, nil
}
