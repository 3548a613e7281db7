package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/interview-agent/internal/types"
)

const candidateColumns = `id, company_id, job_id, first_name, last_name, email, phone, location,
	linkedin_url, portfolio_url, resume_url, resume_text, work_experience, education, skills,
	resume_match_score, resume_match_feedback, status, created_at, updated_at`

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	err := row.Scan(&c.ID, &c.CompanyID, &c.JobID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Location, &c.LinkedInURL, &c.PortfolioURL, &c.ResumeURL, &c.ResumeText,
		&c.WorkExperience, &c.Education, &c.Skills,
		&c.ResumeMatchScore, &c.ResumeMatchFeedback, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCandidate inserts a candidate and fills in its generated fields.
func (db *DB) CreateCandidate(ctx context.Context, c *Candidate) error {
	c.normalize()
	err := db.pool.QueryRow(ctx,
		`INSERT INTO candidates (company_id, job_id, first_name, last_name, email, phone, location,
		                         linkedin_url, portfolio_url, resume_url, resume_text,
		                         work_experience, education, skills, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at, updated_at`,
		c.CompanyID, c.JobID, c.FirstName, c.LastName, c.Email, c.Phone, c.Location,
		c.LinkedInURL, c.PortfolioURL, c.ResumeURL, c.ResumeText,
		c.WorkExperience, c.Education, c.Skills, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate owned by companyID. Returns nil, nil when absent.
func (db *DB) GetCandidate(ctx context.Context, companyID, id uuid.UUID) (*Candidate, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns a company's candidates, optionally only those for jobID.
func (db *DB) ListCandidates(ctx context.Context, companyID uuid.UUID, jobID *uuid.UUID) ([]Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates
		 WHERE company_id = $1 AND ($2::uuid IS NULL OR job_id = $2)
		 ORDER BY created_at DESC`, companyID, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

// UpdateCandidateStatus sets a candidate's pipeline status. Returns false when
// the candidate does not exist for companyID.
func (db *DB) UpdateCandidateStatus(ctx context.Context, companyID, id uuid.UUID, status string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE candidates SET status = $1, updated_at = NOW() WHERE id = $2 AND company_id = $3`,
		status, id, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to update candidate status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateCandidateResume replaces the parsed resume fields of a candidate.
func (db *DB) UpdateCandidateResume(ctx context.Context, id uuid.UUID, resumeURL string, profile *types.ResumeProfile) error {
	profile.Normalize()
	_, err := db.pool.Exec(ctx,
		`UPDATE candidates SET resume_url = $1, resume_text = $2, work_experience = $3,
		        education = $4, skills = $5, updated_at = NOW()
		 WHERE id = $6`,
		resumeURL, profile.ResumeText, profile.WorkExperience, profile.Education, profile.Skills, id)
	if err != nil {
		return fmt.Errorf("failed to update candidate resume: %w", err)
	}
	return nil
}

// UpdateCandidateMatch stores the resume-to-job match result.
func (db *DB) UpdateCandidateMatch(ctx context.Context, id uuid.UUID, score int, feedback string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE candidates SET resume_match_score = $1, resume_match_feedback = $2, updated_at = NOW()
		 WHERE id = $3`, score, feedback, id)
	if err != nil {
		return fmt.Errorf("failed to update candidate match: %w", err)
	}
	return nil
}

// DeleteCandidate removes a candidate and, by cascade, their interviews.
// Returns false when the candidate does not exist for companyID.
func (db *DB) DeleteCandidate(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM candidates WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
