package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, company_id, title, description, department, location, employment_type,
	experience, requirements, benefits, salary_min, salary_max, show_salary, status, created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.Department, &j.Location,
		&j.EmploymentType, &j.Experience, &j.Requirements, &j.Benefits,
		&j.SalaryMin, &j.SalaryMax, &j.ShowSalary, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a job and fills in its generated fields.
func (db *DB) CreateJob(ctx context.Context, job *Job) error {
	if job.Status == "" {
		job.Status = JobStatusDraft
	}
	if job.EmploymentType == "" {
		job.EmploymentType = "full-time"
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (company_id, title, description, department, location, employment_type,
		                   experience, requirements, benefits, salary_min, salary_max, show_salary, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		job.CompanyID, job.Title, job.Description, job.Department, job.Location, job.EmploymentType,
		job.Experience, job.Requirements, job.Benefits, job.SalaryMin, job.SalaryMax, job.ShowSalary, job.Status,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job owned by companyID. Returns nil, nil when absent.
func (db *DB) GetJob(ctx context.Context, companyID, id uuid.UUID) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// GetJobByID retrieves a job regardless of owner, for access-code flows.
// Returns nil, nil when absent.
func (db *DB) GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// ListJobs returns a company's jobs, newest first.
func (db *DB) ListJobs(ctx context.Context, companyID uuid.UUID) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// DeleteJob removes a job and everything hanging off it in one transaction:
// responses, questions, interviews, public links, candidates, settings, then
// the job itself. Returns false when the job does not exist for companyID.
func (db *DB) DeleteJob(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	deleted := false
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT id FROM jobs WHERE id = $1 AND company_id = $2 FOR UPDATE`, id, companyID,
		).Scan(&locked)
		if isNoRows(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to lock job: %w", err)
		}

		steps := []struct {
			name string
			sql  string
		}{
			{"video responses", `DELETE FROM video_responses WHERE interview_id IN (SELECT id FROM interviews WHERE job_id = $1)`},
			{"questions", `DELETE FROM interview_questions WHERE interview_id IN (SELECT id FROM interviews WHERE job_id = $1)`},
			{"interviews", `DELETE FROM interviews WHERE job_id = $1`},
			{"public links", `DELETE FROM public_interview_links WHERE job_id = $1`},
			{"candidates", `DELETE FROM candidates WHERE job_id = $1`},
			{"settings", `DELETE FROM interview_settings WHERE job_id = $1`},
			{"job", `DELETE FROM jobs WHERE id = $1`},
		}
		for _, step := range steps {
			if _, err := tx.Exec(ctx, step.sql, id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.name, err)
			}
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// GetInterviewSettings returns the stored settings for a job. Returns nil, nil
// when the job has none.
func (db *DB) GetInterviewSettings(ctx context.Context, jobID uuid.UUID) (*InterviewSettings, error) {
	var s InterviewSettings
	err := db.pool.QueryRow(ctx,
		`SELECT job_id, include_technical, include_behavioral, include_problem_solving,
		        include_custom_questions, custom_questions, preparation_time, updated_at
		 FROM interview_settings WHERE job_id = $1`, jobID,
	).Scan(&s.JobID, &s.IncludeTechnical, &s.IncludeBehavioral, &s.IncludeProblemSolving,
		&s.IncludeCustomQuestions, &s.CustomQuestions, &s.PreparationTime, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview settings: %w", err)
	}
	return &s, nil
}

// UpsertInterviewSettings creates or replaces the settings for a job.
func (db *DB) UpsertInterviewSettings(ctx context.Context, s *InterviewSettings) error {
	if s.CustomQuestions == nil {
		s.CustomQuestions = StringArray{}
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO interview_settings (job_id, include_technical, include_behavioral, include_problem_solving,
		                                 include_custom_questions, custom_questions, preparation_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (job_id) DO UPDATE SET
		     include_technical = $2,
		     include_behavioral = $3,
		     include_problem_solving = $4,
		     include_custom_questions = $5,
		     custom_questions = $6,
		     preparation_time = $7,
		     updated_at = NOW()
		 RETURNING updated_at`,
		s.JobID, s.IncludeTechnical, s.IncludeBehavioral, s.IncludeProblemSolving,
		s.IncludeCustomQuestions, s.CustomQuestions, s.PreparationTime,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save interview settings: %w", err)
	}
	return nil
}
