package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/interview-agent/internal/types"
)

const interviewColumns = `id, company_id, job_id, candidate_id, public_link_id, access_code, status,
	scheduled_at, started_at, completed_at, overall_score, feedback, created_at, updated_at`

func scanInterview(row pgx.Row) (*Interview, error) {
	var i Interview
	err := row.Scan(&i.ID, &i.CompanyID, &i.JobID, &i.CandidateID, &i.PublicLinkID, &i.AccessCode,
		&i.Status, &i.ScheduledAt, &i.StartedAt, &i.CompletedAt, &i.OverallScore, &i.Feedback,
		&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const insertInterviewSQL = `INSERT INTO interviews (company_id, job_id, candidate_id, public_link_id, access_code, status, scheduled_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)
	 RETURNING id, created_at, updated_at`

// CreateInterview inserts a pending interview. A duplicate access code
// surfaces as an error for which IsUniqueViolation is true.
func (db *DB) CreateInterview(ctx context.Context, i *Interview) error {
	if i.Status == "" {
		i.Status = InterviewStatusPending
	}
	err := db.pool.QueryRow(ctx, insertInterviewSQL,
		i.CompanyID, i.JobID, i.CandidateID, i.PublicLinkID, i.AccessCode, i.Status, i.ScheduledAt,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// CreateInterviewWithQuestions inserts a pending interview together with its
// questions, numbered from 1, in a single transaction. Nothing is stored when
// any insert fails.
func (db *DB) CreateInterviewWithQuestions(ctx context.Context, i *Interview, items []types.QuestionItem) ([]Question, error) {
	if i.Status == "" {
		i.Status = InterviewStatusPending
	}
	var created []Question
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertInterviewSQL,
			i.CompanyID, i.JobID, i.CandidateID, i.PublicLinkID, i.AccessCode, i.Status, i.ScheduledAt,
		).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create interview: %w", err)
		}
		var err error
		created, err = insertQuestions(ctx, tx, i.ID, 0, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetInterview retrieves an interview owned by companyID. Returns nil, nil when absent.
func (db *DB) GetInterview(ctx context.Context, companyID, id uuid.UUID) (*Interview, error) {
	i, err := scanInterview(db.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return i, nil
}

// GetInterviewByAccessCode retrieves an interview by its access code. Returns nil, nil when absent.
func (db *DB) GetInterviewByAccessCode(ctx context.Context, code string) (*Interview, error) {
	i, err := scanInterview(db.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE access_code = $1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview by access code: %w", err)
	}
	return i, nil
}

// InterviewFilter narrows ListInterviews. Zero fields match everything.
type InterviewFilter struct {
	JobID       *uuid.UUID
	CandidateID *uuid.UUID
	Status      string
}

// ListInterviews returns a company's interviews, newest first.
func (db *DB) ListInterviews(ctx context.Context, companyID uuid.UUID, f InterviewFilter) ([]Interview, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE company_id = $1
		   AND ($2::uuid IS NULL OR job_id = $2)
		   AND ($3::uuid IS NULL OR candidate_id = $3)
		   AND ($4 = '' OR status = $4)
		 ORDER BY created_at DESC`,
		companyID, f.JobID, f.CandidateID, f.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	interviews := []Interview{}
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, *i)
	}
	return interviews, rows.Err()
}

// DeleteInterview removes an interview with its questions and responses.
// Returns false when the interview does not exist for companyID.
func (db *DB) DeleteInterview(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM interviews WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete interview: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkInterviewStarted moves a pending interview to in_progress. It is a no-op
// for any other status.
func (db *DB) MarkInterviewStarted(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE interviews SET status = 'in_progress', started_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to mark interview started: %w", err)
	}
	return nil
}

// CompleteInterview marks an interview completed with its final score and
// feedback. Only pending or in-progress interviews are updated; the returned
// bool is false when nothing changed.
func (db *DB) CompleteInterview(ctx context.Context, id uuid.UUID, score *float64, feedback string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE interviews
		 SET status = 'completed', completed_at = NOW(), overall_score = $1, feedback = $2, updated_at = NOW()
		 WHERE id = $3 AND status IN ('pending', 'in_progress')`,
		score, feedback, id)
	if err != nil {
		return false, fmt.Errorf("failed to complete interview: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CancelInterview cancels a pending interview that has no responses. The
// returned bool is false when the guard did not hold.
func (db *DB) CancelInterview(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE interviews SET status = 'cancelled', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		   AND NOT EXISTS (SELECT 1 FROM video_responses WHERE interview_id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel interview: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
