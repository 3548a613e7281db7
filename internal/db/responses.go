package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/interview-agent/internal/types"
)

const responseColumns = `id, interview_id, question_id, video_url, transcript, was_edited, score,
	analysis, feedback, duration, created_at, updated_at`

func scanResponse(row pgx.Row) (*VideoResponse, error) {
	var r VideoResponse
	err := row.Scan(&r.ID, &r.InterviewID, &r.QuestionID, &r.VideoURL, &r.Transcript, &r.WasEdited,
		&r.Score, &r.Analysis, &r.Feedback, &r.Duration, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertResponse stores the answer for a question. A second submission for
// the same question overwrites the first and clears any earlier evaluation.
func (db *DB) UpsertResponse(ctx context.Context, in ResponseInput) (*VideoResponse, error) {
	r, err := scanResponse(db.pool.QueryRow(ctx,
		`INSERT INTO video_responses (interview_id, question_id, video_url, transcript, duration)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (question_id) DO UPDATE SET
		     video_url = EXCLUDED.video_url,
		     transcript = EXCLUDED.transcript,
		     duration = EXCLUDED.duration,
		     was_edited = FALSE,
		     score = NULL,
		     analysis = NULL,
		     feedback = '',
		     updated_at = NOW()
		 RETURNING `+responseColumns,
		in.InterviewID, in.QuestionID, in.VideoURL, in.Transcript, in.Duration))
	if err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}
	return r, nil
}

// GetResponse returns the response for a question. Returns nil, nil when absent.
func (db *DB) GetResponse(ctx context.Context, questionID uuid.UUID) (*VideoResponse, error) {
	r, err := scanResponse(db.pool.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM video_responses WHERE question_id = $1`, questionID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return r, nil
}

// ListResponses returns every response of an interview in question order.
func (db *DB) ListResponses(ctx context.Context, interviewID uuid.UUID) ([]VideoResponse, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT r.id, r.interview_id, r.question_id, r.video_url, r.transcript, r.was_edited, r.score,
		        r.analysis, r.feedback, r.duration, r.created_at, r.updated_at
		 FROM video_responses r
		 JOIN interview_questions q ON q.id = r.question_id
		 WHERE r.interview_id = $1
		 ORDER BY q.order_number`, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	responses := []VideoResponse{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, *r)
	}
	return responses, rows.Err()
}

// UpdateTranscript replaces the transcript of a response and flags it as edited.
// Returns nil, nil when the question has no response.
func (db *DB) UpdateTranscript(ctx context.Context, questionID uuid.UUID, transcript string) (*VideoResponse, error) {
	r, err := scanResponse(db.pool.QueryRow(ctx,
		`UPDATE video_responses SET transcript = $1, was_edited = TRUE, updated_at = NOW()
		 WHERE question_id = $2
		 RETURNING `+responseColumns, transcript, questionID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update transcript: %w", err)
	}
	return r, nil
}

// SaveResponseEvaluation stores the score and analysis for a response.
func (db *DB) SaveResponseEvaluation(ctx context.Context, questionID uuid.UUID, analysis *types.VideoAnalysis) (*VideoResponse, error) {
	r, err := scanResponse(db.pool.QueryRow(ctx,
		`UPDATE video_responses SET score = $1, analysis = $2, feedback = $3, updated_at = NOW()
		 WHERE question_id = $4
		 RETURNING `+responseColumns,
		analysis.Score, analysis, analysis.FormattedFeedback, questionID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to save response evaluation: %w", err)
	}
	return r, nil
}

// CountResponses returns how many questions of an interview have been answered.
func (db *DB) CountResponses(ctx context.Context, interviewID uuid.UUID) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM video_responses WHERE interview_id = $1`, interviewID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return n, nil
}
