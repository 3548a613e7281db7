package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/interview-agent/internal/types"
)

// AppendQuestions adds questions after the interview's current highest order
// number. The interview row is locked for the duration so concurrent appends
// cannot produce duplicate order numbers.
func (db *DB) AppendQuestions(ctx context.Context, interviewID uuid.UUID, items []types.QuestionItem) ([]Question, error) {
	var created []Question
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM interviews WHERE id = $1 FOR UPDATE`, interviewID).Scan(&locked)
		if err != nil {
			if isNoRows(err) {
				return &types.NotFoundError{Resource: "interview", ID: interviewID.String()}
			}
			return fmt.Errorf("failed to lock interview: %w", err)
		}

		var maxOrder int
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(order_number), 0) FROM interview_questions WHERE interview_id = $1`, interviewID,
		).Scan(&maxOrder); err != nil {
			return fmt.Errorf("failed to read question order: %w", err)
		}

		qs, err := insertQuestions(ctx, tx, interviewID, maxOrder, items)
		if err != nil {
			return err
		}
		created = qs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// insertQuestions stores items with order numbers following afterOrder.
func insertQuestions(ctx context.Context, tx pgx.Tx, interviewID uuid.UUID, afterOrder int, items []types.QuestionItem) ([]Question, error) {
	created := make([]Question, 0, len(items))
	for i, item := range items {
		q := Question{
			InterviewID: interviewID,
			Question:    item.Question,
			Type:        types.NormalizeQuestionType(item.Type),
			OrderNumber: afterOrder + i + 1,
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO interview_questions (interview_id, question, type, order_number)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			q.InterviewID, q.Question, q.Type, q.OrderNumber,
		).Scan(&q.ID, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to insert question %d: %w", q.OrderNumber, err)
		}
		created = append(created, q)
	}
	return created, nil
}

// ListQuestions returns an interview's questions by ascending order number.
func (db *DB) ListQuestions(ctx context.Context, interviewID uuid.UUID) ([]Question, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, interview_id, question, type, order_number, created_at
		 FROM interview_questions WHERE interview_id = $1
		 ORDER BY order_number, created_at, id`, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.InterviewID, &q.Question, &q.Type, &q.OrderNumber, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuestion retrieves one question of an interview. Returns nil, nil when absent.
func (db *DB) GetQuestion(ctx context.Context, interviewID, questionID uuid.UUID) (*Question, error) {
	var q Question
	err := db.pool.QueryRow(ctx,
		`SELECT id, interview_id, question, type, order_number, created_at
		 FROM interview_questions WHERE id = $1 AND interview_id = $2`, questionID, interviewID,
	).Scan(&q.ID, &q.InterviewID, &q.Question, &q.Type, &q.OrderNumber, &q.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}
