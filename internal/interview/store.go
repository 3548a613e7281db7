package interview

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/types"
)

// Store is the persistence the session manager needs. *db.DB satisfies it.
type Store interface {
	GetJob(ctx context.Context, companyID, id uuid.UUID) (*db.Job, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*db.Job, error)
	GetInterviewSettings(ctx context.Context, jobID uuid.UUID) (*db.InterviewSettings, error)

	GetCandidate(ctx context.Context, companyID, id uuid.UUID) (*db.Candidate, error)
	UpdateCandidateStatus(ctx context.Context, companyID, id uuid.UUID, status string) (bool, error)

	CreateInterview(ctx context.Context, iv *db.Interview) error
	CreateInterviewWithQuestions(ctx context.Context, iv *db.Interview, items []types.QuestionItem) ([]db.Question, error)
	GetInterview(ctx context.Context, companyID, id uuid.UUID) (*db.Interview, error)
	GetInterviewByAccessCode(ctx context.Context, code string) (*db.Interview, error)
	ListInterviews(ctx context.Context, companyID uuid.UUID, f db.InterviewFilter) ([]db.Interview, error)
	DeleteInterview(ctx context.Context, companyID, id uuid.UUID) (bool, error)
	MarkInterviewStarted(ctx context.Context, id uuid.UUID) error
	CompleteInterview(ctx context.Context, id uuid.UUID, score *float64, feedback string) (bool, error)
	CancelInterview(ctx context.Context, id uuid.UUID) (bool, error)

	AppendQuestions(ctx context.Context, interviewID uuid.UUID, items []types.QuestionItem) ([]db.Question, error)
	ListQuestions(ctx context.Context, interviewID uuid.UUID) ([]db.Question, error)
	GetQuestion(ctx context.Context, interviewID, questionID uuid.UUID) (*db.Question, error)

	UpsertResponse(ctx context.Context, in db.ResponseInput) (*db.VideoResponse, error)
	GetResponse(ctx context.Context, questionID uuid.UUID) (*db.VideoResponse, error)
	ListResponses(ctx context.Context, interviewID uuid.UUID) ([]db.VideoResponse, error)
	UpdateTranscript(ctx context.Context, questionID uuid.UUID, transcript string) (*db.VideoResponse, error)
	SaveResponseEvaluation(ctx context.Context, questionID uuid.UUID, analysis *types.VideoAnalysis) (*db.VideoResponse, error)
	CountResponses(ctx context.Context, interviewID uuid.UUID) (int, error)

	IncrementLinkCounter(ctx context.Context, id uuid.UUID, counter string) (*db.PublicLink, error)
}
