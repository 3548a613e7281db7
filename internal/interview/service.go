// Package interview manages the lifecycle of candidate interviews: invitation,
// question assembly, answer capture, scoring and completion.
//
// An interview moves pending -> in_progress (first answer) -> completed, or
// pending -> cancelled. Completed and cancelled interviews are terminal.
package interview

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/accesscode"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/types"
)

// Options tune the session manager.
type Options struct {
	// FrontendURL is the base of the candidate-facing interview page.
	FrontendURL string
	// QuestionsPerInterview caps the AI-generated questions added on invite.
	QuestionsPerInterview int
	// ScoringConcurrency bounds parallel scoring on completion.
	ScoringConcurrency int
	// ScoreOnComplete scores answered but unscored questions before completing.
	ScoreOnComplete bool
}

// Service implements the interview operations.
type Service struct {
	store     Store
	generator *questions.Generator
	evaluator *evaluation.Evaluator
	opts      Options
}

// NewService creates a Service.
func NewService(store Store, generator *questions.Generator, evaluator *evaluation.Evaluator, opts Options) *Service {
	if opts.QuestionsPerInterview <= 0 {
		opts.QuestionsPerInterview = questions.DefaultMaxQuestions
	}
	if opts.ScoringConcurrency <= 0 {
		opts.ScoringConcurrency = 4
	}
	return &Service{
		store:     store,
		generator: generator,
		evaluator: evaluator,
		opts:      opts,
	}
}

// InterviewURL is the candidate-facing URL for an access code.
func (s *Service) InterviewURL(code string) string {
	return strings.TrimRight(s.opts.FrontendURL, "/") + "/interview/" + code
}

// Invitation is the result of inviting a candidate.
type Invitation struct {
	Interview    *db.Interview `json:"interview"`
	Questions    []db.Question `json:"questions"`
	InterviewURL string        `json:"interview_url"`
}

// InviteParams identifies who is invited to what.
type InviteParams struct {
	CompanyID   uuid.UUID
	CandidateID uuid.UUID
	// JobID defaults to the candidate's job.
	JobID        *uuid.UUID
	ScheduledAt  *time.Time
	PublicLinkID *uuid.UUID
}

// Invite creates a pending interview with its questions and marks the
// candidate as interviewing. Custom questions from the job's settings come
// first, followed by generated ones.
func (s *Service) Invite(ctx context.Context, p InviteParams) (*Invitation, error) {
	cand, err := s.store.GetCandidate(ctx, p.CompanyID, p.CandidateID)
	if err != nil {
		return nil, err
	}
	if cand == nil {
		return nil, &types.NotFoundError{Resource: "candidate", ID: p.CandidateID.String()}
	}

	jobID := p.JobID
	if jobID == nil {
		jobID = cand.JobID
	}
	if jobID == nil {
		return nil, &types.ValidationError{Field: "job_id", Message: "candidate is not attached to a job"}
	}
	job, err := s.store.GetJob(ctx, p.CompanyID, *jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &types.NotFoundError{Resource: "job", ID: jobID.String()}
	}

	settings, err := s.settings(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	var items []types.QuestionItem
	if settings.IncludeCustomQuestions {
		for _, q := range settings.CustomQuestions {
			if q = strings.TrimSpace(q); q != "" {
				items = append(items, types.QuestionItem{Question: q, Type: types.QuestionCustom})
			}
		}
	}
	categories := settings.Categories()
	if len(categories) > 0 || len(items) == 0 {
		items = append(items, s.generator.Generate(ctx, questions.Request{
			JobTitle:       job.Title,
			JobDescription: jobContext(job),
			ResumeText:     cand.ResumeText,
			Categories:     categories,
			MaxQuestions:   s.opts.QuestionsPerInterview,
		})...)
	}

	iv := &db.Interview{
		CompanyID:    p.CompanyID,
		JobID:        job.ID,
		CandidateID:  cand.ID,
		PublicLinkID: p.PublicLinkID,
		ScheduledAt:  p.ScheduledAt,
	}
	var created []db.Question
	if _, err := accesscode.Insert(ctx, func(ctx context.Context, code string) error {
		iv.AccessCode = code
		qs, err := s.store.CreateInterviewWithQuestions(ctx, iv, items)
		created = qs
		return err
	}); err != nil {
		return nil, err
	}

	if _, err := s.store.UpdateCandidateStatus(ctx, p.CompanyID, cand.ID, db.CandidateStatusInterviewing); err != nil {
		if _, delErr := s.store.DeleteInterview(ctx, p.CompanyID, iv.ID); delErr != nil {
			log.Printf("[interview] failed to remove interview %s after failed invite: %v", iv.ID, delErr)
		}
		return nil, err
	}

	log.Printf("[interview] invited candidate %s to job %s: interview %s with %d questions", cand.ID, job.ID, iv.ID, len(created))
	return &Invitation{Interview: iv, Questions: created, InterviewURL: s.InterviewURL(iv.AccessCode)}, nil
}

// Create creates a pending interview with no questions.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, req types.CreateInterviewRequest) (*db.Interview, error) {
	cand, err := s.store.GetCandidate(ctx, companyID, req.CandidateID)
	if err != nil {
		return nil, err
	}
	if cand == nil {
		return nil, &types.NotFoundError{Resource: "candidate", ID: req.CandidateID.String()}
	}
	job, err := s.store.GetJob(ctx, companyID, req.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &types.NotFoundError{Resource: "job", ID: req.JobID.String()}
	}
	return s.createInterview(ctx, &db.Interview{
		CompanyID:   companyID,
		JobID:       job.ID,
		CandidateID: cand.ID,
		ScheduledAt: req.ScheduledAt,
	})
}

func (s *Service) createInterview(ctx context.Context, iv *db.Interview) (*db.Interview, error) {
	_, err := accesscode.Insert(ctx, func(ctx context.Context, code string) error {
		iv.AccessCode = code
		return s.store.CreateInterview(ctx, iv)
	})
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func (s *Service) settings(ctx context.Context, jobID uuid.UUID) (*db.InterviewSettings, error) {
	settings, err := s.store.GetInterviewSettings(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = db.DefaultInterviewSettings(jobID)
	}
	return settings, nil
}

// jobContext is the job text questions are generated from.
func jobContext(job *db.Job) string {
	if strings.TrimSpace(job.Requirements) == "" {
		return job.Description
	}
	return strings.TrimSpace(job.Description + "\n\nRequirements:\n" + job.Requirements)
}

// AddQuestions appends company-written questions after the existing ones.
func (s *Service) AddQuestions(ctx context.Context, companyID, id uuid.UUID, inputs []types.QuestionInput) ([]db.Question, error) {
	iv, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if iv.IsTerminal() {
		return nil, &types.InvalidTransitionError{From: iv.Status, To: iv.Status, Reason: "questions cannot be added to a finished interview"}
	}
	items := make([]types.QuestionItem, len(inputs))
	for i, in := range inputs {
		items[i] = types.QuestionItem{Question: strings.TrimSpace(in.Question), Type: in.Type}
		if items[i].Type == "" {
			items[i].Type = types.QuestionCustom
		}
	}
	return s.store.AppendQuestions(ctx, iv.ID, items)
}

// ListQuestions returns an interview's questions in asking order.
func (s *Service) ListQuestions(ctx context.Context, companyID, id uuid.UUID) ([]db.Question, error) {
	iv, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return s.store.ListQuestions(ctx, iv.ID)
}

// Get returns one of the company's interviews.
func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID) (*db.Interview, error) {
	iv, err := s.store.GetInterview(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, &types.NotFoundError{Resource: "interview", ID: id.String()}
	}
	return iv, nil
}

// List returns the company's interviews, newest first.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, f db.InterviewFilter) ([]db.Interview, error) {
	return s.store.ListInterviews(ctx, companyID, f)
}

// Delete removes an interview with its questions and responses.
func (s *Service) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	ok, err := s.store.DeleteInterview(ctx, companyID, id)
	if err != nil {
		return err
	}
	if !ok {
		return &types.NotFoundError{Resource: "interview", ID: id.String()}
	}
	return nil
}

// Cancel cancels a pending interview that has no answers yet.
func (s *Service) Cancel(ctx context.Context, companyID, id uuid.UUID) (*db.Interview, error) {
	iv, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.CancelInterview(ctx, iv.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		reason := "only pending interviews can be cancelled"
		if iv.Status == db.InterviewStatusPending {
			reason = "interview already has responses"
		}
		return nil, &types.InvalidTransitionError{From: iv.Status, To: db.InterviewStatusCancelled, Reason: reason}
	}
	log.Printf("[interview] cancelled interview %s", iv.ID)
	return s.Get(ctx, companyID, id)
}
