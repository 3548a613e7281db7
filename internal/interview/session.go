package interview

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/accesscode"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/types"
)

// CandidateSummary is what a candidate sees about themselves.
type CandidateSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

// JobSummary is what a candidate sees about the job.
type JobSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Department  string    `json:"department,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// Session is an interview as seen through its access code.
type Session struct {
	Interview       *db.Interview    `json:"interview"`
	Questions       []db.Question    `json:"questions"`
	AnsweredIDs     []uuid.UUID      `json:"answered_question_ids"`
	Candidate       CandidateSummary `json:"candidate"`
	Job             JobSummary       `json:"job"`
	PreparationTime int              `json:"preparation_time"`
}

// GetByAccessCode loads the interview an access code grants access to.
func (s *Service) GetByAccessCode(ctx context.Context, code string) (*Session, error) {
	iv, err := s.byCode(ctx, code)
	if err != nil {
		return nil, err
	}
	qs, err := s.store.ListQuestions(ctx, iv.ID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(ctx, iv.ID)
	if err != nil {
		return nil, err
	}
	answered := make([]uuid.UUID, 0, len(responses))
	for _, r := range responses {
		answered = append(answered, r.QuestionID)
	}

	session := &Session{Interview: iv, Questions: qs, AnsweredIDs: answered}
	cand, err := s.store.GetCandidate(ctx, iv.CompanyID, iv.CandidateID)
	if err != nil {
		return nil, err
	}
	if cand != nil {
		session.Candidate = CandidateSummary{ID: cand.ID, FirstName: cand.FirstName, LastName: cand.LastName, Email: cand.Email}
	}
	job, err := s.store.GetJobByID(ctx, iv.JobID)
	if err != nil {
		return nil, err
	}
	if job != nil {
		session.Job = JobSummary{ID: job.ID, Title: job.Title, Description: job.Description, Department: job.Department, Location: job.Location}
	}
	settings, err := s.settings(ctx, iv.JobID)
	if err != nil {
		return nil, err
	}
	session.PreparationTime = settings.PreparationTime
	return session, nil
}

func (s *Service) byCode(ctx context.Context, code string) (*db.Interview, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !accesscode.Valid(code) {
		return nil, &types.NotFoundError{Resource: "interview"}
	}
	iv, err := s.store.GetInterviewByAccessCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		// The code itself is a secret; do not echo it back.
		return nil, &types.NotFoundError{Resource: "interview"}
	}
	return iv, nil
}

// Active returns the interview behind code if it still accepts answers.
func (s *Service) Active(ctx context.Context, code string) (*db.Interview, error) {
	return s.active(ctx, code, "uploading")
}

func (s *Service) active(ctx context.Context, code, action string) (*db.Interview, error) {
	iv, err := s.byCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if iv.IsTerminal() {
		return nil, &types.InvalidTransitionError{From: iv.Status, To: iv.Status, Reason: action + " is not allowed after the interview has ended"}
	}
	return iv, nil
}

// openQuestion resolves an active interview and one of its questions.
func (s *Service) openQuestion(ctx context.Context, code string, questionID uuid.UUID, action string) (*db.Interview, *db.Question, error) {
	iv, err := s.active(ctx, code, action)
	if err != nil {
		return nil, nil, err
	}
	q, err := s.store.GetQuestion(ctx, iv.ID, questionID)
	if err != nil {
		return nil, nil, err
	}
	if q == nil {
		return nil, nil, &types.NotFoundError{Resource: "question", ID: questionID.String()}
	}
	return iv, q, nil
}

// SubmitResponse records the candidate's answer to a question. Submitting
// again replaces the earlier answer. The first answer starts the interview.
func (s *Service) SubmitResponse(ctx context.Context, code string, questionID uuid.UUID, req types.SubmitResponseRequest) (*db.VideoResponse, error) {
	iv, q, err := s.openQuestion(ctx, code, questionID, "submitting a response")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.VideoURL) == "" && strings.TrimSpace(req.Transcript) == "" {
		return nil, &types.ValidationError{Field: "transcript", Message: "a video or a transcript is required"}
	}

	resp, err := s.store.UpsertResponse(ctx, db.ResponseInput{
		InterviewID: iv.ID,
		QuestionID:  q.ID,
		VideoURL:    req.VideoURL,
		Transcript:  strings.TrimSpace(req.Transcript),
		Duration:    req.Duration,
	})
	if err != nil {
		return nil, err
	}
	if iv.Status == db.InterviewStatusPending {
		if err := s.store.MarkInterviewStarted(ctx, iv.ID); err != nil {
			return nil, err
		}
		log.Printf("[interview] interview %s started", iv.ID)
	}
	return resp, nil
}

// UpdateTranscript replaces the transcript of an existing answer and flags it as edited.
func (s *Service) UpdateTranscript(ctx context.Context, code string, questionID uuid.UUID, transcript string) (*db.VideoResponse, error) {
	_, q, err := s.openQuestion(ctx, code, questionID, "editing a transcript")
	if err != nil {
		return nil, err
	}
	resp, err := s.store.UpdateTranscript(ctx, q.ID, strings.TrimSpace(transcript))
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, &types.NotFoundError{Resource: "response", ID: q.ID.String()}
	}
	return resp, nil
}

// AnalyzeResponse scores an answer's transcript and stores the analysis.
func (s *Service) AnalyzeResponse(ctx context.Context, code string, questionID uuid.UUID) (*db.VideoResponse, error) {
	iv, q, err := s.openQuestion(ctx, code, questionID, "analyzing a response")
	if err != nil {
		return nil, err
	}
	resp, err := s.store.GetResponse(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, &types.NotFoundError{Resource: "response", ID: q.ID.String()}
	}
	if strings.TrimSpace(resp.Transcript) == "" {
		return nil, &types.ValidationError{Field: "transcript", Message: "response has no transcript to analyze"}
	}
	job, err := s.store.GetJobByID(ctx, iv.JobID)
	if err != nil {
		return nil, err
	}
	return s.score(ctx, q, resp, job)
}

func (s *Service) score(ctx context.Context, q *db.Question, resp *db.VideoResponse, job *db.Job) (*db.VideoResponse, error) {
	description := ""
	if job != nil {
		description = jobContext(job)
	}
	analysis := s.evaluator.AnalyzeVideoResponse(ctx, q.Question, resp.Transcript, description)
	saved, err := s.store.SaveResponseEvaluation(ctx, q.ID, &analysis)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, &types.NotFoundError{Resource: "response", ID: q.ID.String()}
	}
	return saved, nil
}

// Followup writes the interviewer's reply to an answer, or the closing
// statement after the last question.
func (s *Service) Followup(ctx context.Context, code string, questionID uuid.UUID, answer string) (string, error) {
	iv, q, err := s.openQuestion(ctx, code, questionID, "requesting a follow-up")
	if err != nil {
		return "", err
	}
	qs, err := s.store.ListQuestions(ctx, iv.ID)
	if err != nil {
		return "", err
	}
	isLast := len(qs) > 0 && qs[len(qs)-1].ID == q.ID
	job, err := s.store.GetJobByID(ctx, iv.JobID)
	if err != nil {
		return "", err
	}
	title := ""
	if job != nil {
		title = job.Title
	}
	return s.evaluator.GenerateFollowup(ctx, q.Question, answer, title, isLast), nil
}

// NextQuestion generates the next conversational question and appends it to the interview.
func (s *Service) NextQuestion(ctx context.Context, code string, conversation []types.ConversationTurn) (*db.Question, error) {
	iv, err := s.byCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if iv.IsTerminal() {
		return nil, &types.InvalidTransitionError{From: iv.Status, To: iv.Status, Reason: "the interview has ended"}
	}
	job, cand, err := s.jobAndCandidate(ctx, iv)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings(ctx, iv.JobID)
	if err != nil {
		return nil, err
	}
	items := s.generator.Generate(ctx, questions.Request{
		JobTitle:       job.Title,
		JobDescription: jobContext(job),
		ResumeText:     cand.ResumeText,
		Categories:     settings.Categories(),
		MaxQuestions:   1,
		Conversation:   conversation,
	})
	created, err := s.store.AppendQuestions(ctx, iv.ID, items[:1])
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// ProcessResponse returns conversational feedback on a free-text answer.
func (s *Service) ProcessResponse(ctx context.Context, code string, req types.ProcessResponseRequest) (string, error) {
	iv, err := s.byCode(ctx, code)
	if err != nil {
		return "", err
	}
	job, cand, err := s.jobAndCandidate(ctx, iv)
	if err != nil {
		return "", err
	}
	return s.evaluator.ProcessResponse(ctx, evaluation.ProcessRequest{
		Response:       req.Response,
		JobTitle:       job.Title,
		JobDescription: jobContext(job),
		ResumeText:     cand.ResumeText,
		Conversation:   req.Conversation,
	}), nil
}

// jobAndCandidate loads the job and candidate behind an interview. Missing rows yield empty values.
func (s *Service) jobAndCandidate(ctx context.Context, iv *db.Interview) (*db.Job, *db.Candidate, error) {
	job, err := s.store.GetJobByID(ctx, iv.JobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		job = &db.Job{ID: iv.JobID}
	}
	cand, err := s.store.GetCandidate(ctx, iv.CompanyID, iv.CandidateID)
	if err != nil {
		return nil, nil, err
	}
	if cand == nil {
		cand = &db.Candidate{ID: iv.CandidateID}
	}
	return job, cand, nil
}
