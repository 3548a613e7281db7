package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// ValidateStruct runs the struct's validate tags.
func ValidateStruct(v any) error {
	return validate.Struct(v)
}

// CreateJobRequest is the body of POST /jobs.
type CreateJobRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description"`
	Department     string `json:"department,omitempty"`
	Location       string `json:"location,omitempty"`
	EmploymentType string `json:"employment_type,omitempty" validate:"omitempty,oneof=full-time part-time contract internship temporary"`
	Experience     string `json:"experience,omitempty"`
	Requirements   string `json:"requirements,omitempty"`
	Benefits       string `json:"benefits,omitempty"`
	SalaryMin      *int   `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax      *int   `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	ShowSalary     bool   `json:"show_salary"`
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=draft active closed"`
}

// GenerateJobContentRequest is the body of POST /jobs/generate.
type GenerateJobContentRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Department string   `json:"department,omitempty"`
	Location   string   `json:"location,omitempty"`
	Keywords   []string `json:"keywords,omitempty" validate:"max=20"`
}

// JobContent is generated copy for a job posting.
type JobContent struct {
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Benefits     string `json:"benefits"`
}

// InterviewSettingsRequest is the body of PUT /jobs/{id}/settings.
type InterviewSettingsRequest struct {
	IncludeTechnical       bool     `json:"include_technical"`
	IncludeBehavioral      bool     `json:"include_behavioral"`
	IncludeProblemSolving  bool     `json:"include_problem_solving"`
	IncludeCustomQuestions bool     `json:"include_custom_questions"`
	CustomQuestions        []string `json:"custom_questions" validate:"max=50,dive,required"`
	PreparationTime        int      `json:"preparation_time" validate:"gte=0,lte=3600"`
}

// CreateCandidateRequest is the body of POST /candidates.
type CreateCandidateRequest struct {
	JobID        *uuid.UUID `json:"job_id,omitempty"`
	FirstName    string     `json:"first_name" validate:"required,max=100"`
	LastName     string     `json:"last_name" validate:"max=100"`
	Email        string     `json:"email" validate:"required,email"`
	Phone        string     `json:"phone,omitempty"`
	Location     string     `json:"location,omitempty"`
	LinkedInURL  string     `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	PortfolioURL string     `json:"portfolio_url,omitempty" validate:"omitempty,url"`
}

// UpdateCandidateStatusRequest is the body of PUT /candidates/{id}/status.
type UpdateCandidateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new reviewing interviewing hired rejected"`
}

// InviteRequest is the body of POST /candidates/{id}/invite. JobID defaults
// to the candidate's job.
type InviteRequest struct {
	JobID       *uuid.UUID `json:"job_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// CreateInterviewRequest is the body of POST /interviews.
type CreateInterviewRequest struct {
	CandidateID uuid.UUID  `json:"candidate_id" validate:"required"`
	JobID       uuid.UUID  `json:"job_id" validate:"required"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// QuestionInput is one question supplied by a company.
type QuestionInput struct {
	Question string `json:"question" validate:"required,max=2000"`
	Type     string `json:"type,omitempty" validate:"omitempty,oneof=technical behavioral problem_solving custom general"`
}

// AddQuestionsRequest is the body of POST /interviews/{id}/questions.
type AddQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" validate:"required,min=1,max=50,dive"`
}

// GenerateQuestionsRequest is the body of POST /interviews/generate-questions.
type GenerateQuestionsRequest struct {
	JobTitle       string             `json:"job_title" validate:"max=200"`
	JobDescription string             `json:"job_description"`
	ResumeText     string             `json:"resume_text"`
	Categories     []string           `json:"categories,omitempty" validate:"dive,oneof=technical behavioral problem_solving custom general"`
	MaxQuestions   int                `json:"max_questions,omitempty" validate:"gte=0,lte=50"`
	Conversation   []ConversationTurn `json:"conversation,omitempty" validate:"dive"`
}

// SubmitResponseRequest is the body of POST /access/{code}/questions/{question_id}/response.
type SubmitResponseRequest struct {
	VideoURL   string `json:"video_url,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Duration   int    `json:"duration,omitempty" validate:"gte=0"`
}

// UpdateTranscriptRequest is the body of PUT .../transcript.
type UpdateTranscriptRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

// CompleteInterviewRequest is the body of the complete endpoints.
type CompleteInterviewRequest struct {
	Score    *int   `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Feedback string `json:"feedback,omitempty"`
}

// FollowupRequest is the body of POST .../follow-up.
type FollowupRequest struct {
	Response string `json:"response" validate:"required"`
}

// NextQuestionRequest is the body of POST /access/{code}/next-question.
type NextQuestionRequest struct {
	Conversation []ConversationTurn `json:"conversation" validate:"dive"`
}

// ProcessResponseRequest is the body of POST /access/{code}/process.
type ProcessResponseRequest struct {
	Response     string             `json:"response" validate:"required"`
	Conversation []ConversationTurn `json:"conversation,omitempty" validate:"dive"`
}

// CreatePublicLinkRequest is the body of POST /jobs/{id}/public-links.
type CreatePublicLinkRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty" validate:"omitempty,gte=1,lte=365"`
}

// SetLinkActiveRequest is the body of PATCH /jobs/{id}/public-links/{link_id}.
type SetLinkActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// StartPublicInterviewRequest is the body of POST /public/{code}/start.
type StartPublicInterviewRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
}

// SpeechRequest is the body of POST /ai/speech.
type SpeechRequest struct {
	Text string `json:"text" validate:"required,max=4096"`
}
