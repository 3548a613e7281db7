package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/types"
)

// Job statuses
const (
	JobStatusDraft  = "draft"
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

// Candidate statuses
const (
	CandidateStatusNew          = "new"
	CandidateStatusReviewing    = "reviewing"
	CandidateStatusInterviewing = "interviewing"
	CandidateStatusHired        = "hired"
	CandidateStatusRejected     = "rejected"
)

// Interview statuses
const (
	InterviewStatusPending    = "pending"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
	InterviewStatusCancelled  = "cancelled"
)

// DefaultPreparationTime is the seconds a candidate gets before recording.
const DefaultPreparationTime = 60

// Job is a position posted by a company.
type Job struct {
	ID             uuid.UUID `json:"id"`
	CompanyID      uuid.UUID `json:"company_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Department     string    `json:"department,omitempty"`
	Location       string    `json:"location,omitempty"`
	EmploymentType string    `json:"employment_type"`
	Experience     string    `json:"experience,omitempty"`
	Requirements   string    `json:"requirements,omitempty"`
	Benefits       string    `json:"benefits,omitempty"`
	SalaryMin      *int      `json:"salary_min,omitempty"`
	SalaryMax      *int      `json:"salary_max,omitempty"`
	ShowSalary     bool      `json:"show_salary"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InterviewSettings controls how interviews for a job are assembled.
type InterviewSettings struct {
	JobID                  uuid.UUID   `json:"job_id"`
	IncludeTechnical       bool        `json:"include_technical"`
	IncludeBehavioral      bool        `json:"include_behavioral"`
	IncludeProblemSolving  bool        `json:"include_problem_solving"`
	IncludeCustomQuestions bool        `json:"include_custom_questions"`
	CustomQuestions        StringArray `json:"custom_questions"` // JSONB array, in asking order
	PreparationTime        int         `json:"preparation_time"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// DefaultInterviewSettings returns the settings used when a job has none stored.
func DefaultInterviewSettings(jobID uuid.UUID) *InterviewSettings {
	return &InterviewSettings{
		JobID:                 jobID,
		IncludeTechnical:      true,
		IncludeBehavioral:     true,
		IncludeProblemSolving: true,
		CustomQuestions:       StringArray{},
		PreparationTime:       DefaultPreparationTime,
	}
}

// Categories lists the question categories enabled by the settings.
func (s *InterviewSettings) Categories() []string {
	var out []string
	if s.IncludeTechnical {
		out = append(out, types.QuestionTechnical)
	}
	if s.IncludeBehavioral {
		out = append(out, types.QuestionBehavioral)
	}
	if s.IncludeProblemSolving {
		out = append(out, types.QuestionProblemSolving)
	}
	return out
}

// Candidate is a person being considered for a job.
type Candidate struct {
	ID                  uuid.UUID              `json:"id"`
	CompanyID           uuid.UUID              `json:"company_id"`
	JobID               *uuid.UUID             `json:"job_id,omitempty"`
	FirstName           string                 `json:"first_name"`
	LastName            string                 `json:"last_name"`
	Email               string                 `json:"email"`
	Phone               string                 `json:"phone,omitempty"`
	Location            string                 `json:"location,omitempty"`
	LinkedInURL         string                 `json:"linkedin_url,omitempty"`
	PortfolioURL        string                 `json:"portfolio_url,omitempty"`
	ResumeURL           string                 `json:"resume_url,omitempty"`
	ResumeText          string                 `json:"resume_text,omitempty"`
	WorkExperience      []types.WorkEntry      `json:"work_experience"`      // JSONB
	Education           []types.EducationEntry `json:"education"`            // JSONB
	Skills              types.Skills           `json:"skills"`               // JSONB
	ResumeMatchScore    *int                   `json:"resume_match_score,omitempty"`
	ResumeMatchFeedback string                 `json:"resume_match_feedback,omitempty"`
	Status              string                 `json:"status"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// FullName joins first and last name.
func (c *Candidate) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// normalize replaces nil JSONB collections with empty ones before writing.
func (c *Candidate) normalize() {
	if c.WorkExperience == nil {
		c.WorkExperience = []types.WorkEntry{}
	}
	if c.Education == nil {
		c.Education = []types.EducationEntry{}
	}
	if c.Skills.Technical == nil {
		c.Skills.Technical = []string{}
	}
	if c.Skills.Soft == nil {
		c.Skills.Soft = []string{}
	}
	if c.Status == "" {
		c.Status = CandidateStatusNew
	}
}

// Interview is one candidate's interview for one job.
type Interview struct {
	ID           uuid.UUID  `json:"id"`
	CompanyID    uuid.UUID  `json:"company_id"`
	JobID        uuid.UUID  `json:"job_id"`
	CandidateID  uuid.UUID  `json:"candidate_id"`
	PublicLinkID *uuid.UUID `json:"public_link_id,omitempty"`
	AccessCode   string     `json:"access_code"`
	Status       string     `json:"status"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	OverallScore *float64   `json:"overall_score,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the interview can no longer change.
func (i *Interview) IsTerminal() bool {
	return i.Status == InterviewStatusCompleted || i.Status == InterviewStatusCancelled
}

// Question is one question of an interview. OrderNumber is 1-based and
// unique per interview.
type Question struct {
	ID          uuid.UUID `json:"id"`
	InterviewID uuid.UUID `json:"interview_id"`
	Question    string    `json:"question"`
	Type        string    `json:"type"`
	OrderNumber int       `json:"order_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// VideoResponse is the single answer recorded for a question.
type VideoResponse struct {
	ID          uuid.UUID            `json:"id"`
	InterviewID uuid.UUID            `json:"interview_id"`
	QuestionID  uuid.UUID            `json:"question_id"`
	VideoURL    string               `json:"video_url,omitempty"`
	Transcript  string               `json:"transcript"`
	WasEdited   bool                 `json:"was_edited"`
	Score       *int                 `json:"score,omitempty"`
	Analysis    *types.VideoAnalysis `json:"analysis,omitempty"` // JSONB
	Feedback    string               `json:"feedback,omitempty"`
	Duration    int                  `json:"duration"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ResponseInput is the data a candidate submits for one question.
type ResponseInput struct {
	InterviewID uuid.UUID
	QuestionID  uuid.UUID
	VideoURL    string
	Transcript  string
	Duration    int
}

// PublicLink is a shareable entry point that lets anyone start an interview for a job.
type PublicLink struct {
	ID                  uuid.UUID  `json:"id"`
	CompanyID           uuid.UUID  `json:"company_id"`
	JobID               uuid.UUID  `json:"job_id"`
	Name                string     `json:"name"`
	AccessCode          string     `json:"access_code"`
	IsActive            bool       `json:"is_active"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	Visits              int        `json:"visits"`
	StartedInterviews   int        `json:"started_interviews"`
	CompletedInterviews int        `json:"completed_interviews"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsExpired reports whether the link has an expiry before now.
func (l *PublicLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}
