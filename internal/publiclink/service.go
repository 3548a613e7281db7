// Package publiclink manages shareable job links that let anyone start an
// interview without an invitation.
package publiclink

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/accesscode"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/resume"
	"github.com/jonathan/interview-agent/internal/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Store is the persistence public links need. *db.DB satisfies it.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetJob(ctx context.Context, companyID, id uuid.UUID) (*db.Job, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*db.Job, error)
	CreateCandidate(ctx context.Context, c *db.Candidate) error
	DeleteCandidate(ctx context.Context, companyID, id uuid.UUID) (bool, error)

	CreatePublicLink(ctx context.Context, l *db.PublicLink) error
	GetPublicLink(ctx context.Context, companyID, id uuid.UUID) (*db.PublicLink, error)
	GetPublicLinkByCode(ctx context.Context, code string) (*db.PublicLink, error)
	ListPublicLinks(ctx context.Context, companyID, jobID uuid.UUID) ([]db.PublicLink, error)
	SetPublicLinkActive(ctx context.Context, companyID, id uuid.UUID, active bool) (*db.PublicLink, error)
	DeletePublicLink(ctx context.Context, companyID, id uuid.UUID) (bool, error)
	IncrementLinkCounter(ctx context.Context, id uuid.UUID, counter string) (*db.PublicLink, error)
}

// Inviter creates interviews for candidates. *interview.Service satisfies it.
type Inviter interface {
	Invite(ctx context.Context, p interview.InviteParams) (*interview.Invitation, error)
}

// Service implements the public link operations.
type Service struct {
	store   Store
	inviter Inviter
	now     func() time.Time
}

// NewService creates a Service.
func NewService(store Store, inviter Inviter) *Service {
	return &Service{store: store, inviter: inviter, now: time.Now}
}

// Create issues a new active link for one of the company's jobs.
func (s *Service) Create(ctx context.Context, companyID, jobID uuid.UUID, req types.CreatePublicLinkRequest) (*db.PublicLink, error) {
	job, err := s.store.GetJob(ctx, companyID, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &types.NotFoundError{Resource: "job", ID: jobID.String()}
	}

	link := &db.PublicLink{
		CompanyID: companyID,
		JobID:     job.ID,
		Name:      strings.TrimSpace(req.Name),
		IsActive:  true,
	}
	if req.ExpiresInDays != nil {
		expires := s.now().UTC().AddDate(0, 0, *req.ExpiresInDays)
		link.ExpiresAt = &expires
	}
	if _, err := accesscode.Insert(ctx, func(ctx context.Context, code string) error {
		link.AccessCode = code
		return s.store.CreatePublicLink(ctx, link)
	}); err != nil {
		return nil, err
	}
	log.Printf("[publiclink] created link %s for job %s", link.ID, job.ID)
	return link, nil
}

// List returns the links of one of the company's jobs.
func (s *Service) List(ctx context.Context, companyID, jobID uuid.UUID) ([]db.PublicLink, error) {
	job, err := s.store.GetJob(ctx, companyID, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &types.NotFoundError{Resource: "job", ID: jobID.String()}
	}
	return s.store.ListPublicLinks(ctx, companyID, jobID)
}

// SetActive enables or disables a link.
func (s *Service) SetActive(ctx context.Context, companyID, jobID, linkID uuid.UUID, active bool) (*db.PublicLink, error) {
	if _, err := s.owned(ctx, companyID, jobID, linkID); err != nil {
		return nil, err
	}
	return s.store.SetPublicLinkActive(ctx, companyID, linkID, active)
}

// Delete removes a link. Interviews started from it are kept.
func (s *Service) Delete(ctx context.Context, companyID, jobID, linkID uuid.UUID) error {
	if _, err := s.owned(ctx, companyID, jobID, linkID); err != nil {
		return err
	}
	if _, err := s.store.DeletePublicLink(ctx, companyID, linkID); err != nil {
		return err
	}
	return nil
}

func (s *Service) owned(ctx context.Context, companyID, jobID, linkID uuid.UUID) (*db.PublicLink, error) {
	link, err := s.store.GetPublicLink(ctx, companyID, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil || link.JobID != jobID {
		return nil, &types.NotFoundError{Resource: "public link", ID: linkID.String()}
	}
	return link, nil
}

// JobView is the public description of the job behind a link.
type JobView struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	CompanyName    string    `json:"company_name"`
	Department     string    `json:"department,omitempty"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type"`
	Description    string    `json:"description"`
	Requirements   string    `json:"requirements"`
	Benefits       string    `json:"benefits"`
	Compensation   string    `json:"compensation"`
}

// Resolution is a link as seen by a visitor.
type Resolution struct {
	Link *db.PublicLink `json:"link"`
	Job  JobView        `json:"job"`
}

// Check returns the link behind code if it is usable, without counting a visit.
func (s *Service) Check(ctx context.Context, code string) (*db.PublicLink, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !accesscode.Valid(code) {
		return nil, &types.NotFoundError{Resource: "public link"}
	}
	link, err := s.store.GetPublicLinkByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, &types.NotFoundError{Resource: "public link"}
	}
	if !link.IsActive {
		return nil, &types.UnauthorizedError{Message: "link is inactive"}
	}
	if link.IsExpired(s.now()) {
		return nil, &types.UnauthorizedError{Message: "link has expired"}
	}
	return link, nil
}

// Resolve validates the link, counts the visit and describes its job.
func (s *Service) Resolve(ctx context.Context, code string) (*Resolution, error) {
	link, err := s.Check(ctx, code)
	if err != nil {
		return nil, err
	}
	counted, err := s.store.IncrementLinkCounter(ctx, link.ID, db.CounterVisits)
	if err != nil {
		return nil, err
	}
	if counted != nil {
		link = counted
	}
	view, err := s.jobView(ctx, link)
	if err != nil {
		return nil, err
	}
	return &Resolution{Link: link, Job: *view}, nil
}

func (s *Service) jobView(ctx context.Context, link *db.PublicLink) (*JobView, error) {
	job, err := s.store.GetJobByID(ctx, link.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &types.NotFoundError{Resource: "job", ID: link.JobID.String()}
	}
	company, err := s.store.GetUser(ctx, job.CompanyID)
	if err != nil {
		return nil, err
	}
	view := &JobView{
		ID:             job.ID,
		Title:          job.Title,
		Department:     job.Department,
		Location:       orDefault(job.Location, "Not specified"),
		EmploymentType: orDefault(job.EmploymentType, "Not specified"),
		Description:    orDefault(job.Description, "No description available"),
		Requirements:   orDefault(job.Requirements, "No specific requirements listed"),
		Benefits:       orDefault(job.Benefits, "No benefits listed"),
		Compensation:   FormatCompensation(job),
	}
	if company != nil {
		view.CompanyName = company.CompanyName
	}
	return view, nil
}

// Applicant is someone starting an interview through a link.
type Applicant struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	// Resume and ResumeURL are set when the applicant uploaded a resume.
	Resume    *resume.Parsed
	ResumeURL string
}

// StartInterview creates a candidate for the applicant and invites them to
// the link's job. The link's started counter is incremented.
func (s *Service) StartInterview(ctx context.Context, code string, a Applicant) (*interview.Invitation, error) {
	link, err := s.Check(ctx, code)
	if err != nil {
		return nil, err
	}

	cand := &db.Candidate{
		CompanyID: link.CompanyID,
		JobID:     &link.JobID,
		FirstName: strings.TrimSpace(a.FirstName),
		LastName:  strings.TrimSpace(a.LastName),
		Email:     strings.ToLower(strings.TrimSpace(a.Email)),
		Phone:     strings.TrimSpace(a.Phone),
		ResumeURL: a.ResumeURL,
	}
	if a.Resume != nil && a.Resume.Profile != nil {
		p := a.Resume.Profile
		cand.ResumeText = p.ResumeText
		cand.WorkExperience = p.WorkExperience
		cand.Education = p.Education
		cand.Skills = p.Skills
		cand.Location = p.Location
		if cand.Phone == "" {
			cand.Phone = p.Phone
		}
	}
	if err := s.store.CreateCandidate(ctx, cand); err != nil {
		return nil, err
	}

	inv, err := s.inviter.Invite(ctx, interview.InviteParams{
		CompanyID:    link.CompanyID,
		CandidateID:  cand.ID,
		JobID:        &link.JobID,
		PublicLinkID: &link.ID,
	})
	if err != nil {
		if _, delErr := s.store.DeleteCandidate(ctx, link.CompanyID, cand.ID); delErr != nil {
			log.Printf("[publiclink] failed to remove candidate %s after failed start: %v", cand.ID, delErr)
		}
		return nil, err
	}
	if _, err := s.store.IncrementLinkCounter(ctx, link.ID, db.CounterStarted); err != nil {
		log.Printf("[publiclink] failed to count start on link %s: %v", link.ID, err)
	}
	log.Printf("[publiclink] candidate %s started interview %s via link %s", cand.ID, inv.Interview.ID, link.ID)
	return inv, nil
}

var printer = message.NewPrinter(language.English)

// FormatCompensation renders a job's salary range for public display.
func FormatCompensation(job *db.Job) string {
	if !job.ShowSalary {
		return "Not specified"
	}
	hasMin := job.SalaryMin != nil && *job.SalaryMin > 0
	hasMax := job.SalaryMax != nil && *job.SalaryMax > 0
	switch {
	case hasMin && hasMax:
		return printer.Sprintf("$%d - $%d", *job.SalaryMin, *job.SalaryMax)
	case hasMin:
		return printer.Sprintf("From $%d", *job.SalaryMin)
	case hasMax:
		return printer.Sprintf("Up to $%d", *job.SalaryMax)
	default:
		return "Not specified"
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
