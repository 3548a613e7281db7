// Package dbtest provides an in-memory implementation of the db.DB methods
// for service and handler tests.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/types"
)

// Store mirrors db.DB in memory. The zero value is not usable; call NewStore.
// Not-found lookups return nil, nil and duplicate access codes return a
// unique-violation error, like the PostgreSQL implementation.
type Store struct {
	mu  sync.Mutex
	seq int

	users      map[uuid.UUID]*db.User
	jobs       map[uuid.UUID]*db.Job
	settings   map[uuid.UUID]*db.InterviewSettings
	candidates map[uuid.UUID]*db.Candidate
	interviews map[uuid.UUID]*db.Interview
	questions  map[uuid.UUID]*db.Question
	responses  map[uuid.UUID]*db.VideoResponse // keyed by question ID
	links      map[uuid.UUID]*db.PublicLink
	order      map[uuid.UUID]int

	// FailNext, when set, is returned (once) by the next write.
	FailNext error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      map[uuid.UUID]*db.User{},
		jobs:       map[uuid.UUID]*db.Job{},
		settings:   map[uuid.UUID]*db.InterviewSettings{},
		candidates: map[uuid.UUID]*db.Candidate{},
		interviews: map[uuid.UUID]*db.Interview{},
		questions:  map[uuid.UUID]*db.Question{},
		responses:  map[uuid.UUID]*db.VideoResponse{},
		links:      map[uuid.UUID]*db.PublicLink{},
		order:      map[uuid.UUID]int{},
	}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

// failed returns and clears FailNext. Callers hold mu.
func (s *Store) failed() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// track records insertion order for stable sorting. Callers hold mu.
func (s *Store) track(id uuid.UUID) time.Time {
	s.seq++
	s.order[id] = s.seq
	return time.Now().UTC()
}

// newestFirst sorts ids by descending insertion order. Callers hold mu.
func (s *Store) newestFirst(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] > s.order[ids[j]] })
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, name, companyName, email, phone string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return uuid.Nil, err
	}
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return uuid.Nil, uniqueViolation("users_email_key")
		}
	}
	id := uuid.New()
	now := s.track(id)
	s.users[id] = &db.User{ID: id, Name: name, CompanyName: companyName, Email: email, Phone: phone, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := s.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (s *Store) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found: %s", id)
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// Jobs
// ---------------------------------------------------------------------------

func (s *Store) CreateJob(_ context.Context, job *db.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	if job.Status == "" {
		job.Status = db.JobStatusDraft
	}
	if job.EmploymentType == "" {
		job.EmploymentType = "full-time"
	}
	job.ID = uuid.New()
	job.CreatedAt = s.track(job.ID)
	job.UpdatedAt = job.CreatedAt
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *Store) GetJob(_ context.Context, companyID, id uuid.UUID) (*db.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.CompanyID != companyID {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (s *Store) GetJobByID(_ context.Context, id uuid.UUID) (*db.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (s *Store) ListJobs(_ context.Context, companyID uuid.UUID) ([]db.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, j := range s.jobs {
		if j.CompanyID == companyID {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids)
	out := []db.Job{}
	for _, id := range ids {
		out = append(out, *s.jobs[id])
	}
	return out, nil
}

func (s *Store) DeleteJob(_ context.Context, companyID, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return false, err
	}
	j, ok := s.jobs[id]
	if !ok || j.CompanyID != companyID {
		return false, nil
	}
	for ivID, iv := range s.interviews {
		if iv.JobID == id {
			s.deleteInterviewLocked(ivID)
		}
	}
	for lID, l := range s.links {
		if l.JobID == id {
			delete(s.links, lID)
		}
	}
	for cID, c := range s.candidates {
		if c.JobID != nil && *c.JobID == id {
			delete(s.candidates, cID)
		}
	}
	delete(s.settings, id)
	delete(s.jobs, id)
	return true, nil
}

func (s *Store) GetInterviewSettings(_ context.Context, jobID uuid.UUID) (*db.InterviewSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[jobID]
	if !ok {
		return nil, nil
	}
	cp := *st
	cp.CustomQuestions = append(db.StringArray{}, st.CustomQuestions...)
	return &cp, nil
}

func (s *Store) UpsertInterviewSettings(_ context.Context, st *db.InterviewSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	if st.CustomQuestions == nil {
		st.CustomQuestions = db.StringArray{}
	}
	st.UpdatedAt = time.Now().UTC()
	cp := *st
	cp.CustomQuestions = append(db.StringArray{}, st.CustomQuestions...)
	s.settings[st.JobID] = &cp
	return nil
}

// ---------------------------------------------------------------------------
// Candidates
// ---------------------------------------------------------------------------

func (s *Store) CreateCandidate(_ context.Context, c *db.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = db.CandidateStatusNew
	}
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
	c.ID = uuid.New()
	c.CreatedAt = s.track(c.ID)
	c.UpdatedAt = c.CreatedAt
	cp := *c
	s.candidates[c.ID] = &cp
	return nil
}

func (s *Store) GetCandidate(_ context.Context, companyID, id uuid.UUID) (*db.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok || c.CompanyID != companyID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListCandidates(_ context.Context, companyID uuid.UUID, jobID *uuid.UUID) ([]db.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, c := range s.candidates {
		if c.CompanyID != companyID {
			continue
		}
		if jobID != nil && (c.JobID == nil || *c.JobID != *jobID) {
			continue
		}
		ids = append(ids, id)
	}
	s.newestFirst(ids)
	out := []db.Candidate{}
	for _, id := range ids {
		out = append(out, *s.candidates[id])
	}
	return out, nil
}

func (s *Store) UpdateCandidateStatus(_ context.Context, companyID, id uuid.UUID, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return false, err
	}
	c, ok := s.candidates[id]
	if !ok || c.CompanyID != companyID {
		return false, nil
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *Store) UpdateCandidateResume(_ context.Context, id uuid.UUID, resumeURL string, profile *types.ResumeProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	c, ok := s.candidates[id]
	if !ok {
		return nil
	}
	profile.Normalize()
	c.ResumeURL = resumeURL
	c.ResumeText = profile.ResumeText
	c.WorkExperience = profile.WorkExperience
	c.Education = profile.Education
	c.Skills = profile.Skills
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) UpdateCandidateMatch(_ context.Context, id uuid.UUID, score int, feedback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	if c, ok := s.candidates[id]; ok {
		c.ResumeMatchScore = &score
		c.ResumeMatchFeedback = feedback
		c.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *Store) DeleteCandidate(_ context.Context, companyID, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok || c.CompanyID != companyID {
		return false, nil
	}
	for ivID, iv := range s.interviews {
		if iv.CandidateID == id {
			s.deleteInterviewLocked(ivID)
		}
	}
	delete(s.candidates, id)
	return true, nil
}

// ---------------------------------------------------------------------------
// Interviews
// ---------------------------------------------------------------------------

func (s *Store) CreateInterview(_ context.Context, iv *db.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	return s.createInterviewLocked(iv)
}

// CreateInterviewWithQuestions stores the interview and its questions
// together, or nothing.
func (s *Store) CreateInterviewWithQuestions(_ context.Context, iv *db.Interview, items []types.QuestionItem) ([]db.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return nil, err
	}
	if err := s.createInterviewLocked(iv); err != nil {
		return nil, err
	}
	return s.insertQuestionsLocked(iv.ID, 0, items), nil
}

func (s *Store) createInterviewLocked(iv *db.Interview) error {
	for _, existing := range s.interviews {
		if existing.AccessCode == iv.AccessCode {
			return fmt.Errorf("failed to create interview: %w", uniqueViolation("interviews_access_code_key"))
		}
	}
	if iv.Status == "" {
		iv.Status = db.InterviewStatusPending
	}
	iv.ID = uuid.New()
	iv.CreatedAt = s.track(iv.ID)
	iv.UpdatedAt = iv.CreatedAt
	cp := *iv
	s.interviews[iv.ID] = &cp
	return nil
}

func (s *Store) GetInterview(_ context.Context, companyID, id uuid.UUID) (*db.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok || iv.CompanyID != companyID {
		return nil, nil
	}
	cp := *iv
	return &cp, nil
}

func (s *Store) GetInterviewByAccessCode(_ context.Context, code string) (*db.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, iv := range s.interviews {
		if iv.AccessCode == code {
			cp := *iv
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ListInterviews(_ context.Context, companyID uuid.UUID, f db.InterviewFilter) ([]db.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, iv := range s.interviews {
		switch {
		case iv.CompanyID != companyID:
		case f.JobID != nil && iv.JobID != *f.JobID:
		case f.CandidateID != nil && iv.CandidateID != *f.CandidateID:
		case f.Status != "" && iv.Status != f.Status:
		default:
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids)
	out := []db.Interview{}
	for _, id := range ids {
		out = append(out, *s.interviews[id])
	}
	return out, nil
}

func (s *Store) DeleteInterview(_ context.Context, companyID, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok || iv.CompanyID != companyID {
		return false, nil
	}
	s.deleteInterviewLocked(id)
	return true, nil
}

func (s *Store) deleteInterviewLocked(id uuid.UUID) {
	for qID, q := range s.questions {
		if q.InterviewID == id {
			delete(s.responses, qID)
			delete(s.questions, qID)
		}
	}
	delete(s.interviews, id)
}

func (s *Store) MarkInterviewStarted(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	if iv, ok := s.interviews[id]; ok && iv.Status == db.InterviewStatusPending {
		now := time.Now().UTC()
		iv.Status = db.InterviewStatusInProgress
		iv.StartedAt = &now
		iv.UpdatedAt = now
	}
	return nil
}

func (s *Store) CompleteInterview(_ context.Context, id uuid.UUID, score *float64, feedback string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return false, err
	}
	iv, ok := s.interviews[id]
	if !ok || iv.IsTerminal() {
		return false, nil
	}
	now := time.Now().UTC()
	iv.Status = db.InterviewStatusCompleted
	iv.CompletedAt = &now
	iv.OverallScore = score
	iv.Feedback = feedback
	iv.UpdatedAt = now
	return true, nil
}

func (s *Store) CancelInterview(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok || iv.Status != db.InterviewStatusPending {
		return false, nil
	}
	for _, r := range s.responses {
		if r.InterviewID == id {
			return false, nil
		}
	}
	iv.Status = db.InterviewStatusCancelled
	iv.UpdatedAt = time.Now().UTC()
	return true, nil
}

// ---------------------------------------------------------------------------
// Questions
// ---------------------------------------------------------------------------

func (s *Store) AppendQuestions(_ context.Context, interviewID uuid.UUID, items []types.QuestionItem) ([]db.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return nil, err
	}
	if _, ok := s.interviews[interviewID]; !ok {
		return nil, &types.NotFoundError{Resource: "interview", ID: interviewID.String()}
	}
	maxOrder := 0
	for _, q := range s.questions {
		if q.InterviewID == interviewID && q.OrderNumber > maxOrder {
			maxOrder = q.OrderNumber
		}
	}
	return s.insertQuestionsLocked(interviewID, maxOrder, items), nil
}

func (s *Store) insertQuestionsLocked(interviewID uuid.UUID, afterOrder int, items []types.QuestionItem) []db.Question {
	created := make([]db.Question, 0, len(items))
	for i, item := range items {
		q := &db.Question{
			ID:          uuid.New(),
			InterviewID: interviewID,
			Question:    item.Question,
			Type:        types.NormalizeQuestionType(item.Type),
			OrderNumber: afterOrder + i + 1,
		}
		q.CreatedAt = s.track(q.ID)
		s.questions[q.ID] = q
		created = append(created, *q)
	}
	return created
}

func (s *Store) ListQuestions(_ context.Context, interviewID uuid.UUID) ([]db.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listQuestionsLocked(interviewID), nil
}

func (s *Store) listQuestionsLocked(interviewID uuid.UUID) []db.Question {
	out := []db.Question{}
	for _, q := range s.questions {
		if q.InterviewID == interviewID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderNumber != out[j].OrderNumber {
			return out[i].OrderNumber < out[j].OrderNumber
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out
}

func (s *Store) GetQuestion(_ context.Context, interviewID, questionID uuid.UUID) (*db.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[questionID]
	if !ok || q.InterviewID != interviewID {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

func (s *Store) UpsertResponse(_ context.Context, in db.ResponseInput) (*db.VideoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return nil, err
	}
	if _, ok := s.questions[in.QuestionID]; !ok {
		return nil, fmt.Errorf("failed to save response: question %s does not exist", in.QuestionID)
	}
	now := time.Now().UTC()
	r, ok := s.responses[in.QuestionID]
	if !ok {
		r = &db.VideoResponse{ID: uuid.New(), InterviewID: in.InterviewID, QuestionID: in.QuestionID, CreatedAt: now}
		s.responses[in.QuestionID] = r
	}
	r.VideoURL = in.VideoURL
	r.Transcript = in.Transcript
	r.Duration = in.Duration
	r.WasEdited = false
	r.Score = nil
	r.Analysis = nil
	r.Feedback = ""
	r.UpdatedAt = now
	cp := *r
	return &cp, nil
}

func (s *Store) GetResponse(_ context.Context, questionID uuid.UUID) (*db.VideoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[questionID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *Store) ListResponses(_ context.Context, interviewID uuid.UUID) ([]db.VideoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []db.VideoResponse{}
	for _, q := range s.listQuestionsLocked(interviewID) {
		if r, ok := s.responses[q.ID]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *Store) UpdateTranscript(_ context.Context, questionID uuid.UUID, transcript string) (*db.VideoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return nil, err
	}
	r, ok := s.responses[questionID]
	if !ok {
		return nil, nil
	}
	r.Transcript = transcript
	r.WasEdited = true
	r.UpdatedAt = time.Now().UTC()
	cp := *r
	return &cp, nil
}

func (s *Store) SaveResponseEvaluation(_ context.Context, questionID uuid.UUID, analysis *types.VideoAnalysis) (*db.VideoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return nil, err
	}
	r, ok := s.responses[questionID]
	if !ok {
		return nil, nil
	}
	score := analysis.Score
	a := *analysis
	r.Score = &score
	r.Analysis = &a
	r.Feedback = analysis.FormattedFeedback
	r.UpdatedAt = time.Now().UTC()
	cp := *r
	return &cp, nil
}

func (s *Store) CountResponses(_ context.Context, interviewID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.responses {
		if r.InterviewID == interviewID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Public links
// ---------------------------------------------------------------------------

func (s *Store) CreatePublicLink(_ context.Context, l *db.PublicLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	for _, existing := range s.links {
		if existing.AccessCode == l.AccessCode {
			return fmt.Errorf("failed to create public link: %w", uniqueViolation("public_interview_links_access_code_key"))
		}
	}
	l.ID = uuid.New()
	l.CreatedAt = s.track(l.ID)
	l.UpdatedAt = l.CreatedAt
	cp := *l
	s.links[l.ID] = &cp
	return nil
}

func (s *Store) GetPublicLink(_ context.Context, companyID, id uuid.UUID) (*db.PublicLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok || l.CompanyID != companyID {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (s *Store) GetPublicLinkByCode(_ context.Context, code string) (*db.PublicLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.AccessCode == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ListPublicLinks(_ context.Context, companyID, jobID uuid.UUID) ([]db.PublicLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, l := range s.links {
		if l.CompanyID == companyID && l.JobID == jobID {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids)
	out := []db.PublicLink{}
	for _, id := range ids {
		out = append(out, *s.links[id])
	}
	return out, nil
}

func (s *Store) SetPublicLinkActive(_ context.Context, companyID, id uuid.UUID, active bool) (*db.PublicLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok || l.CompanyID != companyID {
		return nil, nil
	}
	l.IsActive = active
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	return &cp, nil
}

func (s *Store) DeletePublicLink(_ context.Context, companyID, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok || l.CompanyID != companyID {
		return false, nil
	}
	for _, iv := range s.interviews {
		if iv.PublicLinkID != nil && *iv.PublicLinkID == id {
			iv.PublicLinkID = nil
		}
	}
	delete(s.links, id)
	return true, nil
}

func (s *Store) IncrementLinkCounter(_ context.Context, id uuid.UUID, counter string) (*db.PublicLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok {
		return nil, nil
	}
	switch counter {
	case db.CounterVisits:
		l.Visits++
	case db.CounterStarted:
		l.StartedInterviews++
	case db.CounterCompleted:
		l.CompletedInterviews++
	default:
		return nil, fmt.Errorf("unknown link counter %q", counter)
	}
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	return &cp, nil
}

// SetPublicLinkExpiry overwrites a link's expiry, for tests of expired links.
func (s *Store) SetPublicLinkExpiry(id uuid.UUID, expiresAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.links[id]; ok {
		l.ExpiresAt = expiresAt
	}
}

// QuestionCount returns how many interview questions exist across all interviews.
func (s *Store) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// CandidateCount returns how many candidates exist across all companies.
func (s *Store) CandidateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.candidates)
}
