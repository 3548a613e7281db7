package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/artifacts"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/ingestion"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/types"
)

// ---------------------------------------------------------------------
// Candidate Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	jobID, err := queryID(r, "job_id")
	if err != nil {
		writeError(w, "list candidates", err)
		return
	}

	candidates, err := s.store.ListCandidates(r.Context(), companyID, jobID)
	if err != nil {
		writeError(w, "list candidates", err)
		return
	}
	if candidates == nil {
		candidates = []db.Candidate{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"candidates": candidates, "count": len(candidates)})
}

// jobFor checks that an optional job belongs to the company.
func (s *Server) jobFor(ctx context.Context, companyID uuid.UUID, jobID *uuid.UUID) (*db.Job, error) {
	if jobID == nil {
		return nil, nil
	}
	job, err := s.store.GetJob(ctx, companyID, *jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &types.NotFoundError{Resource: "job", ID: jobID.String()}
	}
	return job, nil
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}

	var req types.CreateCandidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create candidate", err)
		return
	}
	if _, err := s.jobFor(r.Context(), companyID, req.JobID); err != nil {
		writeError(w, "create candidate", err)
		return
	}

	cand := &db.Candidate{
		CompanyID:    companyID,
		JobID:        req.JobID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		Location:     req.Location,
		LinkedInURL:  req.LinkedInURL,
		PortfolioURL: req.PortfolioURL,
	}
	if err := s.store.CreateCandidate(r.Context(), cand); err != nil {
		writeError(w, "create candidate", err)
		return
	}
	jsonResponse(w, http.StatusCreated, cand)
}

// handleUploadResume creates a candidate from an uploaded resume. The
// document is parsed before anything is stored, so an unreadable resume
// leaves no candidate or artifact behind.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	const op = "upload resume"
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	if err := parseUploadForm(w, r, ingestion.MaxDocumentSize); err != nil {
		writeError(w, op, err)
		return
	}

	jobID, err := formID(r, "job_id")
	if err != nil {
		writeError(w, op, err)
		return
	}
	job, err := s.jobFor(r.Context(), companyID, jobID)
	if err != nil {
		writeError(w, op, err)
		return
	}

	data, filename, err := readFormFile(r, "resume", ingestion.MaxDocumentSize)
	if err != nil {
		writeError(w, op, err)
		return
	}
	parsed, err := s.resumes.Extract(r.Context(), filename, bytes.NewReader(data))
	if err != nil {
		writeError(w, op, err)
		return
	}

	profile := parsed.Profile
	cand := &db.Candidate{
		CompanyID:      companyID,
		JobID:          jobID,
		FirstName:      firstNonEmpty(r.FormValue("first_name"), parsed.FirstName),
		LastName:       firstNonEmpty(r.FormValue("last_name"), parsed.LastName),
		Email:          strings.ToLower(firstNonEmpty(r.FormValue("email"), profile.Email)),
		Phone:          firstNonEmpty(r.FormValue("phone"), profile.Phone),
		Location:       profile.Location,
		ResumeText:     profile.ResumeText,
		WorkExperience: profile.WorkExperience,
		Education:      profile.Education,
		Skills:         profile.Skills,
	}
	if cand.Email == "" {
		writeError(w, op, &types.ValidationError{Field: "email", Message: "no email in the form or the resume"})
		return
	}
	if cand.FirstName == "" {
		writeError(w, op, &types.ValidationError{Field: "first_name", Message: "no name in the form or the resume"})
		return
	}

	rel, err := s.artifacts.Save(artifacts.KindResume, filename, bytes.NewReader(data), ingestion.MaxDocumentSize)
	if err != nil {
		writeError(w, op, err)
		return
	}
	cand.ResumeURL = rel
	if err := s.store.CreateCandidate(r.Context(), cand); err != nil {
		if rmErr := s.artifacts.Remove(rel); rmErr != nil {
			log.Printf("[server] failed to remove orphaned resume %s: %v", rel, rmErr)
		}
		writeError(w, op, err)
		return
	}

	if job != nil {
		s.scoreResume(r.Context(), cand, job, parsed.Text)
	}
	jsonResponse(w, http.StatusCreated, cand)
}

// scoreResume stores a best-effort match score; failures are only logged.
func (s *Server) scoreResume(ctx context.Context, cand *db.Candidate, job *db.Job, resumeText string) {
	match, err := s.resumes.AnalyzeMatch(ctx, resumeText, job.Description, job.Requirements)
	if err != nil {
		log.Printf("[server] resume match for candidate %s skipped: %v", cand.ID, err)
		return
	}
	if err := s.store.UpdateCandidateMatch(ctx, cand.ID, match.MatchScore, match.Feedback); err != nil {
		log.Printf("[server] failed to store resume match for candidate %s: %v", cand.ID, err)
		return
	}
	cand.ResumeMatchScore = &match.MatchScore
	cand.ResumeMatchFeedback = match.Feedback
}

// ownedCandidate loads one of the company's candidates from the {id} path value.
func (s *Server) ownedCandidate(r *http.Request) (*db.Candidate, error) {
	companyID, err := companyFromContext(r)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "id", "candidate")
	if err != nil {
		return nil, err
	}
	cand, err := s.store.GetCandidate(r.Context(), companyID, id)
	if err != nil {
		return nil, err
	}
	if cand == nil {
		return nil, &types.NotFoundError{Resource: "candidate", ID: id.String()}
	}
	return cand, nil
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	cand, err := s.ownedCandidate(r)
	if err != nil {
		writeError(w, "get candidate", err)
		return
	}
	jsonResponse(w, http.StatusOK, cand)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	cand, err := s.ownedCandidate(r)
	if err != nil {
		writeError(w, "delete candidate", err)
		return
	}

	deleted, err := s.store.DeleteCandidate(r.Context(), cand.CompanyID, cand.ID)
	if err != nil {
		writeError(w, "delete candidate", err)
		return
	}
	if !deleted {
		writeError(w, "delete candidate", &types.NotFoundError{Resource: "candidate", ID: cand.ID.String()})
		return
	}
	if cand.ResumeURL != "" {
		if err := s.artifacts.Remove(cand.ResumeURL); err != nil {
			log.Printf("[server] failed to remove resume of candidate %s: %v", cand.ID, err)
		}
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleUpdateCandidateStatus(w http.ResponseWriter, r *http.Request) {
	cand, err := s.ownedCandidate(r)
	if err != nil {
		writeError(w, "update candidate status", err)
		return
	}

	var req types.UpdateCandidateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update candidate status", err)
		return
	}
	if _, err := s.store.UpdateCandidateStatus(r.Context(), cand.CompanyID, cand.ID, req.Status); err != nil {
		writeError(w, "update candidate status", err)
		return
	}
	cand.Status = req.Status
	jsonResponse(w, http.StatusOK, cand)
}

// handleAnalyzeCandidate scores the candidate's resume against their job.
func (s *Server) handleAnalyzeCandidate(w http.ResponseWriter, r *http.Request) {
	const op = "analyze candidate"
	cand, err := s.ownedCandidate(r)
	if err != nil {
		writeError(w, op, err)
		return
	}
	if cand.JobID == nil {
		writeError(w, op, &types.ValidationError{Field: "job_id", Message: "candidate is not attached to a job"})
		return
	}
	if strings.TrimSpace(cand.ResumeText) == "" {
		writeError(w, op, &types.ValidationError{Field: "resume", Message: "candidate has no resume text"})
		return
	}
	job, err := s.jobFor(r.Context(), cand.CompanyID, cand.JobID)
	if err != nil {
		writeError(w, op, err)
		return
	}

	match, err := s.resumes.AnalyzeMatch(r.Context(), cand.ResumeText, job.Description, job.Requirements)
	if err != nil {
		writeError(w, op, err)
		return
	}
	if err := s.store.UpdateCandidateMatch(r.Context(), cand.ID, match.MatchScore, match.Feedback); err != nil {
		writeError(w, op, err)
		return
	}
	jsonResponse(w, http.StatusOK, match)
}

// handleDownloadResume streams the candidate's stored resume file.
func (s *Server) handleDownloadResume(w http.ResponseWriter, r *http.Request) {
	const op = "download resume"
	cand, err := s.ownedCandidate(r)
	if err != nil {
		writeError(w, op, err)
		return
	}
	if cand.ResumeURL == "" {
		writeError(w, op, &types.NotFoundError{Resource: "resume", ID: cand.ID.String()})
		return
	}

	f, err := s.artifacts.Open(cand.ResumeURL)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = &types.NotFoundError{Resource: "resume", ID: cand.ID.String()}
		}
		writeError(w, op, err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		writeError(w, op, err)
		return
	}
	name := path.Base(cand.ResumeURL)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleInviteCandidate(w http.ResponseWriter, r *http.Request) {
	const op = "invite candidate"
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	candidateID, err := pathID(r, "id", "candidate")
	if err != nil {
		writeError(w, op, err)
		return
	}

	var req types.InviteRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}

	inv, err := s.interviews.Invite(r.Context(), interview.InviteParams{
		CompanyID:   companyID,
		CandidateID: candidateID,
		JobID:       req.JobID,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		writeError(w, op, err)
		return
	}
	jsonResponse(w, http.StatusCreated, inv)
}

func formID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &types.ValidationError{Field: name, Message: "must be a UUID"}
	}
	return &id, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
