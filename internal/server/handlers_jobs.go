package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/types"
)

// ---------------------------------------------------------------------
// Job Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}

	jobs, err := s.store.ListJobs(r.Context(), companyID)
	if err != nil {
		writeError(w, "list jobs", err)
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}

	var req types.CreateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create job", err)
		return
	}
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax {
		writeError(w, "create job", &types.ValidationError{Field: "salary_max", Message: "must not be less than salary_min"})
		return
	}

	job := &db.Job{
		CompanyID:      companyID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Department:     req.Department,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Experience:     req.Experience,
		Requirements:   req.Requirements,
		Benefits:       req.Benefits,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		ShowSalary:     req.ShowSalary,
		Status:         req.Status,
	}
	if job.EmploymentType == "" {
		job.EmploymentType = "full-time"
	}
	if job.Status == "" {
		job.Status = db.JobStatusActive
	}
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		writeError(w, "create job", err)
		return
	}
	jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleGenerateJobContent(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateJobContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "generate job content", err)
		return
	}

	content, err := s.jobContent.Generate(r.Context(), req)
	if err != nil {
		writeError(w, "generate job content", err)
		return
	}
	jsonResponse(w, http.StatusOK, content)
}

// ownedJob loads one of the company's jobs from the {id} path value.
func (s *Server) ownedJob(r *http.Request) (*db.Job, error) {
	companyID, err := companyFromContext(r)
	if err != nil {
		return nil, err
	}
	jobID, err := pathID(r, "id", "job")
	if err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(r.Context(), companyID, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &types.NotFoundError{Resource: "job", ID: jobID.String()}
	}
	return job, nil
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r)
	if err != nil {
		writeError(w, "get job", err)
		return
	}
	jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	jobID, err := pathID(r, "id", "job")
	if err != nil {
		writeError(w, "delete job", err)
		return
	}

	deleted, err := s.store.DeleteJob(r.Context(), companyID, jobID)
	if err != nil {
		writeError(w, "delete job", err)
		return
	}
	if !deleted {
		writeError(w, "delete job", &types.NotFoundError{Resource: "job", ID: jobID.String()})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------
// Interview Settings Handlers
// ---------------------------------------------------------------------

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r)
	if err != nil {
		writeError(w, "get interview settings", err)
		return
	}

	settings, err := s.store.GetInterviewSettings(r.Context(), job.ID)
	if err != nil {
		writeError(w, "get interview settings", err)
		return
	}
	if settings == nil {
		settings = db.DefaultInterviewSettings(job.ID)
	}
	jsonResponse(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r)
	if err != nil {
		writeError(w, "update interview settings", err)
		return
	}

	var req types.InterviewSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update interview settings", err)
		return
	}

	custom := make(db.StringArray, 0, len(req.CustomQuestions))
	for _, q := range req.CustomQuestions {
		if q = strings.TrimSpace(q); q != "" {
			custom = append(custom, q)
		}
	}
	settings := &db.InterviewSettings{
		JobID:                  job.ID,
		IncludeTechnical:       req.IncludeTechnical,
		IncludeBehavioral:      req.IncludeBehavioral,
		IncludeProblemSolving:  req.IncludeProblemSolving,
		IncludeCustomQuestions: req.IncludeCustomQuestions,
		CustomQuestions:        custom,
		PreparationTime:        req.PreparationTime,
	}
	if settings.PreparationTime == 0 {
		settings.PreparationTime = db.DefaultPreparationTime
	}
	if err := s.store.UpsertInterviewSettings(r.Context(), settings); err != nil {
		writeError(w, "update interview settings", err)
		return
	}
	jsonResponse(w, http.StatusOK, settings)
}
