package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/types"
)

// ---------------------------------------------------------------------
// Interview Handlers (company side)
// ---------------------------------------------------------------------

var interviewStatuses = map[string]bool{
	db.InterviewStatusPending:    true,
	db.InterviewStatusInProgress: true,
	db.InterviewStatusCompleted:  true,
	db.InterviewStatusCancelled:  true,
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	const op = "list interviews"
	companyID, ok := company(w, r)
	if !ok {
		return
	}

	var (
		filter db.InterviewFilter
		err    error
	)
	if filter.JobID, err = queryID(r, "job_id"); err != nil {
		writeError(w, op, err)
		return
	}
	if filter.CandidateID, err = queryID(r, "candidate_id"); err != nil {
		writeError(w, op, err)
		return
	}
	filter.Status = strings.TrimSpace(r.URL.Query().Get("status"))
	if filter.Status != "" && !interviewStatuses[filter.Status] {
		writeError(w, op, &types.ValidationError{Field: "status", Message: "unknown interview status"})
		return
	}

	interviews, err := s.interviews.List(r.Context(), companyID, filter)
	if err != nil {
		writeError(w, op, err)
		return
	}
	if interviews == nil {
		interviews = []db.Interview{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"interviews": interviews, "count": len(interviews)})
}

func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}

	var req types.CreateInterviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create interview", err)
		return
	}

	iv, err := s.interviews.Create(r.Context(), companyID, req)
	if err != nil {
		writeError(w, "create interview", err)
		return
	}
	jsonResponse(w, http.StatusCreated, iv)
}

// handleGenerateQuestions previews generated questions without storing them.
func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateQuestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "generate questions", err)
		return
	}

	items := s.generator.Generate(r.Context(), questions.Request{
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		ResumeText:     req.ResumeText,
		Categories:     req.Categories,
		MaxQuestions:   req.MaxQuestions,
		Conversation:   req.Conversation,
	})
	jsonResponse(w, http.StatusOK, map[string]any{"questions": items, "count": len(items)})
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", "interview")
	if err != nil {
		writeError(w, "get interview", err)
		return
	}

	iv, err := s.interviews.Get(r.Context(), companyID, id)
	if err != nil {
		writeError(w, "get interview", err)
		return
	}
	jsonResponse(w, http.StatusOK, iv)
}

func (s *Server) handleDeleteInterview(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", "interview")
	if err != nil {
		writeError(w, "delete interview", err)
		return
	}

	if err := s.interviews.Delete(r.Context(), companyID, id); err != nil {
		writeError(w, "delete interview", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", "interview")
	if err != nil {
		writeError(w, "list questions", err)
		return
	}

	qs, err := s.interviews.ListQuestions(r.Context(), companyID, id)
	if err != nil {
		writeError(w, "list questions", err)
		return
	}
	if qs == nil {
		qs = []db.Question{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"questions": qs, "count": len(qs)})
}

func (s *Server) handleAddQuestions(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", "interview")
	if err != nil {
		writeError(w, "add questions", err)
		return
	}

	var req types.AddQuestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "add questions", err)
		return
	}

	qs, err := s.interviews.AddQuestions(r.Context(), companyID, id, req.Questions)
	if err != nil {
		writeError(w, "add questions", err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"questions": qs, "count": len(qs)})
}

func (s *Server) handleCompleteInterview(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", "interview")
	if err != nil {
		writeError(w, "complete interview", err)
		return
	}

	var req types.CompleteInterviewRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, "complete interview", err)
		return
	}

	iv, err := s.interviews.Complete(r.Context(), companyID, id, req)
	if err != nil {
		writeError(w, "complete interview", err)
		return
	}
	jsonResponse(w, http.StatusOK, iv)
}

func (s *Server) handleCancelInterview(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", "interview")
	if err != nil {
		writeError(w, "cancel interview", err)
		return
	}

	iv, err := s.interviews.Cancel(r.Context(), companyID, id)
	if err != nil {
		writeError(w, "cancel interview", err)
		return
	}
	jsonResponse(w, http.StatusOK, iv)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id", "interview")
	if err != nil {
		writeError(w, "get transcript", err)
		return
	}

	entries, err := s.interviews.Transcript(r.Context(), companyID, id)
	if err != nil {
		writeError(w, "get transcript", err)
		return
	}
	if entries == nil {
		entries = []interview.TranscriptEntry{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"interview_id": id, "transcript": entries})
}
