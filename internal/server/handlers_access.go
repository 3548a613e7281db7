package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/artifacts"
	"github.com/jonathan/interview-agent/internal/types"
)

// maxVideoSize caps a recorded answer upload.
const maxVideoSize = 200 << 20

// ---------------------------------------------------------------------
// Candidate Portal Handlers
//
// These routes are authorized by the access code in the path alone.
// ---------------------------------------------------------------------

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	session, err := s.interviews.GetByAccessCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, "open interview", err)
		return
	}
	jsonResponse(w, http.StatusOK, session)
}

// codeAndQuestion reads the {code} and {question_id} path values.
func codeAndQuestion(r *http.Request) (string, uuid.UUID, error) {
	questionID, err := pathID(r, "question_id", "question")
	return r.PathValue("code"), questionID, err
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	code, questionID, err := codeAndQuestion(r)
	if err != nil {
		writeError(w, "submit response", err)
		return
	}

	var req types.SubmitResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "submit response", err)
		return
	}

	resp, err := s.interviews.SubmitResponse(r.Context(), code, questionID, req)
	if err != nil {
		writeError(w, "submit response", err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTranscript(w http.ResponseWriter, r *http.Request) {
	code, questionID, err := codeAndQuestion(r)
	if err != nil {
		writeError(w, "update transcript", err)
		return
	}

	var req types.UpdateTranscriptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update transcript", err)
		return
	}

	resp, err := s.interviews.UpdateTranscript(r.Context(), code, questionID, req.Transcript)
	if err != nil {
		writeError(w, "update transcript", err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeResponse(w http.ResponseWriter, r *http.Request) {
	code, questionID, err := codeAndQuestion(r)
	if err != nil {
		writeError(w, "analyze response", err)
		return
	}

	resp, err := s.interviews.AnalyzeResponse(r.Context(), code, questionID)
	if err != nil {
		writeError(w, "analyze response", err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleFollowup(w http.ResponseWriter, r *http.Request) {
	code, questionID, err := codeAndQuestion(r)
	if err != nil {
		writeError(w, "follow-up", err)
		return
	}

	var req types.FollowupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "follow-up", err)
		return
	}

	text, err := s.interviews.Followup(r.Context(), code, questionID, req.Response)
	if err != nil {
		writeError(w, "follow-up", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"follow_up": text})
}

func (s *Server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	var req types.NextQuestionRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, "next question", err)
		return
	}

	q, err := s.interviews.NextQuestion(r.Context(), r.PathValue("code"), req.Conversation)
	if err != nil {
		writeError(w, "next question", err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"question": q})
}

func (s *Server) handleProcessResponse(w http.ResponseWriter, r *http.Request) {
	var req types.ProcessResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "process response", err)
		return
	}

	text, err := s.interviews.ProcessResponse(r.Context(), r.PathValue("code"), req)
	if err != nil {
		writeError(w, "process response", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"response": text})
}

func (s *Server) handleCompleteByCode(w http.ResponseWriter, r *http.Request) {
	var req types.CompleteInterviewRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, "complete interview", err)
		return
	}

	iv, err := s.interviews.CompleteByCode(r.Context(), r.PathValue("code"), req)
	if err != nil {
		writeError(w, "complete interview", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":       iv.Status,
		"completed_at": iv.CompletedAt,
	})
}

// handleUploadVideo stores a recorded answer and returns the reference to
// submit with the response.
func (s *Server) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	const op = "upload video"
	iv, err := s.interviews.Active(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, op, err)
		return
	}
	if err := parseUploadForm(w, r, maxVideoSize); err != nil {
		writeError(w, op, err)
		return
	}
	file, header, err := formFile(r, "video", maxVideoSize)
	if err != nil {
		writeError(w, op, err)
		return
	}
	defer func() { _ = file.Close() }()

	rel, err := s.artifacts.Save(artifacts.KindVideo, header.Filename, file, maxVideoSize)
	if err != nil {
		writeError(w, op, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]string{"video_url": rel, "interview_id": iv.ID.String()})
}
