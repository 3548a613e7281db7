package server

import (
	"bytes"
	"log"
	"net/http"

	"github.com/jonathan/interview-agent/internal/artifacts"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/ingestion"
	"github.com/jonathan/interview-agent/internal/publiclink"
	"github.com/jonathan/interview-agent/internal/resume"
	"github.com/jonathan/interview-agent/internal/types"
)

// ---------------------------------------------------------------------
// Public Link Handlers (company side)
// ---------------------------------------------------------------------

func (s *Server) handleListPublicLinks(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	jobID, err := pathID(r, "id", "job")
	if err != nil {
		writeError(w, "list public links", err)
		return
	}

	links, err := s.links.List(r.Context(), companyID, jobID)
	if err != nil {
		writeError(w, "list public links", err)
		return
	}
	if links == nil {
		links = []db.PublicLink{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"links": links, "count": len(links)})
}

func (s *Server) handleCreatePublicLink(w http.ResponseWriter, r *http.Request) {
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	jobID, err := pathID(r, "id", "job")
	if err != nil {
		writeError(w, "create public link", err)
		return
	}

	var req types.CreatePublicLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create public link", err)
		return
	}

	link, err := s.links.Create(r.Context(), companyID, jobID, req)
	if err != nil {
		writeError(w, "create public link", err)
		return
	}
	jsonResponse(w, http.StatusCreated, link)
}

func (s *Server) handleSetPublicLinkActive(w http.ResponseWriter, r *http.Request) {
	const op = "update public link"
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	jobID, err := pathID(r, "id", "job")
	if err != nil {
		writeError(w, op, err)
		return
	}
	linkID, err := pathID(r, "link_id", "public link")
	if err != nil {
		writeError(w, op, err)
		return
	}

	var req types.SetLinkActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}

	link, err := s.links.SetActive(r.Context(), companyID, jobID, linkID, *req.IsActive)
	if err != nil {
		writeError(w, op, err)
		return
	}
	jsonResponse(w, http.StatusOK, link)
}

func (s *Server) handleDeletePublicLink(w http.ResponseWriter, r *http.Request) {
	const op = "delete public link"
	companyID, ok := company(w, r)
	if !ok {
		return
	}
	jobID, err := pathID(r, "id", "job")
	if err != nil {
		writeError(w, op, err)
		return
	}
	linkID, err := pathID(r, "link_id", "public link")
	if err != nil {
		writeError(w, op, err)
		return
	}

	if err := s.links.Delete(r.Context(), companyID, jobID, linkID); err != nil {
		writeError(w, op, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------
// Public Link Handlers (visitor side)
// ---------------------------------------------------------------------

func (s *Server) handleResolvePublicLink(w http.ResponseWriter, r *http.Request) {
	res, err := s.links.Resolve(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, "resolve public link", err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// handleStartPublicInterview accepts the applicant as JSON, or as a
// multipart form with an optional "resume" file.
func (s *Server) handleStartPublicInterview(w http.ResponseWriter, r *http.Request) {
	const op = "start public interview"
	code := r.PathValue("code")

	// Reject dead links before reading uploads or calling the AI service.
	if _, err := s.links.Check(r.Context(), code); err != nil {
		writeError(w, op, err)
		return
	}

	var (
		req       types.StartPublicInterviewRequest
		applicant publiclink.Applicant
	)
	if isMultipart(r) {
		if err := parseUploadForm(w, r, ingestion.MaxDocumentSize); err != nil {
			writeError(w, op, err)
			return
		}
		req = types.StartPublicInterviewRequest{
			FirstName: r.FormValue("first_name"),
			LastName:  r.FormValue("last_name"),
			Email:     r.FormValue("email"),
			Phone:     r.FormValue("phone"),
		}
		if err := types.ValidateStruct(&req); err != nil {
			writeError(w, op, err)
			return
		}
		if r.MultipartForm != nil && len(r.MultipartForm.File["resume"]) > 0 {
			parsed, rel, err := s.storeResume(r)
			if err != nil {
				writeError(w, op, err)
				return
			}
			applicant.Resume = parsed
			applicant.ResumeURL = rel
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}

	applicant.FirstName = req.FirstName
	applicant.LastName = req.LastName
	applicant.Email = req.Email
	applicant.Phone = req.Phone

	inv, err := s.links.StartInterview(r.Context(), code, applicant)
	if err != nil {
		if applicant.ResumeURL != "" {
			if rmErr := s.artifacts.Remove(applicant.ResumeURL); rmErr != nil {
				log.Printf("[server] failed to remove orphaned resume %s: %v", applicant.ResumeURL, rmErr)
			}
		}
		writeError(w, op, err)
		return
	}
	jsonResponse(w, http.StatusCreated, inv)
}

// storeResume parses the uploaded "resume" file and, when it is readable,
// saves it as an artifact.
func (s *Server) storeResume(r *http.Request) (*resume.Parsed, string, error) {
	data, filename, err := readFormFile(r, "resume", ingestion.MaxDocumentSize)
	if err != nil {
		return nil, "", err
	}
	parsed, err := s.resumes.Extract(r.Context(), filename, bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	rel, err := s.artifacts.Save(artifacts.KindResume, filename, bytes.NewReader(data), ingestion.MaxDocumentSize)
	if err != nil {
		return nil, "", err
	}
	return parsed, rel, nil
}
