package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/interview-agent/internal/types"
)

// maxAudioSize matches the transcription provider's upload limit.
const maxAudioSize = 25 << 20

// ---------------------------------------------------------------------
// AI Utility Handlers
// ---------------------------------------------------------------------

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	const op = "transcribe audio"
	if err := parseUploadForm(w, r, maxAudioSize); err != nil {
		writeError(w, op, err)
		return
	}
	file, header, err := formFile(r, "audio", maxAudioSize)
	if err != nil {
		writeError(w, op, err)
		return
	}
	defer func() { _ = file.Close() }()

	text, err := s.gateway.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, op, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req types.SpeechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "synthesize speech", err)
		return
	}

	audio, err := s.gateway.Speak(r.Context(), req.Text)
	if err != nil {
		writeError(w, "synthesize speech", err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		log.Printf("[server] failed to write speech audio: %v", err)
	}
}
