package httpapi

import (
	"errors"
	"io"
	"net/http"

	"concertlog/internal/concert"
)

type autofillTextRequest struct {
	Text string `json:"text"`
}

type autofillResponse struct {
	Draft concert.Draft `json:"draft"`
}

func (s *Server) autofillEnabled(w http.ResponseWriter) bool {
	if s.extractor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "autofill is not configured"})
		return false
	}
	return true
}

func (s *Server) handleAutofillText(w http.ResponseWriter, r *http.Request) {
	if !s.autofillEnabled(w) {
		return
	}

	var req autofillTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	draft, err := s.extractor.FromText(r.Context(), req.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, autofillResponse{Draft: draft})
}

func (s *Server) handleAutofillFile(w http.ResponseWriter, r *http.Request) {
	if !s.autofillEnabled(w) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file exceeds 10 MiB"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read upload"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	draft, err := s.extractor.FromFile(r.Context(), header.Filename, mimeType, data)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, autofillResponse{Draft: draft})
}

func (s *Server) handleAutofillVenue(w http.ResponseWriter, r *http.Request) {
	if !s.autofillEnabled(w) {
		return
	}

	var d concert.Draft
	if !decodeJSON(w, r, &d) {
		return
	}

	city, err := s.extractor.EnrichVenue(r.Context(), d)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		City string `json:"city"`
	}{City: city})
}
