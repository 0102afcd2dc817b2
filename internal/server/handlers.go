package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mobsec-labs/secrethunter/pkg/apk"
	"github.com/mobsec-labs/secrethunter/pkg/jobs"
)

// scanResponse is the POST /scan reply shape.
type scanResponse struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	SecretsCount int    `json:"secrets_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "secrethunter"})
}

// handleScan accepts a multipart APK upload, runs the pipeline synchronously
// and replies once the job has reached a terminal state. The upload spool
// file is removed on every exit path.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	upload, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload exceeds size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no file provided"})
		return
	}
	defer func() { _ = upload.Close() }()

	filename := header.Filename
	if filename == "" {
		filename = newJobID() + ".apk"
	}

	spool, err := os.CreateTemp(s.config.UploadDir, "secrethunter-upload-*.apk")
	if err != nil {
		log.Error().Err(err).Msg("Failed creating upload spool file")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed storing upload"})
		return
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	size, err := io.Copy(spool, upload)
	if err != nil {
		log.Error().Err(err).Msg("Failed spooling upload")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed storing upload"})
		return
	}

	jobID := newJobID()
	if err := s.store.Create(jobID, filename); err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed creating job")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	log.Info().Str("jobId", jobID).Str("filename", filename).
		Uint64("uncompressedSize", apk.UncompressedSize(spool, size)).
		Msg("Scan accepted")

	record, err := s.pipeline.Run(r.Context(), jobID, spool, size)
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Pipeline failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{
		JobID:        record.ID,
		Status:       string(record.Status),
		SecretsCount: len(record.Findings),
	})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	record, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, s.store.List(limit))
}

// newJobID generates an opaque, globally unique job identifier.
func newJobID() string {
	return "secret-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed encoding response")
	}
}
