package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgnsrekt/speechbox-go/internal/history"
	"github.com/dgnsrekt/speechbox-go/internal/speech"
)

// TTSRequest represents the request body for /api/tts.
type TTSRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
	Model   string `json:"model,omitempty"`
	Format  string `json:"format,omitempty"`
}

// HistoryListData is the payload for the history list endpoint.
type HistoryListData struct {
	History    []history.AudioHistory `json:"history"`
	Pagination history.Pagination     `json:"pagination"`
}

// BatchDeleteRequest represents the request body for batch deletion.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchDeleteData reports per-id outcomes of a batch deletion.
type BatchDeleteData struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// handleRoot handles GET / requests.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]string{
		"name":    "speechbox",
		"message": "text-to-speech service",
		"docs":    "/api",
	})
}

// handleAPIIndex handles GET /api requests.
func (s *Server) handleAPIIndex(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]any{
		"endpoints": []string{
			"POST /api/tts",
			"GET /api/history",
			"GET /api/history/{id}",
			"DELETE /api/history/{id}",
			"POST /api/history/batch-delete",
			"GET /api/stats",
			"GET /api/voices",
			"GET /health",
		},
	})
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"environment": s.cfg.Environment,
		"storageMode": s.cfg.StorageMode,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleNotFound is the JSON catch-all for unmatched paths.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, CodeNotFound, "endpoint not found")
}

// handleTTS handles POST /api/tts requests.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("failed to decode tts request", "error", err)
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, CodeInvalidText, "text is required")
		return
	}

	// The limit is in characters, not bytes; CJK text is three bytes per rune.
	if textLen := utf8.RuneCountInString(req.Text); textLen > s.cfg.MaxTextLength {
		s.logger.Warn("text exceeds max length", "length", textLen, "max", s.cfg.MaxTextLength)
		s.writeError(w, http.StatusBadRequest, CodeTextTooLong, "text exceeds maximum length")
		return
	}

	result, err := s.generator.Generate(r.Context(), speech.Request{
		Text:    req.Text,
		VoiceID: req.VoiceID,
		Model:   req.Model,
		Format:  req.Format,
	})
	if err != nil {
		s.logger.Error("synthesis failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to generate speech")
		return
	}

	s.writeData(w, http.StatusOK, result)
}

// handleListHistory handles GET /api/history requests.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	search := q.Get("search")

	records, pagination, err := s.store.ListAudioHistory(r.Context(), page, limit, search)
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to list history")
		return
	}

	s.writeData(w, http.StatusOK, HistoryListData{
		History:    records,
		Pagination: pagination,
	})
}

// handleGetHistory handles GET /api/history/{id} requests.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := s.store.GetAudioHistory(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "history record not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get history record", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to get history record")
		return
	}

	s.writeData(w, http.StatusOK, rec)
}

// handleDeleteHistory handles DELETE /api/history/{id} requests.
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.DeleteAudioHistory(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "history record not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete history record", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to delete history record")
		return
	}

	s.writeData(w, http.StatusOK, map[string]string{"id": id})
}

// handleBatchDelete handles POST /api/history/batch-delete requests.
func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body")
		return
	}

	if len(req.IDs) == 0 {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "ids must be a non-empty array")
		return
	}

	deleted, failed := s.store.BatchDeleteAudioHistory(r.Context(), req.IDs)

	s.logger.Info("batch delete complete", "requested", len(req.IDs), "deleted", deleted, "failed", failed)

	s.writeData(w, http.StatusOK, BatchDeleteData{
		Deleted: deleted,
		Failed:  failed,
	})
}

// handleStats handles GET /api/stats requests.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to compute stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to compute stats")
		return
	}

	s.writeData(w, http.StatusOK, stats)
}
