package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgnsrekt/speechbox-go/internal/history"
)

// VoiceListData is the payload for the voice catalog endpoint.
type VoiceListData struct {
	Voices []history.VoiceModel `json:"voices"`
}

// CreateVoiceRequest represents the request body for POST /api/voices.
type CreateVoiceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ReferenceID string  `json:"referenceId"`
	IsDefault   bool    `json:"isDefault,omitempty"`
}

// UpdateVoiceRequest represents the request body for PUT /api/voices/{id}.
// Omitted fields are left unchanged.
type UpdateVoiceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsDefault   *bool   `json:"isDefault,omitempty"`
}

// handleListVoices handles GET /api/voices requests.
func (s *Server) handleListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.store.ListVoiceModels(r.Context())
	if err != nil {
		s.logger.Error("failed to list voices", "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to list voices")
		return
	}

	s.writeData(w, http.StatusOK, VoiceListData{Voices: voices})
}

// handleCreateVoice handles POST /api/voices requests.
func (s *Server) handleCreateVoice(w http.ResponseWriter, r *http.Request) {
	var req CreateVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "name is required")
		return
	}
	if strings.TrimSpace(req.ReferenceID) == "" {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "referenceId is required")
		return
	}

	voice := &history.VoiceModel{
		Name:        req.Name,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
		IsDefault:   req.IsDefault,
	}
	if err := s.store.CreateVoiceModel(r.Context(), voice); err != nil {
		s.logger.Error("failed to create voice", "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to create voice")
		return
	}

	s.writeData(w, http.StatusCreated, voice)
}

// handleUpdateVoice handles PUT /api/voices/{id} requests.
func (s *Server) handleUpdateVoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UpdateVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body")
		return
	}

	voice, err := s.store.UpdateVoiceModel(r.Context(), id, history.VoiceModelUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "voice not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update voice", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to update voice")
		return
	}

	s.writeData(w, http.StatusOK, voice)
}

// handleDeleteVoice handles DELETE /api/voices/{id} requests.
func (s *Server) handleDeleteVoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.DeleteVoiceModel(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "voice not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete voice", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to delete voice")
		return
	}

	s.writeData(w, http.StatusOK, map[string]string{"id": id})
}
