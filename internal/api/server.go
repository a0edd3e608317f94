package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgnsrekt/speechbox-go/internal/config"
	"github.com/dgnsrekt/speechbox-go/internal/history"
	"github.com/dgnsrekt/speechbox-go/internal/speech"
)

// Generator runs a synthesis request end to end.
type Generator interface {
	Generate(ctx context.Context, req speech.Request) (*speech.Result, error)
}

// HistoryStore is the persistence surface the HTTP layer reads and writes.
type HistoryStore interface {
	ListAudioHistory(ctx context.Context, page, limit int, search string) ([]history.AudioHistory, history.Pagination, error)
	GetAudioHistory(ctx context.Context, id string) (*history.AudioHistory, error)
	DeleteAudioHistory(ctx context.Context, id string) error
	BatchDeleteAudioHistory(ctx context.Context, ids []string) (deleted, failed int)
	Stats(ctx context.Context) (*history.Stats, error)
	ListVoiceModels(ctx context.Context) ([]history.VoiceModel, error)
	CreateVoiceModel(ctx context.Context, voice *history.VoiceModel) error
	UpdateVoiceModel(ctx context.Context, id string, update history.VoiceModelUpdate) (*history.VoiceModel, error)
	DeleteVoiceModel(ctx context.Context, id string) error
}

// Server handles HTTP API requests.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	store     HistoryStore
	generator Generator
}

// New creates a new API server.
func New(cfg *config.Config, logger *slog.Logger, store HistoryStore, generator Generator) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		generator: generator,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api", s.handleAPIIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/tts", s.handleTTS)
	mux.HandleFunc("GET /api/history", s.handleListHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleDeleteHistory)
	mux.HandleFunc("POST /api/history/batch-delete", s.handleBatchDelete)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/voices", s.handleListVoices)
	mux.HandleFunc("POST /api/voices", s.withAuth(s.handleCreateVoice))
	mux.HandleFunc("PUT /api/voices/{id}", s.withAuth(s.handleUpdateVoice))
	mux.HandleFunc("DELETE /api/voices/{id}", s.withAuth(s.handleDeleteVoice))
	mux.HandleFunc("/", s.handleNotFound)

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		// synthesis holds the connection while the provider works
		WriteTimeout: cfg.SynthesisTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
