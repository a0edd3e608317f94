package speech

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dgnsrekt/speechbox-go/internal/history"
	"github.com/dgnsrekt/speechbox-go/internal/storage"
	"github.com/dgnsrekt/speechbox-go/internal/tts"
)

var (
	// ErrNoTTSEngine is returned when no TTS engine is available.
	ErrNoTTSEngine = errors.New("no TTS engine available")
	// ErrEncodingFailed is returned when the audio payload cannot be encoded.
	ErrEncodingFailed = errors.New("audio encoding failed")
)

// DefaultModel is the model tag recorded when the caller omits one.
const DefaultModel = "speech-1.5"

// Recorder is the slice of the history store the service writes through.
type Recorder interface {
	CreateAudioHistory(ctx context.Context, rec *history.AudioHistory) error
}

// Request describes one synthesis call.
type Request struct {
	Text    string
	VoiceID string
	Model   string
	Format  string
}

// Result is the completed synthesis, with audio inlined as a data URL.
type Result struct {
	ID        string    `json:"id"`
	AudioData string    `json:"audioData"`
	Text      string    `json:"text"`
	VoiceID   *string   `json:"voiceId"`
	Model     string    `json:"model"`
	Format    string    `json:"format"`
	FileSize  int64     `json:"fileSize"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service orchestrates synthesis: provider attempt, synthetic fallback,
// encoding, and history persistence.
type Service struct {
	registry *tts.Registry
	store    Recorder
	logger   *slog.Logger
}

// NewService creates a new synthesis service.
func NewService(registry *tts.Registry, store Recorder, logger *slog.Logger) *Service {
	return &Service{
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Generate runs one synthesis request end to end. Provider failures are
// absorbed: the caller still gets playable audio, produced by the
// fallback engine and forced to WAV.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Model == "" {
		req.Model = DefaultModel
	}
	if req.Format == "" {
		req.Format = "mp3"
	}

	engine, err := s.registry.Default()
	if err != nil {
		return nil, ErrNoTTSEngine
	}

	s.logger.Debug("synthesizing speech",
		"engine", engine.Name(),
		"text_length", len(req.Text),
		"voice", req.VoiceID,
	)

	// When no provider is configured the fallback engine is already the
	// default, and its audio gets the fallback duration estimate.
	usedFallback := engine.Name() == "fallback"
	audio, err := engine.Synthesize(ctx, tts.SynthesizeRequest{
		Text:   req.Text,
		Voice:  req.VoiceID,
		Format: req.Format,
	})
	if err != nil {
		s.logger.Warn("synthesis failed, using fallback audio",
			"engine", engine.Name(),
			"error", err,
		)

		fallback, ferr := s.registry.Get("fallback")
		if ferr != nil {
			return nil, ErrNoTTSEngine
		}
		audio, ferr = fallback.Synthesize(ctx, tts.SynthesizeRequest{
			Text:  req.Text,
			Voice: req.VoiceID,
		})
		if ferr != nil {
			return nil, ferr
		}
		usedFallback = true
	}

	// Duration is an estimate from character count. The fallback tone is
	// shorter per character than real speech.
	chars := utf8.RuneCountInString(req.Text)
	duration := (chars + 4) / 5
	if usedFallback {
		duration = (chars + 9) / 10
	}
	if duration < 1 {
		duration = 1
	}

	encoded, err := storage.EncodeAudio(audio.Data, audio.Format)
	if err != nil {
		return nil, errors.Join(ErrEncodingFailed, err)
	}

	var voiceID *string
	if req.VoiceID != "" {
		voiceID = &req.VoiceID
	}

	now := time.Now().UTC()
	rec := &history.AudioHistory{
		ID:        uuid.NewString(),
		Text:      req.Text,
		VoiceID:   voiceID,
		AudioURL:  "direct-mode",
		AudioKey:  storage.GenerateAudioKey(audio.Format),
		Model:     req.Model,
		Format:    audio.Format,
		FileSize:  int64(len(audio.Data)),
		Duration:  duration,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateAudioHistory(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("synthesis complete",
		"id", rec.ID,
		"engine", engine.Name(),
		"fallback", usedFallback,
		"format", rec.Format,
		"bytes", rec.FileSize,
	)

	return &Result{
		ID:        rec.ID,
		AudioData: encoded,
		Text:      rec.Text,
		VoiceID:   rec.VoiceID,
		Model:     rec.Model,
		Format:    rec.Format,
		FileSize:  rec.FileSize,
		Duration:  rec.Duration,
		CreatedAt: rec.CreatedAt,
	}, nil
}
