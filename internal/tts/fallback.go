package tts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgnsrekt/speechbox-go/internal/wav"
)

// FallbackConfig holds configuration for the synthetic fallback engine.
type FallbackConfig struct {
	// Frequency is the sine tone frequency in Hz. Zero selects the default.
	Frequency float64
}

// FallbackEngine implements the Engine interface with locally generated
// sine-wave audio, so synthesis requests never dead-end when the cloud
// provider is unreachable.
type FallbackEngine struct {
	frequency float64
	logger    *slog.Logger
}

// NewFallbackEngine creates a new synthetic fallback engine.
func NewFallbackEngine(cfg FallbackConfig, logger *slog.Logger) *FallbackEngine {
	if cfg.Frequency <= 0 {
		cfg.Frequency = wav.DefaultToneFrequency
	}
	return &FallbackEngine{
		frequency: cfg.Frequency,
		logger:    logger,
	}
}

// Name returns the engine identifier.
func (f *FallbackEngine) Name() string {
	return "fallback"
}

// Synthesize produces a sine tone sized to the text. The output is always
// WAV regardless of the requested format.
func (f *FallbackEngine) Synthesize(ctx context.Context, req SynthesizeRequest) (*AudioResult, error) {
	if req.Text == "" {
		return nil, errors.New("empty text")
	}

	data := wav.GenerateTone(req.Text, f.frequency)

	f.logger.Debug("generated fallback audio",
		"output_bytes", len(data),
		"seconds", wav.ToneDuration(req.Text),
	)

	return &AudioResult{
		Data:   data,
		Format: "wav",
	}, nil
}
