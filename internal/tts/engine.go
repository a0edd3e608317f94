package tts

import "context"

// SynthesizeRequest contains parameters for TTS synthesis.
type SynthesizeRequest struct {
	Text   string
	Voice  string
	Format string
}

// AudioResult represents synthesized audio output.
type AudioResult struct {
	// Data contains the raw audio bytes.
	Data []byte
	// Format describes the audio format actually produced ("mp3" or "wav").
	// It can differ from the requested format when an engine only produces
	// one container.
	Format string
}

// Engine is the interface for text-to-speech synthesis.
type Engine interface {
	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, req SynthesizeRequest) (*AudioResult, error)
	// Name returns the engine identifier.
	Name() string
}
