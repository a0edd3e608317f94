package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/dgnsrekt/speechbox-go/internal/history"
	"github.com/dgnsrekt/speechbox-go/internal/logging"
	"github.com/dgnsrekt/speechbox-go/internal/tts"
)

// fakeEngine is a scriptable Engine for orchestration tests.
type fakeEngine struct {
	name   string
	data   []byte
	format string
	err    error
	calls  int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Synthesize(ctx context.Context, req tts.SynthesizeRequest) (*tts.AudioResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &tts.AudioResult{Data: f.data, Format: f.format}, nil
}

// fakeRecorder captures the persisted record.
type fakeRecorder struct {
	rec *history.AudioHistory
	err error
}

func (f *fakeRecorder) CreateAudioHistory(ctx context.Context, rec *history.AudioHistory) error {
	if f.err != nil {
		return f.err
	}
	f.rec = rec
	return nil
}

func newTestService(t *testing.T, primary, fallback *fakeEngine, store *fakeRecorder) *Service {
	t.Helper()

	reg := tts.NewRegistry()
	if err := reg.Register(primary); err != nil {
		t.Fatalf("register primary: %v", err)
	}
	if err := reg.Register(fallback); err != nil {
		t.Fatalf("register fallback: %v", err)
	}
	return NewService(reg, store, logging.New("error", "text"))
}

func TestService_Generate(t *testing.T) {
	primary := &fakeEngine{name: "azure", data: []byte("mp3 bytes"), format: "mp3"}
	fallback := &fakeEngine{name: "fallback", data: []byte("tone"), format: "wav"}
	store := &fakeRecorder{}
	svc := newTestService(t, primary, fallback, store)

	result, err := svc.Generate(context.Background(), Request{
		Text:    "hello there, twenty one",
		VoiceID: "zh-CN-XiaoxiaoNeural",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if fallback.calls != 0 {
		t.Error("fallback should not run when the provider succeeds")
	}
	if result.Format != "mp3" {
		t.Errorf("format = %q, want mp3", result.Format)
	}
	// 23 characters, provider path: ceil(23/5) = 5
	if result.Duration != 5 {
		t.Errorf("duration = %d, want 5", result.Duration)
	}
	if result.Model != DefaultModel {
		t.Errorf("model = %q, want %q", result.Model, DefaultModel)
	}
	if result.FileSize != int64(len("mp3 bytes")) {
		t.Errorf("fileSize = %d", result.FileSize)
	}
	if result.VoiceID == nil || *result.VoiceID != "zh-CN-XiaoxiaoNeural" {
		t.Errorf("voiceId = %v", result.VoiceID)
	}

	if !strings.HasPrefix(result.AudioData, "data:audio/mpeg;base64,") {
		t.Errorf("audioData prefix wrong: %.40s", result.AudioData)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(result.AudioData, "data:audio/mpeg;base64,"))
	if err != nil {
		t.Fatalf("audioData not valid base64: %v", err)
	}
	if string(decoded) != "mp3 bytes" {
		t.Errorf("decoded audio = %q", decoded)
	}

	if store.rec == nil {
		t.Fatal("no history record persisted")
	}
	if store.rec.Format != "mp3" || store.rec.AudioURL != "direct-mode" {
		t.Errorf("persisted record = %+v", store.rec)
	}
	if !strings.HasSuffix(store.rec.AudioKey, ".mp3") {
		t.Errorf("audioKey = %q, want .mp3 suffix", store.rec.AudioKey)
	}
}

func TestService_Generate_FallbackOnProviderError(t *testing.T) {
	primary := &fakeEngine{name: "azure", err: errors.New("provider down")}
	fallback := &fakeEngine{name: "fallback", data: []byte("tone"), format: "wav"}
	store := &fakeRecorder{}
	svc := newTestService(t, primary, fallback, store)

	result, err := svc.Generate(context.Background(), Request{
		Text:   "hello there, twenty one",
		Format: "mp3",
	})
	if err != nil {
		t.Fatalf("Generate() should absorb provider failure, got %v", err)
	}

	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d, want 1", fallback.calls)
	}
	// effective format comes from the fallback audio, not the request
	if result.Format != "wav" {
		t.Errorf("format = %q, want wav", result.Format)
	}
	if store.rec.Format != "wav" {
		t.Errorf("persisted format = %q, want wav", store.rec.Format)
	}
	if !strings.HasPrefix(result.AudioData, "data:audio/wav;base64,") {
		t.Errorf("audioData prefix wrong: %.40s", result.AudioData)
	}
	// 23 characters, fallback path: ceil(23/10) = 3
	if result.Duration != 3 {
		t.Errorf("duration = %d, want 3", result.Duration)
	}
}

func TestService_Generate_BothEnginesFail(t *testing.T) {
	primary := &fakeEngine{name: "azure", err: errors.New("provider down")}
	fallback := &fakeEngine{name: "fallback", err: errors.New("generator broken")}
	svc := newTestService(t, primary, fallback, &fakeRecorder{})

	if _, err := svc.Generate(context.Background(), Request{Text: "hi"}); err == nil {
		t.Error("expected error when fallback also fails")
	}
}

func TestService_Generate_PersistFailure(t *testing.T) {
	primary := &fakeEngine{name: "azure", data: []byte("audio"), format: "mp3"}
	fallback := &fakeEngine{name: "fallback", data: []byte("tone"), format: "wav"}
	store := &fakeRecorder{err: errors.New("db down")}
	svc := newTestService(t, primary, fallback, store)

	if _, err := svc.Generate(context.Background(), Request{Text: "hi"}); err == nil {
		t.Error("expected error when persistence fails")
	}
}

func TestService_Generate_MultibyteDuration(t *testing.T) {
	primary := &fakeEngine{name: "azure", data: []byte("audio"), format: "mp3"}
	fallback := &fakeEngine{name: "fallback", data: []byte("tone"), format: "wav"}
	store := &fakeRecorder{}
	svc := newTestService(t, primary, fallback, store)

	// 20 characters occupying 60 bytes; duration counts characters
	result, err := svc.Generate(context.Background(), Request{Text: strings.Repeat("语", 20)})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Duration != 4 {
		t.Errorf("duration = %d, want 4", result.Duration)
	}
}

func TestService_Generate_FallbackAsDefault(t *testing.T) {
	// Without a provider configured the fallback engine is the only one
	// registered, so it is the default; its estimate must still be the
	// fallback heuristic.
	fallback := &fakeEngine{name: "fallback", data: []byte("tone"), format: "wav"}
	reg := tts.NewRegistry()
	if err := reg.Register(fallback); err != nil {
		t.Fatalf("register fallback: %v", err)
	}
	store := &fakeRecorder{}
	svc := NewService(reg, store, logging.New("error", "text"))

	result, err := svc.Generate(context.Background(), Request{Text: "hello there, twenty one"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// 23 characters, fallback path: ceil(23/10) = 3, not ceil(23/5) = 5
	if result.Duration != 3 {
		t.Errorf("duration = %d, want 3", result.Duration)
	}
	if result.Format != "wav" {
		t.Errorf("format = %q, want wav", result.Format)
	}
}

func TestService_Generate_MinimumDuration(t *testing.T) {
	primary := &fakeEngine{name: "azure", data: []byte("audio"), format: "mp3"}
	fallback := &fakeEngine{name: "fallback", data: []byte("tone"), format: "wav"}
	store := &fakeRecorder{}
	svc := newTestService(t, primary, fallback, store)

	result, err := svc.Generate(context.Background(), Request{Text: "hi"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Duration != 1 {
		t.Errorf("duration = %d, want 1", result.Duration)
	}
}
