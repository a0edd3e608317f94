package storage

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dgnsrekt/speechbox-go/internal/wav"
)

func TestMimeType(t *testing.T) {
	tests := []struct {
		format string
		expect string
	}{
		{"mp3", "audio/mpeg"},
		{"wav", "audio/wav"},
		{"ogg", "audio/wav"}, // non-mp3 formats are treated as WAV
		{"", "audio/wav"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := MimeType(tt.format); got != tt.expect {
				t.Errorf("MimeType(%q) = %q, want %q", tt.format, got, tt.expect)
			}
		})
	}
}

// decodeDataURL strips the data URL prefix and decodes the base64 payload.
func decodeDataURL(t *testing.T, dataURL, wantMime string) []byte {
	t.Helper()

	prefix := "data:" + wantMime + ";base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		t.Fatalf("data URL prefix = %q, want %q", dataURL[:min(len(dataURL), len(prefix))], prefix)
	}

	decoded, err := base64.StdEncoding.DecodeString(dataURL[len(prefix):])
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return decoded
}

func TestEncodeAudio_RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0xFF, 0x7F, 0x80}

	dataURL, err := EncodeAudio(data, "mp3")
	if err != nil {
		t.Fatalf("EncodeAudio() error = %v", err)
	}

	decoded := decodeDataURL(t, dataURL, "audio/mpeg")
	if !bytes.Equal(decoded, data) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded, data)
	}
}

func TestEncodeAudio_Empty(t *testing.T) {
	dataURL, err := EncodeAudio(nil, "wav")
	if err != nil {
		t.Fatalf("EncodeAudio() error = %v", err)
	}

	if dataURL != "data:audio/wav;base64," {
		t.Errorf("EncodeAudio(nil) = %q", dataURL)
	}
}

func TestEncodeAudio_WAVRoundTrip(t *testing.T) {
	data := wav.CreateMinimal(1000, wav.ToneSampleRate, wav.ToneChannels, wav.ToneBitsPerSample)

	dataURL, err := EncodeAudio(data, "wav")
	if err != nil {
		t.Fatalf("EncodeAudio() error = %v", err)
	}

	decoded := decodeDataURL(t, dataURL, "audio/wav")
	if !bytes.Equal(decoded, data) {
		t.Error("WAV round trip mismatch")
	}
}

func TestEncodeAudio_LargeBuffer(t *testing.T) {
	// Larger than 1MB and not a multiple of the chunk size, so the last
	// chunk is partial and crosses base64 group boundaries.
	data := make([]byte, 1_500_001)
	for i := range data {
		data[i] = byte(i * 31)
	}

	dataURL, err := EncodeAudio(data, "mp3")
	if err != nil {
		t.Fatalf("EncodeAudio() error = %v", err)
	}

	decoded := decodeDataURL(t, dataURL, "audio/mpeg")
	if !bytes.Equal(decoded, data) {
		t.Error("large buffer round trip mismatch")
	}
}

func TestGenerateAudioKey(t *testing.T) {
	key := GenerateAudioKey("mp3")

	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		t.Fatalf("key %q should have 3 segments", key)
	}

	if parts[0] != "audio" {
		t.Errorf("key prefix = %q, want audio", parts[0])
	}

	// Middle segment is an ISO date
	if len(parts[1]) != len("2006-01-02") {
		t.Errorf("key date = %q, want YYYY-MM-DD", parts[1])
	}

	// Last segment is <uuid>.<format>
	name, ext, ok := strings.Cut(parts[2], ".")
	if !ok || ext != "mp3" {
		t.Fatalf("key file = %q, want <uuid>.mp3", parts[2])
	}
	if _, err := uuid.Parse(name); err != nil {
		t.Errorf("key file name %q is not a UUID: %v", name, err)
	}
}

func TestGenerateAudioKey_Unique(t *testing.T) {
	a := GenerateAudioKey("wav")
	b := GenerateAudioKey("wav")
	if a == b {
		t.Errorf("expected unique keys, got %q twice", a)
	}
}
