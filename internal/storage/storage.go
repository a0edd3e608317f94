// Package storage encodes synthesized audio for transport. The service runs
// in direct mode: audio leaves the API as an inline data URL and is never
// written to object storage, so audio keys exist for bookkeeping only.
package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// encodeChunkSize bounds the intermediate buffers fed to the base64 encoder.
const encodeChunkSize = 8192

// ErrEncodingFailed is returned when audio data cannot be encoded.
var ErrEncodingFailed = errors.New("failed to encode audio data")

// MimeType returns the media type for an audio format tag. Anything that is
// not mp3 is treated as WAV, matching the synthesis format mapping.
func MimeType(format string) string {
	if format == "mp3" {
		return "audio/mpeg"
	}
	return "audio/wav"
}

// EncodeAudio converts raw audio bytes into a single base64 data URL.
// The input is encoded in bounded chunks but the output is one unbroken
// base64 stream; decoding it recovers the exact original bytes.
func EncodeAudio(data []byte, format string) (string, error) {
	var b strings.Builder
	b.Grow(len(data)/3*4 + 64)

	b.WriteString("data:")
	b.WriteString(MimeType(format))
	b.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &b)
	for off := 0; off < len(data); off += encodeChunkSize {
		end := off + encodeChunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := enc.Write(data[off:end]); err != nil {
			return "", ErrEncodingFailed
		}
	}
	if err := enc.Close(); err != nil {
		return "", ErrEncodingFailed
	}

	return b.String(), nil
}

// GenerateAudioKey returns a bookkeeping key of the form
// audio/<date>/<uuid>.<format>. No object is ever stored under the key;
// it is persisted alongside history records only.
func GenerateAudioKey(format string) string {
	date := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf("audio/%s/%s.%s", date, uuid.New().String(), format)
}
