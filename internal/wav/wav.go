// Package wav provides utilities for WAV audio file handling and
// synthetic audio generation.
package wav

import (
	"math"
	"unicode/utf8"
)

// WAV format constants.
const (
	// HeaderSize is the size of a standard WAV file header in bytes.
	HeaderSize = 44

	// FormatPCM is the audio format code for uncompressed PCM.
	FormatPCM = 1
)

// Synthetic audio configuration constants.
const (
	// ToneSampleRate is the sample rate used for generated audio (44100 Hz).
	ToneSampleRate = 44100

	// ToneChannels is the number of channels for generated audio (mono).
	ToneChannels = 1

	// ToneBitsPerSample is the bit depth for generated audio (16-bit).
	ToneBitsPerSample = 16

	// DefaultToneFrequency is the sine frequency used when none is given (A4).
	DefaultToneFrequency = 440.0

	// toneAmplitude scales samples to 30% of full range.
	toneAmplitude = 0.3

	// beepFrequency is the pitch of the notification beep.
	beepFrequency = 800.0
)

// WrapRawPCM adds a WAV header to raw PCM data.
// Parameters:
//   - pcm: raw PCM audio data bytes
//   - sampleRate: samples per second (e.g., 22050, 44100, 48000)
//   - channels: number of audio channels (1=mono, 2=stereo)
//   - bitsPerSample: bit depth per sample (typically 16)
//
// Returns a complete WAV file as a byte slice.
func WrapRawPCM(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	// WAV header is 44 bytes
	header := make([]byte, HeaderSize)

	// RIFF header
	copy(header[0:4], "RIFF")
	PutLE32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")

	// fmt subchunk
	copy(header[12:16], "fmt ")
	PutLE32(header[16:20], 16) // subchunk size
	PutLE16(header[20:22], FormatPCM)
	PutLE16(header[22:24], uint16(channels))
	PutLE32(header[24:28], uint32(sampleRate))
	PutLE32(header[28:32], uint32(byteRate))
	PutLE16(header[32:34], uint16(blockAlign))
	PutLE16(header[34:36], uint16(bitsPerSample))

	// data subchunk
	copy(header[36:40], "data")
	PutLE32(header[40:44], uint32(dataSize))

	return append(header, pcm...)
}

// PutLE16 writes a uint16 value in little-endian format to a byte slice.
func PutLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// PutLE32 writes a uint32 value in little-endian format to a byte slice.
func PutLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// ToneDuration returns the generated tone length in seconds for the given
// text: one second per ten characters, never less than one second.
// Characters are counted as runes so multibyte text is not overweighted.
func ToneDuration(text string) int {
	d := (utf8.RuneCountInString(text) + 9) / 10
	if d < 1 {
		return 1
	}
	return d
}

// GenerateTone produces a complete WAV file containing a pure sine wave.
// The text is used only to estimate the duration; frequency defaults to
// DefaultToneFrequency when non-positive.
func GenerateTone(text string, frequency float64) []byte {
	if frequency <= 0 {
		frequency = DefaultToneFrequency
	}

	numSamples := ToneSampleRate * ToneDuration(text)
	pcm := make([]byte, numSamples*2)

	for i := 0; i < numSamples; i++ {
		t := float64(i) / ToneSampleRate
		sample := math.Sin(2*math.Pi*frequency*t) * toneAmplitude
		PutLE16(pcm[i*2:], uint16(quantize(sample)))
	}

	return WrapRawPCM(pcm, ToneSampleRate, ToneChannels, ToneBitsPerSample)
}

// GenerateBeep produces a 500ms WAV notification cue: two 150ms pulses at
// 800 Hz with linear amplitude decay, separated by a 100ms gap.
func GenerateBeep() []byte {
	numSamples := ToneSampleRate / 2
	pcm := make([]byte, numSamples*2)

	for i := 0; i < numSamples; i++ {
		t := float64(i) / ToneSampleRate
		var sample float64

		switch {
		case t < 0.15:
			sample = math.Sin(2*math.Pi*beepFrequency*t) * (1 - t/0.15) * toneAmplitude
		case t >= 0.25 && t < 0.4:
			t2 := t - 0.25
			sample = math.Sin(2*math.Pi*beepFrequency*t2) * (1 - t2/0.15) * toneAmplitude
		}

		PutLE16(pcm[i*2:], uint16(quantize(sample)))
	}

	return WrapRawPCM(pcm, ToneSampleRate, ToneChannels, ToneBitsPerSample)
}

// quantize clamps a [-1, 1] sample and scales it to the int16 range.
func quantize(sample float64) int16 {
	if sample > 1 {
		sample = 1
	}
	if sample < -1 {
		sample = -1
	}
	return int16(math.Round(sample * 32767))
}

// CreateMinimal creates a minimal valid WAV file with the specified number of samples.
// This is useful for testing. The samples are initialized to silence (zero).
func CreateMinimal(numSamples, sampleRate, channels, bitsPerSample int) []byte {
	bytesPerSample := bitsPerSample / 8
	dataSize := numSamples * channels * bytesPerSample

	// Create silent PCM data
	pcm := make([]byte, dataSize)

	return WrapRawPCM(pcm, sampleRate, channels, bitsPerSample)
}
