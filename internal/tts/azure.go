package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultAzureVoice is the voice used when a request does not name one.
const DefaultAzureVoice = "zh-CN-XiaoxiaoNeural"

var (
	// ErrNoSubscriptionKey is returned when no Azure Speech key is configured.
	ErrNoSubscriptionKey = errors.New("no azure speech subscription key")
	// ErrSynthesisFailed is returned when TTS synthesis fails.
	ErrSynthesisFailed = errors.New("TTS synthesis failed")
)

// ProviderError reports a non-success response from the speech provider.
// It carries the upstream status code and body text.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("azure speech error: %d - %s", e.StatusCode, e.Body)
}

// AzureConfig holds configuration for the Azure Speech engine.
type AzureConfig struct {
	// Key is the Cognitive Services subscription key.
	Key string
	// Region is the Azure region (e.g., "eastus").
	Region string
	// DefaultVoice is the voice used when a request does not specify one.
	DefaultVoice string
	// Timeout bounds each HTTP call to the provider.
	Timeout time.Duration
	// TokenEndpoint and SynthesisEndpoint override the region-derived URLs.
	// Empty values select the public Azure endpoints.
	TokenEndpoint     string
	SynthesisEndpoint string
}

// AzureEngine implements the Engine interface using Azure Cognitive Services
// Speech. Each synthesis call issues a fresh bearer token and performs a
// single attempt; callers decide what to do on failure.
type AzureEngine struct {
	config     AzureConfig
	logger     *slog.Logger
	httpClient *http.Client
	tokenURL   string
	ttsURL     string
}

// NewAzureEngine creates a new Azure Speech engine.
func NewAzureEngine(cfg AzureConfig, logger *slog.Logger) (*AzureEngine, error) {
	if cfg.Key == "" {
		return nil, ErrNoSubscriptionKey
	}
	if cfg.Region == "" {
		cfg.Region = "eastus"
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = DefaultAzureVoice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	tokenURL := cfg.TokenEndpoint
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken", cfg.Region)
	}

	ttsURL := cfg.SynthesisEndpoint
	if ttsURL == "" {
		ttsURL = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", cfg.Region)
	}

	return &AzureEngine{
		config:     cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokenURL:   tokenURL,
		ttsURL:     ttsURL,
	}, nil
}

// Name returns the engine identifier.
func (e *AzureEngine) Name() string {
	return "azure"
}

// Synthesize converts text to audio using the Azure Speech REST API.
func (e *AzureEngine) Synthesize(ctx context.Context, req SynthesizeRequest) (*AudioResult, error) {
	if req.Text == "" {
		return nil, errors.New("empty text")
	}

	voice := req.Voice
	if voice == "" || voice == "default" {
		voice = e.config.DefaultVoice
	}

	// The provider only distinguishes mp3 from uncompressed PCM.
	format := req.Format
	if format != "mp3" {
		format = "wav"
	}
	outputFormat := "riff-24khz-16bit-mono-pcm"
	if format == "mp3" {
		outputFormat = "audio-24khz-48kbitrate-mono-mp3"
	}

	token, err := e.issueToken(ctx)
	if err != nil {
		return nil, err
	}

	ssml := BuildSSML(req.Text, voice)

	e.logger.Debug("calling azure synthesis endpoint",
		"voice", voice,
		"format", outputFormat,
		"text_length", len(req.Text),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.ttsURL, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", outputFormat)
	httpReq.Header.Set("User-Agent", "speechbox")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no audio output", ErrSynthesisFailed)
	}

	e.logger.Debug("azure synthesis complete", "output_bytes", len(data))

	return &AudioResult{
		Data:   data,
		Format: format,
	}, nil
}

// issueToken requests a short-lived bearer token from the provider.
func (e *AzureEngine) issueToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.config.Key)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	token, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	return string(token), nil
}

// BuildSSML wraps text and voice in a minimal SSML document. The document
// language is inferred from the voice name prefix.
func BuildSSML(text, voice string) string {
	lang := "en-US"
	if strings.HasPrefix(voice, "zh-") {
		lang = "zh-CN"
	}

	return fmt.Sprintf(
		"<speak version='1.0' xml:lang='%s'>\n  <voice xml:lang='%s' name='%s'>\n    %s\n  </voice>\n</speak>",
		lang, lang, voice, escapeXML(text),
	)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeXML escapes the XML special characters in text.
func escapeXML(text string) string {
	return xmlEscaper.Replace(text)
}
