package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yarimal/ai-crm/pkg/logging"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiRenderer calls the Gemini TTS model over REST. The SDK used for
// text generation does not expose the audio response modality, so this
// client speaks the generateContent wire format directly.
type GeminiRenderer struct {
	apiKey     string
	modelID    string
	voice      string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// GeminiOption is a functional option for configuring the renderer.
type GeminiOption func(*GeminiRenderer)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(r *GeminiRenderer) { r.httpClient = client }
}

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(url string) GeminiOption {
	return func(r *GeminiRenderer) { r.baseURL = strings.TrimRight(url, "/") }
}

// WithVoice selects the prebuilt voice.
func WithVoice(voice string) GeminiOption {
	return func(r *GeminiRenderer) { r.voice = voice }
}

// NewGeminiRenderer creates a TTS renderer.
func NewGeminiRenderer(apiKey, modelID string, logger *logging.Logger, opts ...GeminiOption) (*GeminiRenderer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("speech: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash-preview-tts"
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &GeminiRenderer{
		apiKey:     apiKey,
		modelID:    modelID,
		voice:      "Kore",
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type ttsRequest struct {
	Contents         []ttsContent        `json:"contents"`
	GenerationConfig ttsGenerationConfig `json:"generationConfig"`
}

type ttsContent struct {
	Parts []ttsPart `json:"parts"`
}

type ttsPart struct {
	Text string `json:"text"`
}

type ttsGenerationConfig struct {
	ResponseModalities []string        `json:"responseModalities"`
	SpeechConfig       ttsSpeechConfig `json:"speechConfig"`
}

type ttsSpeechConfig struct {
	VoiceConfig ttsVoiceConfig `json:"voiceConfig"`
}

type ttsVoiceConfig struct {
	PrebuiltVoiceConfig ttsPrebuiltVoice `json:"prebuiltVoiceConfig"`
}

type ttsPrebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type ttsResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Render synthesizes speech for text and returns a base64 WAV payload.
func (r *GeminiRenderer) Render(ctx context.Context, text string) (string, string, error) {
	clean := CleanText(text)
	if clean == "" {
		return "", "", errors.New("speech: nothing to render")
	}

	payload := ttsRequest{
		Contents: []ttsContent{{Parts: []ttsPart{{Text: clean}}}},
		GenerationConfig: ttsGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: ttsSpeechConfig{
				VoiceConfig: ttsVoiceConfig{
					PrebuiltVoiceConfig: ttsPrebuiltVoice{VoiceName: r.voice},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("speech: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", r.baseURL, r.modelID, r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("speech: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("speech: tts call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", "", fmt.Errorf("speech: tts returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(slurp)))
	}

	var parsed ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("speech: decode response: %w", err)
	}

	pcm, err := extractPCM(parsed)
	if err != nil {
		return "", "", err
	}

	wav := wrapPCM(pcm)
	r.logger.Debug("speech rendered", "pcm_bytes", len(pcm), "wav_bytes", len(wav))
	return base64.StdEncoding.EncodeToString(wav), "audio/wav", nil
}

func extractPCM(parsed ttsResponse) ([]byte, error) {
	for _, c := range parsed.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("speech: decode audio payload: %w", err)
			}
			return pcm, nil
		}
	}
	return nil, errors.New("speech: tts response carried no audio")
}
