package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com"
	defaultModel    = "gemini-2.5-flash-preview-tts"
)

// Option is a functional option for configuring the Gemini Client.
type Option func(*Client)

// WithModel sets the generative model used for synthesis.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithEndpoint overrides the API base URL. Mostly useful in tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithHTTPClient swaps the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client implements Synthesizer backed by the Gemini TTS REST API.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Gemini synthesis client. apiKey must be non-empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:     apiKey,
		model:      defaultModel,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ---- request/response types ----

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Synthesize asks Gemini to render text in the given voice and returns the
// decoded PCM plus the voice's playback rate.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (Clip, error) {
	if strings.TrimSpace(text) == "" {
		return Clip{}, ErrEmptyText
	}
	voice := VoiceByID(voiceID)

	body, err := json.Marshal(buildRequest(text, voice.Backend))
	if err != nil {
		return Clip{}, fmt.Errorf("gemini: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Clip{}, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Clip{}, fmt.Errorf("gemini: call API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Clip{}, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Clip{}, fmt.Errorf("gemini: unexpected status %d: %s", resp.StatusCode, apiErrorMessage(raw))
	}

	pcm, err := extractAudio(raw)
	if err != nil {
		return Clip{}, err
	}
	return Clip{PCM: pcm, Rate: voice.Rate}, nil
}

func buildRequest(text, backendVoice string) generateRequest {
	return generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: backendVoice},
				},
			},
		},
	}
}

// extractAudio pulls the first inline audio part out of a generateContent
// response and decodes it from base64.
func extractAudio(raw []byte) ([]byte, error) {
	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	for _, cand := range gr.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("gemini: decode audio: %w", err)
			}
			return pcm, nil
		}
	}
	return nil, ErrEmptyAudio
}

func apiErrorMessage(raw []byte) string {
	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err == nil && gr.Error != nil && gr.Error.Message != "" {
		return gr.Error.Message
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
