package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"Blookin/internal/config"
	"Blookin/internal/ports"
)

// Client requests speech synthesis from an external TTS service and returns
// the raw audio artifact. Failures surface as errors; the enrichment
// pipeline treats them as "no audio", not as fatal.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.SpeechSynthesizer = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.SpeechConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize posts the narration text and returns the audio bytes.
func (c *Client) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("tts client misconfigured")
	}

	body, err := json.Marshal(map[string]string{
		"text":     text,
		"language": language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}

	return audio, nil
}
