package imagegen

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

// Client requests single square images from an OpenAI-compatible image
// generation API and downloads the result.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

var _ ports.ImageGenerator = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		endpoint: cfg.ImagesURL,
		model:    cfg.ImageModel,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate submits the prompt and returns a fetchable image URL.
func (c *Client) Generate(ctx context.Context, prompt, size string) (string, error) {
	if c.endpoint == "" || c.apiKey == "" {
		return "", fmt.Errorf("image client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":   c.model,
		"prompt":  prompt,
		"size":    size,
		"quality": "standard",
		"n":       1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Data) == 0 || payload.Data[0].URL == "" {
		return "", fmt.Errorf("response carries no image url")
	}

	return payload.Data[0].URL, nil
}

// Download fetches the generated image bytes.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image response")
	}

	return image, nil
}
