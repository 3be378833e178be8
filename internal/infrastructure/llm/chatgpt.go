package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"Blookin/internal/config"
	"Blookin/internal/domain"
	"Blookin/internal/ports"
)

const (
	authorSystemPrompt = "You are an assistant that summarizes author information."
	moodSystemPrompt   = "You are an expert at writing prompts for warm, emotive illustrations."
)

// ChatGPTClient talks to OpenAI-compatible chat-completions APIs. Responses
// are expected to carry a JSON object; anything else degrades to the
// "no information" sentinel pair rather than an error, so orchestrators never
// see a parse failure.
type ChatGPTClient struct {
	endpoint    string
	model       string
	promptModel string
	apiKey      string
	httpClient  *http.Client
	logger      *slog.Logger
}

var _ ports.AuthorSynthesizer = (*ChatGPTClient)(nil)
var _ ports.PromptWriter = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.OpenAIConfig, log *slog.Logger) *ChatGPTClient {
	return &ChatGPTClient{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		promptModel: cfg.PromptModel,
		apiKey:      cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log,
	}
}

type authorPayload struct {
	AuthorBio           string `json:"authorBio"`
	RepresentativeWorks string `json:"representativeWorks"`
}

type moodPayload struct {
	Keywords    string `json:"keywords"`
	ImagePrompt string `json:"imagePrompt"`
}

// ColdStart asks the service for a biography and representative works given
// only the author name. Unknown authors come back as the sentinel pair by
// contract; so does every service or parse failure.
func (c *ChatGPTClient) ColdStart(ctx context.Context, author string) (domain.AuthorProfile, error) {
	prompt := fmt.Sprintf(`Summarize the following two facts about the author '%s' as a JSON object.

Rules:
- "authorBio" is a short description of the author's background and career.
- "representativeWorks" lists the titles of 3-5 representative works, comma-separated, titles only.
- If the author does not exist or you cannot find reliable information, answer "no information" for both fields. Do not invent details.

Example response:
{
  "authorBio": "X is a novelist known for ...",
  "representativeWorks": "Work 1, Work 2, Work 3"
}`, author)

	return c.requestProfile(ctx, prompt)
}

// Synthesize produces a polished biography sentence and a clean works list
// from knowledge-base findings.
func (c *ChatGPTClient) Synthesize(ctx context.Context, author, bookTitle, summary string, works []string) (domain.AuthorProfile, error) {
	if summary == "" {
		summary = domain.NoKnowledgeBaseInfo
	}
	worksStr := domain.NoInformation
	if len(works) > 0 {
		worksStr = strings.Join(works, ", ")
	}

	prompt := fmt.Sprintf(`Using the book information below, write an author introduction and a list of representative works as a JSON object.

Book title: %s
Author: %s
Knowledge-base summary: %s
Works collected from the knowledge base: %s

Rules:
- "authorBio" is a single introductory sentence about the author.
- "representativeWorks" lists work titles only, comma-separated. No prose.

Example response:
{
  "authorBio": "X was born in ... and has written numerous works.",
  "representativeWorks": "Work 1, Work 2, Work 3"
}`, bookTitle, author, summary, worksStr)

	return c.requestProfile(ctx, prompt)
}

// IllustrationPrompt extracts five mood keywords from a discussion post and
// composes an image-generation prompt in a warm, simple illustrative style.
// Unlike the profile calls, failure here is an error: the illustration
// pipeline aborts silently on it.
func (c *ChatGPTClient) IllustrationPrompt(ctx context.Context, thread domain.Thread, book domain.Book) (domain.IllustrationPrompt, error) {
	prompt := fmt.Sprintf(`Analyze the mood of the reading diary below, written after reading '%s' by %s, and extract five mood keywords.
Based on those keywords, write one image-generation prompt that expresses the emotion visually.

The image must feel like a warm, charming illustration from a picture book or a book cafe: soft colors, clean composition, bright atmosphere, digital illustration style. The prompt must explicitly exclude any embedded text or symbols.

<reading-diary>
  <title>%s</title>
  <body>%s</body>
</reading-diary>

Respond as a JSON object:
{
  "keywords": "warmth, hope, excitement, calm, sunlight",
  "imagePrompt": "a cozy illustration of someone drinking warm tea by a sunlit window, bright pastel tones, no text"
}`, book.Title, book.Author, thread.Title, thread.Content)

	raw, err := c.complete(ctx, c.promptModel, moodSystemPrompt, prompt)
	if err != nil {
		return domain.IllustrationPrompt{}, err
	}

	var payload moodPayload
	if err := json.Unmarshal(extractJSON(raw), &payload); err != nil {
		return domain.IllustrationPrompt{}, fmt.Errorf("parse mood response: %w", err)
	}
	if payload.ImagePrompt == "" {
		return domain.IllustrationPrompt{}, fmt.Errorf("mood response missing image prompt")
	}

	return domain.IllustrationPrompt{
		Keywords: payload.Keywords,
		Prompt:   payload.ImagePrompt,
	}, nil
}

func (c *ChatGPTClient) requestProfile(ctx context.Context, prompt string) (domain.AuthorProfile, error) {
	raw, err := c.complete(ctx, c.model, authorSystemPrompt, prompt)
	if err != nil {
		c.warn("author completion failed", "error", err)
		return domain.NoInfoProfile(), nil
	}

	var payload authorPayload
	if err := json.Unmarshal(extractJSON(raw), &payload); err != nil {
		c.warn("author response unparsable", "error", err)
		return domain.NoInfoProfile(), nil
	}

	if payload.AuthorBio == "" && payload.RepresentativeWorks == "" {
		return domain.NoInfoProfile(), nil
	}

	return domain.AuthorProfile{
		Bio:   payload.AuthorBio,
		Works: payload.RepresentativeWorks,
	}, nil
}

func (c *ChatGPTClient) complete(ctx context.Context, model, system, user string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || model == "" {
		return "", fmt.Errorf("chatgpt client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": 0.5,
		"max_tokens":  1024,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion has no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// extractJSON slices the first JSON object out of a completion, tolerating
// code fences and surrounding prose.
func extractJSON(raw string) []byte {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return []byte(raw)
	}
	return []byte(raw[start : end+1])
}

func (c *ChatGPTClient) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
