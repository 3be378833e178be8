package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"Blookin/internal/config"
	"Blookin/internal/domain"
	"Blookin/internal/ports"
)

// Work titles appear in article bodies wrapped in double angle quotation
// marks, the convention the knowledge base uses for published works.
var worksExpr = regexp.MustCompile(`《(.*?)》`)

// Lookup resolves author names against a MediaWiki instance. Every failure
// mode (transport, non-200, unparsable body, missing page) collapses into a
// zero-value result; the caller sees "no information", never an error.
type Lookup struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

var _ ports.AuthorSource = (*Lookup)(nil)

// NewLookup wires an HTTP client; a nil client gets a bounded default.
func NewLookup(cfg config.WikiConfig, client *http.Client, log *slog.Logger) *Lookup {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Lookup{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    client,
		logger:    log,
	}
}

// Lookup fetches the lead summary, a representative image URL, and work
// titles extracted from the article body.
func (l *Lookup) Lookup(ctx context.Context, author string) (domain.AuthorLookup, error) {
	summary := l.fetchSummary(ctx, author)
	if summary == "" {
		return domain.AuthorLookup{}, nil
	}

	return domain.AuthorLookup{
		Found:    true,
		Summary:  summary,
		ImageURL: l.fetchImage(ctx, author),
		Works:    l.fetchWorks(ctx, author),
	}, nil
}

func (l *Lookup) fetchSummary(ctx context.Context, author string) string {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", author)
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("format", "json")

	var payload struct {
		Query struct {
			Pages map[string]struct {
				Missing *string `json:"missing"`
				Extract string  `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}

	if err := l.getJSON(ctx, params, &payload); err != nil {
		l.debug("summary lookup failed", "author", author, "error", err)
		return ""
	}

	for _, page := range payload.Query.Pages {
		if page.Missing != nil {
			continue
		}
		return strings.TrimSpace(page.Extract)
	}
	return ""
}

func (l *Lookup) fetchImage(ctx context.Context, author string) string {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", author)
	params.Set("prop", "pageimages")
	params.Set("piprop", "original")
	params.Set("format", "json")

	var payload struct {
		Query struct {
			Pages map[string]struct {
				Original struct {
					Source string `json:"source"`
				} `json:"original"`
			} `json:"pages"`
		} `json:"query"`
	}

	if err := l.getJSON(ctx, params, &payload); err != nil {
		l.debug("image lookup failed", "author", author, "error", err)
		return ""
	}

	for _, page := range payload.Query.Pages {
		if page.Original.Source != "" {
			return page.Original.Source
		}
	}
	return ""
}

func (l *Lookup) fetchWorks(ctx context.Context, author string) []string {
	pageURL := l.baseURL + "/wiki/" + url.PathEscape(author)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		l.debug("works page fetch failed", "author", author, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		l.debug("works page parse failed", "author", author, "error", err)
		return nil
	}

	// The infobox concentrates work titles; fall back to the whole article.
	target := doc.Find(".infobox, .infobox-full-data").First()
	text := target.Text()
	if text == "" {
		text = doc.Text()
	}

	seen := map[string]struct{}{}
	var works []string
	for _, match := range worksExpr.FindAllStringSubmatch(text, -1) {
		title := strings.TrimSpace(match[1])
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		works = append(works, title)
	}
	return works
}

func (l *Lookup) getJSON(ctx context.Context, params url.Values, v any) error {
	endpoint := l.baseURL + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("request api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (l *Lookup) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
