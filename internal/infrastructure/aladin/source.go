package aladin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Blookin/internal/catalog"
	"Blookin/internal/config"
	"Blookin/internal/domain"
)

const pageSize = 50

// Vendor category names are matched by keyword against our category ids.
// Ordered: the first matching keyword wins.
var categoryKeywords = []struct {
	keyword    string
	categoryID int64
}{
	{"소설", 1},
	{"시", 1},
	{"희곡", 1},
	{"경제", 2},
	{"경영", 2},
	{"자기계발", 3},
	{"자기 계발", 3},
	{"인문", 4},
	{"교양", 4},
	{"과학", 5},
	{"어린이", 6},
	{"청소년", 6},
	{"취미", 7},
	{"실용", 7},
}

// Source pages through the Aladin TTB bestseller list API.
type Source struct {
	baseURL string
	ttbKey  string
	pages   int
	client  *http.Client
	logger  *slog.Logger
}

var _ catalog.Source = (*Source)(nil)

// NewSource wires an HTTP client; pages defaults to 4 (200 records).
func NewSource(cfg config.AladinConfig, client *http.Client, log *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	pages := cfg.Pages
	if pages <= 0 {
		pages = 4
	}
	return &Source{
		baseURL: cfg.BaseURL,
		ttbKey:  cfg.TTBKey,
		pages:   pages,
		client:  client,
		logger:  log,
	}
}

// Name identifies the strategy inside the registry.
func (s *Source) Name() string {
	return "aladin"
}

type listItem struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	Description  string `json:"description"`
	ISBN13       string `json:"isbn13"`
	Cover        string `json:"cover"`
	Publisher    string `json:"publisher"`
	PubDate      string `json:"pubDate"`
	CategoryName string `json:"categoryName"`
}

// FetchBestsellers walks the bestseller pages and returns mappable records.
// Items without a usable ISBN or category are skipped, duplicates removed.
func (s *Source) FetchBestsellers(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	seen := map[string]struct{}{}

	for page := 0; page < s.pages; page++ {
		items, err := s.fetchPage(ctx, 1+page*pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}

		for _, item := range items {
			isbn := strings.TrimSpace(item.ISBN13)
			if isbn == "" {
				continue
			}
			if _, ok := seen[isbn]; ok {
				continue
			}

			categoryID := mapCategory(item.CategoryName)
			if categoryID == 0 {
				continue
			}
			seen[isbn] = struct{}{}

			books = append(books, domain.Book{
				CategoryID:  categoryID,
				Title:       clip(item.Title, 200),
				Author:      clip(item.Author, 100),
				Description: clip(item.Description, 1000),
				ISBN:        isbn,
				Publisher:   item.Publisher,
				Cover:       item.Cover,
				PubDate:     parsePubDate(item.PubDate),
			})
		}
	}

	s.debug("bestseller fetch complete", "books", len(books))
	return books, nil
}

func (s *Source) fetchPage(ctx context.Context, start int) ([]listItem, error) {
	params := url.Values{}
	params.Set("ttbkey", s.ttbKey)
	params.Set("QueryType", "Bestseller")
	params.Set("MaxResults", strconv.Itoa(pageSize))
	params.Set("start", strconv.Itoa(start))
	params.Set("SearchTarget", "Book")
	params.Set("output", "js")
	params.Set("Version", "20131101")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vendor returned %s", resp.Status)
	}

	var payload struct {
		Item []listItem `json:"item"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return payload.Item, nil
}

func mapCategory(name string) int64 {
	for _, entry := range categoryKeywords {
		if strings.Contains(name, entry.keyword) {
			return entry.categoryID
		}
	}
	return 0
}

func parsePubDate(value string) time.Time {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed
	}
	return time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func clip(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
