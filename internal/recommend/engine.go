package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"Blookin/internal/config"
	"Blookin/internal/domain"
	"Blookin/internal/ports"
)

// Mode selects how a user's seed set is derived.
type Mode string

const (
	// ModeLikes seeds ranking with the books the user marked as liked.
	ModeLikes Mode = "likes"
	// ModeThreads seeds ranking with the books the user wrote posts about.
	ModeThreads Mode = "threads"
)

// ErrInvalidMode is returned for an unrecognized seed-derivation mode.
var ErrInvalidMode = fmt.Errorf("invalid recommendation mode")

// Engine ranks catalog records by description similarity to a user's
// engagement. The vector space is rebuilt from the corpus on every call;
// the engine holds no mutable state between requests.
type Engine struct {
	books     ports.BookRepository
	stopwords map[string]struct{}
	topK      int
	logger    *slog.Logger
}

// NewEngine binds the engine to a repository and ranking configuration.
func NewEngine(books ports.BookRepository, cfg config.RecommendConfig, log *slog.Logger) *Engine {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 10
	}
	return &Engine{
		books:     books,
		stopwords: StopwordsFor(cfg.StopwordLanguage),
		topK:      topK,
		logger:    log,
	}
}

// Recommend returns up to topK books ranked by affinity to the user's seed
// set, best first. Thin corpora and empty or out-of-corpus seed sets yield
// an empty result, never an error.
func (e *Engine) Recommend(ctx context.Context, userID int64, mode Mode) ([]domain.Book, error) {
	var (
		seeds []int64
		err   error
	)
	switch mode {
	case ModeLikes:
		seeds, err = e.books.LikedBookIDs(ctx, userID)
	case ModeThreads:
		seeds, err = e.books.ThreadBookIDs(ctx, userID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("load seed set: %w", err)
	}
	if len(seeds) == 0 {
		return nil, nil
	}

	corpus, err := e.books.ListDescribed(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	ranked := RankByDescription(corpus, seeds, e.stopwords, e.topK)
	if len(ranked) == 0 {
		return nil, nil
	}

	books, err := e.books.ListByIDs(ctx, ranked)
	if err != nil {
		return nil, fmt.Errorf("load ranked books: %w", err)
	}

	// Restore ranking order lost by the id lookup.
	byID := make(map[int64]domain.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}
	ordered := make([]domain.Book, 0, len(ranked))
	for _, id := range ranked {
		if book, ok := byID[id]; ok {
			ordered = append(ordered, book)
		}
	}
	return ordered, nil
}

// RankByDescription scores every corpus record by the mean cosine similarity
// between its tf-idf description vector and each seed vector, then returns up
// to topK record ids, best first, seeds excluded. Ties keep corpus order,
// which callers supply in id order.
func RankByDescription(corpus []domain.Book, seeds []int64, stopwords map[string]struct{}, topK int) []int64 {
	if len(corpus) < 2 || len(seeds) == 0 {
		return nil
	}

	seedSet := make(map[int64]struct{}, len(seeds))
	for _, id := range seeds {
		seedSet[id] = struct{}{}
	}

	var seedIdx []int
	for i, book := range corpus {
		if _, ok := seedSet[book.ID]; ok {
			seedIdx = append(seedIdx, i)
		}
	}
	if len(seedIdx) == 0 {
		return nil
	}

	docs := make([]string, len(corpus))
	for i, book := range corpus {
		docs[i] = book.Description
	}
	vectors := NewVectorizer(stopwords).FitTransform(docs)

	scores := make([]float64, len(corpus))
	for i, vec := range vectors {
		var sum float64
		for _, s := range seedIdx {
			sum += vec.Dot(vectors[s])
		}
		scores[i] = sum / float64(len(seedIdx))
	}

	order := make([]int, len(corpus))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var ranked []int64
	for _, i := range order {
		id := corpus[i].ID
		if _, ok := seedSet[id]; ok {
			continue
		}
		ranked = append(ranked, id)
		if len(ranked) == topK {
			break
		}
	}
	return ranked
}
