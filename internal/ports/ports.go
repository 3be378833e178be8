package ports

import (
	"context"
	"time"

	"Blookin/internal/domain"
)

// AuthorSource resolves an author name against a public knowledge base.
// Transport failures are converted to a zero-value lookup by implementations;
// a non-nil error is reserved for unexpected conditions and treated as
// "no result" by callers.
type AuthorSource interface {
	Lookup(ctx context.Context, author string) (domain.AuthorLookup, error)
}

// AuthorSynthesizer asks a generative text service for author material.
// ColdStart works from the name alone; Synthesize polishes knowledge-base
// findings. Both return the sentinel profile instead of failing on malformed
// or missing service output.
type AuthorSynthesizer interface {
	ColdStart(ctx context.Context, author string) (domain.AuthorProfile, error)
	Synthesize(ctx context.Context, author, bookTitle, summary string, works []string) (domain.AuthorProfile, error)
}

// PromptWriter derives a mood/illustration prompt from a discussion post.
type PromptWriter interface {
	IllustrationPrompt(ctx context.Context, thread domain.Thread, book domain.Book) (domain.IllustrationPrompt, error)
}

// SpeechSynthesizer renders narration scripts as audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// ImageGenerator requests a generated image and fetches the result.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, size string) (string, error)
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

// ArtifactStore persists binary artifacts under the media root and returns
// the stored relative path.
type ArtifactStore interface {
	SaveNarration(bookID int64, audio []byte) (string, error)
	SaveIllustration(image []byte) (string, error)
}

// BookRepository persists and queries catalog records.
type BookRepository interface {
	Get(ctx context.Context, id int64) (domain.Book, error)
	Save(ctx context.Context, book domain.Book) (int64, error)
	ListDescribed(ctx context.Context) ([]domain.Book, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Book, error)
	ListByCategories(ctx context.Context, categoryIDs []int64) ([]domain.Book, error)
	LikedBookIDs(ctx context.Context, userID int64) ([]int64, error)
	ThreadBookIDs(ctx context.Context, userID int64) ([]int64, error)
	ExistingISBNs(ctx context.Context, isbns []string) (map[string]bool, error)
	UpdateEnrichment(ctx context.Context, id int64, info, works, photo, audio string) error
	UpdateNarration(ctx context.Context, id int64, audio string) error
}

// ThreadRepository persists and queries discussion posts.
type ThreadRepository interface {
	Get(ctx context.Context, id int64) (domain.Thread, error)
	UpdateCoverImage(ctx context.Context, id int64, path string) error
}

// BookSource pulls catalog records from an upstream vendor list.
type BookSource interface {
	FetchBestsellers(ctx context.Context) ([]domain.Book, error)
}

// Scheduler controls when the import pipeline executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
