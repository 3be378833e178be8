package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"Blookin/internal/domain"
	"Blookin/internal/ports"
)

// EnrichmentDeps wires all driven adapters into the enrichment pipeline.
type EnrichmentDeps struct {
	Books    ports.BookRepository
	Source   ports.AuthorSource
	Synth    ports.AuthorSynthesizer
	Speech   ports.SpeechSynthesizer
	Store    ports.ArtifactStore
	Language string
	Logger   *slog.Logger
}

// Enrichment augments a freshly created book with author biography,
// representative works, and narration audio. The pipeline is best-effort:
// it runs every stage to completion or failure, persists once at the end,
// and never fails the creation that triggered it.
type Enrichment struct {
	books    ports.BookRepository
	source   ports.AuthorSource
	synth    ports.AuthorSynthesizer
	speech   ports.SpeechSynthesizer
	store    ports.ArtifactStore
	language string
	logger   *slog.Logger
}

// NewEnrichment constructs the orchestration component.
func NewEnrichment(deps EnrichmentDeps) *Enrichment {
	return &Enrichment{
		books:    deps.Books,
		source:   deps.Source,
		synth:    deps.Synth,
		speech:   deps.Speech,
		store:    deps.Store,
		language: deps.Language,
		logger:   deps.Logger,
	}
}

// OnBookCreated is the catalog collaborator's write-completion callback.
// It is invoked at most once per record; failures are logged with the record
// identity and swallowed, leaving the record in its pre-enrichment state.
func (e *Enrichment) OnBookCreated(ctx context.Context, bookID int64) {
	if err := e.enrich(ctx, bookID); err != nil {
		e.log(slog.LevelError, "book enrichment failed", "book_id", bookID, "error", err)
	}
}

func (e *Enrichment) enrich(ctx context.Context, bookID int64) error {
	book, err := e.books.Get(ctx, bookID)
	if err != nil {
		return fmt.Errorf("load book: %w", err)
	}
	e.stage(domain.StageCreated, bookID)

	lookup, err := e.source.Lookup(ctx, book.Author)
	if err != nil {
		e.log(slog.LevelWarn, "author lookup failed", "book_id", bookID, "error", err)
		lookup = domain.AuthorLookup{}
	}
	hasSummary := lookup.Found && lookup.Summary != ""
	e.stage(domain.StageLookupDone, bookID)

	var profile domain.AuthorProfile
	if hasSummary {
		profile, err = e.synth.Synthesize(ctx, book.Author, book.Title, lookup.Summary, lookup.Works)
	} else {
		profile, err = e.synth.ColdStart(ctx, book.Author)
	}
	if err != nil {
		e.log(slog.LevelWarn, "author synthesis failed", "book_id", bookID, "error", err)
		profile = domain.AuthorProfile{Bio: domain.AuthorInfoUnavailable, Works: ""}
	}
	if profile.Bio == "" {
		profile.Bio = domain.AuthorInfoUnavailable
	}
	e.stage(domain.StageFallbackResolved, bookID)

	script := narrationScript(book.Title, profile)
	e.stage(domain.StageScriptBuilt, bookID)

	// Audio is the one stage whose failure does not degrade the rest of the
	// result: the bio and works already resolved are kept, the audio field
	// stays unset.
	audioPath := ""
	if audio, synthErr := e.speech.Synthesize(ctx, script, e.language); synthErr != nil {
		e.log(slog.LevelWarn, "speech synthesis failed", "book_id", bookID, "error", synthErr)
	} else if path, saveErr := e.store.SaveNarration(book.ID, audio); saveErr != nil {
		e.log(slog.LevelWarn, "narration store failed", "book_id", bookID, "error", saveErr)
	} else {
		audioPath = path
	}
	e.stage(domain.StageAudioAttempted, bookID)

	if err := e.books.UpdateEnrichment(ctx, book.ID, profile.Bio, profile.Works, lookup.ImageURL, audioPath); err != nil {
		return fmt.Errorf("persist enrichment: %w", err)
	}
	e.stage(domain.StagePersisted, bookID)
	return nil
}

// RegenerateNarration repeats the script, audio, and persistence stages from
// the record's current biography and works. Idempotent; unlike the creation
// pipeline, failures surface to the caller.
func (e *Enrichment) RegenerateNarration(ctx context.Context, bookID int64) (string, error) {
	book, err := e.books.Get(ctx, bookID)
	if err != nil {
		return "", fmt.Errorf("load book: %w", err)
	}

	script := narrationScript(book.Title, domain.AuthorProfile{
		Bio:   book.AuthorInfo,
		Works: book.AuthorWorks,
	})

	audio, err := e.speech.Synthesize(ctx, script, e.language)
	if err != nil {
		return "", fmt.Errorf("synthesize narration: %w", err)
	}

	path, err := e.store.SaveNarration(book.ID, audio)
	if err != nil {
		return "", fmt.Errorf("store narration: %w", err)
	}

	if err := e.books.UpdateNarration(ctx, book.ID, path); err != nil {
		return "", fmt.Errorf("persist narration: %w", err)
	}
	return path, nil
}

func narrationScript(title string, profile domain.AuthorProfile) string {
	return fmt.Sprintf("%s / %s / %s", title, profile.Bio, profile.Works)
}

func (e *Enrichment) stage(stage domain.EnrichmentStage, bookID int64) {
	e.log(slog.LevelDebug, "enrichment stage", "book_id", bookID, "stage", string(stage))
}

func (e *Enrichment) log(level slog.Level, msg string, args ...any) {
	if e.logger != nil {
		e.logger.Log(context.Background(), level, msg, args...)
	}
}
