package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"Blookin/internal/ports"
)

// ImporterDeps wires the catalog import pipeline.
type ImporterDeps struct {
	Source     ports.BookSource
	Books      ports.BookRepository
	Enrichment *Enrichment
	Logger     *slog.Logger
}

// Importer pulls bestseller lists from an upstream vendor, persists records
// it has not seen before, and hands each new record to the enrichment
// pipeline. Deduplication is by ISBN.
type Importer struct {
	source     ports.BookSource
	books      ports.BookRepository
	enrichment *Enrichment
	logger     *slog.Logger
}

// NewImporter constructs the import component.
func NewImporter(deps ImporterDeps) *Importer {
	return &Importer{
		source:     deps.Source,
		books:      deps.Books,
		enrichment: deps.Enrichment,
		logger:     deps.Logger,
	}
}

// Run executes one import cycle.
func (imp *Importer) Run(ctx context.Context) error {
	if imp.source == nil {
		return nil
	}

	fetched, err := imp.source.FetchBestsellers(ctx)
	if err != nil {
		return fmt.Errorf("fetch bestsellers: %w", err)
	}

	isbns := make([]string, 0, len(fetched))
	for _, book := range fetched {
		if book.ISBN != "" {
			isbns = append(isbns, book.ISBN)
		}
	}

	existing := map[string]bool{}
	if imp.books != nil && len(isbns) > 0 {
		existing, err = imp.books.ExistingISBNs(ctx, isbns)
		if err != nil {
			return fmt.Errorf("load existing isbns: %w", err)
		}
	}

	seen := map[string]struct{}{}
	imported := 0
	for _, book := range fetched {
		if book.ISBN == "" || existing[book.ISBN] {
			continue
		}
		if _, ok := seen[book.ISBN]; ok {
			continue
		}
		seen[book.ISBN] = struct{}{}

		id, err := imp.books.Save(ctx, book)
		if err != nil {
			return fmt.Errorf("save book %s: %w", book.ISBN, err)
		}
		imported++

		// Enrichment is best effort by contract; the import keeps going
		// whatever its outcome.
		if imp.enrichment != nil {
			imp.enrichment.OnBookCreated(ctx, id)
		}
	}

	imp.debug("import cycle complete", "fetched", len(fetched), "imported", imported)
	return nil
}

func (imp *Importer) debug(msg string, args ...any) {
	if imp.logger != nil {
		imp.logger.Debug(msg, args...)
	}
}
