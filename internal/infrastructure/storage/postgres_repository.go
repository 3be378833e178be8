package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"Blookin/internal/domain"
	"Blookin/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const bookColumns = "id, category_id, title, author, description, isbn, publisher, cover, " +
	"COALESCE(author_info, ''), COALESCE(author_photo, ''), COALESCE(author_works, ''), " +
	"COALESCE(narration_audio, ''), pub_date"

// BookRepository persists catalog records in Postgres.
type BookRepository struct {
	db *sql.DB
}

var _ ports.BookRepository = (*BookRepository)(nil)

// NewBookRepository wires a sql.DB implementation.
func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Get loads a single book by id.
func (r *BookRepository) Get(ctx context.Context, id int64) (domain.Book, error) {
	query, args, err := psql.Select(bookColumns).
		From("books").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Book{}, fmt.Errorf("build query: %w", err)
	}

	return scanBook(r.db.QueryRowContext(ctx, query, args...))
}

// Save inserts a new book and returns its id.
func (r *BookRepository) Save(ctx context.Context, book domain.Book) (int64, error) {
	query, args, err := psql.Insert("books").
		Columns("category_id", "title", "author", "description", "isbn",
			"publisher", "cover", "author_info", "author_works", "pub_date").
		Values(book.CategoryID, book.Title, book.Author, book.Description, book.ISBN,
			book.Publisher, book.Cover, book.AuthorInfo, book.AuthorWorks, book.PubDate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

// ListDescribed returns the similarity corpus: every book with a non-empty
// description, in id order so ranking ties resolve reproducibly.
func (r *BookRepository) ListDescribed(ctx context.Context) ([]domain.Book, error) {
	query, args, err := psql.Select(bookColumns).
		From("books").
		Where(sq.NotEq{"description": ""}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.list(ctx, query, args...)
}

// ListByIDs loads books for the given ids; order is not guaranteed.
func (r *BookRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select(bookColumns).
		From("books").
		Where(sq.Expr("id = ANY(?)", pq.Array(ids))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.list(ctx, query, args...)
}

// ListByCategories returns every book belonging to one of the categories.
func (r *BookRepository) ListByCategories(ctx context.Context, categoryIDs []int64) ([]domain.Book, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select(bookColumns).
		From("books").
		Where(sq.Expr("category_id = ANY(?)", pq.Array(categoryIDs))).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.list(ctx, query, args...)
}

// LikedBookIDs returns the ids of books the user marked as liked.
func (r *BookRepository) LikedBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := psql.Select("book_id").
		From("book_likes").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("book_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.listIDs(ctx, query, args...)
}

// ThreadBookIDs returns the ids of books the user has written posts about.
func (r *BookRepository) ThreadBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := psql.Select("DISTINCT book_id").
		From("threads").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("book_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.listIDs(ctx, query, args...)
}

// ExistingISBNs returns a map with ISBNs that already exist in storage.
func (r *BookRepository) ExistingISBNs(ctx context.Context, isbns []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(isbns) == 0 {
		return result, nil
	}

	query, args, err := psql.Select("isbn").
		From("books").
		Where(sq.Expr("isbn = ANY(?)", pq.Array(isbns))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query isbns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var isbn string
		if err := rows.Scan(&isbn); err != nil {
			return nil, fmt.Errorf("scan isbn: %w", err)
		}
		result[isbn] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// UpdateEnrichment writes the enrichment result in a single save. An empty
// audio path clears the narration reference.
func (r *BookRepository) UpdateEnrichment(ctx context.Context, id int64, info, works, photo, audio string) error {
	query, args, err := psql.Update("books").
		Set("author_info", info).
		Set("author_works", works).
		Set("author_photo", photo).
		Set("narration_audio", nullable(audio)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update enrichment: %w", err)
	}
	return nil
}

// UpdateNarration replaces only the narration audio reference.
func (r *BookRepository) UpdateNarration(ctx context.Context, id int64, audio string) error {
	query, args, err := psql.Update("books").
		Set("narration_audio", nullable(audio)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update narration: %w", err)
	}
	return nil
}

func (r *BookRepository) list(ctx context.Context, query string, args ...any) ([]domain.Book, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return books, nil
}

func (r *BookRepository) listIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (domain.Book, error) {
	var book domain.Book
	err := row.Scan(&book.ID, &book.CategoryID, &book.Title, &book.Author,
		&book.Description, &book.ISBN, &book.Publisher, &book.Cover,
		&book.AuthorInfo, &book.AuthorPhoto, &book.AuthorWorks,
		&book.NarrationAudio, &book.PubDate)
	if err != nil {
		return domain.Book{}, fmt.Errorf("scan book: %w", err)
	}
	return book, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// ThreadRepository persists discussion posts in Postgres.
type ThreadRepository struct {
	db *sql.DB
}

var _ ports.ThreadRepository = (*ThreadRepository)(nil)

// NewThreadRepository wires a sql.DB implementation.
func NewThreadRepository(db *sql.DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

// Get loads a single thread by id.
func (r *ThreadRepository) Get(ctx context.Context, id int64) (domain.Thread, error) {
	query, args, err := psql.Select("id", "book_id", "user_id", "title", "content",
		"COALESCE(cover_img, '')", "created_at").
		From("threads").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Thread{}, fmt.Errorf("build query: %w", err)
	}

	var thread domain.Thread
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&thread.ID, &thread.BookID,
		&thread.UserID, &thread.Title, &thread.Content, &thread.CoverImage, &thread.CreatedAt)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("scan thread: %w", err)
	}
	return thread, nil
}

// UpdateCoverImage sets the illustration reference for a thread.
func (r *ThreadRepository) UpdateCoverImage(ctx context.Context, id int64, path string) error {
	query, args, err := psql.Update("threads").
		Set("cover_img", path).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update cover image: %w", err)
	}
	return nil
}
