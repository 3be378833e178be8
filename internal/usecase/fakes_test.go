package usecase

import (
	"context"
	"errors"
	"fmt"

	"Blookin/internal/domain"
)

var errNotFound = errors.New("not found")

type enrichRecord struct {
	id                        int64
	info, works, photo, audio string
}

type fakeBooks struct {
	books      map[int64]domain.Book
	nextID     int64
	saved      []domain.Book
	existing   map[string]bool
	enriched   []enrichRecord
	narrations map[int64]string
	getErr     error
	updateErr  error
}

func newFakeBooks(books ...domain.Book) *fakeBooks {
	f := &fakeBooks{
		books:      map[int64]domain.Book{},
		existing:   map[string]bool{},
		narrations: map[int64]string{},
	}
	for _, b := range books {
		f.books[b.ID] = b
		if b.ID > f.nextID {
			f.nextID = b.ID
		}
	}
	return f
}

func (f *fakeBooks) Get(ctx context.Context, id int64) (domain.Book, error) {
	if f.getErr != nil {
		return domain.Book{}, f.getErr
	}
	book, ok := f.books[id]
	if !ok {
		return domain.Book{}, errNotFound
	}
	return book, nil
}

func (f *fakeBooks) Save(ctx context.Context, b domain.Book) (int64, error) {
	f.nextID++
	b.ID = f.nextID
	f.books[b.ID] = b
	f.saved = append(f.saved, b)
	return b.ID, nil
}

func (f *fakeBooks) ListDescribed(ctx context.Context) ([]domain.Book, error) { return nil, nil }

func (f *fakeBooks) ListByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	return nil, nil
}

func (f *fakeBooks) ListByCategories(ctx context.Context, ids []int64) ([]domain.Book, error) {
	return nil, nil
}

func (f *fakeBooks) LikedBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeBooks) ThreadBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeBooks) ExistingISBNs(ctx context.Context, isbns []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, isbn := range isbns {
		if f.existing[isbn] {
			out[isbn] = true
		}
	}
	return out, nil
}

func (f *fakeBooks) UpdateEnrichment(ctx context.Context, id int64, info, works, photo, audio string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.enriched = append(f.enriched, enrichRecord{id: id, info: info, works: works, photo: photo, audio: audio})
	return nil
}

func (f *fakeBooks) UpdateNarration(ctx context.Context, id int64, audio string) error {
	f.narrations[id] = audio
	return nil
}

type fakeThreads struct {
	threads map[int64]domain.Thread
	covers  map[int64]string
	getErr  error
}

func newFakeThreads(threads ...domain.Thread) *fakeThreads {
	f := &fakeThreads{threads: map[int64]domain.Thread{}, covers: map[int64]string{}}
	for _, th := range threads {
		f.threads[th.ID] = th
	}
	return f
}

func (f *fakeThreads) Get(ctx context.Context, id int64) (domain.Thread, error) {
	if f.getErr != nil {
		return domain.Thread{}, f.getErr
	}
	thread, ok := f.threads[id]
	if !ok {
		return domain.Thread{}, errNotFound
	}
	return thread, nil
}

func (f *fakeThreads) UpdateCoverImage(ctx context.Context, id int64, path string) error {
	f.covers[id] = path
	return nil
}

type fakeSource struct {
	lookup domain.AuthorLookup
	err    error
}

func (f *fakeSource) Lookup(ctx context.Context, author string) (domain.AuthorLookup, error) {
	return f.lookup, f.err
}

type fakeSynth struct {
	profile domain.AuthorProfile
	err     error
	mode    string
}

func (f *fakeSynth) ColdStart(ctx context.Context, author string) (domain.AuthorProfile, error) {
	f.mode = "cold"
	return f.profile, f.err
}

func (f *fakeSynth) Synthesize(ctx context.Context, author, bookTitle, summary string, works []string) (domain.AuthorProfile, error) {
	f.mode = "synthesis"
	return f.profile, f.err
}

type fakeSpeech struct {
	audio  []byte
	err    error
	script string
	lang   string
	calls  int
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	f.calls++
	f.script = text
	f.lang = language
	return f.audio, f.err
}

type fakePrompts struct {
	prompt domain.IllustrationPrompt
	err    error
}

func (f *fakePrompts) IllustrationPrompt(ctx context.Context, thread domain.Thread, book domain.Book) (domain.IllustrationPrompt, error) {
	return f.prompt, f.err
}

type fakeImages struct {
	url       string
	genErr    error
	image     []byte
	dlErr     error
	genPrompt string
	genSize   string
	genCalls  int
}

func (f *fakeImages) Generate(ctx context.Context, prompt, size string) (string, error) {
	f.genCalls++
	f.genPrompt = prompt
	f.genSize = size
	return f.url, f.genErr
}

func (f *fakeImages) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return f.image, f.dlErr
}

type fakeStore struct {
	narrErr    error
	illErr     error
	narrations int
}

func (f *fakeStore) SaveNarration(bookID int64, audio []byte) (string, error) {
	if f.narrErr != nil {
		return "", f.narrErr
	}
	f.narrations++
	return fmt.Sprintf("tts/tts_%d.mp3", bookID), nil
}

func (f *fakeStore) SaveIllustration(image []byte) (string, error) {
	if f.illErr != nil {
		return "", f.illErr
	}
	return "thread_cover_img/generated.png", nil
}

type fakeVendor struct {
	books []domain.Book
	err   error
}

func (f *fakeVendor) FetchBestsellers(ctx context.Context) ([]domain.Book, error) {
	return f.books, f.err
}
