package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Blookin/internal/config"
	"Blookin/internal/domain"
	"Blookin/internal/mbti"
	"Blookin/internal/recommend"
	"Blookin/internal/usecase"
)

type fakeRepo struct {
	books       map[int64]domain.Book
	corpus      []domain.Book
	byCategory  map[int64][]domain.Book
	liked       map[int64][]int64
	threadBooks map[int64][]int64
	enriched    []int64
	narrations  map[int64]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:       map[int64]domain.Book{},
		byCategory:  map[int64][]domain.Book{},
		liked:       map[int64][]int64{},
		threadBooks: map[int64][]int64{},
		narrations:  map[int64]string{},
	}
}

func (f *fakeRepo) add(b domain.Book) {
	f.books[b.ID] = b
	if b.Description != "" {
		f.corpus = append(f.corpus, b)
	}
	if b.CategoryID != 0 {
		f.byCategory[b.CategoryID] = append(f.byCategory[b.CategoryID], b)
	}
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (domain.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return domain.Book{}, errors.New("not found")
	}
	return b, nil
}

func (f *fakeRepo) Save(ctx context.Context, b domain.Book) (int64, error) { return b.ID, nil }

func (f *fakeRepo) ListDescribed(ctx context.Context) ([]domain.Book, error) { return f.corpus, nil }

func (f *fakeRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	var out []domain.Book
	for _, id := range ids {
		if b, ok := f.books[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByCategories(ctx context.Context, ids []int64) ([]domain.Book, error) {
	var out []domain.Book
	for _, id := range ids {
		out = append(out, f.byCategory[id]...)
	}
	return out, nil
}

func (f *fakeRepo) LikedBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f.liked[userID], nil
}

func (f *fakeRepo) ThreadBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f.threadBooks[userID], nil
}

func (f *fakeRepo) ExistingISBNs(ctx context.Context, isbns []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeRepo) UpdateEnrichment(ctx context.Context, id int64, info, works, photo, audio string) error {
	f.enriched = append(f.enriched, id)
	return nil
}

func (f *fakeRepo) UpdateNarration(ctx context.Context, id int64, audio string) error {
	f.narrations[id] = audio
	return nil
}

type fakeThreadRepo struct {
	threads map[int64]domain.Thread
	covers  map[int64]string
}

func (f *fakeThreadRepo) Get(ctx context.Context, id int64) (domain.Thread, error) {
	th, ok := f.threads[id]
	if !ok {
		return domain.Thread{}, errors.New("not found")
	}
	return th, nil
}

func (f *fakeThreadRepo) UpdateCoverImage(ctx context.Context, id int64, path string) error {
	f.covers[id] = path
	return nil
}

type fakeAuthorSource struct {
	lookup domain.AuthorLookup
	err    error
}

func (f *fakeAuthorSource) Lookup(ctx context.Context, author string) (domain.AuthorLookup, error) {
	return f.lookup, f.err
}

type fakeSynth struct{ profile domain.AuthorProfile }

func (f *fakeSynth) ColdStart(ctx context.Context, author string) (domain.AuthorProfile, error) {
	return f.profile, nil
}

func (f *fakeSynth) Synthesize(ctx context.Context, author, bookTitle, summary string, works []string) (domain.AuthorProfile, error) {
	return f.profile, nil
}

type fakeSpeech struct {
	audio []byte
	err   error
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	return f.audio, f.err
}

type fakePrompts struct{}

func (fakePrompts) IllustrationPrompt(ctx context.Context, thread domain.Thread, book domain.Book) (domain.IllustrationPrompt, error) {
	return domain.IllustrationPrompt{Keywords: "calm", Prompt: "a quiet scene"}, nil
}

type fakeImages struct{}

func (fakeImages) Generate(ctx context.Context, prompt, size string) (string, error) {
	return "https://img.example.org/x.png", nil
}

func (fakeImages) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return []byte("png"), nil
}

type fakeArtifacts struct{}

func (fakeArtifacts) SaveNarration(bookID int64, audio []byte) (string, error) {
	return "tts/tts_1.mp3", nil
}

func (fakeArtifacts) SaveIllustration(image []byte) (string, error) {
	return "thread_cover_img/x.png", nil
}

type fixture struct {
	repo    *fakeRepo
	threads *fakeThreadRepo
	speech  *fakeSpeech
	router  http.Handler
}

func newFixture() *fixture {
	repo := newFakeRepo()
	threads := &fakeThreadRepo{threads: map[int64]domain.Thread{}, covers: map[int64]string{}}
	speech := &fakeSpeech{audio: []byte("mp3")}

	enrichment := usecase.NewEnrichment(usecase.EnrichmentDeps{
		Books:    repo,
		Source:   &fakeAuthorSource{},
		Synth:    &fakeSynth{profile: domain.AuthorProfile{Bio: "bio", Works: "works"}},
		Speech:   speech,
		Store:    fakeArtifacts{},
		Language: "ko",
	})
	illustration := usecase.NewIllustration(usecase.IllustrationDeps{
		Threads: threads,
		Books:   repo,
		Prompts: fakePrompts{},
		Images:  fakeImages{},
		Store:   fakeArtifacts{},
		Size:    "1024x1024",
	})

	handler := NewHandler(HandlerDeps{
		Books:        repo,
		Source:       &fakeAuthorSource{lookup: domain.AuthorLookup{Found: true, Works: []string{"토지"}}},
		Engine:       recommend.NewEngine(repo, config.RecommendConfig{StopwordLanguage: "english", TopK: 10}, nil),
		Mapper:       mbti.NewMapper(repo).WithRand(rand.New(rand.NewSource(1))),
		Enrichment:   enrichment,
		Illustration: illustration,
	})

	return &fixture{repo: repo, threads: threads, speech: speech, router: handler.Routes()}
}

func (f *fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRecommendationsInvalidUser(t *testing.T) {
	t.Parallel()

	rec := newFixture().do(t, http.MethodGet, "/api/v1/recommendations?user=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendationsInvalidMode(t *testing.T) {
	t.Parallel()

	rec := newFixture().do(t, http.MethodGet, "/api/v1/recommendations?user=7&mode=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendationsByLikes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.add(domain.Book{ID: 1, Title: "seed", Description: "a detective hunts a thief through rainy streets"})
	f.repo.add(domain.Book{ID: 2, Title: "twin", Description: "a detective hunts a thief through rainy streets"})
	f.repo.add(domain.Book{ID: 3, Title: "other", Description: "recipes for quiet mornings"})
	f.repo.liked[7] = []int64{1}

	rec := f.do(t, http.MethodGet, "/api/v1/recommendations?user=7")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	books := body["books"].([]any)
	require.NotEmpty(t, books)
	first := books[0].(map[string]any)
	assert.Equal(t, float64(2), first["id"])
	assert.Equal(t, "twin", first["title"])
}

func TestRecommendationsNoEngagementIsEmptyList(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.add(domain.Book{ID: 1, Description: "first"})
	f.repo.add(domain.Book{ID: 2, Description: "second"})

	rec := f.do(t, http.MethodGet, "/api/v1/recommendations?user=7&mode=threads")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["books"])
}

func TestMBTIRecommendations(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.add(domain.Book{ID: 1, CategoryID: 4, Title: "humanities"})
	f.repo.add(domain.Book{ID: 2, CategoryID: 5, Title: "science"})

	rec := f.do(t, http.MethodGet, "/api/v1/recommendations/mbti?code=intj")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "INTJ", body["mbti"])
	assert.NotEmpty(t, body["reason"])
	assert.Len(t, body["books"], 2)
}

func TestMBTIRecommendationsInvalidCode(t *testing.T) {
	t.Parallel()

	rec := newFixture().do(t, http.MethodGet, "/api/v1/recommendations/mbti?code=ZZZZ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "valid personality code")
}

func TestAuthorWorks(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.add(domain.Book{ID: 1, Author: "박경리"})

	rec := f.do(t, http.MethodGet, "/api/v1/books/1/author-works")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "박경리", body["author"])
	assert.Equal(t, []any{"토지"}, body["works"])
}

func TestAuthorWorksUnknownBook(t *testing.T) {
	t.Parallel()

	rec := newFixture().do(t, http.MethodGet, "/api/v1/books/99/author-works")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegenerateNarration(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.add(domain.Book{ID: 1, Title: "t", AuthorInfo: "bio", AuthorWorks: "works"})

	rec := f.do(t, http.MethodPost, "/api/v1/books/1/narration")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tts/tts_1.mp3", decode(t, rec)["narrationAudio"])
	assert.Equal(t, "tts/tts_1.mp3", f.repo.narrations[1])
}

func TestRegenerateNarrationFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.add(domain.Book{ID: 1, Title: "t"})
	f.speech.err = errors.New("tts down")

	rec := f.do(t, http.MethodPost, "/api/v1/books/1/narration")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBookCreatedHookAcknowledges(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.add(domain.Book{ID: 1, Title: "t", Author: "a"})

	rec := f.do(t, http.MethodPost, "/api/v1/hooks/books/1")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []int64{1}, f.repo.enriched)
}

func TestBookCreatedHookAcknowledgesOnPipelineFailure(t *testing.T) {
	t.Parallel()

	// Unknown record: the pipeline fails internally, the hook still accepts.
	rec := newFixture().do(t, http.MethodPost, "/api/v1/hooks/books/123")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestBookCreatedHookRejectsBadID(t *testing.T) {
	t.Parallel()

	rec := newFixture().do(t, http.MethodPost, "/api/v1/hooks/books/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreadCreatedHook(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.add(domain.Book{ID: 1, Title: "t", Author: "a"})
	f.threads.threads[5] = domain.Thread{ID: 5, BookID: 1, Title: "loved it", Content: "..."}

	rec := f.do(t, http.MethodPost, "/api/v1/hooks/threads/5")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "thread_cover_img/x.png", f.threads.covers[5])
}
