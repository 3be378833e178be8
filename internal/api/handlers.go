package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Blookin/internal/domain"
	"Blookin/internal/mbti"
	"Blookin/internal/ports"
	"Blookin/internal/recommend"
	"Blookin/internal/usecase"
)

// HandlerDeps wires the request handlers to the core components.
type HandlerDeps struct {
	Books        ports.BookRepository
	Source       ports.AuthorSource
	Engine       *recommend.Engine
	Mapper       *mbti.Mapper
	Enrichment   *usecase.Enrichment
	Illustration *usecase.Illustration
	Logger       *slog.Logger
}

// Handler serves the recommendation and enrichment entry points.
type Handler struct {
	books        ports.BookRepository
	source       ports.AuthorSource
	engine       *recommend.Engine
	mapper       *mbti.Mapper
	enrichment   *usecase.Enrichment
	illustration *usecase.Illustration
	logger       *slog.Logger
}

// NewHandler constructs the handler set.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		books:        deps.Books,
		source:       deps.Source,
		engine:       deps.Engine,
		mapper:       deps.Mapper,
		enrichment:   deps.Enrichment,
		illustration: deps.Illustration,
		logger:       deps.Logger,
	}
}

// Routes assembles the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommendations", h.Recommendations)
		r.Get("/recommendations/mbti", h.MBTIRecommendations)

		r.Route("/books/{bookID}", func(r chi.Router) {
			r.Get("/author-works", h.AuthorWorks)
			r.Post("/narration", h.RegenerateNarration)
		})

		// Write-completion callbacks from the catalog and discussion
		// collaborators. Both run the pipeline synchronously and always
		// acknowledge: enrichment must never fail the triggering create.
		r.Post("/hooks/books/{bookID}", h.BookCreated)
		r.Post("/hooks/threads/{threadID}", h.ThreadCreated)
	})

	return r
}

type bookResponse struct {
	ID             int64  `json:"id"`
	CategoryID     int64  `json:"categoryId"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	Description    string `json:"description"`
	Cover          string `json:"cover,omitempty"`
	AuthorInfo     string `json:"authorInfo,omitempty"`
	AuthorWorks    string `json:"authorWorks,omitempty"`
	NarrationAudio string `json:"narrationAudio,omitempty"`
}

func toBookResponses(books []domain.Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, bookResponse{
			ID:             b.ID,
			CategoryID:     b.CategoryID,
			Title:          b.Title,
			Author:         b.Author,
			Description:    b.Description,
			Cover:          b.Cover,
			AuthorInfo:     b.AuthorInfo,
			AuthorWorks:    b.AuthorWorks,
			NarrationAudio: b.NarrationAudio,
		})
	}
	return out
}

// Recommendations ranks books by description similarity to the user's
// engagement. Thin corpora and empty seed sets yield an empty list.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	mode := recommend.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = recommend.ModeLikes
	}

	books, err := h.engine.Recommend(r.Context(), userID, mode)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidMode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.serverError(w, "recommendation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"books": toBookResponses(books),
	})
}

// MBTIRecommendations samples books for a personality code.
func (h *Handler) MBTIRecommendations(w http.ResponseWriter, r *http.Request) {
	result, err := h.mapper.Recommend(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		if errors.Is(err, mbti.ErrInvalidCode) {
			writeError(w, http.StatusBadRequest, "please provide a valid personality code")
			return
		}
		h.serverError(w, "mbti recommendation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mbti":   result.Code,
		"reason": result.Reason,
		"books":  toBookResponses(result.Books),
	})
}

// AuthorWorks extracts representative works live from the knowledge base.
func (h *Handler) AuthorWorks(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.pathID(w, r, "bookID")
	if !ok {
		return
	}

	book, err := h.books.Get(r.Context(), bookID)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}

	lookup, err := h.source.Lookup(r.Context(), book.Author)
	if err != nil {
		lookup = domain.AuthorLookup{}
	}

	works := lookup.Works
	if works == nil {
		works = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"author": book.Author,
		"works":  works,
	})
}

// RegenerateNarration repeats the narration stages from the record's
// current biography and works.
func (h *Handler) RegenerateNarration(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.pathID(w, r, "bookID")
	if !ok {
		return
	}

	path, err := h.enrichment.RegenerateNarration(r.Context(), bookID)
	if err != nil {
		h.serverError(w, "narration regeneration failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "narration audio generated",
		"narrationAudio": path,
	})
}

// BookCreated runs the enrichment pipeline for a freshly created record.
func (h *Handler) BookCreated(w http.ResponseWriter, r *http.Request) {
	bookID, ok := h.pathID(w, r, "bookID")
	if !ok {
		return
	}

	h.enrichment.OnBookCreated(r.Context(), bookID)
	w.WriteHeader(http.StatusAccepted)
}

// ThreadCreated runs the illustration pipeline for a freshly created post.
func (h *Handler) ThreadCreated(w http.ResponseWriter, r *http.Request) {
	threadID, ok := h.pathID(w, r, "threadID")
	if !ok {
		return
	}

	h.illustration.OnThreadCreated(r.Context(), threadID)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, "error", err)
	}
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
