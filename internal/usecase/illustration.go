package usecase

import (
	"context"
	"log/slog"

	"Blookin/internal/ports"
)

// Appended verbatim to every generated prompt; generated covers must stay
// free of embedded text.
const noSymbolsConstraint = "Do not include any text, numbers, or symbols."

// IllustrationDeps wires all driven adapters into the illustration pipeline.
type IllustrationDeps struct {
	Threads ports.ThreadRepository
	Books   ports.BookRepository
	Prompts ports.PromptWriter
	Images  ports.ImageGenerator
	Store   ports.ArtifactStore
	Size    string
	Logger  *slog.Logger
}

// Illustration generates a cover image for a freshly created discussion
// post. Any stage failure aborts silently: the post keeps no illustration
// and its creation is never rolled back.
type Illustration struct {
	threads ports.ThreadRepository
	books   ports.BookRepository
	prompts ports.PromptWriter
	images  ports.ImageGenerator
	store   ports.ArtifactStore
	size    string
	logger  *slog.Logger
}

// NewIllustration constructs the orchestration component.
func NewIllustration(deps IllustrationDeps) *Illustration {
	return &Illustration{
		threads: deps.Threads,
		books:   deps.Books,
		prompts: deps.Prompts,
		images:  deps.Images,
		store:   deps.Store,
		size:    deps.Size,
		logger:  deps.Logger,
	}
}

// OnThreadCreated is the discussion collaborator's write-completion
// callback, invoked at most once per post.
func (i *Illustration) OnThreadCreated(ctx context.Context, threadID int64) {
	thread, err := i.threads.Get(ctx, threadID)
	if err != nil {
		i.warn("load thread failed", "thread_id", threadID, "error", err)
		return
	}

	book, err := i.books.Get(ctx, thread.BookID)
	if err != nil {
		i.warn("load book failed", "thread_id", threadID, "book_id", thread.BookID, "error", err)
		return
	}

	prompt, err := i.prompts.IllustrationPrompt(ctx, thread, book)
	if err != nil {
		i.warn("prompt generation failed", "thread_id", threadID, "error", err)
		return
	}

	imageURL, err := i.images.Generate(ctx, prompt.Prompt+"\n"+noSymbolsConstraint, i.size)
	if err != nil {
		i.warn("image generation failed", "thread_id", threadID, "error", err)
		return
	}

	image, err := i.images.Download(ctx, imageURL)
	if err != nil {
		i.warn("image download failed", "thread_id", threadID, "error", err)
		return
	}

	path, err := i.store.SaveIllustration(image)
	if err != nil {
		i.warn("illustration store failed", "thread_id", threadID, "error", err)
		return
	}

	if err := i.threads.UpdateCoverImage(ctx, threadID, path); err != nil {
		i.warn("cover update failed", "thread_id", threadID, "error", err)
		return
	}

	i.debug("thread illustrated", "thread_id", threadID, "path", path, "keywords", prompt.Keywords)
}

func (i *Illustration) warn(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Warn(msg, args...)
	}
}

func (i *Illustration) debug(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Debug(msg, args...)
	}
}
