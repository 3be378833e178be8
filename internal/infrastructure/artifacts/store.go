package artifacts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"Blookin/internal/ports"
)

const (
	narrationDir    = "tts"
	illustrationDir = "thread_cover_img"
)

// Store writes binary artifacts under the media root. Returned paths are
// relative to the root so records stay portable across hosts.
type Store struct {
	root string
}

var _ ports.ArtifactStore = (*Store)(nil)

// NewStore anchors the store at the configured media root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// SaveNarration stores narration audio for a book. The name is derived from
// the book id so regeneration overwrites the previous artifact.
func (s *Store) SaveNarration(bookID int64, audio []byte) (string, error) {
	name := fmt.Sprintf("tts_%d.mp3", bookID)
	return s.write(narrationDir, name, audio)
}

// SaveIllustration stores a generated illustration under a fresh random name.
func (s *Store) SaveIllustration(image []byte) (string, error) {
	name := uuid.NewString() + ".png"
	return s.write(illustrationDir, name, image)
}

func (s *Store) write(dir, name string, data []byte) (string, error) {
	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}

	if err := os.WriteFile(filepath.Join(target, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	return filepath.ToSlash(filepath.Join(dir, name)), nil
}
