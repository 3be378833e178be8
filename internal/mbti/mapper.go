// Package mbti maps the 16 personality codes to catalog categories.
//
// The mapping is a fixed table, not derived from engagement data. An
// engagement-aware variant (ranking by aggregate like-count among users
// sharing a code) is a known extension point; the sampling seam below is
// where it would plug in.
package mbti

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"Blookin/internal/domain"
	"Blookin/internal/ports"
)

// ErrInvalidCode reports a code outside the 16-entry table.
var ErrInvalidCode = errors.New("invalid personality code")

const sampleSize = 6

// Mapping pairs two category ids with a human-readable rationale.
type Mapping struct {
	Categories [2]int64
	Reason     string
}

// Category ids: 1 literature & essays, 2 business & economics,
// 3 self-improvement, 4 humanities & society, 5 science & IT,
// 6 children & young adult, 7 hobbies & travel, 8 study & reference.
var table = map[string]Mapping{
	"INTJ": {Categories: [2]int64{4, 5}, Reason: "Prefers theoretical thinking and structural analysis, and enjoys deep inquiry."},
	"INTP": {Categories: [2]int64{1, 5}, Reason: "Strongly inquisitive, and enjoys interpreting abstract concepts and knowledge from a personal point of view."},
	"ENTJ": {Categories: [2]int64{2, 4}, Reason: "Skilled at leadership and strategy, with a strong interest in social structures and policy."},
	"ENTP": {Categories: [2]int64{3, 5}, Reason: "Pursues new ideas and innovation, with a challenging and versatile disposition."},
	"INFJ": {Categories: [2]int64{1, 6}, Reason: "Idealistic yet sensitive to others' emotions, with a deep inner world."},
	"INFP": {Categories: [2]int64{1, 7}, Reason: "Drawn to self-reflection and creative work, and to emotionally rich content."},
	"ENFJ": {Categories: [2]int64{3, 6}, Reason: "Cares about helping and inspiring others, and values education highly."},
	"ENFP": {Categories: [2]int64{3, 7}, Reason: "Energetic and curious, enjoying varied experiences and self-discovery."},
	"ISTJ": {Categories: [2]int64{2, 8}, Reason: "Prefers logical, systematic learning, valuing practicality and precision."},
	"ISFJ": {Categories: [2]int64{6, 8}, Reason: "Devoted and protective by nature, with an interest in education and practical knowledge."},
	"ESTJ": {Categories: [2]int64{2, 3}, Reason: "Practical and goal-oriented, interested in organization and self-efficiency."},
	"ESFJ": {Categories: [2]int64{6, 7}, Reason: "Values harmony with people and grounded activities, with a warm and caring style."},
	"ISTP": {Categories: [2]int64{5, 8}, Reason: "Enjoys experimentation and structured learning grounded in hands-on, analytical thinking."},
	"ISFP": {Categories: [2]int64{4, 6}, Reason: "Emotionally warm and good at understanding others, preferring wisdom grounded in reality."},
	"ESTP": {Categories: [2]int64{2, 7}, Reason: "Adventurous and realistic, enjoying immediate results and varied activities."},
	"ESFP": {Categories: [2]int64{1, 8}, Reason: "Sensuous and expressive, passionate about learning that is both artistic and practical."},
}

// Recommendation is the mapper's answer for a valid code.
type Recommendation struct {
	Code   string
	Reason string
	Books  []domain.Book
}

// Mapper samples catalog records for a personality code.
type Mapper struct {
	books ports.BookRepository
	rand  *rand.Rand
}

// NewMapper builds a mapper with a time-seeded sampler.
func NewMapper(books ports.BookRepository) *Mapper {
	return &Mapper{
		books: books,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the sampling source. Intended for tests.
func (m *Mapper) WithRand(r *rand.Rand) *Mapper {
	m.rand = r
	return m
}

// Recommend validates the code, then returns the rationale plus up to six
// randomly sampled books from the two mapped categories.
func (m *Mapper) Recommend(ctx context.Context, code string) (Recommendation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	mapping, ok := table[code]
	if !ok {
		return Recommendation{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	books, err := m.books.ListByCategories(ctx, mapping.Categories[:])
	if err != nil {
		return Recommendation{}, fmt.Errorf("load category books: %w", err)
	}

	sampled := make([]domain.Book, len(books))
	copy(sampled, books)
	m.rand.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})
	if len(sampled) > sampleSize {
		sampled = sampled[:sampleSize]
	}

	return Recommendation{Code: code, Reason: mapping.Reason, Books: sampled}, nil
}

// Codes lists every valid personality code. Order is unspecified.
func Codes() []string {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	return codes
}
