package recommend

import (
	"math"
	"regexp"
	"strings"
)

// Tokens are runs of at least two letters or digits, lowercased.
var tokenExpr = regexp.MustCompile(`[\p{L}\p{N}]{2,}`)

// SparseVector maps vocabulary index to weight.
type SparseVector map[int]float64

// Dot returns the inner product. Over L2-normalized vectors this is the
// cosine similarity.
func (a SparseVector) Dot(b SparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, weight := range a {
		sum += weight * b[term]
	}
	return sum
}

// Vectorizer builds tf-idf weighted, L2-normalized vectors over a document
// set. The vocabulary is rebuilt on every call; there is no shared state.
type Vectorizer struct {
	stopwords map[string]struct{}
}

// NewVectorizer filters the given stopword set during tokenization.
func NewVectorizer(stopwords map[string]struct{}) *Vectorizer {
	return &Vectorizer{stopwords: stopwords}
}

// FitTransform tokenizes the documents, fits a vocabulary, and returns one
// normalized vector per document. Idf is smoothed: ln((1+n)/(1+df)) + 1.
func (v *Vectorizer) FitTransform(docs []string) []SparseVector {
	vocab := map[string]int{}
	counts := make([]map[int]int, len(docs))

	for i, doc := range docs {
		counts[i] = map[int]int{}
		for _, token := range tokenExpr.FindAllString(strings.ToLower(doc), -1) {
			if _, skip := v.stopwords[token]; skip {
				continue
			}
			idx, ok := vocab[token]
			if !ok {
				idx = len(vocab)
				vocab[token] = idx
			}
			counts[i][idx]++
		}
	}

	df := make([]int, len(vocab))
	for _, doc := range counts {
		for idx := range doc {
			df[idx]++
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for idx, d := range df {
		idf[idx] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]SparseVector, len(docs))
	for i, doc := range counts {
		vec := make(SparseVector, len(doc))
		var norm float64
		for idx, count := range doc {
			w := float64(count) * idf[idx]
			vec[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range vec {
				vec[idx] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}
