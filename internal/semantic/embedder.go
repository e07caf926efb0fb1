// Package semantic provides text embeddings and similarity matching for
// intent resolution. The default embedder is a deterministic local hash-bag
// model; a real provider can be substituted behind the Embedder interface and
// is expected to be wrapped with a circuit breaker.
package semantic

import (
	"context"
	"math"
	"regexp"
	"strings"
	"sync"
)

// EmbeddingDim is the fixed dimensionality of every produced vector.
const EmbeddingDim = 128

// Embedder converts text into a fixed-size vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// HashEmbedder is a deterministic bag-of-words embedder: each token is hashed
// into one of EmbeddingDim buckets and contributes equal weight, then the
// vector is L2-normalized. Identical text always yields an identical vector,
// so results are cached by exact input.
type HashEmbedder struct {
	mu    sync.Mutex
	cache map[string][]float64
}

// NewHashEmbedder creates a hash-bag embedder with an empty cache.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{cache: make(map[string][]float64)}
}

// Embed produces the vector for text. Text with no usable tokens yields the
// zero vector, which cosine similarity treats as matching nothing.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	if cached, ok := e.cache[text]; ok {
		e.mu.Unlock()
		out := make([]float64, len(cached))
		copy(out, cached)
		return out, nil
	}
	e.mu.Unlock()

	vec := embed(text)

	e.mu.Lock()
	e.cache[text] = vec
	e.mu.Unlock()

	out := make([]float64, len(vec))
	copy(out, vec)
	return out, nil
}

func embed(text string) []float64 {
	vec := make([]float64, EmbeddingDim)
	words := tokenize(text)
	if len(words) == 0 {
		return vec
	}
	weight := 1.0 / float64(len(words))
	for _, w := range words {
		vec[bucket(w)] += weight
	}
	return normalize(vec)
}

// tokenize lowercases, strips punctuation and drops tokens of two characters
// or fewer.
func tokenize(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

// bucket maps a token to a vector index with a rolling polynomial hash.
func bucket(word string) int {
	h := 0
	for _, r := range word {
		h = (h*31 + int(r)) % EmbeddingDim
	}
	if h < 0 {
		h += EmbeddingDim
	}
	return h
}

func normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	mag := math.Sqrt(sum)
	if mag == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= mag
	}
	return vec
}

// CosineSimilarity returns the cosine of the angle between two vectors. It is
// zero when the vectors differ in length or either has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
