package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"docsearch-backend/internal/vectorindex"
)

type entry struct {
	id       string
	vector   []float64
	metadata vectorindex.Metadata
}

// Index is an in-memory cosine-similarity index for dev and tests.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New constructs an empty in-memory index.
func New() *Index {
	return &Index{entries: make(map[string]entry)}
}

// Upsert stores or replaces the vector for id.
func (i *Index) Upsert(ctx context.Context, id string, vector []float64, metadata vectorindex.Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	vec := make([]float64, len(vector))
	copy(vec, vector)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[id] = entry{id: id, vector: vec, metadata: metadata}
	return nil
}

// Query ranks all entries by cosine similarity and returns the topK.
func (i *Index) Query(ctx context.Context, vector []float64, topK int) ([]vectorindex.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	i.mu.RLock()
	matches := make([]vectorindex.Match, 0, len(i.entries))
	for _, e := range i.entries {
		matches = append(matches, vectorindex.Match{
			ID:       e.id,
			Score:    cosine(vector, e.vector),
			Metadata: e.metadata,
		})
	}
	i.mu.RUnlock()

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ vectorindex.Index = (*Index)(nil)
