package documents

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo for dev and tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	docs   []Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1}
}

// Create assigns the next id and stores the document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = r.nextID
	r.nextID++
	doc.UploadedAt = time.Now().UTC()
	r.docs = append(r.docs, doc)
	return doc, nil
}

// ListAll returns all documents in insertion order.
func (r *MemoryRepo) ListAll(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, len(r.docs))
	copy(out, r.docs)
	return out, nil
}

// GetByIDs returns documents matching the given ids.
func (r *MemoryRepo) GetByIDs(ctx context.Context, ids []int64) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0, len(ids))
	for _, doc := range r.docs {
		if _, ok := want[doc.ID]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
