package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	// Create inserts a new document and returns it with ID and UploadedAt set.
	Create(ctx context.Context, doc Document) (Document, error)
	// ListAll returns every stored document.
	ListAll(ctx context.Context) ([]Document, error)
	// GetByIDs fetches documents for the given ids in one round trip.
	GetByIDs(ctx context.Context, ids []int64) ([]Document, error)
}
