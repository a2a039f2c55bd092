package vectorindex

import "context"

// Metadata is the small payload stored alongside each vector, enough to
// render a search result without touching the metadata store.
type Metadata struct {
	FileName   string `json:"file_name"`
	S3FileName string `json:"s3_file_name"`
	FileURL    string `json:"file_url"`
}

// Match is a ranked approximate-nearest-neighbor result.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Index stores embeddings and supports top-K similarity queries.
type Index interface {
	Upsert(ctx context.Context, id string, vector []float64, metadata Metadata) error
	Query(ctx context.Context, vector []float64, topK int) ([]Match, error)
}
