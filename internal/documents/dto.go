package documents

import "time"

// UploadResponse confirms a stored document.
type UploadResponse struct {
	Message      string `json:"message"`
	FileURL      string `json:"file_url"`
	OriginalName string `json:"original_name"`
}

// SearchResultItem is one ranked match. FileURL is nil when signing failed;
// the response still succeeds with the link absent.
type SearchResultItem struct {
	ID         int64   `json:"id"`
	Score      float64 `json:"score"`
	FileName   string  `json:"file_name"`
	S3FileName string  `json:"s3_file_name"`
	FileURL    *string `json:"file_url"`
}

// SearchResponse carries the generated answer plus the ranked matches.
type SearchResponse struct {
	Query    string             `json:"query"`
	Response string             `json:"response"`
	Results  []SearchResultItem `json:"results"`
}

// FileEntry is one row of the full listing.
type FileEntry struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	FileURL    *string   `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}
