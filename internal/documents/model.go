package documents

import "time"

// Document is one uploaded file's metadata row. Rows are insert-only.
type Document struct {
	ID          int64
	FileName    string
	S3FileName  string
	FileType    string
	FilePath    string
	TextContent string
	UploadedAt  time.Time
}

// Comment belongs to exactly one document and is cascade-deleted with it.
// Schema only; no endpoint in this service touches comments.
type Comment struct {
	ID         int64
	DocumentID int64
	Text       string
	CreatedAt  time.Time
}
