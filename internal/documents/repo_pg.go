package documents

import (
	"context"
	"database/sql"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document and reads back the assigned id and timestamp.
func (r *PGRepo) Create(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (file_name, s3_file_name, file_type, file_path, text_content)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, uploaded_at`

	var textContent sql.NullString
	if doc.TextContent != "" {
		textContent = sql.NullString{String: doc.TextContent, Valid: true}
	}

	err := r.DB.QueryRowContext(
		ctx,
		query,
		doc.FileName,
		doc.S3FileName,
		doc.FileType,
		doc.FilePath,
		textContent,
	).Scan(&doc.ID, &doc.UploadedAt)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ListAll returns every stored document in insertion order.
func (r *PGRepo) ListAll(ctx context.Context) ([]Document, error) {
	const query = `
SELECT id, file_name, s3_file_name, file_type, file_path, text_content, uploaded_at
FROM documents
ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// GetByIDs fetches documents matching the given ids in one query.
func (r *PGRepo) GetByIDs(ctx context.Context, ids []int64) ([]Document, error) {
	if len(ids) == 0 {
		return []Document{}, nil
	}
	const query = `
SELECT id, file_name, s3_file_name, file_type, file_path, text_content, uploaded_at
FROM documents
WHERE id = ANY($1)
ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		var doc Document
		var textContent sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.FileName,
			&doc.S3FileName,
			&doc.FileType,
			&doc.FilePath,
			&textContent,
			&doc.UploadedAt,
		); err != nil {
			return nil, err
		}
		if textContent.Valid {
			doc.TextContent = textContent.String
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

var _ DocumentsRepo = (*PGRepo)(nil)
