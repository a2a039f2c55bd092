package documents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsearch-backend/internal/embedding"
	"docsearch-backend/internal/extract"
	"docsearch-backend/internal/llm"
	"docsearch-backend/internal/shared/metrics"
	"docsearch-backend/internal/shared/storage/object"
	"docsearch-backend/internal/shared/telemetry"
	"docsearch-backend/internal/shared/util"
	"docsearch-backend/internal/vectorindex"
)

const (
	searchTopK     = 5
	scoreThreshold = 0.5
	presignTTL     = 3600 * time.Second

	noResultsMessage = "No relevant documents found."
	systemPrompt     = "You are an AI assistant that provides concise, helpful responses based on documents."
)

// Service orchestrates the object store, embedding API, vector index,
// completion API, and metadata store. All steps per request are sequential.
type Service struct {
	Repo     DocumentsRepo
	Store    object.ObjectStore
	Embedder embedding.Embedder
	Index    vectorindex.Index
	LLM      llm.Completer
}

// Upload stores the raw bytes, extracts and embeds text when possible, and
// records the document's metadata. A vector-upsert failure is non-fatal: the
// metadata row is kept and the inconsistency is logged.
func (s *Service) Upload(ctx context.Context, fileName, contentType string, data []byte) (UploadResponse, error) {
	if strings.TrimSpace(fileName) == "" {
		return UploadResponse{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	// Extraction fails open: unrecognized or malformed content uploads fine.
	text := extract.Text(data)

	storageKey := uuid.NewString()
	if ext, ok := util.FileExtension(fileName); ok {
		storageKey += "." + ext
	}

	if err := s.Store.Put(ctx, storageKey, contentType, data); err != nil {
		return UploadResponse{}, &ExternalServiceError{Service: ServiceObjectStore, Err: err}
	}

	var vector []float64
	if text != "" {
		var err error
		vector, err = s.Embedder.Embed(ctx, text)
		if err != nil {
			return UploadResponse{}, &ExternalServiceError{Service: ServiceEmbedding, Err: err}
		}
	}

	doc, err := s.Repo.Create(ctx, Document{
		FileName:    fileName,
		S3FileName:  storageKey,
		FileType:    contentType,
		FilePath:    s.Store.ObjectURL(storageKey),
		TextContent: text,
	})
	if err != nil {
		return UploadResponse{}, &ExternalServiceError{Service: ServiceDatabase, Err: err}
	}

	if vector != nil {
		meta := vectorindex.Metadata{
			FileName:   doc.FileName,
			S3FileName: doc.S3FileName,
			FileURL:    doc.FilePath,
		}
		if err := s.Index.Upsert(ctx, strconv.FormatInt(doc.ID, 10), vector, meta); err != nil {
			metrics.IncUploadVectorUpsertFailed()
			telemetry.Error("upload.vector_upsert.failed", map[string]any{
				"document_id":  doc.ID,
				"s3_file_name": doc.S3FileName,
				"err":          err.Error(),
			})
		}
	}

	metrics.IncDocumentUploaded()
	return UploadResponse{
		Message:      "File uploaded successfully!",
		FileURL:      doc.FilePath,
		OriginalName: doc.FileName,
	}, nil
}

// Search embeds the query, ranks documents via the vector index, and asks the
// completion model for an answer grounded in the matched documents' text.
func (s *Service) Search(ctx context.Context, query string) (SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return SearchResponse{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	metrics.IncSearch()
	start := time.Now()

	queryVector, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return SearchResponse{}, &ExternalServiceError{Service: ServiceEmbedding, Err: err}
	}

	matches, err := s.Index.Query(ctx, queryVector, searchTopK)
	if err != nil {
		return SearchResponse{}, &ExternalServiceError{Service: ServiceVectorIndex, Err: err}
	}

	// Index ranking order is preserved; no secondary sort.
	results := make([]SearchResultItem, 0, len(matches))
	for _, match := range matches {
		if match.Score < scoreThreshold {
			continue
		}
		id, err := strconv.ParseInt(match.ID, 10, 64)
		if err != nil {
			telemetry.Warn("search.match.bad_id", map[string]any{"match_id": match.ID})
			continue
		}
		results = append(results, SearchResultItem{
			ID:         id,
			Score:      match.Score,
			FileName:   match.Metadata.FileName,
			S3FileName: match.Metadata.S3FileName,
			FileURL:    s.signedURL(ctx, match.Metadata.S3FileName, match.Metadata.FileName),
		})
	}

	if len(results) == 0 {
		metrics.IncSearchWithoutResults()
		metrics.ObserveSearchDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
		return SearchResponse{
			Query:    query,
			Response: noResultsMessage,
			Results:  []SearchResultItem{},
		}, nil
	}

	ids := make([]int64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	docs, err := s.Repo.GetByIDs(ctx, ids)
	if err != nil {
		return SearchResponse{}, &ExternalServiceError{Service: ServiceDatabase, Err: err}
	}

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.TextContent != "" {
			texts = append(texts, doc.TextContent)
		}
	}
	userPrompt := fmt.Sprintf("Based on the following documents, answer the query: '%s'\n\n%s",
		query, strings.Join(texts, "\n\n"))

	answer, err := s.LLM.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return SearchResponse{}, &ExternalServiceError{Service: ServiceCompletion, Err: err}
	}

	metrics.ObserveSearchDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	return SearchResponse{
		Query:    query,
		Response: answer,
		Results:  results,
	}, nil
}

// List returns every stored document with a fresh signed download link.
// Signing failures degrade to a null link rather than failing the listing.
func (s *Service) List(ctx context.Context) ([]FileEntry, error) {
	docs, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, &ExternalServiceError{Service: ServiceDatabase, Err: err}
	}

	entries := make([]FileEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, FileEntry{
			ID:         doc.ID,
			FileName:   doc.FileName,
			FileURL:    s.signedURL(ctx, doc.S3FileName, doc.FileName),
			UploadedAt: doc.UploadedAt,
		})
	}
	return entries, nil
}

func (s *Service) signedURL(ctx context.Context, storageKey, displayName string) *string {
	url, err := s.Store.PresignGet(ctx, storageKey, displayName, presignTTL)
	if err != nil {
		telemetry.Warn("presign.failed", map[string]any{
			"s3_file_name": storageKey,
			"err":          err.Error(),
		})
		return nil
	}
	return &url
}
