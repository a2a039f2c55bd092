package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"docsearch-backend/internal/shared/metrics"
	"docsearch-backend/internal/vectorindex"
)

func metricValue(t *testing.T, name string) uint64 {
	t.Helper()
	for _, line := range strings.Split(metrics.Render(), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == name {
			v, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				t.Fatalf("parse %s value %q: %v", name, fields[1], err)
			}
			return v
		}
	}
	t.Fatalf("metric %s not exposed", name)
	return 0
}

type fakeStore struct {
	putErr     error
	presignErr error
	putKeys    []string
}

func (f *fakeStore) Put(ctx context.Context, storageKey, contentType string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.putKeys = append(f.putKeys, storageKey)
	return nil
}

func (f *fakeStore) PresignGet(ctx context.Context, storageKey, displayName string, expires time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://signed.example/" + storageKey + "?filename=" + displayName, nil
}

func (f *fakeStore) ObjectURL(storageKey string) string {
	return "https://bucket.s3.us-east-1.amazonaws.com/documents/" + storageKey
}

type fakeEmbedder struct {
	vec   []float64
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type upsertCall struct {
	id       string
	metadata vectorindex.Metadata
}

type fakeIndex struct {
	upserts   []upsertCall
	upsertErr error
	matches   []vectorindex.Match
	queryErr  error
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, vector []float64, metadata vectorindex.Metadata) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{id: id, metadata: metadata})
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float64, topK int) ([]vectorindex.Match, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

type fakeCompleter struct {
	answer     string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func docxBytes(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	xml := `<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(xml)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func newTestService() (*Service, *fakeStore, *fakeEmbedder, *fakeIndex, *fakeCompleter) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{vec: []float64{0.1, 0.2}}
	index := &fakeIndex{}
	completer := &fakeCompleter{answer: "generated answer"}
	svc := &Service{
		Repo:     NewMemoryRepo(),
		Store:    store,
		Embedder: embedder,
		Index:    index,
		LLM:      completer,
	}
	return svc, store, embedder, index, completer
}

func TestUploadDocxIndexesVector(t *testing.T) {
	svc, store, embedder, index, _ := newTestService()

	resp, err := svc.Upload(context.Background(), "report.final.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", docxBytes(t, "quarterly revenue"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if resp.OriginalName != "report.final.docx" {
		t.Fatalf("expected original name preserved, got %q", resp.OriginalName)
	}
	if len(store.putKeys) != 1 {
		t.Fatalf("expected 1 object put, got %d", len(store.putKeys))
	}
	key := store.putKeys[0]
	if !strings.HasSuffix(key, ".docx") {
		t.Fatalf("expected storage key ending .docx, got %q", key)
	}
	if key == "report.final.docx" {
		t.Fatal("storage key must not be derived from the original name")
	}
	if !strings.HasSuffix(resp.FileURL, "documents/"+key) {
		t.Fatalf("expected permanent URL for key, got %q", resp.FileURL)
	}
	if embedder.calls != 1 {
		t.Fatalf("expected 1 embed call, got %d", embedder.calls)
	}
	if len(index.upserts) != 1 {
		t.Fatalf("expected 1 vector upsert, got %d", len(index.upserts))
	}
	if index.upserts[0].id != "1" {
		t.Fatalf("expected vector keyed by document id, got %q", index.upserts[0].id)
	}
	if index.upserts[0].metadata.FileName != "report.final.docx" || index.upserts[0].metadata.S3FileName != key {
		t.Fatalf("unexpected vector metadata: %+v", index.upserts[0].metadata)
	}
}

func TestUploadUnrecognizedContentSkipsEmbedding(t *testing.T) {
	svc, _, embedder, index, _ := newTestService()

	if _, err := svc.Upload(context.Background(), "notes.txt", "text/plain", []byte("just plain bytes")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if embedder.calls != 0 {
		t.Fatalf("expected no embed call for empty extracted text, got %d", embedder.calls)
	}
	if len(index.upserts) != 0 {
		t.Fatalf("expected no vector upsert, got %d", len(index.upserts))
	}

	// The document is still listed.
	entries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].FileName != "notes.txt" {
		t.Fatalf("expected listed document, got %+v", entries)
	}
}

func TestUploadNoExtensionUsesBareKey(t *testing.T) {
	svc, store, _, _, _ := newTestService()

	if _, err := svc.Upload(context.Background(), "README", "application/octet-stream", []byte("data")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if strings.Contains(store.putKeys[0], ".") {
		t.Fatalf("expected bare uuid key without extension, got %q", store.putKeys[0])
	}
}

func TestUploadObjectStoreFailureIsFatal(t *testing.T) {
	svc, store, embedder, _, _ := newTestService()
	store.putErr = errors.New("s3 down")

	_, err := svc.Upload(context.Background(), "a.docx", "application/zip", docxBytes(t, "text"))
	var svcErr *ExternalServiceError
	if !errors.As(err, &svcErr) || svcErr.Service != ServiceObjectStore {
		t.Fatalf("expected object_store error, got %v", err)
	}
	if embedder.calls != 0 {
		t.Fatal("no embedding call should happen after a failed upload")
	}
	docs, _ := svc.Repo.ListAll(context.Background())
	if len(docs) != 0 {
		t.Fatal("no metadata row should exist after a failed upload")
	}
}

func TestUploadEmbeddingFailureIsFatal(t *testing.T) {
	svc, _, embedder, _, _ := newTestService()
	embedder.err = errors.New("rate limited")

	_, err := svc.Upload(context.Background(), "a.docx", "application/zip", docxBytes(t, "text"))
	var svcErr *ExternalServiceError
	if !errors.As(err, &svcErr) || svcErr.Service != ServiceEmbedding {
		t.Fatalf("expected embedding error, got %v", err)
	}
	docs, _ := svc.Repo.ListAll(context.Background())
	if len(docs) != 0 {
		t.Fatal("no metadata row should exist after a failed embedding")
	}
}

func TestUploadVectorUpsertFailureIsNonFatal(t *testing.T) {
	svc, _, _, index, _ := newTestService()
	index.upsertErr = errors.New("pinecone down")
	before := metricValue(t, "upload_vector_upsert_failed_total")

	resp, err := svc.Upload(context.Background(), "a.docx", "application/zip", docxBytes(t, "text"))
	if err != nil {
		t.Fatalf("expected upload to succeed despite upsert failure, got %v", err)
	}
	if resp.Message == "" {
		t.Fatal("expected confirmation payload")
	}
	docs, _ := svc.Repo.ListAll(context.Background())
	if len(docs) != 1 {
		t.Fatal("metadata row should be kept when the vector upsert fails")
	}
	if after := metricValue(t, "upload_vector_upsert_failed_total"); after != before+1 {
		t.Fatalf("expected inconsistency counter to advance, got %d -> %d", before, after)
	}
}

func TestSearchFiltersBelowThresholdAndSkipsCompletion(t *testing.T) {
	svc, _, _, index, completer := newTestService()
	index.matches = []vectorindex.Match{
		{ID: "1", Score: 0.49, Metadata: vectorindex.Metadata{FileName: "a.docx", S3FileName: "k1.docx"}},
		{ID: "2", Score: 0.2, Metadata: vectorindex.Metadata{FileName: "b.docx", S3FileName: "k2.docx"}},
	}

	resp, err := svc.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Response != "No relevant documents found." {
		t.Fatalf("expected fixed no-results message, got %q", resp.Response)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("expected empty results, got %d", len(resp.Results))
	}
	if resp.Results == nil {
		t.Fatal("results must be an empty list, not null")
	}
	if completer.calls != 0 {
		t.Fatalf("completion must not be called without matches, got %d calls", completer.calls)
	}
}

func TestSearchReturnsAnswerAndRankedResults(t *testing.T) {
	svc, _, _, index, completer := newTestService()

	docA, _ := svc.Repo.Create(context.Background(), Document{FileName: "a.docx", S3FileName: "k1.docx", TextContent: "alpha text"})
	docB, _ := svc.Repo.Create(context.Background(), Document{FileName: "b.docx", S3FileName: "k2.docx", TextContent: "beta text"})

	index.matches = []vectorindex.Match{
		{ID: "1", Score: 0.92, Metadata: vectorindex.Metadata{FileName: docA.FileName, S3FileName: docA.S3FileName}},
		{ID: "2", Score: 0.63, Metadata: vectorindex.Metadata{FileName: docB.FileName, S3FileName: docB.S3FileName}},
		{ID: "3", Score: 0.31, Metadata: vectorindex.Metadata{FileName: "c.docx", S3FileName: "k3.docx"}},
	}

	resp, err := svc.Search(context.Background(), "what is alpha?")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if resp.Response != "generated answer" {
		t.Fatalf("expected model answer verbatim, got %q", resp.Response)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(resp.Results))
	}
	if resp.Results[0].ID != 1 || resp.Results[1].ID != 2 {
		t.Fatalf("expected index ranking order preserved, got %+v", resp.Results)
	}
	if resp.Results[0].FileURL == nil || !strings.Contains(*resp.Results[0].FileURL, "filename=a.docx") {
		t.Fatalf("expected signed URL forcing display name, got %v", resp.Results[0].FileURL)
	}
	if completer.calls != 1 {
		t.Fatalf("expected 1 completion call, got %d", completer.calls)
	}
	if !strings.Contains(completer.lastUser, "alpha text\n\nbeta text") {
		t.Fatalf("expected texts joined by blank line in prompt, got %q", completer.lastUser)
	}
	if !strings.Contains(completer.lastUser, "what is alpha?") {
		t.Fatalf("expected query in prompt, got %q", completer.lastUser)
	}
	if !strings.Contains(completer.lastSystem, "based on documents") {
		t.Fatalf("unexpected system prompt %q", completer.lastSystem)
	}
}

func TestSearchPresignFailureDegradesToNullLink(t *testing.T) {
	svc, store, _, index, _ := newTestService()
	store.presignErr = errors.New("signer broken")

	if _, err := svc.Repo.Create(context.Background(), Document{FileName: "a.docx", S3FileName: "k1.docx", TextContent: "alpha"}); err != nil {
		t.Fatalf("seed repo: %v", err)
	}
	index.matches = []vectorindex.Match{
		{ID: "1", Score: 0.9, Metadata: vectorindex.Metadata{FileName: "a.docx", S3FileName: "k1.docx"}},
	}

	resp, err := svc.Search(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].FileURL != nil {
		t.Fatalf("expected result with null link, got %+v", resp.Results)
	}
}

func TestSearchEmbeddingFailure(t *testing.T) {
	svc, _, embedder, _, completer := newTestService()
	embedder.err = errors.New("down")

	_, err := svc.Search(context.Background(), "query")
	var svcErr *ExternalServiceError
	if !errors.As(err, &svcErr) || svcErr.Service != ServiceEmbedding {
		t.Fatalf("expected embedding error, got %v", err)
	}
	if completer.calls != 0 {
		t.Fatal("completion must not run after an embedding failure")
	}
}

func TestListEmptyStore(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	entries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty list, got %v", entries)
	}
}

func TestListDegradesOnPresignFailure(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	store.presignErr = errors.New("signer broken")

	if _, err := svc.Repo.Create(context.Background(), Document{FileName: "a.docx", S3FileName: "k1.docx"}); err != nil {
		t.Fatalf("seed repo: %v", err)
	}

	entries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if len(entries) != 1 || entries[0].FileURL != nil {
		t.Fatalf("expected entry with null link, got %+v", entries)
	}
}
