package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	documentsUploadedTotal      atomic.Uint64
	uploadVectorUpsertFailed    atomic.Uint64
	searchesTotal               atomic.Uint64
	searchesWithoutResultsTotal atomic.Uint64

	searchDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2500, 5000, 15000, 60000})
)

// IncDocumentUploaded counts a stored document.
func IncDocumentUploaded() {
	documentsUploadedTotal.Add(1)
}

// IncUploadVectorUpsertFailed counts a document whose metadata row exists but
// whose vector never reached the index.
func IncUploadVectorUpsertFailed() {
	uploadVectorUpsertFailed.Add(1)
}

// IncSearch counts a search request that passed validation.
func IncSearch() {
	searchesTotal.Add(1)
}

// IncSearchWithoutResults counts a search that matched no documents.
func IncSearchWithoutResults() {
	searchesWithoutResultsTotal.Add(1)
}

// ObserveSearchDurationMs records how long one search took, in milliseconds.
func ObserveSearchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	searchDuration.Observe(value)
}

// Handler serves the Prometheus text exposition of all counters.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render produces the Prometheus text format for every metric.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "documents_uploaded_total", "Total documents stored", documentsUploadedTotal.Load())
	writeCounter(&buf, "upload_vector_upsert_failed_total", "Total uploads whose vector upsert failed", uploadVectorUpsertFailed.Load())
	writeCounter(&buf, "searches_total", "Total search requests", searchesTotal.Load())
	writeCounter(&buf, "searches_without_results_total", "Total searches matching no documents", searchesWithoutResultsTotal.Load())
	writeHistogram(&buf, "search_duration_ms", "Search latency in milliseconds", searchDuration.snapshot())
	return buf.String()
}

type histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64
	sum    float64
	count  uint64
}

type histogramState struct {
	bounds []float64
	counts []uint64
	sum    float64
	count  uint64
}

func newHistogram(bounds []float64) *histogram {
	return &histogram{
		bounds: bounds,
		counts: make([]uint64, len(bounds)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.bounds {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) snapshot() histogramState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramState{
		bounds: append([]float64(nil), h.bounds...),
		counts: append([]uint64(nil), h.counts...),
		sum:    h.sum,
		count:  h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, state histogramState) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range state.bounds {
		cumulative += state.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, state.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(state.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, state.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
