package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"docsearch-backend/internal/vectorindex"
)

// Client is a minimal REST client to a Pinecone index endpoint.
type Client struct {
	indexURL   string
	apiKey     string
	httpClient *http.Client
}

// Config configures the Pinecone client.
type Config struct {
	IndexURL string
	APIKey   string
	Timeout  time.Duration
}

// NewClient constructs a client against one Pinecone index host.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.IndexURL) == "" {
		return nil, fmt.Errorf("PINECONE_INDEX_URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("PINECONE_API_KEY is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		indexURL:   strings.TrimRight(cfg.IndexURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type upsertVector struct {
	ID       string               `json:"id"`
	Values   []float64            `json:"values"`
	Metadata vectorindex.Metadata `json:"metadata"`
}

type upsertRequest struct {
	Vectors []upsertVector `json:"vectors"`
}

type queryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string               `json:"id"`
		Score    float64              `json:"score"`
		Metadata vectorindex.Metadata `json:"metadata"`
	} `json:"matches"`
}

// Upsert writes one vector with its metadata payload.
func (c *Client) Upsert(ctx context.Context, id string, vector []float64, metadata vectorindex.Metadata) error {
	body := upsertRequest{
		Vectors: []upsertVector{{ID: id, Values: vector, Metadata: metadata}},
	}
	return c.postJSON(ctx, c.indexURL+"/vectors/upsert", body, nil)
}

// Query returns the topK nearest matches by similarity.
func (c *Client) Query(ctx context.Context, vector []float64, topK int) ([]vectorindex.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	var resp queryResponse
	req := queryRequest{Vector: vector, TopK: topK, IncludeMetadata: true}
	if err := c.postJSON(ctx, c.indexURL+"/query", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]vectorindex.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, vectorindex.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pinecone POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ vectorindex.Index = (*Client)(nil)
