// Package search keeps an Elasticsearch index of reviewed addresses for
// autocomplete.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/utafrali/neighborly/internal/domain"
)

// Document is the indexed form of an address.
type Document struct {
	ID               string    `json:"id"`
	Display          string    `json:"display"`
	StreetAddress    string    `json:"street_address"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	ZipCode          string    `json:"zip_code"`
	FormattedAddress string    `json:"formatted_address"`
	ReviewCount      int       `json:"review_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewDocument builds the document for an address with reviewCount reviews.
func NewDocument(a *domain.Address, reviewCount int, now time.Time) Document {
	return Document{
		ID:               a.ID,
		Display:          fmt.Sprintf("%s, %s, %s %s", a.StreetAddress, a.City, a.State, a.ZipCode),
		StreetAddress:    a.StreetAddress,
		City:             a.City,
		State:            a.State,
		ZipCode:          a.ZipCode,
		FormattedAddress: a.FormattedAddress,
		ReviewCount:      reviewCount,
		UpdatedAt:        now,
	}
}

// Engine is an Elasticsearch-backed address index.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New connects to esURL and creates the index if it does not exist. An
// empty indexName uses DefaultIndexName.
func New(ctx context.Context, esURL, indexName string, logger *slog.Logger) (*Engine, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	e := &Engine{client: client, indexName: indexName, logger: logger}
	if err := e.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}
	return e, nil
}

// Ping checks whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

func (e *Engine) ensureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	closeBody(res)

	if res.StatusCode == http.StatusOK {
		e.logger.Info("elasticsearch index already exists", slog.String("index", e.indexName))
		return nil
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("create index", res)
	}

	e.logger.Info("elasticsearch index created", slog.String("index", e.indexName))
	return nil
}

// Upsert adds or replaces an address document.
func (e *Engine) Upsert(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal document: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(doc.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("elasticsearch index", res)
	}

	e.logger.DebugContext(ctx, "indexed address", slog.String("address_id", doc.ID))
	return nil
}

// Delete removes an address document. A missing document is not an error.
func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.client.Delete(e.indexName, id, e.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer closeBody(res)

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete", res)
	}

	e.logger.DebugContext(ctx, "removed address from index", slog.String("address_id", id))
	return nil
}

// Suggest returns up to limit addresses whose display text matches every
// term of query as a prefix, most reviewed first.
func (e *Engine) Suggest(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error) {
	if limit <= 0 {
		limit = 5
	}

	body := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"display.autocomplete": map[string]any{
					"query":    query,
					"operator": "and",
				},
			},
		},
		"size":    limit,
		"_source": []string{"id", "display", "review_count"},
		"sort": []any{
			map[string]any{"review_count": "desc"},
			map[string]any{"_score": "desc"},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return nil, responseError("elasticsearch suggest", res)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: decode response: %w", err)
	}

	suggestions := make([]domain.AddressSuggestion, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		suggestions = append(suggestions, domain.AddressSuggestion{
			ID:          hit.Source.ID,
			Display:     hit.Source.Display,
			ReviewCount: hit.Source.ReviewCount,
		})
	}
	return suggestions, nil
}

func closeBody(res *esapi.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

func responseError(op string, res *esapi.Response) error {
	var errResp esErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}
