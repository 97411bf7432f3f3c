package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

// FileDoc is the searchable projection of a file's metadata.
type FileDoc struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Username  string    `json:"username"`
	Mimetype  string    `json:"mimetype"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

type Indexer interface {
	IndexFile(ctx context.Context, doc FileDoc) error
	DeleteFile(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []FileDoc, error)
}

type Client struct {
	es    *elasticsearch.Client
	index string
}

// New returns a no-op indexer when no URL is configured.
func New(ctx context.Context, cfg Config) (Indexer, error) {
	if cfg.URL == "" {
		return NopIndexer{}, nil
	}
	return NewClient(ctx, cfg)
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Index == "" {
		return nil, errors.New("elasticsearch index is empty")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	return &Client{es: client, index: cfg.Index}, nil
}

func (c *Client) IndexFile(ctx context.Context, doc FileDoc) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode file doc: %w", err)
	}

	res, err := c.es.Index(c.index, &buf,
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("index file %s: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index file %s: %s", doc.ID, res.Status())
	}
	return nil
}

// DeleteFile treats a missing document as already deleted.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	res, err := c.es.Delete(c.index, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete file doc %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete file doc %s: %s", id, res.Status())
	}
	return nil
}

func (c *Client) Search(ctx context.Context, query string, from, size int) (int64, []FileDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"filename^2", "username", "mimetype"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search files: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return 0, []FileDoc{}, nil
		}
		return 0, nil, fmt.Errorf("search files: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source FileDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	docs := make([]FileDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

type NopIndexer struct{}

func (NopIndexer) IndexFile(context.Context, FileDoc) error { return nil }

func (NopIndexer) DeleteFile(context.Context, string) error { return nil }

func (NopIndexer) Search(context.Context, string, int, int) (int64, []FileDoc, error) {
	return 0, []FileDoc{}, nil
}
