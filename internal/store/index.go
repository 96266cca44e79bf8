// Package store persists built documents in a bleve index so they can be
// fetched by identifier and searched.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/pkg/indexer"
)

// Hit is one search result.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Stats describes the index.
type Stats struct {
	Documents uint64 `json:"documents"`
	Path      string `json:"path,omitempty"`
}

// DocumentIndex stores documents keyed by their "id" field.
type DocumentIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// validateIndexIntegrity checks that an existing index directory has a
// readable index_meta.json.
func validateIndexIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	metaPath := filepath.Join(path, "index_meta.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("index_meta.json unreadable: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("index_meta.json is empty")
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}
	return nil
}

func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "unexpected end of JSON") ||
		strings.Contains(s, "error parsing mapping JSON") ||
		strings.Contains(s, "failed to load segment") ||
		err == bleve.ErrorIndexMetaCorrupt
}

// Open opens or creates the index at path. An empty path creates an
// in-memory index. A corrupt index is cleared and recreated; documents
// must then be rebuilt.
func Open(path string) (*DocumentIndex, error) {
	m, err := newIndexMapping()
	if err != nil {
		return nil, errors.InternalError("create index mapping", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.InternalError("create index directory", err).WithDetail("path", path)
		}
		if validErr := validateIndexIntegrity(path); validErr != nil {
			slog.Warn("document_index_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))
			if err := os.RemoveAll(path); err != nil {
				return nil, errors.InternalError("clear corrupted index", err).WithDetail("path", path)
			}
		}

		idx, err = bleve.Open(path)
		switch {
		case err == bleve.ErrorIndexPathDoesNotExist:
			idx, err = bleve.New(path, m)
		case isCorruptionError(err):
			slog.Warn("document_index_open_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if rmErr := os.RemoveAll(path); rmErr != nil {
				return nil, errors.InternalError("clear corrupted index", rmErr).WithDetail("path", path)
			}
			idx, err = bleve.New(path, m)
		}
	}
	if err != nil {
		return nil, errors.InternalError("open document index", err).WithDetail("path", path)
	}
	return &DocumentIndex{index: idx, path: path}, nil
}

// Put adds or replaces documents in one batch.
func (x *DocumentIndex) Put(ctx context.Context, docs ...indexer.Document) error {
	if len(docs) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return errors.InternalError("index is closed", nil)
	}

	batch := x.index.NewBatch()
	for _, doc := range docs {
		id := doc.String("id")
		if id == "" {
			return errors.ValidationError("document has no id", nil)
		}
		entry, err := toEntry(doc)
		if err != nil {
			return errors.InternalError("encode document", err).WithDetail("id", id)
		}
		if err := batch.Index(id, entry); err != nil {
			return errors.InternalError("index document", err).WithDetail("id", id)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := x.index.Batch(batch); err != nil {
		return errors.InternalError("execute batch", err)
	}
	return nil
}

// Get returns the stored document for id.
func (x *DocumentIndex) Get(ctx context.Context, id string) (indexer.Document, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return nil, errors.InternalError("index is closed", nil)
	}

	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{id}))
	req.Fields = []string{sourceField}
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.InternalError("lookup document", err).WithDetail("id", id)
	}
	if len(res.Hits) == 0 {
		return nil, errors.NotFound(id)
	}
	src, _ := res.Hits[0].Fields[sourceField].(string)
	return fromSource(src)
}

// Search runs a query string query and returns up to limit hits.
// Field-scoped terms use the group prefix, e.g. "kw.tag_ssim:Project".
func (x *DocumentIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return nil, errors.InternalError("index is closed", nil)
	}
	if strings.TrimSpace(query) == "" {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequest(bleve.NewQueryStringQuery(query))
	req.Size = limit
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.ValidationError("search failed", err).WithDetail("query", query)
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// Delete removes documents.
func (x *DocumentIndex) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return errors.InternalError("index is closed", nil)
	}

	batch := x.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := x.index.Batch(batch); err != nil {
		return errors.InternalError("delete documents", err)
	}
	return nil
}

// AllIDs returns the identifiers of every stored document.
func (x *DocumentIndex) AllIDs(ctx context.Context) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return nil, errors.InternalError("index is closed", nil)
	}

	count, err := x.index.DocCount()
	if err != nil {
		return nil, errors.InternalError("count documents", err)
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.InternalError("list documents", err)
	}
	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	return ids, nil
}

// Stats returns document count and location.
func (x *DocumentIndex) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return Stats{Path: x.path}
	}
	count, _ := x.index.DocCount()
	return Stats{Documents: count, Path: x.path}
}

// Close closes the index. Calling it more than once is safe.
func (x *DocumentIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}
