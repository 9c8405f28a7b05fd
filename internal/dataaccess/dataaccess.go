// Package dataaccess mediates all reads and writes to the remote backend,
// adding short-lived result caching, durable retry of failed writes, live
// subscriptions with auto-reconnect, and bounded concurrent uploads.
package dataaccess

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"localmart/internal/backend"
	"localmart/internal/cache"
	"localmart/internal/pending"
	"localmart/utils"
)

const (
	// DefaultPageSize is used when a caller asks for a non-positive page size.
	DefaultPageSize = 20

	defaultQueryTTL       = 5 * time.Minute
	defaultSnapshotTTL    = 10 * time.Minute
	defaultReconnectDelay = 5 * time.Second
)

// Page is one page of query results. NextCursor is the id of the last item
// and resumes the query after it.
type Page struct {
	Items      []backend.Document
	NextCursor string
	HasMore    bool
}

// Store is the data access layer. Construct one per process and pass it by
// reference; all of its state is owned by the instance.
type Store struct {
	docs    backend.DocumentStore
	blobs   backend.BlobStore
	pending *pending.Log

	queryCache *cache.Cache[Page]
	docCache   *cache.Cache[backend.Document]

	mu   sync.Mutex
	subs map[string]*subscription

	queryTTL       time.Duration
	snapshotTTL    time.Duration
	reconnectDelay time.Duration
}

// Option adjusts Store construction.
type Option func(*Store)

// WithQueryTTL overrides the first-page query cache TTL.
func WithQueryTTL(d time.Duration) Option {
	return func(s *Store) { s.queryTTL = d }
}

// WithSnapshotTTL overrides the subscription snapshot cache TTL.
func WithSnapshotTTL(d time.Duration) Option {
	return func(s *Store) { s.snapshotTTL = d }
}

// WithReconnectDelay overrides the fixed delay before a broken subscription
// is re-established.
func WithReconnectDelay(d time.Duration) Option {
	return func(s *Store) { s.reconnectDelay = d }
}

// New creates a Store. The pending log may be nil, in which case failed
// writes are not persisted for replay.
func New(docs backend.DocumentStore, blobs backend.BlobStore, plog *pending.Log, opts ...Option) *Store {
	s := &Store{
		docs:           docs,
		blobs:          blobs,
		pending:        plog,
		queryCache:     cache.New[Page](),
		docCache:       cache.New[backend.Document](),
		subs:           make(map[string]*subscription),
		queryTTL:       defaultQueryTTL,
		snapshotTTL:    defaultSnapshotTTL,
		reconnectDelay: defaultReconnectDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryPage fetches at most pageSize items, resuming after cursor when set.
// Only the first page is cacheable; cursor pages always hit the backend.
func (s *Store) QueryPage(ctx context.Context, collection string, filters []backend.Filter, sortSpec backend.Sort, pageSize int, cursor string, useCache bool) (Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	key := queryKey(collection, filters)
	if useCache && cursor == "" {
		if page, ok := s.queryCache.Get(key); ok {
			return page, nil
		}
	}

	q := backend.Query{
		Collection: collection,
		Filters:    pruneFilters(filters),
		Sort:       sortSpec,
		Limit:      pageSize + 1, // one extra to learn whether more exist
		StartAfter: cursor,
	}
	docs, err := s.docs.Query(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("query %s: %w", collection, err)
	}

	page := Page{HasMore: len(docs) > pageSize}
	if page.HasMore {
		docs = docs[:pageSize]
	}
	page.Items = docs
	if len(docs) > 0 {
		page.NextCursor = docs[len(docs)-1].ID()
	}

	if useCache && cursor == "" {
		s.queryCache.Set(key, page, s.queryTTL)
	}
	return page, nil
}

// GetByIDs fetches documents by id, consulting the per-document cache first
// and splitting uncached ids into chunks of backend.InLimit fetched in
// parallel. Result order is cache-hits-first, then chunk order; it does not
// follow the input order.
func (s *Store) GetByIDs(ctx context.Context, collection string, ids []string) ([]backend.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var cached []backend.Document
	var uncached []string
	for _, id := range ids {
		if doc, ok := s.docCache.Get(docKey(collection, id)); ok {
			cached = append(cached, doc)
		} else {
			uncached = append(uncached, id)
		}
	}
	if len(uncached) == 0 {
		return cached, nil
	}

	var chunks [][]string
	for start := 0; start < len(uncached); start += backend.InLimit {
		end := start + backend.InLimit
		if end > len(uncached) {
			end = len(uncached)
		}
		chunks = append(chunks, uncached[start:end])
	}

	fetched := make([][]backend.Document, len(chunks))
	g, gCtx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			docs, err := s.docs.Query(gCtx, backend.Query{Collection: collection, IDs: chunk})
			if err != nil {
				return fmt.Errorf("fetch %s ids: %w", collection, err)
			}
			fetched[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := cached
	for _, docs := range fetched {
		for _, doc := range docs {
			// Fetched documents never expire; invalidation is manual.
			s.docCache.Set(docKey(collection, doc.ID()), doc, 0)
			out = append(out, doc)
		}
	}
	return out, nil
}

// Create stores a new document, stamping creation and update times. On
// failure the write is appended to the durable pending log for later replay
// and the error is still returned.
func (s *Store) Create(ctx context.Context, collection string, payload backend.Document) (string, error) {
	doc := clone(payload)
	now := time.Now().UTC()
	doc["createdAt"] = now
	doc["updatedAt"] = now

	id, err := s.docs.Create(ctx, collection, doc)
	if err != nil {
		s.persistPending(pending.Write{Kind: pending.KindCreate, Collection: collection}, doc)
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}

	s.invalidateCollection(collection)
	return id, nil
}

// Update merge-patches a document. The per-document cache entry, if present,
// is patched before the backend confirms and is not rolled back should the
// write fail; cached reads are best-effort by contract.
func (s *Store) Update(ctx context.Context, collection, id string, patchDoc backend.Document) error {
	patch := clone(patchDoc)
	patch["updatedAt"] = time.Now().UTC()

	key := docKey(collection, id)
	if current, ok := s.docCache.Get(key); ok {
		merged := clone(current)
		for k, v := range patch {
			merged[k] = v
		}
		s.docCache.Set(key, merged, 0)
	}

	if err := s.docs.Patch(ctx, collection, id, patch); err != nil {
		s.persistPending(pending.Write{Kind: pending.KindUpdate, Collection: collection, DocID: id}, patch)
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}

	s.invalidateCollection(collection)
	return nil
}

// Delete removes a document and then, best-effort, its associated blobs. A
// blob deletion failure is logged but does not fail the operation; the
// document deletion is strict.
func (s *Store) Delete(ctx context.Context, collection, id string, blobPaths []string) error {
	if err := s.docs.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	for _, path := range blobPaths {
		if err := s.blobs.DeleteBlob(ctx, path); err != nil {
			utils.Warn("failed to delete blob", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	s.docCache.Delete(docKey(collection, id))
	s.invalidateCollection(collection)
	return nil
}

// ReplayPending replays the durable pending-write log against the backend.
// Entries are removed only after a confirmed success; failures stay queued
// for the next startup.
func (s *Store) ReplayPending(ctx context.Context) error {
	if s.pending == nil {
		return nil
	}
	writes, err := s.pending.All()
	if err != nil {
		return fmt.Errorf("loading pending writes: %w", err)
	}

	for _, w := range writes {
		var doc backend.Document
		if err := json.Unmarshal(w.Payload, &doc); err != nil {
			utils.Error("dropping malformed pending write", map[string]any{
				"id":    w.ID,
				"error": err.Error(),
			})
			if err := s.pending.Remove(w.ID); err != nil {
				utils.Error("failed to trim pending log", map[string]any{"id": w.ID, "error": err.Error()})
			}
			continue
		}

		var replayErr error
		switch w.Kind {
		case pending.KindCreate:
			_, replayErr = s.docs.Create(ctx, w.Collection, doc)
		case pending.KindUpdate:
			replayErr = s.docs.Patch(ctx, w.Collection, w.DocID, doc)
		default:
			utils.Warn("skipping pending write with unknown kind", map[string]any{
				"id":   w.ID,
				"kind": string(w.Kind),
			})
			continue
		}
		if replayErr != nil {
			utils.Warn("pending write replay failed", map[string]any{
				"id":         w.ID,
				"collection": w.Collection,
				"error":      replayErr.Error(),
			})
			continue
		}

		s.invalidateCollection(w.Collection)
		if err := s.pending.Remove(w.ID); err != nil {
			utils.Error("failed to trim pending log", map[string]any{"id": w.ID, "error": err.Error()})
		}
	}
	return nil
}

// Close stops every live subscription and drops all cached state.
func (s *Store) Close() {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[string]*subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
	}
	s.queryCache.Clear()
	s.docCache.Clear()
}

// invalidateCollection drops every query cache entry keyed under the
// collection. Coarse on purpose: no stale listing after a write beats cache
// hit rate.
func (s *Store) invalidateCollection(collection string) {
	s.queryCache.DeletePrefix(collection + "?")
}

func (s *Store) persistPending(w pending.Write, doc backend.Document) {
	if s.pending == nil {
		return
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		utils.Error("failed to encode pending write", map[string]any{
			"collection": w.Collection,
			"error":      err.Error(),
		})
		return
	}
	w.Payload = payload
	if err := s.pending.Append(w); err != nil {
		utils.Error("failed to persist pending write", map[string]any{
			"collection": w.Collection,
			"kind":       string(w.Kind),
			"error":      err.Error(),
		})
	}
}

// queryKey derives the deterministic cache key for a collection and filter
// set. Filters are pruned and sorted so equal filter sets share a key.
func queryKey(collection string, filters []backend.Filter) string {
	pruned := pruneFilters(filters)
	parts := make([]string, 0, len(pruned))
	for _, f := range pruned {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Field, f.Value))
	}
	sort.Strings(parts)
	return collection + "?" + strings.Join(parts, "&")
}

func docKey(collection, id string) string {
	return collection + "/" + id
}

// pruneFilters drops filters with empty or nil values; they are ignored, not
// sent to the backend.
func pruneFilters(filters []backend.Filter) []backend.Filter {
	out := make([]backend.Filter, 0, len(filters))
	for _, f := range filters {
		if f.Value == nil || f.Value == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func clone(doc backend.Document) backend.Document {
	out := make(backend.Document, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}
	return out
}
