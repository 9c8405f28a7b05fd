package backend

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"localmart/internal/marketerrors"
	"localmart/internal/models"
)

// MemoryStore is a concurrency-safe in-memory implementation of
// DocumentStore, BlobStore and Identity. It backs local development mode and
// the integration and performance tests.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      map[string]map[string]Document // collection -> id -> document
	blobs     map[string][]byte
	tokens    map[string]models.User
	watchers  map[int]*memWatcher
	nextWatch int
}

// NewMemoryStore creates an empty in-memory backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]map[string]Document),
		blobs:    make(map[string][]byte),
		tokens:   make(map[string]models.User),
		watchers: make(map[int]*memWatcher),
	}
}

// Query returns the documents matching q.
func (m *MemoryStore) Query(_ context.Context, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.evaluate(q), nil
}

// Create stores a new document under a generated id.
func (m *MemoryStore) Create(_ context.Context, collection string, doc Document) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("%w: missing collection", marketerrors.ErrInvalidQuery)
	}
	m.mu.Lock()
	id := uuid.New().String()
	stored := cloneDocument(doc)
	stored["id"] = id
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]Document)
	}
	m.docs[collection][id] = stored
	m.mu.Unlock()

	m.notify(collection)
	return id, nil
}

// Patch merges the given fields into an existing document.
func (m *MemoryStore) Patch(_ context.Context, collection, id string, patch Document) error {
	m.mu.Lock()
	doc, ok := m.docs[collection][id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("patch %s/%s: %w", collection, id, marketerrors.ErrNotFound)
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

// Delete removes a document by id.
func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	if _, ok := m.docs[collection][id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete %s/%s: %w", collection, id, marketerrors.ErrNotFound)
	}
	delete(m.docs[collection], id)
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

// Watch delivers the full current result set for q on every change to its
// collection, starting with the current state.
func (m *MemoryStore) Watch(_ context.Context, q Query) (Listener, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	w := &memWatcher{
		store: m,
		query: q,
		snaps: make(chan []Document, 1),
		errs:  make(chan error, 1),
	}
	w.id = m.nextWatch
	m.nextWatch++
	m.watchers[w.id] = w
	w.snaps <- m.evaluate(q)
	m.mu.Unlock()
	return w, nil
}

// Upload stores a blob and returns a synthetic public URL.
func (m *MemoryStore) Upload(_ context.Context, path, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading blob data: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = data
	return "https://blobs.localmart.dev/" + path, nil
}

// DeleteBlob removes a stored blob.
func (m *MemoryStore) DeleteBlob(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[path]; !ok {
		return fmt.Errorf("blob %s: %w", path, marketerrors.ErrNotFound)
	}
	delete(m.blobs, path)
	return nil
}

// Verify resolves a token registered via RegisterToken.
func (m *MemoryStore) Verify(_ context.Context, token string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.tokens[token]
	if !ok {
		return models.User{}, fmt.Errorf("verify token: %w", marketerrors.ErrPermission)
	}
	return user, nil
}

// RegisterToken maps a bearer token to a user for local sign-in.
func (m *MemoryStore) RegisterToken(token string, user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = user
}

// AddDocument seeds a document under a fixed id. This method is intended for
// tests and local prepopulation only.
func (m *MemoryStore) AddDocument(collection, id string, doc Document) {
	m.mu.Lock()
	stored := cloneDocument(doc)
	stored["id"] = id
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]Document)
	}
	m.docs[collection][id] = stored
	m.mu.Unlock()

	m.notify(collection)
}

// evaluate runs a query against current state. Caller holds at least a read lock.
func (m *MemoryStore) evaluate(q Query) []Document {
	var out []Document
	for _, doc := range m.docs[q.Collection] {
		if matches(doc, q) {
			out = append(out, cloneDocument(doc))
		}
	}
	if q.Sort.Field != "" {
		sort.SliceStable(out, func(i, j int) bool {
			cmp := compareValues(out[i][q.Sort.Field], out[j][q.Sort.Field])
			if q.Sort.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if q.StartAfter != "" {
		idx := -1
		for i, doc := range out {
			if doc.ID() == q.StartAfter {
				idx = i
				break
			}
		}
		if idx >= 0 {
			out = out[idx+1:]
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// notify recomputes and pushes snapshots for every watcher of the collection.
func (m *MemoryStore) notify(collection string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.watchers {
		if w.query.Collection != collection {
			continue
		}
		snap := m.evaluate(w.query)
		// Replace an undelivered snapshot rather than blocking; only the
		// latest full result set matters.
		select {
		case <-w.snaps:
		default:
		}
		select {
		case w.snaps <- snap:
		default:
		}
	}
}

func matches(doc Document, q Query) bool {
	for _, f := range q.Filters {
		if fmt.Sprint(doc[f.Field]) != fmt.Sprint(f.Value) {
			return false
		}
	}
	if len(q.IDs) > 0 {
		found := false
		for _, id := range q.IDs {
			if doc.ID() == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int:
		if bv, ok := b.(int); ok {
			return av - bv
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// memWatcher is the Listener of a MemoryStore watch.
type memWatcher struct {
	store *MemoryStore
	query Query
	id    int
	snaps chan []Document
	errs  chan error
	once  sync.Once
}

func (w *memWatcher) Snapshots() <-chan []Document { return w.snaps }
func (w *memWatcher) Errors() <-chan error         { return w.errs }

func (w *memWatcher) Stop() {
	w.once.Do(func() {
		w.store.mu.Lock()
		delete(w.store.watchers, w.id)
		w.store.mu.Unlock()
	})
}

// Fail injects an error into every watcher of the collection. Test hook for
// exercising subscription reconnect behavior.
func (m *MemoryStore) Fail(collection string, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.watchers {
		if w.query.Collection != collection {
			continue
		}
		select {
		case w.errs <- err:
		default:
		}
	}
}
