// Package backend defines the contract with the remote document database,
// blob store and identity provider, plus its client implementations.
package backend

import (
	"context"
	"fmt"
	"io"

	"localmart/internal/marketerrors"
	"localmart/internal/models"
)

// InLimit mirrors the backend's limit on membership-filter length; queries
// carrying more than InLimit ids are rejected by the server. Not a tunable.
const InLimit = 10

// Document is a schemaless backend record. The "id" field is assigned by the
// backend on create and echoed back on every read.
type Document map[string]any

// ID returns the backend-assigned document id, if present.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Op is a filter operator. Only equality is accepted at the query boundary;
// membership on document id goes through Query.IDs instead.
type Op string

// OpEqual matches documents whose field equals the filter value.
const OpEqual Op = "=="

// Filter is a single (field, operator, value) constraint.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Sort orders results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Query describes one document query.
type Query struct {
	Collection string
	Filters    []Filter
	Sort       Sort
	Limit      int
	StartAfter string   // id of the last document of the previous page
	IDs        []string // membership filter on document id, at most InLimit values
}

// Validate rejects malformed queries before any network call.
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: missing collection", marketerrors.ErrInvalidQuery)
	}
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("%w: filter with empty field", marketerrors.ErrInvalidQuery)
		}
		if f.Op != OpEqual {
			return fmt.Errorf("%w: unsupported operator %q", marketerrors.ErrInvalidQuery, f.Op)
		}
	}
	if len(q.IDs) > InLimit {
		return fmt.Errorf("%w: at most %d ids per query", marketerrors.ErrInvalidQuery, InLimit)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", marketerrors.ErrInvalidQuery)
	}
	return nil
}

// Listener delivers the full current result set of a watched query on every
// server-side change, plus an error channel. Stop is idempotent.
type Listener interface {
	Snapshots() <-chan []Document
	Errors() <-chan error
	Stop()
}

// DocumentStore is the document database capability of the backend.
type DocumentStore interface {
	Query(ctx context.Context, q Query) ([]Document, error)
	Create(ctx context.Context, collection string, doc Document) (string, error)
	Patch(ctx context.Context, collection, id string, patch Document) error
	Delete(ctx context.Context, collection, id string) error
	Watch(ctx context.Context, q Query) (Listener, error)
}

// BlobStore is the binary object storage capability of the backend.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (url string, err error)
	DeleteBlob(ctx context.Context, path string) error
}

// Identity resolves bearer tokens issued by the external auth flow.
type Identity interface {
	Verify(ctx context.Context, token string) (models.User, error)
}
