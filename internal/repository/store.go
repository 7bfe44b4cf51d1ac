package repository

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"rentease-service/internal/model"
)

// Collection names.
const (
	Properties = "properties"
	Interests  = "interests"
	Settings   = "settings"
	Users      = "users"
	Messages   = "messages"
)

// ErrNotFound is returned when a document or blob does not exist.
var ErrNotFound = errors.New("document not found")

// ErrConflict is returned by UpdateIf when the document no longer holds
// the expected value.
var ErrConflict = errors.New("document changed concurrently")

// DocumentStore is the data-access boundary to the document backend.
// Returned documents carry their id under "id".
type DocumentStore interface {
	// Create inserts doc and returns its id. An empty id is generated.
	Create(ctx context.Context, collection, id string, doc model.Document) (string, error)
	Get(ctx context.Context, collection, id string) (model.Document, error)
	// Set overwrites the whole document, creating it if needed.
	Set(ctx context.Context, collection, id string, doc model.Document) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields model.Document) error
	// UpdateIf merges fields only while field still equals want. A document
	// without the field matches too. Otherwise it returns ErrConflict.
	UpdateIf(ctx context.Context, collection, id, field, want string, fields model.Document) error
	Delete(ctx context.Context, collection, id string) error
	FindByField(ctx context.Context, collection, field string, value any) ([]model.Document, error)
	FindAll(ctx context.Context, collection string) ([]model.Document, error)
	// FindByDateRange returns documents whose field falls within
	// [start, end], both ends inclusive.
	FindByDateRange(ctx context.Context, collection, field string, start, end time.Time) ([]model.Document, error)
}

// BlobStore keeps uploaded files and hands back a retrievable URL.
type BlobStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
}

// FilterByDateRange keeps the documents whose field parses as a timestamp
// within [start, end]. Documents with a missing or unparsable field are
// dropped.
func FilterByDateRange(docs []model.Document, field string, start, end time.Time) []model.Document {
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		t, ok := model.TimeOf(d[field])
		if !ok {
			continue
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func newID() string {
	return uuid.NewString()
}

// payload copies doc without its "id" key, stamping createdAt when absent.
func payload(doc model.Document, now time.Time, stampCreated bool) model.Document {
	out := make(model.Document, len(doc)+1)
	for k, v := range doc {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	if stampCreated {
		if _, ok := out["createdAt"]; !ok {
			out["createdAt"] = now
		}
	}
	return out
}
