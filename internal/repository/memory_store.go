package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"
	"time"

	"rentease-service/internal/model"
)

// MemoryStore keeps documents in process. It backs the "memory" store
// driver and the tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]model.Document
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string]map[string]model.Document{},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(_ context.Context, collection, id string, doc model.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = newID()
	}
	coll := s.collection(collection)
	if _, exists := coll[id]; exists {
		return "", fmt.Errorf("MemoryStore.Create: %s/%s already exists", collection, id)
	}
	coll[id] = payload(doc, s.now(), true)
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return withID(doc, id), nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collection(collection)[id] = payload(doc, s.now(), false)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range payload(fields, s.now(), false) {
		doc[k] = v
	}
	doc["updatedAt"] = s.now()
	return nil
}

func (s *MemoryStore) UpdateIf(_ context.Context, collection, id, field, want string, fields model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	if got := doc.String(field); got != "" && got != want {
		return ErrConflict
	}
	for k, v := range payload(fields, s.now(), false) {
		doc[k] = v
	}
	doc["updatedAt"] = s.now()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)
	return nil
}

func (s *MemoryStore) FindByField(_ context.Context, collection, field string, value any) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Document
	for id, doc := range s.data[collection] {
		if v, ok := doc[field]; ok && reflect.DeepEqual(v, value) {
			out = append(out, withID(doc, id))
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *MemoryStore) FindAll(_ context.Context, collection string) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Document, 0, len(s.data[collection]))
	for id, doc := range s.data[collection] {
		out = append(out, withID(doc, id))
	}
	sortByCreated(out)
	return out, nil
}

func (s *MemoryStore) FindByDateRange(ctx context.Context, collection, field string, start, end time.Time) ([]model.Document, error) {
	all, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return FilterByDateRange(all, field, start, end), nil
}

func (s *MemoryStore) collection(name string) map[string]model.Document {
	coll, ok := s.data[name]
	if !ok {
		coll = map[string]model.Document{}
		s.data[name] = coll
	}
	return coll
}

func withID(doc model.Document, id string) model.Document {
	out := make(model.Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out
}

// sortByCreated orders newest first, ties broken by id.
func sortByCreated(docs []model.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		ti, _ := model.TimeOf(docs[i]["createdAt"])
		tj, _ := model.TimeOf(docs[j]["createdAt"])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return docs[i].ID() < docs[j].ID()
	})
}

// MemoryBlobStore keeps uploads in process.
type MemoryBlobStore struct {
	mu        sync.RWMutex
	files     map[string]memoryBlob
	urlPrefix string
}

type memoryBlob struct {
	name string
	data []byte
}

func NewMemoryBlobStore(urlPrefix string) *MemoryBlobStore {
	return &MemoryBlobStore{files: map[string]memoryBlob{}, urlPrefix: urlPrefix}
}

func (b *MemoryBlobStore) Upload(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("MemoryBlobStore.Upload: %w", err)
	}
	id := newID()
	b.mu.Lock()
	b.files[id] = memoryBlob{name: name, data: data}
	b.mu.Unlock()
	return b.urlPrefix + "/" + id, nil
}

func (b *MemoryBlobStore) Open(_ context.Context, id string) (io.ReadCloser, string, error) {
	b.mu.RLock()
	f, ok := b.files[id]
	b.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(f.data)), f.name, nil
}

var (
	_ DocumentStore = (*MemoryStore)(nil)
	_ BlobStore     = (*MemoryBlobStore)(nil)
)
