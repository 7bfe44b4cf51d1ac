package repository

import (
	"context"
	"fmt"
	"time"

	"rentease-service/internal/model"
)

// PropertyRepository reads and writes listings through a DocumentStore and
// owns their normalization.
type PropertyRepository struct {
	Store DocumentStore
}

func NewPropertyRepository(store DocumentStore) *PropertyRepository {
	return &PropertyRepository{Store: store}
}

func (r *PropertyRepository) Create(ctx context.Context, p *model.Property) error {
	id, err := r.Store.Create(ctx, Properties, p.ID, p.Document())
	if err != nil {
		return fmt.Errorf("PropertyRepository.Create: %w", err)
	}
	p.ID = id
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*model.Property, error) {
	doc, err := r.Store.Get(ctx, Properties, id)
	if err != nil {
		return nil, fmt.Errorf("PropertyRepository.GetByID: %w", err)
	}
	p := model.PropertyFromDocument(doc)
	return &p, nil
}

// Update rewrites every canonical field of p. Legacy fields stay in place
// but are shadowed by the canonical ones on the next read.
func (r *PropertyRepository) Update(ctx context.Context, p *model.Property) error {
	fields := p.Document()
	delete(fields, "createdAt")
	if err := r.Store.Update(ctx, Properties, p.ID, fields); err != nil {
		return fmt.Errorf("PropertyRepository.Update: %w", err)
	}
	return nil
}

// MoveStatus sets the status only if the listing is still in from.
func (r *PropertyRepository) MoveStatus(ctx context.Context, id string, from, to model.Status) error {
	err := r.Store.UpdateIf(ctx, Properties, id, "status", string(from), model.Document{"status": string(to)})
	if err != nil {
		return fmt.Errorf("PropertyRepository.MoveStatus: %w", err)
	}
	return nil
}

func (r *PropertyRepository) SetImageURL(ctx context.Context, id, url string) error {
	if err := r.Store.Update(ctx, Properties, id, model.Document{"imageUrl": url}); err != nil {
		return fmt.Errorf("PropertyRepository.SetImageURL: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	if err := r.Store.Delete(ctx, Properties, id); err != nil {
		return fmt.Errorf("PropertyRepository.Delete: %w", err)
	}
	return nil
}

func (r *PropertyRepository) GetByStatus(ctx context.Context, status model.Status) ([]model.Property, error) {
	docs, err := r.Store.FindByField(ctx, Properties, "status", string(status))
	if err != nil {
		return nil, fmt.Errorf("PropertyRepository.GetByStatus: %w", err)
	}
	return properties(docs), nil
}

// GetByOwner also picks up listings written by the legacy forms, which
// stored the owner under "owner".
func (r *PropertyRepository) GetByOwner(ctx context.Context, ownerID string) ([]model.Property, error) {
	docs, err := r.Store.FindByField(ctx, Properties, "ownerId", ownerID)
	if err != nil {
		return nil, fmt.Errorf("PropertyRepository.GetByOwner: %w", err)
	}
	legacy, err := r.Store.FindByField(ctx, Properties, "owner", ownerID)
	if err != nil {
		return nil, fmt.Errorf("PropertyRepository.GetByOwner: legacy: %w", err)
	}
	return properties(mergeDocuments(docs, legacy)), nil
}

func (r *PropertyRepository) GetVideoRequests(ctx context.Context) ([]model.Property, error) {
	docs, err := r.Store.FindByField(ctx, Properties, "createVideo", true)
	if err != nil {
		return nil, fmt.Errorf("PropertyRepository.GetVideoRequests: %w", err)
	}
	return properties(docs), nil
}

func (r *PropertyRepository) GetAll(ctx context.Context) ([]model.Property, error) {
	docs, err := r.Store.FindAll(ctx, Properties)
	if err != nil {
		return nil, fmt.Errorf("PropertyRepository.GetAll: %w", err)
	}
	return properties(docs), nil
}

func (r *PropertyRepository) GetCreatedBetween(ctx context.Context, start, end time.Time) ([]model.Property, error) {
	docs, err := r.Store.FindByDateRange(ctx, Properties, "createdAt", start, end)
	if err != nil {
		return nil, fmt.Errorf("PropertyRepository.GetCreatedBetween: %w", err)
	}
	return properties(docs), nil
}

func properties(docs []model.Document) []model.Property {
	out := make([]model.Property, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.PropertyFromDocument(d))
	}
	return out
}

// mergeDocuments concatenates result sets, dropping repeated ids.
func mergeDocuments(sets ...[]model.Document) []model.Document {
	seen := map[string]bool{}
	var out []model.Document
	for _, set := range sets {
		for _, d := range set {
			if seen[d.ID()] {
				continue
			}
			seen[d.ID()] = true
			out = append(out, d)
		}
	}
	return out
}
