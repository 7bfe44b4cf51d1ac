package repository

import (
	"context"
	"fmt"
	"time"

	"rentease-service/internal/model"
)

type InterestRepository struct {
	Store DocumentStore
}

func NewInterestRepository(store DocumentStore) *InterestRepository {
	return &InterestRepository{Store: store}
}

func (r *InterestRepository) Insert(ctx context.Context, in *model.Interest) error {
	id, err := r.Store.Create(ctx, Interests, in.ID, in.Document())
	if err != nil {
		return fmt.Errorf("InterestRepository.Insert: %w", err)
	}
	in.ID = id
	return nil
}

func (r *InterestRepository) GetByID(ctx context.Context, id string) (*model.Interest, error) {
	doc, err := r.Store.Get(ctx, Interests, id)
	if err != nil {
		return nil, fmt.Errorf("InterestRepository.GetByID: %w", err)
	}
	in := model.InterestFromDocument(doc)
	return &in, nil
}

func (r *InterestRepository) FindByProperty(ctx context.Context, propertyID string) ([]model.Interest, error) {
	docs, err := r.Store.FindByField(ctx, Interests, "propertyId", propertyID)
	if err != nil {
		return nil, fmt.Errorf("InterestRepository.FindByProperty: %w", err)
	}
	return interests(docs), nil
}

func (r *InterestRepository) FindByUser(ctx context.Context, userID string) ([]model.Interest, error) {
	docs, err := r.Store.FindByField(ctx, Interests, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("InterestRepository.FindByUser: %w", err)
	}
	return interests(docs), nil
}

func (r *InterestRepository) FindAll(ctx context.Context) ([]model.Interest, error) {
	docs, err := r.Store.FindAll(ctx, Interests)
	if err != nil {
		return nil, fmt.Errorf("InterestRepository.FindAll: %w", err)
	}
	return interests(docs), nil
}

func (r *InterestRepository) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]model.Interest, error) {
	docs, err := r.Store.FindByDateRange(ctx, Interests, "createdAt", start, end)
	if err != nil {
		return nil, fmt.Errorf("InterestRepository.FindCreatedBetween: %w", err)
	}
	return interests(docs), nil
}

// SetPayment records the payment state. The fee amount is never touched.
func (r *InterestRepository) SetPayment(ctx context.Context, id string, status model.PaymentStatus, reference string) error {
	fields := model.Document{"paymentStatus": string(status)}
	if reference != "" {
		fields["paymentReference"] = reference
	}
	if err := r.Store.Update(ctx, Interests, id, fields); err != nil {
		return fmt.Errorf("InterestRepository.SetPayment: %w", err)
	}
	return nil
}

func interests(docs []model.Document) []model.Interest {
	out := make([]model.Interest, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.InterestFromDocument(d))
	}
	return out
}
