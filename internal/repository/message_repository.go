package repository

import (
	"context"
	"fmt"

	"rentease-service/internal/model"
)

type MessageRepository struct {
	Store DocumentStore
}

func NewMessageRepository(store DocumentStore) *MessageRepository {
	return &MessageRepository{Store: store}
}

func (r *MessageRepository) Insert(ctx context.Context, m *model.Message) error {
	id, err := r.Store.Create(ctx, Messages, "", m.Document())
	if err != nil {
		return fmt.Errorf("MessageRepository.Insert: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MessageRepository) FindByType(ctx context.Context, kind string) ([]model.Message, error) {
	docs, err := r.Store.FindByField(ctx, Messages, "type", kind)
	if err != nil {
		return nil, fmt.Errorf("MessageRepository.FindByType: %w", err)
	}
	out := make([]model.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.MessageFromDocument(d))
	}
	return out, nil
}
