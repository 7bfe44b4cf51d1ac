package repository

import (
	"context"
	"errors"
	"fmt"

	"rentease-service/internal/model"
)

type UserRepository struct {
	Store DocumentStore
}

func NewUserRepository(store DocumentStore) *UserRepository {
	return &UserRepository{Store: store}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	doc, err := r.Store.Get(ctx, Users, id)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.GetByID: %w", err)
	}
	u := model.UserFromDocument(doc)
	return &u, nil
}

// RoleOf returns the stored role of a user. Unknown users are plain users.
func (r *UserRepository) RoleOf(ctx context.Context, id string) (model.Role, error) {
	u, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return model.RoleUser, nil
	}
	if err != nil {
		return "", fmt.Errorf("UserRepository.RoleOf: %w", err)
	}
	return u.Role, nil
}

// Upsert writes the profile under the identity id, keeping the original
// creation time.
func (r *UserRepository) Upsert(ctx context.Context, u *model.User) error {
	existing, err := r.GetByID(ctx, u.ID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return fmt.Errorf("UserRepository.Upsert: %w", err)
	default:
		u.CreatedAt = existing.CreatedAt
	}
	if err := r.Store.Set(ctx, Users, u.ID, u.Document()); err != nil {
		return fmt.Errorf("UserRepository.Upsert: %w", err)
	}
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role model.Role) error {
	if err := r.Store.Update(ctx, Users, id, model.Document{"role": string(role)}); err != nil {
		return fmt.Errorf("UserRepository.SetRole: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.Store.Delete(ctx, Users, id); err != nil {
		return fmt.Errorf("UserRepository.Delete: %w", err)
	}
	return nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]model.User, error) {
	docs, err := r.Store.FindAll(ctx, Users)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.FindAll: %w", err)
	}
	return users(docs), nil
}

func (r *UserRepository) FindByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	docs, err := r.Store.FindByField(ctx, Users, "role", string(role))
	if err != nil {
		return nil, fmt.Errorf("UserRepository.FindByRole: %w", err)
	}
	return users(docs), nil
}

func users(docs []model.Document) []model.User {
	out := make([]model.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.UserFromDocument(d))
	}
	return out
}
