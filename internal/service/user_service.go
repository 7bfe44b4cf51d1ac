package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rentease-service/internal/model"
	"rentease-service/internal/repository"
)

type UserService struct {
	users *repository.UserRepository
	now   func() time.Time
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users, now: func() time.Time { return time.Now().UTC() }}
}

// SyncProfile records the caller's identity. A stored role is kept, so a
// promotion survives the next sync; an admin token always records admin.
// The request body never sets the role.
func (s *UserService) SyncProfile(ctx context.Context, actor model.Actor, name string) (*model.User, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	if name = strings.TrimSpace(name); name == "" {
		name = actor.Name
	}
	role := model.RoleUser
	existing, err := s.users.GetByID(ctx, actor.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("UserService.SyncProfile: %w", err)
	default:
		role = existing.Role
	}
	if actor.IsAdmin() {
		role = model.RoleAdmin
	}
	u := &model.User{
		ID:        actor.UserID,
		Email:     actor.Email,
		Name:      name,
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.users.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("UserService.SyncProfile: %w", err)
	}
	return u, nil
}

// List returns all users, or those with role when it is set.
func (s *UserService) List(ctx context.Context, actor model.Actor, role string) ([]model.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var (
		list []model.User
		err  error
	)
	if role == "" {
		list, err = s.users.FindAll(ctx)
	} else {
		list, err = s.users.FindByRole(ctx, model.ParseRole(role))
	}
	if err != nil {
		return nil, fmt.Errorf("UserService.List: %w", err)
	}
	return list, nil
}

func (s *UserService) SetRole(ctx context.Context, actor model.Actor, id, role string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	r := model.Role(strings.ToLower(strings.TrimSpace(role)))
	if r != model.RoleAdmin && r != model.RoleUser {
		return invalid("unknown role %q", role)
	}
	if id == actor.UserID && r != model.RoleAdmin {
		return invalid("admins cannot revoke their own role")
	}
	if err := s.users.SetRole(ctx, id, r); err != nil {
		return fmt.Errorf("UserService.SetRole: %w", err)
	}
	log.Printf("[UserService.SetRole] user %s is now %s (by %s)", id, r, actor.UserID)
	return nil
}

func (s *UserService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if id == actor.UserID {
		return invalid("admins cannot delete themselves")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("UserService.Delete: %w", err)
	}
	log.Printf("[UserService.Delete] user %s deleted by %s", id, actor.UserID)
	return nil
}
