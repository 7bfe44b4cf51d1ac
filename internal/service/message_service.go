package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"rentease-service/internal/model"
	"rentease-service/internal/notify"
	"rentease-service/internal/repository"
)

type MessageInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

type MessageService struct {
	messages  *repository.MessageRepository
	notifier  notify.Notifier
	adminDesk string
	now       func() time.Time
}

func NewMessageService(messages *repository.MessageRepository, notifier notify.Notifier, adminEmail string) *MessageService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &MessageService{
		messages:  messages,
		notifier:  notifier,
		adminDesk: adminEmail,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a contact-form message and forwards it to the admin desk.
func (s *MessageService) Submit(ctx context.Context, in MessageInput) (*model.Message, error) {
	m := &model.Message{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		Type:      model.MessageTypeContact,
		CreatedAt: s.now(),
	}
	if err := s.messages.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("MessageService.Submit: %w", err)
	}
	if err := s.notifier.Notify(ctx, notify.ContactReceived(s.adminDesk, m.Email, m.Subject, m.Message)); err != nil {
		log.Printf("[MessageService.Submit] admin notification failed: %v", err)
	}
	return m, nil
}

func (s *MessageService) List(ctx context.Context, actor model.Actor) ([]model.Message, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	list, err := s.messages.FindByType(ctx, model.MessageTypeContact)
	if err != nil {
		return nil, fmt.Errorf("MessageService.List: %w", err)
	}
	return list, nil
}
