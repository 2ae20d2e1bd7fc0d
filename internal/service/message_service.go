package service

import (
	"context"
	"fmt"

	"taman-digital/internal/domain"
	"taman-digital/internal/repository"
	"taman-digital/internal/validator"
)

// MessageService exchanges direct messages between registered users.
type MessageService struct {
	messages  repository.MessageRepository
	users     repository.UserRepository
	validator *validator.Validator
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, v *validator.Validator) *MessageService {
	return &MessageService{messages: messages, users: users, validator: v}
}

// Send delivers content from the session user to receiver.
func (s *MessageService) Send(ctx context.Context, sess *domain.Session, receiver, content string) (*domain.Message, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.validator.ValidateMessage(content); err != nil {
		return nil, err
	}
	to, err := s.users.Get(ctx, receiver)
	if err != nil {
		return nil, fmt.Errorf("get receiver: %w", err)
	}
	if to == nil {
		return nil, ErrUserNotFound
	}
	return s.messages.Send(ctx, sess.Username, receiver, content)
}

// Conversation returns the messages between the session user and other, oldest first.
func (s *MessageService) Conversation(ctx context.Context, sess *domain.Session, other string) ([]domain.Message, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	return s.messages.Between(ctx, sess.Username, other)
}

// Conversations lists everyone the session user has exchanged messages with.
func (s *MessageService) Conversations(ctx context.Context, sess *domain.Session) ([]string, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	return s.messages.Conversations(ctx, sess.Username)
}
