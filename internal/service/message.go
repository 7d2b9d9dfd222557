package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/repo"
)

type MessageService struct {
	Repo *repo.GormRepo
}

func (s *MessageService) List(ctx context.Context) ([]models.Message, error) {
	return s.Repo.GetMessages(ctx)
}

func (s *MessageService) Create(ctx context.Context, sender, body string) (*models.Message, error) {
	if sender == "" || body == "" {
		return nil, fmt.Errorf("sender and body are required: %w", ErrValidation)
	}
	message := models.Message{Sender: sender, Body: body}
	if err := s.Repo.CreateMessage(ctx, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (s *MessageService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteMessage(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	return err
}
